package enrich

import (
	"regexp"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// httpMethods are the path item keys that hold operations.
var httpMethods = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"patch":   true,
	"delete":  true,
	"head":    true,
	"options": true,
	"trace":   true,
}

// resourceAcronyms expand resource-name tokens to their display form.
var resourceAcronyms = map[string]string{
	"http":  "HTTP",
	"tcp":   "TCP",
	"udp":   "UDP",
	"dns":   "DNS",
	"api":   "API",
	"waf":   "WAF",
	"cdn":   "CDN",
	"vpn":   "VPN",
	"ip":    "IP",
	"ssl":   "SSL",
	"tls":   "TLS",
	"bgp":   "BGP",
	"acl":   "ACL",
	"lb":    "load balancer",
	"k8s":   "Kubernetes",
	"aws":   "AWS",
	"gcp":   "GCP",
	"azure": "Azure",
	"oidc":  "OIDC",
	"rbac":  "RBAC",
}

var dottedActionWords = map[string]string{
	"create":  "Create",
	"get":     "Get",
	"list":    "List",
	"update":  "Update",
	"replace": "Replace",
	"delete":  "Delete",
	"patch":   "Patch",
}

var methodActions = map[string]string{
	"get":     "Get",
	"post":    "Create",
	"put":     "Update",
	"patch":   "Partially update",
	"delete":  "Delete",
	"head":    "Check",
	"options": "Get options for",
}

var (
	lowerUpperBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymBoundary    = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// schemaNamePrefixes are stripped before generating a schema description.
var schemaNamePrefixes = []string{"schema", "ioschema", "vesio", "ves_io"}

// DescriptionValidatorStats counts missing and generated descriptions.
type DescriptionValidatorStats struct {
	OperationsMissing   int `json:"operations_missing"`
	OperationsGenerated int `json:"operations_generated"`
	SchemasMissing      int `json:"schemas_missing"`
	SchemasGenerated    int `json:"schemas_generated"`
}

// MissingOperation identifies an operation without a description.
type MissingOperation struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	OperationID string `json:"operationId"`
}

// MissingSchema identifies a component schema without a description.
type MissingSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MissingDescriptions is the read-only report of description gaps.
type MissingDescriptions struct {
	Operations []MissingOperation `json:"operations"`
	Schemas    []MissingSchema    `json:"schemas"`
}

// DescriptionValidator finds operations and schemas without descriptions
// and generates placeholder text from operationIds, paths, and schema
// names.
type DescriptionValidator struct {
	generateOperationDescriptions bool
	generateSchemaDescriptions    bool
	prefix                        string

	stats DescriptionValidatorStats
}

// NewDescriptionValidator constructs a validator from configuration.
func NewDescriptionValidator(cfg config.DescriptionValidationConfig) *DescriptionValidator {
	return &DescriptionValidator{
		generateOperationDescriptions: cfg.AutoGenerateOperationDescriptions,
		generateSchemaDescriptions:    cfg.AutoGenerateSchemaDescriptions,
		prefix:                        cfg.DescriptionPrefix,
	}
}

// ValidateAndGenerate fills missing operation descriptions in place.
// Schema descriptions are generated only when enabled; synthesized schema
// text is riskier so it defaults off.
func (v *DescriptionValidator) ValidateAndGenerate(doc *document.Object) *document.Object {
	v.stats = DescriptionValidatorStats{}

	v.processOperations(doc)
	if v.generateSchemaDescriptions {
		v.processSchemas(doc)
	}

	return doc
}

// Stats returns counters from the last ValidateAndGenerate pass.
func (v *DescriptionValidator) Stats() DescriptionValidatorStats {
	return v.stats
}

// FindMissingDescriptions reports description gaps without modifying the
// document.
func (v *DescriptionValidator) FindMissingDescriptions(doc *document.Object) *MissingDescriptions {
	missing := &MissingDescriptions{
		Operations: []MissingOperation{},
		Schemas:    []MissingSchema{},
	}

	if paths, ok := doc.GetObject("paths"); ok {
		for _, path := range paths.Keys() {
			pathItem, ok := paths.GetObject(path)
			if !ok {
				continue
			}
			for _, method := range pathItem.Keys() {
				if !httpMethods[strings.ToLower(method)] {
					continue
				}
				operation, ok := pathItem.GetObject(method)
				if !ok {
					continue
				}
				if hasDescription(operation) {
					continue
				}
				operationID, _ := operation.GetString("operationId")
				missing.Operations = append(missing.Operations, MissingOperation{
					Path:        path,
					Method:      strings.ToUpper(method),
					OperationID: operationID,
				})
			}
		}
	}

	if components, ok := doc.GetObject("components"); ok {
		if schemas, ok := components.GetObject("schemas"); ok {
			for _, name := range schemas.Keys() {
				schema, ok := schemas.GetObject(name)
				if !ok || schema.Has("$ref") {
					continue
				}
				if hasDescription(schema) {
					continue
				}
				schemaType, ok := schema.GetString("type")
				if !ok {
					schemaType = "unknown"
				}
				missing.Schemas = append(missing.Schemas, MissingSchema{Name: name, Type: schemaType})
			}
		}
	}

	return missing
}

func hasDescription(obj *document.Object) bool {
	description, ok := obj.GetString("description")
	return ok && strings.TrimSpace(description) != ""
}

func (v *DescriptionValidator) processOperations(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	for _, path := range paths.Keys() {
		pathItem, ok := paths.GetObject(path)
		if !ok {
			continue
		}
		for _, method := range pathItem.Keys() {
			if !httpMethods[strings.ToLower(method)] {
				continue
			}
			operation, ok := pathItem.GetObject(method)
			if !ok {
				continue
			}
			if hasDescription(operation) {
				continue
			}
			v.stats.OperationsMissing++

			if !v.generateOperationDescriptions {
				continue
			}
			operationID, _ := operation.GetString("operationId")
			if generated := v.describeOperation(operationID, method, path); generated != "" {
				operation.Set("description", v.prefix+generated)
				v.stats.OperationsGenerated++
			}
		}
	}
}

func (v *DescriptionValidator) processSchemas(doc *document.Object) {
	components, ok := doc.GetObject("components")
	if !ok {
		return
	}
	schemas, ok := components.GetObject("schemas")
	if !ok {
		return
	}

	for _, name := range schemas.Keys() {
		schema, ok := schemas.GetObject(name)
		if !ok || schema.Has("$ref") {
			continue
		}
		if hasDescription(schema) {
			continue
		}
		v.stats.SchemasMissing++

		if generated := describeSchema(name); generated != "" {
			schema.Set("description", v.prefix+generated)
			v.stats.SchemasGenerated++
		}
	}
}

// describeOperation builds a description from the operationId, handling
// both dotted service identifiers (ves.io.schema.namespace.API.Create)
// and camelCase names (getUserById). Falls back to method plus path.
func (v *DescriptionValidator) describeOperation(operationID, method, path string) string {
	if operationID == "" {
		return describeFromPath(method, path)
	}

	if strings.Contains(operationID, "ves.io.schema") {
		parts := strings.Split(operationID, ".")
		if len(parts) >= 3 {
			action := parts[len(parts)-1]
			resource := parts[len(parts)-2]
			if resource == "API" {
				resource = parts[len(parts)-3]
			}
			return formatAction(action) + " " + formatResourceName(resource) + "."
		}
	}

	words := splitCamelCase(operationID)
	if len(words) == 0 {
		return describeFromPath(method, path)
	}

	result := make([]string, len(words))
	for i, word := range words {
		switch {
		case i == 0:
			result[i] = capitalize(word)
		case word == strings.ToUpper(word) && len(word) <= 4:
			// Short all-caps words are acronyms (HTTP, API, ID).
			result[i] = word
		default:
			result[i] = strings.ToLower(word)
		}
	}

	description := strings.Join(result, " ")
	if !strings.HasSuffix(description, ".") {
		description += "."
	}
	return description
}

// describeFromPath derives a description from the HTTP method and the last
// non-parameter path segment.
func describeFromPath(method, path string) string {
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	resource := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" && !strings.HasPrefix(parts[i], "{") {
			resource = parts[i]
			break
		}
	}
	if resource == "" {
		return ""
	}

	return methodToAction(method) + " " + formatResourceName(resource) + "."
}

// describeSchema builds a description from a schema name, stripping
// generator prefixes and splitting camelCase.
func describeSchema(name string) string {
	stripped := name
	lower := strings.ToLower(name)
	for _, prefix := range schemaNamePrefixes {
		if strings.HasPrefix(lower, prefix) {
			stripped = name[len(prefix):]
			break
		}
	}

	words := splitCamelCase(stripped)
	if len(words) == 0 {
		return ""
	}

	result := make([]string, len(words))
	for i, word := range words {
		if word == strings.ToUpper(word) && len(word) <= 4 {
			result[i] = word
		} else {
			result[i] = strings.ToLower(word)
		}
	}
	result[0] = capitalize(result[0])

	description := strings.Join(result, " ")

	lowerDesc := strings.ToLower(description)
	hasKind := false
	for _, kind := range []string{"type", "spec", "request", "response"} {
		if strings.Contains(lowerDesc, kind) {
			hasKind = true
			break
		}
	}
	if !hasKind {
		description += " type"
	}

	if !strings.HasSuffix(description, ".") {
		description += "."
	}
	return description
}

func splitCamelCase(s string) []string {
	words := lowerUpperBoundary.ReplaceAllString(s, "$1 $2")
	words = acronymBoundary.ReplaceAllString(words, "$1 $2")
	return strings.Fields(words)
}

// formatResourceName turns a snake_case resource token into readable text,
// expanding known acronyms.
func formatResourceName(resource string) string {
	words := strings.Fields(strings.ReplaceAll(resource, "_", " "))
	result := make([]string, len(words))
	for i, word := range words {
		if expanded, ok := resourceAcronyms[strings.ToLower(word)]; ok {
			result[i] = expanded
		} else {
			result[i] = word
		}
	}
	return strings.Join(result, " ")
}

func formatAction(action string) string {
	if formatted, ok := dottedActionWords[strings.ToLower(action)]; ok {
		return formatted
	}
	return capitalize(action)
}

func methodToAction(method string) string {
	if action, ok := methodActions[strings.ToLower(method)]; ok {
		return action
	}
	return capitalize(method)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
