package enrich

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// Severity ranks consistency issues.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Level returns the numeric rank of a severity for threshold filtering.
// Unknown severities rank lowest.
func (s Severity) Level() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	}
	return 0
}

// Issue is a single consistency finding. Issues report, they never fix.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Location   string   `json:"location"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ConsistencyStats summarizes all collected issues, before threshold
// filtering.
type ConsistencyStats struct {
	TotalIssues int            `json:"total_issues"`
	Errors      int            `json:"errors"`
	Warnings    int            `json:"warnings"`
	Info        int            `json:"info"`
	ByCategory  map[string]int `json:"by_category"`
}

// ConsistencyReport pairs the summary with the filtered issue list.
type ConsistencyReport struct {
	Summary ConsistencyStats `json:"summary"`
	Issues  []Issue          `json:"issues"`
}

var (
	requestSuffixPattern  = regexp.MustCompile(`(Request|Input|Create|Update|Payload)$`)
	responseSuffixPattern = regexp.MustCompile(`(Response|Output|Result|Reply)$`)
	typeSuffixPattern     = regexp.MustCompile(`(Type|Spec|Config|Settings|Options)$`)
)

// parameterConflicts are concept-equivalent names that should not diverge
// between path and query parameters. Each side lists every spelling in
// use, canonical one included: a path and a query parameter sharing the
// canonical name still count as one conflict pair.
var parameterConflicts = []struct {
	pathVariants  []string
	queryVariants []string
}{
	{[]string{"namespace", "metadata.namespace"}, []string{"namespace", "ns"}},
	{[]string{"name", "metadata.name"}, []string{"name", "object_name"}},
}

// ConsistencyValidator checks naming and structural conventions across a
// specification and reports issues above the configured severity
// threshold.
type ConsistencyValidator struct {
	validateParameters   bool
	validateSchemas      bool
	validateOperationIDs bool
	threshold            Severity

	issues []Issue
}

// NewConsistencyValidator constructs a validator from configuration.
func NewConsistencyValidator(cfg config.ConsistencyConfig) *ConsistencyValidator {
	threshold := Severity(cfg.SeverityThreshold)
	if threshold == "" {
		threshold = SeverityWarning
	}
	return &ConsistencyValidator{
		validateParameters:   cfg.ValidateParameters,
		validateSchemas:      cfg.ValidateSchemas,
		validateOperationIDs: cfg.ValidateOperationIDs,
		threshold:            threshold,
	}
}

// Validate runs all checks and returns the issues at or above the
// severity threshold.
func (v *ConsistencyValidator) Validate(doc *document.Object) []Issue {
	v.issues = nil

	if v.validateParameters {
		v.checkParameterNaming(doc)
	}
	if v.validateSchemas {
		v.checkSchemaNaming(doc)
	}
	if v.validateOperationIDs {
		v.checkOperationIDs(doc)
	}
	v.checkDeprecationMarkers(doc)
	v.checkDuplicateOperationIDs(doc)

	return v.filterByThreshold()
}

// Stats summarizes all issues from the last Validate pass, including
// those below the threshold.
func (v *ConsistencyValidator) Stats() ConsistencyStats {
	stats := ConsistencyStats{
		TotalIssues: len(v.issues),
		ByCategory: map[string]int{
			"parameter":   0,
			"schema":      0,
			"operationId": 0,
			"deprecation": 0,
		},
	}
	for _, issue := range v.issues {
		switch issue.Severity {
		case SeverityError:
			stats.Errors++
		case SeverityWarning:
			stats.Warnings++
		default:
			stats.Info++
		}
		stats.ByCategory[issue.Category]++
	}
	return stats
}

// Report pairs the full summary with the filtered issue list.
func (v *ConsistencyValidator) Report() *ConsistencyReport {
	return &ConsistencyReport{
		Summary: v.Stats(),
		Issues:  v.filterByThreshold(),
	}
}

func (v *ConsistencyValidator) addIssue(severity Severity, category, message, location, suggestion string) {
	v.issues = append(v.issues, Issue{
		Severity:   severity,
		Category:   category,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

func (v *ConsistencyValidator) filterByThreshold() []Issue {
	filtered := []Issue{}
	for _, issue := range v.issues {
		if issue.Severity.Level() >= v.threshold.Level() {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

func (v *ConsistencyValidator) checkParameterNaming(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	namesByLocation := map[string]map[string]bool{}
	record := func(in, name string) {
		if namesByLocation[in] == nil {
			namesByLocation[in] = map[string]bool{}
		}
		namesByLocation[in][name] = true
	}

	for _, path := range paths.Keys() {
		pathItem, ok := paths.GetObject(path)
		if !ok {
			continue
		}

		if params, ok := pathItem.GetArray("parameters"); ok {
			for _, p := range params {
				if param, ok := p.(*document.Object); ok {
					v.validateParameter(param, "paths."+path)
				}
			}
		}

		for _, method := range pathItem.Keys() {
			if !httpMethods[strings.ToLower(method)] {
				continue
			}
			operation, ok := pathItem.GetObject(method)
			if !ok {
				continue
			}
			params, ok := operation.GetArray("parameters")
			if !ok {
				continue
			}
			for _, p := range params {
				param, ok := p.(*document.Object)
				if !ok {
					continue
				}
				v.validateParameter(param, "paths."+path+"."+method)
				name, _ := param.GetString("name")
				in, _ := param.GetString("in")
				record(in, name)
			}
		}
	}

	v.checkParameterConflicts(namesByLocation)
}

func (v *ConsistencyValidator) validateParameter(param *document.Object, location string) {
	name, _ := param.GetString("name")
	in, _ := param.GetString("in")

	if name == "" {
		v.addIssue(SeverityError, "parameter", "Parameter missing 'name' field", location, "")
		return
	}

	switch in {
	case "path":
		if strings.ContainsAny(name, "{}") {
			stripped := strings.Trim(name, "{}")
			v.addIssue(SeverityWarning, "parameter",
				fmt.Sprintf("Path parameter %q contains braces", name),
				location,
				fmt.Sprintf("Use %q without braces in parameter definition", stripped))
		}
	case "query":
		if strings.Contains(name, ".") && strings.Contains(name, "_") {
			v.addIssue(SeverityInfo, "parameter",
				fmt.Sprintf("Query parameter %q mixes dot and underscore notation", name),
				location,
				"Consider using consistent notation")
		}
	case "header":
		if name[0] < 'A' || name[0] > 'Z' {
			if !strings.HasPrefix(name, "x-") {
				v.addIssue(SeverityInfo, "parameter",
					fmt.Sprintf("Header parameter %q should start with uppercase", name),
					location,
					fmt.Sprintf("Consider using %q", titleCaseHeader(name)))
			}
		}
	}
}

func (v *ConsistencyValidator) checkParameterConflicts(namesByLocation map[string]map[string]bool) {
	pathParams := namesByLocation["path"]
	queryParams := namesByLocation["query"]

	for _, conflict := range parameterConflicts {
		pathMatch := intersectNames(pathParams, conflict.pathVariants)
		queryMatch := intersectNames(queryParams, conflict.queryVariants)

		if len(pathMatch) > 0 && len(queryMatch) > 0 {
			v.addIssue(SeverityWarning, "parameter",
				fmt.Sprintf("Inconsistent parameter naming: path uses %q but query uses %q",
					strings.Join(pathMatch, ", "), strings.Join(queryMatch, ", ")),
				"global",
				"Consider standardizing parameter names across path and query parameters")
		}
	}
}

func titleCaseHeader(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		parts[i] = capitalize(part)
	}
	return strings.Join(parts, "-")
}

func intersectNames(names map[string]bool, variants []string) []string {
	var matched []string
	for _, variant := range variants {
		if names[variant] {
			matched = append(matched, variant)
		}
	}
	sort.Strings(matched)
	return matched
}

func (v *ConsistencyValidator) checkSchemaNaming(doc *document.Object) {
	components, ok := doc.GetObject("components")
	if !ok {
		return
	}
	schemas, ok := components.GetObject("schemas")
	if !ok {
		return
	}

	noSuffixCount := 0
	totalSchemas := 0

	for _, name := range schemas.Keys() {
		if _, ok := schemas.GetObject(name); !ok {
			continue
		}
		totalSchemas++

		hasSuffix := requestSuffixPattern.MatchString(name) ||
			responseSuffixPattern.MatchString(name) ||
			typeSuffixPattern.MatchString(name)
		if !hasSuffix {
			noSuffixCount++
		}

		if strings.Contains(name, "_") && hasUpperAfterFirst(name) &&
			!strings.HasPrefix(name, "ves_io_") && !strings.HasPrefix(name, "schema") {
			v.addIssue(SeverityInfo, "schema",
				fmt.Sprintf("Schema %q mixes snake_case and CamelCase", name),
				"components.schemas."+name,
				"Consider using consistent naming convention")
		}
	}

	// Suffix coverage only matters on large specs.
	if totalSchemas > 100 && noSuffixCount*2 > totalSchemas {
		v.addIssue(SeverityInfo, "schema",
			fmt.Sprintf("%d/%d schemas lack type suffix (Type, Request, Response, etc.)", noSuffixCount, totalSchemas),
			"components.schemas",
			"Consider adding descriptive suffixes for clarity")
	}
}

func hasUpperAfterFirst(s string) bool {
	for _, r := range s[1:] {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func (v *ConsistencyValidator) checkOperationIDs(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	styleOrder := []string{"dot.notation", "snake_case", "camelCase", "other"}
	styleCounts := map[string]int{}

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

			operationID, _ := operation.GetString("operationId")
			if operationID == "" {
				v.addIssue(SeverityWarning, "operationId",
					"Operation missing operationId",
					"paths."+path+"."+method,
					"Add operationId for better SDK generation")
				continue
			}

			styleCounts[operationIDStyle(operationID)]++
		}
	}

	usedStyles := 0
	var summary []string
	for _, style := range styleOrder {
		if styleCounts[style] > 0 {
			usedStyles++
			summary = append(summary, fmt.Sprintf("%s: %d", style, styleCounts[style]))
		}
	}
	if usedStyles > 1 {
		v.addIssue(SeverityInfo, "operationId",
			"Mixed operationId patterns detected: "+strings.Join(summary, ", "),
			"global",
			"Consider standardizing operationId naming pattern")
	}
}

func operationIDStyle(id string) string {
	switch {
	case strings.Contains(id, "."):
		return "dot.notation"
	case strings.Contains(id, "_"):
		return "snake_case"
	case id[0] >= 'a' && id[0] <= 'z' && hasUpperAfterFirst(id):
		return "camelCase"
	default:
		return "other"
	}
}

func (v *ConsistencyValidator) checkDeprecationMarkers(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	deprecatedCount := 0
	totalOperations := 0

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
			totalOperations++
			if deprecated, ok := operation.Get("deprecated"); ok {
				if b, ok := deprecated.(bool); ok && b {
					deprecatedCount++
				}
			}
		}
	}

	if deprecatedCount == 0 && totalOperations > 50 {
		v.addIssue(SeverityInfo, "deprecation",
			fmt.Sprintf("No deprecated operations found among %d operations", totalOperations),
			"global",
			"Consider adding deprecated: true for operations being phased out")
	}
}

func (v *ConsistencyValidator) checkDuplicateOperationIDs(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	var order []string
	locations := map[string][]string{}

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
			operationID, _ := operation.GetString("operationId")
			if operationID == "" {
				continue
			}
			if _, seen := locations[operationID]; !seen {
				order = append(order, operationID)
			}
			locations[operationID] = append(locations[operationID], strings.ToUpper(method)+" "+path)
		}
	}

	for _, id := range order {
		locs := locations[id]
		if len(locs) <= 1 {
			continue
		}
		shown := strings.Join(locs[:min(3, len(locs))], "; ")
		if len(locs) > 3 {
			shown += "..."
		}
		v.addIssue(SeverityError, "operationId",
			fmt.Sprintf("Duplicate operationId %q used in %d operations", id, len(locs)),
			shown,
			"Each operation must have a unique operationId")
	}
}
