// Package enrich implements the document transforms of the enrichment
// pipeline. Each transform is constructed from its config section, owns its
// own compiled patterns and statistics, and is total over the documents it
// is given: malformed subtrees pass through unchanged, never abort a run.
package enrich

import (
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// defaultFormatTypes maps OpenAPI format values to the type they imply.
var defaultFormatTypes = map[string]string{
	// String formats
	"string":    "string",
	"binary":    "string",
	"byte":      "string",
	"date":      "string",
	"date-time": "string",
	"password":  "string",
	"uuid":      "string",
	"email":     "string",
	"uri":       "string",
	"hostname":  "string",
	"ipv4":      "string",
	"ipv6":      "string",
	// Integer formats
	"int32": "integer",
	"int64": "integer",
	// Number formats
	"float":  "number",
	"double": "number",
}

// SchemaFixStats counts repairs applied by a Fix pass.
type SchemaFixStats struct {
	FixesApplied int `json:"fixes_applied"`
}

// SchemaFixer repairs schema nodes that carry a format without a type.
// It runs before every other transform so downstream passes see
// structurally valid schemas.
type SchemaFixer struct {
	enabled     bool
	formatTypes map[string]string
	stats       SchemaFixStats
}

// NewSchemaFixer constructs a fixer from configuration. Custom
// format→type mappings overlay the built-in table.
func NewSchemaFixer(cfg config.SchemaFixConfig) *SchemaFixer {
	formatTypes := make(map[string]string, len(defaultFormatTypes)+len(cfg.FormatTypeMapping))
	for k, v := range defaultFormatTypes {
		formatTypes[k] = v
	}
	for k, v := range cfg.FormatTypeMapping {
		formatTypes[strings.ToLower(k)] = v
	}
	return &SchemaFixer{
		enabled:     cfg.FixFormatWithoutType,
		formatTypes: formatTypes,
	}
}

// Fix returns a copy of the document with missing type fields injected.
// It is total: unrecognized nodes pass through unchanged.
func (f *SchemaFixer) Fix(doc *document.Object) *document.Object {
	f.stats = SchemaFixStats{}
	fixed, _ := f.fixValue(doc).(*document.Object)
	if fixed == nil {
		return doc
	}
	return fixed
}

// Stats returns counters from the last Fix pass.
func (f *SchemaFixer) Stats() SchemaFixStats {
	return f.stats
}

func (f *SchemaFixer) fixValue(v document.Value) document.Value {
	switch tv := v.(type) {
	case *document.Object:
		out := document.NewObject()
		if f.enabled && needsTypeFix(tv) {
			format, _ := tv.GetString("format")
			typeValue, ok := f.formatTypes[strings.ToLower(format)]
			if !ok {
				typeValue = "string"
			}
			out.Set("type", typeValue)
			f.stats.FixesApplied++
		}
		for _, key := range tv.Keys() {
			val, _ := tv.Get(key)
			out.Set(key, f.fixValue(val))
		}
		return out
	case document.Array:
		out := make(document.Array, len(tv))
		for i, item := range tv {
			out[i] = f.fixValue(item)
		}
		return out
	default:
		return v
	}
}

// needsTypeFix reports whether a node has a format but no type, and is
// neither a reference nor a composition.
func needsTypeFix(obj *document.Object) bool {
	if !obj.Has("format") {
		return false
	}
	if obj.Has("type") || obj.Has("$ref") {
		return false
	}
	for _, combiner := range []string{"allOf", "oneOf", "anyOf"} {
		if obj.Has(combiner) {
			return false
		}
	}
	return true
}
