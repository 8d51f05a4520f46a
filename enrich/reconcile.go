package enrich

import (
	"strconv"
	"strings"
	"time"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// discoveredFieldTable maps x-discovered-* extensions to the standard
// OpenAPI fields they reconcile into. Entries are processed in table order.
// The discovery tooling emitted both enum spellings over time, so both map
// to the same standard field.
var discoveredFieldTable = []struct {
	discovered string
	standard   string
}{
	{"x-discovered-max-length", "maxLength"},
	{"x-discovered-min-length", "minLength"},
	{"x-discovered-pattern", "pattern"},
	{"x-discovered-format", "format"},
	{"x-discovered-enum-values", "enum"},
	{"x-discovered-enum", "enum"},
	{"x-discovered-minimum", "minimum"},
	{"x-discovered-maximum", "maximum"},
	{"x-discovered-type", "type"},
}

// ReconciliationStats counts the outcome of one reconciliation pass.
type ReconciliationStats struct {
	// Reconciled counts discovered values promoted into standard fields.
	Reconciled int `json:"reconciled"`
	// Skipped counts nodes rejected by the sample-size or confidence gate.
	Skipped int `json:"skipped"`
	// Preserved counts x-discovered-* keys with no OpenAPI equivalent.
	Preserved int `json:"preserved"`
	// Fields breaks reconciled counts down by standard field name.
	Fields map[string]int `json:"fields"`
}

// ReconciliationReport is the per-document reconciliation summary.
type ReconciliationReport struct {
	Timestamp           time.Time           `json:"timestamp"`
	Mode                string              `json:"mode"`
	ConfidenceThreshold float64             `json:"confidence_threshold"`
	MinSampleSize       int                 `json:"min_sample_size"`
	Statistics          ReconciliationStats `json:"statistics"`
}

// ConstraintReconciler merges constraints observed from the live API
// (x-discovered-* extensions) into standard OpenAPI schema fields.
// Discovery data is treated as the source of truth, gated by sample-size
// and confidence thresholds.
type ConstraintReconciler struct {
	mode                string
	confidenceThreshold float64
	minSampleSize       int
	fieldRules          map[string]config.FieldRule
	auditEnabled        bool

	stats ReconciliationStats
	now   func() time.Time
}

// NewConstraintReconciler constructs a reconciler from configuration.
func NewConstraintReconciler(cfg config.ReconciliationConfig) *ConstraintReconciler {
	return &ConstraintReconciler{
		mode:                cfg.Mode,
		confidenceThreshold: cfg.ConfidenceThreshold,
		minSampleSize:       cfg.MinSampleSize,
		fieldRules:          cfg.FieldRules,
		auditEnabled:        cfg.AuditEnabled,
		now:                 time.Now,
	}
}

// Reconcile promotes discovered constraints in the document and returns it
// with a per-document report. Component schemas and inline request/response
// schemas are both covered.
func (r *ConstraintReconciler) Reconcile(doc *document.Object) (*document.Object, *ReconciliationReport) {
	r.stats = ReconciliationStats{Fields: make(map[string]int)}

	if components, ok := doc.GetObject("components"); ok {
		if schemas, ok := components.GetObject("schemas"); ok {
			for _, name := range schemas.Keys() {
				if schema, ok := schemas.GetObject(name); ok {
					r.reconcileSchema(schema)
				}
			}
		}
	}

	if paths, ok := doc.GetObject("paths"); ok {
		r.reconcilePaths(paths)
	}

	return doc, &ReconciliationReport{
		Timestamp:           r.now().UTC(),
		Mode:                r.mode,
		ConfidenceThreshold: r.confidenceThreshold,
		MinSampleSize:       r.minSampleSize,
		Statistics:          r.Stats(),
	}
}

// Stats returns a copy of the counters from the last Reconcile pass.
func (r *ConstraintReconciler) Stats() ReconciliationStats {
	out := r.stats
	out.Fields = make(map[string]int, len(r.stats.Fields))
	for k, v := range r.stats.Fields {
		out.Fields[k] = v
	}
	return out
}

// reconcileSchema walks a schema, reconciling each property and recursing
// through nested objects, array items, and composition branches.
func (r *ConstraintReconciler) reconcileSchema(schema *document.Object) {
	if properties, ok := schema.GetObject("properties"); ok {
		for _, name := range properties.Keys() {
			prop, ok := properties.GetObject(name)
			if !ok {
				continue
			}
			r.reconcileProperty(prop)
			if t, _ := prop.GetString("type"); t == "object" {
				r.reconcileSchema(prop)
			}
		}
	}

	if t, _ := schema.GetString("type"); t == "array" {
		if items, ok := schema.GetObject("items"); ok {
			r.reconcileSchema(items)
		}
	}

	for _, combiner := range []string{"allOf", "oneOf", "anyOf"} {
		if branches, ok := schema.GetArray(combiner); ok {
			for _, branch := range branches {
				if sub, ok := branch.(*document.Object); ok {
					r.reconcileSchema(sub)
				}
			}
		}
	}
}

// reconcileProperty applies the field table to a single schema node.
// The gate applies per node: a rejected node keeps all its discovered
// extensions untouched.
func (r *ConstraintReconciler) reconcileProperty(prop *document.Object) {
	sampleSize := int64(0)
	if v, ok := prop.Get("x-discovered-sample-size"); ok {
		if n, ok := document.Int(v); ok {
			sampleSize = n
		}
	}
	confidence := 1.0
	if v, ok := prop.Get("x-discovered-confidence"); ok {
		if f, ok := document.Float(v); ok {
			confidence = f
		}
	}

	if sampleSize > 0 && sampleSize < int64(r.minSampleSize) {
		r.stats.Skipped++
		return
	}
	if confidence < r.confidenceThreshold {
		r.stats.Skipped++
		return
	}

	reconciledAny := false
	var toRemove []string

	for _, entry := range discoveredFieldTable {
		discoveredValue, ok := prop.Get(entry.discovered)
		if !ok {
			continue
		}
		publishedValue, hasPublished := prop.Get(entry.standard)

		if r.shouldReconcile(entry.standard, publishedValue, hasPublished, discoveredValue) {
			if r.auditEnabled && hasPublished {
				prop.Set("x-original-"+entry.standard, publishedValue)
			}
			prop.Set(entry.standard, discoveredValue)
			reconciledAny = true
			r.stats.Reconciled++
			r.stats.Fields[entry.standard]++
		}

		// Mapped fields are consumed whether or not they triggered a change.
		toRemove = append(toRemove, entry.discovered)
	}

	for _, key := range toRemove {
		prop.Delete(key)
	}

	for _, key := range prop.Keys() {
		if strings.HasPrefix(key, "x-discovered-") && !isMappedDiscoveredField(key) {
			r.stats.Preserved++
		}
	}

	if reconciledAny && r.auditEnabled {
		prop.Set("x-reconciled-from-discovery", true)
		prop.Set("x-reconciled-at", r.now().UTC().Format(time.RFC3339))
		if sampleSize > 0 {
			prop.Set("x-reconciled-sample-size", document.Number(strconv.FormatInt(sampleSize, 10)))
		}
	}
}

func isMappedDiscoveredField(key string) bool {
	for _, entry := range discoveredFieldTable {
		if entry.discovered == key {
			return true
		}
	}
	return false
}

// shouldReconcile decides whether the discovered value replaces the
// published one, per the field's mode.
func (r *ConstraintReconciler) shouldReconcile(field string, published document.Value, hasPublished bool, discovered document.Value) bool {
	mode := r.mode
	if rule, ok := r.fieldRules[field]; ok && rule.Mode != "" {
		mode = rule.Mode
	}

	switch mode {
	case config.ModeAddMissing:
		return !hasPublished
	case config.ModeTighten:
		// An absent published value is treated as reconcilable: discovery
		// fills the gap.
		return !hasPublished || isTighter(field, published, discovered)
	default:
		return mode == config.ModeReplace
	}
}

// isTighter reports whether the discovered constraint is strictly stricter
// than the published one.
func isTighter(field string, published, discovered document.Value) bool {
	switch field {
	case "maxLength":
		p, pok := document.Int(published)
		d, dok := document.Int(discovered)
		return pok && dok && d < p
	case "minLength":
		p, pok := document.Int(published)
		d, dok := document.Int(discovered)
		return pok && dok && d > p
	case "maximum":
		p, pok := document.Float(published)
		d, dok := document.Float(discovered)
		return pok && dok && d < p
	case "minimum":
		p, pok := document.Float(published)
		d, dok := document.Float(discovered)
		return pok && dok && d > p
	case "enum":
		p, pok := published.(document.Array)
		d, dok := discovered.(document.Array)
		if !pok || !dok {
			return false
		}
		// An empty discovered enum would invalidate every published
		// value; it never counts as tighter.
		return len(d) > 0 && len(d) < len(p) && isEnumSubset(d, p)
	}
	return false
}

// isEnumSubset reports whether every element of sub occurs in super.
func isEnumSubset(sub, super document.Array) bool {
	for _, candidate := range sub {
		found := false
		for _, existing := range super {
			if document.Equal(candidate, existing) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// reconcilePaths covers inline schemas under request bodies and responses.
func (r *ConstraintReconciler) reconcilePaths(paths *document.Object) {
	for _, path := range paths.Keys() {
		pathItem, ok := paths.GetObject(path)
		if !ok {
			continue
		}
		for _, method := range pathItem.Keys() {
			operation, ok := pathItem.GetObject(method)
			if !ok {
				continue
			}

			if requestBody, ok := operation.GetObject("requestBody"); ok {
				r.reconcileContentSchemas(requestBody)
			}

			if responses, ok := operation.GetObject("responses"); ok {
				for _, status := range responses.Keys() {
					if response, ok := responses.GetObject(status); ok {
						r.reconcileContentSchemas(response)
					}
				}
			}
		}
	}
}

func (r *ConstraintReconciler) reconcileContentSchemas(holder *document.Object) {
	content, ok := holder.GetObject("content")
	if !ok {
		return
	}
	for _, mediaType := range content.Keys() {
		media, ok := content.GetObject(mediaType)
		if !ok {
			continue
		}
		if schema, ok := media.GetObject("schema"); ok {
			r.reconcileSchema(schema)
		}
	}
}
