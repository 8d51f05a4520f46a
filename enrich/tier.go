package enrich

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// defaultTierTransformations maps deprecated subscription tier values to
// their current equivalents.
var defaultTierTransformations = map[string]string{
	"BASIC":   "STANDARD",
	"PREMIUM": "ADVANCED",
}

// defaultTierPatterns match the schema names that hold tier enums.
var defaultTierPatterns = []string{
	`.*AddonServiceTierType$`,
	`.*TierType$`,
}

// tierCLIReplacements fix deprecated tier references inside example
// commands. Longer keys come first so compound names rewrite as a unit.
var tierCLIReplacements = []struct {
	old string
	new string
}{
	{"subscription_basic_tier", "subscription_standard_tier"},
	{"subscription_premium_tier", "subscription_advanced_tier"},
	{"basic_tier", "standard_tier"},
	{"premium_tier", "advanced_tier"},
	{"BASIC", "STANDARD"},
	{"PREMIUM", "ADVANCED"},
}

// DeprecatedTierStats counts tier transformation work.
type DeprecatedTierStats struct {
	SchemasProcessed    int `json:"schemas_processed"`
	SchemasTransformed  int `json:"schemas_transformed"`
	ValuesTransformed   int `json:"values_transformed"`
	DescriptionsUpdated int `json:"descriptions_updated"`
	CLIExamplesFixed    int `json:"cli_examples_fixed"`
}

// DeprecatedTierEnricher rewrites deprecated subscription tier enum values
// to their current equivalents, propagating the rename into descriptions
// and CLI example commands.
type DeprecatedTierEnricher struct {
	enabled         bool
	patterns        []*regexp.Regexp
	transformations map[string]string

	stats DeprecatedTierStats
}

// NewDeprecatedTierEnricher constructs an enricher from configuration,
// falling back to the built-in patterns and transformations.
func NewDeprecatedTierEnricher(cfg config.DeprecatedTierConfig) (*DeprecatedTierEnricher, error) {
	patternStrs := cfg.Patterns
	if len(patternStrs) == 0 {
		patternStrs = defaultTierPatterns
	}
	patterns := make([]*regexp.Regexp, 0, len(patternStrs))
	for _, p := range patternStrs {
		// Schema-name patterns anchor at the start of the name.
		compiled, err := regexp.Compile("^(?:" + p + ")")
		if err != nil {
			return nil, fmt.Errorf("compile tier pattern %q: %w", p, err)
		}
		patterns = append(patterns, compiled)
	}

	transformations := cfg.Transformations
	if len(transformations) == 0 {
		transformations = defaultTierTransformations
	}

	return &DeprecatedTierEnricher{
		enabled:         cfg.Enabled,
		patterns:        patterns,
		transformations: transformations,
	}, nil
}

// Enrich rewrites deprecated tier values throughout the document. No-op
// when disabled.
func (e *DeprecatedTierEnricher) Enrich(doc *document.Object) *document.Object {
	e.stats = DeprecatedTierStats{}
	if !e.enabled {
		return doc
	}

	components, ok := doc.GetObject("components")
	if !ok {
		return doc
	}
	schemas, ok := components.GetObject("schemas")
	if !ok {
		return doc
	}

	for _, name := range schemas.Keys() {
		schema, ok := schemas.GetObject(name)
		if !ok {
			continue
		}
		e.stats.SchemasProcessed++

		if e.matchesTierPattern(name) {
			e.cleanTierSchema(schema)
		}

		// CLI examples can reference tiers from any schema.
		e.fixCLIExamples(schema)
	}

	return doc
}

// Stats returns counters from the last Enrich pass.
func (e *DeprecatedTierEnricher) Stats() DeprecatedTierStats {
	return e.stats
}

func (e *DeprecatedTierEnricher) matchesTierPattern(schemaName string) bool {
	for _, pattern := range e.patterns {
		if pattern.MatchString(schemaName) {
			return true
		}
	}
	return false
}

// cleanTierSchema rewrites the enum list, deduplicating so a deprecated
// value and its target never coexist, then updates the description.
func (e *DeprecatedTierEnricher) cleanTierSchema(schema *document.Object) {
	enumValues, ok := schema.GetArray("enum")
	if !ok || len(enumValues) == 0 {
		return
	}

	hasDeprecated := false
	for _, v := range enumValues {
		if s, ok := v.(string); ok {
			if _, deprecated := e.transformations[s]; deprecated {
				hasDeprecated = true
				break
			}
		}
	}
	if !hasDeprecated {
		return
	}

	e.stats.SchemasTransformed++

	var transformed document.Array
	var seen document.Array
	contains := func(v document.Value) bool {
		for _, s := range seen {
			if document.Equal(s, v) {
				return true
			}
		}
		return false
	}

	for _, v := range enumValues {
		value := v
		if s, ok := v.(string); ok {
			if current, deprecated := e.transformations[s]; deprecated {
				e.stats.ValuesTransformed++
				value = current
			}
		}
		if !contains(value) {
			transformed = append(transformed, value)
			seen = append(seen, value)
		}
	}

	schema.Set("enum", transformed)
	e.updateDescription(schema)
}

// updateDescription rewrites tier mentions in the schema description:
// list-style mentions case-insensitively, bare mentions on word
// boundaries, followed by whitespace cleanup.
func (e *DeprecatedTierEnricher) updateDescription(schema *document.Object) {
	original, ok := schema.GetString("description")
	if !ok || original == "" {
		return
	}

	updated := original
	for _, deprecated := range sortedKeys(e.transformations) {
		current := e.transformations[deprecated]

		listPattern := regexp.MustCompile(`(?i)(-\s*)` + regexp.QuoteMeta(deprecated) + `(:)`)
		updated = listPattern.ReplaceAllString(updated, "${1}"+current+"${2}")

		barePattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(deprecated) + `\b`)
		updated = barePattern.ReplaceAllString(updated, current)
	}

	updated = regexp.MustCompile(`\s+`).ReplaceAllString(updated, " ")
	updated = regexp.MustCompile(`,\s*\.`).ReplaceAllString(updated, ".")
	updated = strings.TrimSpace(updated)

	if updated != original {
		schema.Set("description", updated)
		e.stats.DescriptionsUpdated++
	}
}

// fixCLIExamples replaces deprecated tier tokens in example commands.
func (e *DeprecatedTierEnricher) fixCLIExamples(schema *document.Object) {
	minConfig, ok := schema.GetObject("x-ves-minimum-configuration")
	if !ok {
		return
	}
	exampleCmd, ok := minConfig.GetString("example_curl")
	if !ok || exampleCmd == "" {
		return
	}

	updated := exampleCmd
	for _, replacement := range tierCLIReplacements {
		if strings.Contains(updated, replacement.old) {
			updated = strings.ReplaceAll(updated, replacement.old, replacement.new)
			e.stats.CLIExamplesFixed++
		}
	}

	if updated != exampleCmd {
		minConfig.Set("example_curl", updated)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
