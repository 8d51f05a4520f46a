package enrich

import (
	"fmt"
	"regexp"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// defaultCompletionPatterns cover the high-confidence property names only.
var defaultCompletionPatterns = []config.CompletionPattern{
	{Pattern: `\bnamespace$`, CompletionType: "namespace-list", Help: "Kubernetes namespace"},
	{Pattern: `\blabels$`, CompletionType: "key-value-pairs", Help: "Metadata labels", Separator: "="},
	{Pattern: `\btags$`, CompletionType: "key-value-pairs", Help: "Resource tags", Separator: "="},
	{Pattern: `\b(file|path)$`, CompletionType: "file-path", Help: "File path reference"},
}

// CLIEnrichmentStats counts CLI metadata work.
type CLIEnrichmentStats struct {
	HelpAdded           int `json:"help_added"`
	ExamplesAdded       int `json:"examples_added"`
	CompletionsAdded    int `json:"completions_added"`
	PropertiesProcessed int `json:"properties_processed"`
	SchemasProcessed    int `json:"schemas_processed"`
}

type compiledCompletionPattern struct {
	pattern *regexp.Regexp
	rule    config.CompletionPattern
}

// CLIMetadataEnricher adds x-ves-cli-* extensions to schema properties for
// shell completion and help text. Existing CLI metadata is never
// overwritten.
type CLIMetadataEnricher struct {
	patterns []compiledCompletionPattern
	stats    CLIEnrichmentStats
}

// NewCLIMetadataEnricher constructs an enricher from configuration,
// falling back to the built-in completion patterns.
func NewCLIMetadataEnricher(cfg config.CLIMetadataConfig) (*CLIMetadataEnricher, error) {
	rules := cfg.CompletionPatterns
	if len(rules) == 0 {
		rules = defaultCompletionPatterns
	}

	patterns := make([]compiledCompletionPattern, 0, len(rules))
	for _, rule := range rules {
		if rule.Pattern == "" {
			continue
		}
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile completion pattern %q: %w", rule.Pattern, err)
		}
		patterns = append(patterns, compiledCompletionPattern{pattern: compiled, rule: rule})
	}

	return &CLIMetadataEnricher{patterns: patterns}, nil
}

// Enrich adds CLI metadata to every property in the document, including
// nested object properties.
func (e *CLIMetadataEnricher) Enrich(doc *document.Object) *document.Object {
	e.stats = CLIEnrichmentStats{}
	e.enrichValue(doc)
	return doc
}

// Stats returns counters from the last Enrich pass.
func (e *CLIMetadataEnricher) Stats() CLIEnrichmentStats {
	return e.stats
}

func (e *CLIMetadataEnricher) enrichValue(v document.Value) {
	switch tv := v.(type) {
	case *document.Object:
		for _, key := range tv.Keys() {
			value, _ := tv.Get(key)

			if key == "properties" {
				if properties, ok := value.(*document.Object); ok {
					e.enrichProperties(properties)
					continue
				}
			}
			if key == "schemas" {
				if schemas, ok := value.(*document.Object); ok {
					for _, name := range schemas.Keys() {
						if schema, ok := schemas.GetObject(name); ok {
							e.stats.SchemasProcessed++
							e.enrichValue(schema)
						}
					}
					continue
				}
			}

			e.enrichValue(value)
		}
	case document.Array:
		for _, item := range tv {
			e.enrichValue(item)
		}
	}
}

func (e *CLIMetadataEnricher) enrichProperties(properties *document.Object) {
	for _, name := range properties.Keys() {
		property, ok := properties.GetObject(name)
		if !ok {
			continue
		}
		e.stats.PropertiesProcessed++
		e.enrichProperty(property, name)
		e.enrichValue(property)
	}
}

// enrichProperty adds help, example, and completion extensions. The three
// are independent: a property can gain any subset.
func (e *CLIMetadataEnricher) enrichProperty(property *document.Object, name string) {
	if property.Has("x-ves-cli-help") || property.Has("x-ves-cli-completion") {
		return
	}

	if help := e.helpFor(name); help != "" {
		property.Set("x-ves-cli-help", help)
		e.stats.HelpAdded++
	}

	if example, ok := e.exampleFor(name, property); ok {
		property.Set("x-ves-cli-example", example)
		e.stats.ExamplesAdded++
	}

	if completion := e.completionFor(name); completion != "" {
		property.Set("x-ves-cli-completion", completion)
		e.stats.CompletionsAdded++
	}
}

func (e *CLIMetadataEnricher) helpFor(name string) string {
	for _, p := range e.patterns {
		if p.pattern.MatchString(name) {
			return p.rule.Help
		}
	}
	return ""
}

// exampleFor prefers the first enum value, then falls back to a synthetic
// example based on the completion type.
func (e *CLIMetadataEnricher) exampleFor(name string, property *document.Object) (document.Value, bool) {
	if enum, ok := property.GetArray("enum"); ok && len(enum) > 0 {
		return enum[0], true
	}

	for _, p := range e.patterns {
		if !p.pattern.MatchString(name) {
			continue
		}
		switch p.rule.CompletionType {
		case "key-value-pairs":
			separator := p.rule.Separator
			if separator == "" {
				separator = "="
			}
			return "key" + separator + "value", true
		case "namespace-list":
			return "default", true
		case "file-path":
			return "./example.yaml", true
		}
	}

	return nil, false
}

func (e *CLIMetadataEnricher) completionFor(name string) string {
	for _, p := range e.patterns {
		if p.pattern.MatchString(name) {
			return p.rule.CompletionType
		}
	}
	return ""
}
