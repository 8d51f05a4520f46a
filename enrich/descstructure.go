package enrich

import (
	"regexp"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// Example extraction accepts three syntaxes: a backtick-quoted string, a
// backtick bareword, and an embedded x-example: line.
var examplePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)\\n*Example:\\s*`\\s*\"([^\"]+)\"\\s*`\\n*"),
	regexp.MustCompile("(?i)\\n*Example:\\s*`([^`]+)`\\n*"),
	regexp.MustCompile(`(?i)\n*x-example:\s*"([^"]+)"\n*`),
}

// validationPattern matches a Validation Rules: header followed by
// indented key: value lines. It depends on the original indentation, so
// extraction must run before whitespace normalization.
var validationPattern = regexp.MustCompile(`(?i)\n*Validation Rules:\n((?:\s+[^\n]+\n?)+)`)

var (
	bulletLinePattern     = regexp.MustCompile(`^\s+[*\-]`)
	excessNewlinesPattern = regexp.MustCompile(`\n{3,}`)
	doubleSpacePattern    = regexp.MustCompile(`\.  +`)
)

// DescriptionStructureStats counts extraction work.
type DescriptionStructureStats struct {
	FieldsProcessed          int `json:"fields_processed"`
	ExamplesExtracted        int `json:"examples_extracted"`
	ValidationRulesExtracted int `json:"validation_rules_extracted"`
}

// DescriptionStructureTransformer extracts embedded Example: and
// Validation Rules: sections out of description prose into structured
// extension fields, and normalizes description whitespace.
type DescriptionStructureTransformer struct {
	normalizeLeadingSpaces    bool
	preserveBulletIndentation bool
	extractExamples           bool
	removeExtractedExamples   bool
	extractValidationRules    bool
	removeExtractedValidation bool
	targetFields              map[string]bool
	preserveFields            map[string]bool

	stats DescriptionStructureStats
}

// NewDescriptionStructureTransformer constructs a transformer from
// configuration.
func NewDescriptionStructureTransformer(cfg config.DescriptionStructureConfig) *DescriptionStructureTransformer {
	targets := cfg.TargetFields
	if len(targets) == 0 {
		targets = []string{"description"}
	}
	targetSet := make(map[string]bool, len(targets))
	for _, f := range targets {
		targetSet[f] = true
	}
	preserveSet := make(map[string]bool, len(cfg.PreserveFields))
	for _, f := range cfg.PreserveFields {
		preserveSet[f] = true
	}
	return &DescriptionStructureTransformer{
		normalizeLeadingSpaces:    cfg.NormalizeLeadingSpaces,
		preserveBulletIndentation: cfg.PreserveBulletIndentation,
		extractExamples:           cfg.ExtractExamples,
		removeExtractedExamples:   cfg.RemoveExtractedExamples,
		extractValidationRules:    cfg.ExtractValidationRules,
		removeExtractedValidation: cfg.RemoveExtractedValidation,
		targetFields:              targetSet,
		preserveFields:            preserveSet,
	}
}

// Transform returns a copy of the document with structured metadata
// extracted out of target text fields. Only description fields get
// extraction; other target fields receive whitespace normalization only.
func (t *DescriptionStructureTransformer) Transform(doc *document.Object) *document.Object {
	t.stats = DescriptionStructureStats{}
	transformed, _ := t.transformValue(doc).(*document.Object)
	if transformed == nil {
		return doc
	}
	return transformed
}

// Stats returns counters from the last Transform pass.
func (t *DescriptionStructureTransformer) Stats() DescriptionStructureStats {
	return t.stats
}

func (t *DescriptionStructureTransformer) transformValue(v document.Value) document.Value {
	switch tv := v.(type) {
	case *document.Object:
		return t.transformObject(tv)
	case document.Array:
		out := make(document.Array, len(tv))
		for i, item := range tv {
			out[i] = t.transformValue(item)
		}
		return out
	default:
		return v
	}
}

func (t *DescriptionStructureTransformer) transformObject(obj *document.Object) *document.Object {
	result := document.NewObject()
	var extractedExample string
	var extractedValidation *document.Object

	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)

		if t.preserveFields[key] {
			result.Set(key, value)
			continue
		}

		strValue, isString := value.(string)
		if t.targetFields[key] && isString {
			t.stats.FieldsProcessed++
			if key == "description" {
				existingExample, _ := obj.GetString("x-ves-example")
				cleaned, example, validation := t.transformDescription(strValue, existingExample)
				result.Set(key, cleaned)
				extractedExample = example
				extractedValidation = validation
			} else if t.normalizeLeadingSpaces {
				result.Set(key, cleanupWhitespace(t.normalizeLeadingWhitespace(strValue)))
			} else {
				result.Set(key, value)
			}
			continue
		}

		result.Set(key, t.transformValue(value))
	}

	if extractedExample != "" && !result.Has("x-ves-example") {
		result.Set("x-ves-example", extractedExample)
		t.stats.ExamplesExtracted++
	}
	if extractedValidation != nil {
		result.Set("x-validation-rules", extractedValidation)
		t.stats.ValidationRulesExtracted++
	}

	return result
}

// transformDescription applies extraction and normalization in a fixed
// order: validation rules first (their pattern depends on original
// indentation), then examples, then whitespace normalization and cleanup.
func (t *DescriptionStructureTransformer) transformDescription(description, existingExample string) (string, string, *document.Object) {
	result := description
	var extractedExample string
	var extractedValidation *document.Object

	if t.extractValidationRules {
		result, extractedValidation = t.extractValidationSection(result)
	}

	if t.extractExamples {
		result, extractedExample = t.extractExampleSection(result, existingExample)
	}

	if t.normalizeLeadingSpaces {
		result = t.normalizeLeadingWhitespace(result)
	}

	result = cleanupWhitespace(result)

	return result, extractedExample, extractedValidation
}

// normalizeLeadingWhitespace trims regular lines while re-quantizing
// bullet indentation to two-space units. Blank lines are preserved as
// paragraph breaks.
func (t *DescriptionStructureTransformer) normalizeLeadingWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	normalized := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			normalized = append(normalized, "")
		case t.preserveBulletIndentation && bulletLinePattern.MatchString(line):
			stripped := strings.TrimLeft(line, " \t")
			indentDepth := (len(line) - len(stripped)) / 2
			normalized = append(normalized, strings.Repeat("  ", indentDepth)+strings.TrimRight(stripped, " \t"))
		default:
			normalized = append(normalized, strings.TrimSpace(line))
		}
	}

	return strings.Join(normalized, "\n")
}

// extractExampleSection pulls the first Example: section into the returned
// example value, keeping an existing example when one is already set.
func (t *DescriptionStructureTransformer) extractExampleSection(description, existingExample string) (string, string) {
	result := description
	extracted := existingExample

	for _, pattern := range examplePatterns {
		match := pattern.FindStringSubmatch(result)
		if match == nil {
			continue
		}
		if extracted == "" {
			extracted = strings.TrimSpace(match[1])
		}
		if t.removeExtractedExamples {
			result = pattern.ReplaceAllString(result, "\n")
		}
	}

	return strings.TrimSpace(result), extracted
}

// extractValidationSection parses an indented Validation Rules: block into
// an ordered key/value mapping.
func (t *DescriptionStructureTransformer) extractValidationSection(description string) (string, *document.Object) {
	match := validationPattern.FindStringSubmatch(description)
	if match == nil {
		return description, nil
	}

	rules := document.NewObject()
	for _, line := range strings.Split(strings.TrimSpace(match[1]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key != "" {
			rules.Set(key, strings.TrimSpace(value))
		}
	}

	if rules.Len() == 0 {
		return strings.TrimSpace(description), nil
	}

	result := description
	if t.removeExtractedValidation {
		result = validationPattern.ReplaceAllString(description, "\n")
	}
	return strings.TrimSpace(result), rules
}

// cleanupWhitespace collapses excessive blank lines, trims outer
// whitespace, and normalizes double spacing after sentences.
func cleanupWhitespace(text string) string {
	result := excessNewlinesPattern.ReplaceAllString(text, "\n\n")
	result = strings.TrimSpace(result)
	return doubleSpacePattern.ReplaceAllString(result, ". ")
}
