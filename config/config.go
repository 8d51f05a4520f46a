// Package config provides configuration loading for the enrichment pipeline.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the complete pipeline configuration. Every transform reads its
// own section; missing sections fall back to built-in defaults.
type Config struct {
	Paths                 PathsConfig                 `yaml:"paths"`
	Processing            ProcessingConfig            `yaml:"processing"`
	SchemaFixes           SchemaFixConfig             `yaml:"schema_fixes"`
	Reconciliation        ReconciliationConfig        `yaml:"reconciliation"`
	DeprecatedTiers       DeprecatedTierConfig        `yaml:"deprecated_tiers"`
	DescriptionStructure  DescriptionStructureConfig  `yaml:"description_structure"`
	DescriptionValidation DescriptionValidationConfig `yaml:"description_validation"`
	CLIMetadata           CLIMetadataConfig           `yaml:"cli_metadata"`
	Tags                  TagsConfig                  `yaml:"tags"`
	Consistency           ConsistencyConfig           `yaml:"consistency_validation"`
	Domains               DomainsConfig               `yaml:"domains"`
}

// PathsConfig locates the spec corpus directories.
type PathsConfig struct {
	// Original is the directory of downloaded specification files.
	Original string `yaml:"original"`
	// Enriched is the directory enriched specifications are written to.
	Enriched string `yaml:"enriched"`
	// Reports is the directory pipeline reports are written to.
	Reports string `yaml:"reports"`
}

// ProcessingConfig controls corpus-level execution.
type ProcessingConfig struct {
	// ParallelWorkers bounds file-level concurrency.
	ParallelWorkers int `yaml:"parallel_workers"`
	// ContinueOnError keeps the run going when a single file fails.
	ContinueOnError bool `yaml:"continue_on_error"`
	// Include are glob patterns selecting corpus files.
	Include []string `yaml:"include"`
}

// SchemaFixConfig configures SchemaFixer.
type SchemaFixConfig struct {
	FixFormatWithoutType bool `yaml:"fix_format_without_type"`
	// FormatTypeMapping overrides entries of the built-in format→type table.
	FormatTypeMapping map[string]string `yaml:"format_type_mapping"`
}

// Reconciliation modes.
const (
	ModeReplace    = "replace"
	ModeAddMissing = "add_missing"
	ModeTighten    = "tighten"
)

// ReconciliationConfig configures ConstraintReconciler.
type ReconciliationConfig struct {
	// Mode is the default reconciliation mode (replace, add_missing, tighten).
	Mode                string  `yaml:"mode"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MinSampleSize       int     `yaml:"min_sample_size"`
	// FieldRules overrides the mode per standard OpenAPI field name.
	FieldRules map[string]FieldRule `yaml:"field_rules"`
	// AuditEnabled records x-original-* and x-reconciled-* markers.
	AuditEnabled bool `yaml:"audit_enabled"`
}

// FieldRule is a per-field reconciliation override.
type FieldRule struct {
	Mode string `yaml:"mode"`
}

// DeprecatedTierConfig configures DeprecatedTierEnricher.
type DeprecatedTierConfig struct {
	Enabled bool `yaml:"enabled"`
	// Patterns match schema names holding tier enums.
	Patterns []string `yaml:"patterns"`
	// Transformations maps deprecated tier values to current ones.
	Transformations map[string]string `yaml:"transformations"`
}

// DescriptionStructureConfig configures DescriptionStructureTransformer.
type DescriptionStructureConfig struct {
	NormalizeLeadingSpaces    bool `yaml:"normalize_leading_spaces"`
	PreserveBulletIndentation bool `yaml:"preserve_bullet_indentation"`
	ExtractExamples           bool `yaml:"extract_examples"`
	RemoveExtractedExamples   bool `yaml:"remove_extracted_examples"`
	ExtractValidationRules    bool `yaml:"extract_validation_rules"`
	RemoveExtractedValidation bool `yaml:"remove_extracted_validation"`
	// TargetFields are the text fields the transformer visits.
	TargetFields []string `yaml:"target_fields"`
	// PreserveFields are copied through untouched.
	PreserveFields []string `yaml:"preserve_fields"`
}

// DescriptionValidationConfig configures DescriptionValidator.
type DescriptionValidationConfig struct {
	AutoGenerateOperationDescriptions bool   `yaml:"auto_generate_operation_descriptions"`
	AutoGenerateSchemaDescriptions    bool   `yaml:"auto_generate_schema_descriptions"`
	DescriptionPrefix                 string `yaml:"description_prefix"`
}

// CLIMetadataConfig configures CLIMetadataEnricher.
type CLIMetadataConfig struct {
	// CompletionPatterns are matched in order; first match wins.
	CompletionPatterns []CompletionPattern `yaml:"completion_patterns"`
}

// CompletionPattern maps a property-name pattern to CLI completion metadata.
type CompletionPattern struct {
	Pattern        string `yaml:"pattern"`
	CompletionType string `yaml:"completion_type"`
	Help           string `yaml:"help"`
	Separator      string `yaml:"separator"`
}

// TagsConfig configures TagGenerator.
type TagsConfig struct {
	GenerateMetadata   bool `yaml:"generate_metadata"`
	AssignToOperations bool `yaml:"assign_to_operations"`
	// Definitions replaces the built-in ordered tag table when non-empty.
	Definitions []TagDefinition `yaml:"definitions"`
}

// TagDefinition is one entry of the ordered tag table.
type TagDefinition struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns"`
}

// ConsistencyConfig configures ConsistencyValidator.
type ConsistencyConfig struct {
	ValidateParameters   bool   `yaml:"validate_parameters"`
	ValidateSchemas      bool   `yaml:"validate_schemas"`
	ValidateOperationIDs bool   `yaml:"validate_operation_ids"`
	SeverityThreshold    string `yaml:"severity_threshold"`
}

// DomainsConfig configures the file-level domain categorizer.
type DomainsConfig struct {
	// Fallback is returned when no pattern matches.
	Fallback string `yaml:"fallback"`
	// Definitions replaces the built-in ordered domain table when non-empty.
	Definitions []DomainDefinition `yaml:"definitions"`
}

// DomainDefinition is one entry of the ordered domain table.
type DomainDefinition struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	// Exclude suppresses a match when any of its patterns also match.
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns a Config with built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Original: "specs/original",
			Enriched: "specs/enriched",
			Reports:  "reports",
		},
		Processing: ProcessingConfig{
			ParallelWorkers: 4,
			ContinueOnError: true,
			Include:         []string{"*.json"},
		},
		SchemaFixes: SchemaFixConfig{
			FixFormatWithoutType: true,
		},
		Reconciliation: ReconciliationConfig{
			Mode:                ModeReplace,
			ConfidenceThreshold: 0.8,
			MinSampleSize:       5,
			AuditEnabled:        true,
		},
		DeprecatedTiers: DeprecatedTierConfig{
			Enabled: true,
		},
		DescriptionStructure: DescriptionStructureConfig{
			NormalizeLeadingSpaces:    true,
			PreserveBulletIndentation: true,
			ExtractExamples:           true,
			RemoveExtractedExamples:   true,
			ExtractValidationRules:    true,
			RemoveExtractedValidation: true,
			TargetFields:              []string{"description"},
		},
		DescriptionValidation: DescriptionValidationConfig{
			AutoGenerateOperationDescriptions: true,
			AutoGenerateSchemaDescriptions:    false,
		},
		Tags: TagsConfig{
			GenerateMetadata:   true,
			AssignToOperations: true,
		},
		Consistency: ConsistencyConfig{
			ValidateParameters:   true,
			ValidateSchemas:      true,
			ValidateOperationIDs: true,
			SeverityThreshold:    "warning",
		},
		Domains: DomainsConfig{
			Fallback: "other",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Reconciliation.Mode {
	case ModeReplace, ModeAddMissing, ModeTighten:
	default:
		return fmt.Errorf("reconciliation.mode must be one of replace, add_missing, tighten; got %q", c.Reconciliation.Mode)
	}
	for field, rule := range c.Reconciliation.FieldRules {
		switch rule.Mode {
		case ModeReplace, ModeAddMissing, ModeTighten:
		default:
			return fmt.Errorf("reconciliation.field_rules.%s.mode is invalid: %q", field, rule.Mode)
		}
	}
	if c.Reconciliation.ConfidenceThreshold < 0 || c.Reconciliation.ConfidenceThreshold > 1 {
		return fmt.Errorf("reconciliation.confidence_threshold must be between 0 and 1")
	}
	if c.Processing.ParallelWorkers < 1 {
		return fmt.Errorf("processing.parallel_workers must be at least 1")
	}
	switch c.Consistency.SeverityThreshold {
	case "info", "warning", "error":
	default:
		return fmt.Errorf("consistency_validation.severity_threshold must be info, warning or error; got %q", c.Consistency.SeverityThreshold)
	}
	for _, def := range c.Domains.Definitions {
		patterns := append(append([]string{}, def.Patterns...), def.Exclude...)
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("domains.%s: invalid pattern %q: %w", def.Name, p, err)
			}
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, overlaying the
// built-in defaults. Unknown keys are ignored.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}
