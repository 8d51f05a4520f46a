// Package pipeline chains the enrichment transforms over single documents
// and whole corpus directories.
package pipeline

import (
	"fmt"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/enrich"
)

// DocumentResult collects per-transform statistics for one document.
type DocumentResult struct {
	SchemaFixes          enrich.SchemaFixStats            `json:"schema_fixes"`
	Reconciliation       *enrich.ReconciliationReport     `json:"reconciliation"`
	DeprecatedTiers      enrich.DeprecatedTierStats       `json:"deprecated_tiers"`
	DescriptionStructure enrich.DescriptionStructureStats `json:"description_structure"`
	Descriptions         enrich.DescriptionValidatorStats `json:"descriptions"`
	CLIMetadata          enrich.CLIEnrichmentStats        `json:"cli_metadata"`
	Tags                 enrich.TagGeneratorStats         `json:"tags"`
}

// Pipeline applies the enrichment transforms to a document in a fixed
// order. The schema fixer runs first so every later transform sees
// structurally valid schemas; tagging runs last over the final shape.
type Pipeline struct {
	fixer        *enrich.SchemaFixer
	reconciler   *enrich.ConstraintReconciler
	tiers        *enrich.DeprecatedTierEnricher
	structure    *enrich.DescriptionStructureTransformer
	descriptions *enrich.DescriptionValidator
	cli          *enrich.CLIMetadataEnricher
	tags         *enrich.TagGenerator
}

// New constructs a pipeline from configuration. Pipelines are not safe
// for concurrent use; the corpus runner builds one per file.
func New(cfg *config.Config) (*Pipeline, error) {
	tiers, err := enrich.NewDeprecatedTierEnricher(cfg.DeprecatedTiers)
	if err != nil {
		return nil, fmt.Errorf("deprecated tier enricher: %w", err)
	}
	cli, err := enrich.NewCLIMetadataEnricher(cfg.CLIMetadata)
	if err != nil {
		return nil, fmt.Errorf("cli metadata enricher: %w", err)
	}
	tags, err := enrich.NewTagGenerator(cfg.Tags)
	if err != nil {
		return nil, fmt.Errorf("tag generator: %w", err)
	}

	return &Pipeline{
		fixer:        enrich.NewSchemaFixer(cfg.SchemaFixes),
		reconciler:   enrich.NewConstraintReconciler(cfg.Reconciliation),
		tiers:        tiers,
		structure:    enrich.NewDescriptionStructureTransformer(cfg.DescriptionStructure),
		descriptions: enrich.NewDescriptionValidator(cfg.DescriptionValidation),
		cli:          cli,
		tags:         tags,
	}, nil
}

// Run applies every transform to the document and returns the enriched
// document with its statistics. Transforms are total: Run never fails a
// document.
func (p *Pipeline) Run(doc *document.Object) (*document.Object, *DocumentResult) {
	result := &DocumentResult{}

	doc = p.fixer.Fix(doc)
	result.SchemaFixes = p.fixer.Stats()

	doc, result.Reconciliation = p.reconciler.Reconcile(doc)

	doc = p.tiers.Enrich(doc)
	result.DeprecatedTiers = p.tiers.Stats()

	doc = p.structure.Transform(doc)
	result.DescriptionStructure = p.structure.Stats()

	doc = p.descriptions.ValidateAndGenerate(doc)
	result.Descriptions = p.descriptions.Stats()

	doc = p.cli.Enrich(doc)
	result.CLIMetadata = p.cli.Stats()

	doc = p.tags.GenerateTags(doc)
	result.Tags = p.tags.Stats()

	return doc, result
}
