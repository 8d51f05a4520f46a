package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/categorize"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// FileResult records the outcome of enriching one corpus file.
type FileResult struct {
	File     string          `json:"file"`
	Domain   string          `json:"domain"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
	Result   *DocumentResult `json:"result,omitempty"`
}

// Totals aggregates transform counters across a run.
type Totals struct {
	SchemaFixes         int `json:"schema_fixes"`
	Reconciled          int `json:"reconciled"`
	TierValues          int `json:"tier_values_transformed"`
	ExamplesExtracted   int `json:"examples_extracted"`
	DescriptionsCreated int `json:"descriptions_generated"`
	CLIHelpAdded        int `json:"cli_help_added"`
	OperationsTagged    int `json:"operations_tagged"`
}

// Summary is the corpus-level run report.
type Summary struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	TotalFiles int          `json:"total_files"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Totals     Totals       `json:"totals"`
	Files      []FileResult `json:"files"`
}

// Runner enriches every matching file of a corpus directory, writing the
// results to the enriched directory. Files are processed independently
// with bounded parallelism.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	categorizer *categorize.Categorizer
	metrics     *Metrics
	now         func() time.Time
}

// NewRunner constructs a corpus runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	categorizer, err := categorize.New(cfg.Domains)
	if err != nil {
		return nil, fmt.Errorf("domain categorizer: %w", err)
	}
	return &Runner{
		cfg:         cfg,
		logger:      logger,
		categorizer: categorizer,
		now:         time.Now,
	}, nil
}

// SetMetrics attaches run counters, used by watch mode.
func (r *Runner) SetMetrics(m *Metrics) {
	r.metrics = m
}

// Discover returns the corpus files matching the configured include
// patterns, sorted and deduplicated.
func (r *Runner) Discover() ([]string, error) {
	patterns := r.cfg.Processing.Include
	if len(patterns) == 0 {
		patterns = []string{"*.json"}
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(r.cfg.Paths.Original, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run enriches the whole corpus and returns the run summary. With
// continue_on_error set, individual file failures are recorded in the
// summary instead of aborting the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      uuid.NewString(),
		StartedAt:  r.now().UTC(),
		TotalFiles: len(files),
	}

	r.logger.Info("Enrichment run started",
		"run_id", summary.RunID,
		"files", len(files),
		"workers", r.cfg.Processing.ParallelWorkers)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Processing.ParallelWorkers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := r.processFile(file)

			mu.Lock()
			summary.Files = append(summary.Files, result)
			mu.Unlock()

			if result.Error != "" && !r.cfg.Processing.ContinueOnError {
				return fmt.Errorf("enrich %s: %s", file, result.Error)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].File < summary.Files[j].File
	})
	for _, fr := range summary.Files {
		if fr.Error != "" {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Totals.add(fr.Result)
	}
	summary.FinishedAt = r.now().UTC()

	r.logger.Info("Enrichment run finished",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.FinishedAt.Sub(summary.StartedAt))

	return summary, nil
}

// processFile enriches a single file. Each file gets its own pipeline
// instance so workers share no mutable state.
func (r *Runner) processFile(path string) FileResult {
	started := r.now()
	name := filepath.Base(path)
	result := FileResult{
		File:   name,
		Domain: r.categorizer.Categorize(name),
	}

	defer func() {
		result.Duration = r.now().Sub(started)
		if r.metrics != nil {
			r.metrics.ObserveFile(result)
		}
	}()

	pipe, err := New(r.cfg)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	doc, err := document.Load(path)
	if err != nil {
		r.logger.Warn("Skipping unreadable file", "file", name, "error", err)
		result.Error = err.Error()
		return result
	}

	enriched, docResult := pipe.Run(doc)
	result.Result = docResult

	outPath := filepath.Join(r.cfg.Paths.Enriched, name)
	if err := document.Save(enriched, outPath); err != nil {
		result.Error = err.Error()
		return result
	}

	r.logger.Debug("Enriched file",
		"file", name,
		"domain", result.Domain,
		"fixes", docResult.SchemaFixes.FixesApplied,
		"reconciled", docResult.Reconciliation.Statistics.Reconciled)

	return result
}

func (t *Totals) add(r *DocumentResult) {
	if r == nil {
		return
	}
	t.SchemaFixes += r.SchemaFixes.FixesApplied
	if r.Reconciliation != nil {
		t.Reconciled += r.Reconciliation.Statistics.Reconciled
	}
	t.TierValues += r.DeprecatedTiers.ValuesTransformed
	t.ExamplesExtracted += r.DescriptionStructure.ExamplesExtracted
	t.DescriptionsCreated += r.Descriptions.OperationsGenerated + r.Descriptions.SchemasGenerated
	t.CLIHelpAdded += r.CLIMetadata.HelpAdded
	t.OperationsTagged += r.Tags.OperationsTagged
}

// DomainDistribution categorizes every corpus file and returns the
// per-domain file lists.
func (r *Runner) DomainDistribution() (map[string][]string, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	distribution := make(map[string][]string)
	for _, file := range files {
		name := filepath.Base(file)
		domain := r.categorizer.Categorize(name)
		distribution[domain] = append(distribution[domain], name)
	}
	return distribution, nil
}
