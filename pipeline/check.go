package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/enrich"
)

// FileCheck is the read-only validation outcome for one corpus file.
type FileCheck struct {
	File    string                      `json:"file"`
	Domain  string                      `json:"domain"`
	Error   string                      `json:"error,omitempty"`
	Issues  []enrich.Issue              `json:"issues"`
	Missing *enrich.MissingDescriptions `json:"missing_descriptions"`
}

// CheckSummary is the corpus-level validation report.
type CheckSummary struct {
	RunID             string      `json:"run_id"`
	StartedAt         time.Time   `json:"started_at"`
	FinishedAt        time.Time   `json:"finished_at"`
	TotalFiles        int         `json:"total_files"`
	TotalIssues       int         `json:"total_issues"`
	MissingOperations int         `json:"missing_operation_descriptions"`
	MissingSchemas    int         `json:"missing_schema_descriptions"`
	Files             []FileCheck `json:"files"`
}

// Check validates the corpus without modifying it: consistency findings
// plus missing-description reports per file.
func (r *Runner) Check(ctx context.Context) (*CheckSummary, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	summary := &CheckSummary{
		RunID:      uuid.NewString(),
		StartedAt:  r.now().UTC(),
		TotalFiles: len(files),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Processing.ParallelWorkers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			check := r.checkFile(file)

			mu.Lock()
			summary.Files = append(summary.Files, check)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].File < summary.Files[j].File
	})
	for _, fc := range summary.Files {
		summary.TotalIssues += len(fc.Issues)
		if fc.Missing != nil {
			summary.MissingOperations += len(fc.Missing.Operations)
			summary.MissingSchemas += len(fc.Missing.Schemas)
		}
	}
	summary.FinishedAt = r.now().UTC()

	r.logger.Info("Consistency check finished",
		"run_id", summary.RunID,
		"files", summary.TotalFiles,
		"issues", summary.TotalIssues)

	return summary, nil
}

func (r *Runner) checkFile(path string) FileCheck {
	name := filepath.Base(path)
	check := FileCheck{
		File:   name,
		Domain: r.categorizer.Categorize(name),
	}

	doc, err := document.Load(path)
	if err != nil {
		check.Error = err.Error()
		return check
	}

	validator := enrich.NewConsistencyValidator(r.cfg.Consistency)
	check.Issues = validator.Validate(doc)

	descriptions := enrich.NewDescriptionValidator(r.cfg.DescriptionValidation)
	check.Missing = descriptions.FindMissingDescriptions(doc)

	return check
}
