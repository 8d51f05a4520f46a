package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/pipeline"
)

func checkCmd(configPath, logLevel *string) *cobra.Command {
	var skipReport bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the corpus without modifying it",
		Long: `Check reports naming and structural inconsistencies plus missing
operation and schema descriptions across the corpus. Files are never
modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner, err := pipeline.NewRunner(cfg, logger)
			if err != nil {
				return err
			}

			summary, err := runner.Check(ctx)
			if err != nil {
				return err
			}

			if !skipReport {
				path, err := pipeline.WriteReport(cfg.Paths.Reports, "consistency", summary.RunID, summary)
				if err != nil {
					return err
				}
				logger.Info("Report written", "path", path)
			}

			fmt.Printf("Checked %d files: %d issues, %d missing operation descriptions, %d missing schema descriptions\n",
				summary.TotalFiles, summary.TotalIssues,
				summary.MissingOperations, summary.MissingSchemas)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipReport, "no-report", false, "Skip writing the run report")
	return cmd
}
