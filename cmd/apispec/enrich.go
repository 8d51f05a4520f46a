package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/pipeline"
)

func enrichCmd(configPath, logLevel *string) *cobra.Command {
	var skipReport bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich the specification corpus",
		Long: `Enrich runs the full transform chain over every file matching the
configured include patterns and writes the results to the enriched
directory. A run summary report is written to the reports directory.`,
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

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			if !skipReport {
				path, err := pipeline.WriteReport(cfg.Paths.Reports, "enrichment", summary.RunID, summary)
				if err != nil {
					return err
				}
				logger.Info("Report written", "path", path)
			}

			fmt.Printf("Enriched %d/%d files (%d failed)\n",
				summary.Succeeded, summary.TotalFiles, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d files failed enrichment", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipReport, "no-report", false, "Skip writing the run report")
	return cmd
}
