package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/pipeline"
)

func categorizeCmd(configPath, logLevel *string) *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Show the domain distribution of the corpus",
		Long: `Categorize assigns every corpus file to a platform domain by filename
pattern and prints the distribution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}

			runner, err := pipeline.NewRunner(cfg, logger)
			if err != nil {
				return err
			}

			distribution, err := runner.DomainDistribution()
			if err != nil {
				return err
			}

			domains := make([]string, 0, len(distribution))
			total := 0
			for domain, files := range distribution {
				domains = append(domains, domain)
				total += len(files)
			}
			sort.Strings(domains)

			for _, domain := range domains {
				files := distribution[domain]
				fmt.Printf("%-40s %d\n", domain, len(files))
				if showFiles {
					for _, file := range files {
						fmt.Printf("    %s\n", file)
					}
				}
			}
			fmt.Printf("%-40s %d\n", "total", total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "List the files under each domain")
	return cmd
}
