// Package main provides the apispec binary entry point.
// Apispec enriches a corpus of downloaded OpenAPI specification files:
// schema fixes, constraint reconciliation, description cleanup, CLI
// metadata, and domain tagging.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "apispec"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "OpenAPI specification enrichment pipeline",
		Long: `Apispec enriches a corpus of downloaded OpenAPI specification files.

It provides:
- Schema fixes for properties with a format but no type
- Reconciliation of x-discovered-* constraints into standard fields
- Description cleanup with example and validation-rule extraction
- Generated descriptions, CLI metadata, and domain tags

Enriched files are written alongside the originals; every run produces
a JSON report.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		enrichCmd(&configPath, &logLevel),
		checkCmd(&configPath, &logLevel),
		categorizeCmd(&configPath, &logLevel),
		watchCmd(&configPath, &logLevel),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup configures logging and loads the pipeline configuration. Every
// subcommand goes through it.
func setup(configPath, logLevel string) (*config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, logger, nil
}
