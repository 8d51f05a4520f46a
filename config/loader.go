package config

import (
	"log/slog"
	"os"
)

// DefaultConfigFile is the config file name searched in the working
// directory when no explicit path is given.
const DefaultConfigFile = "enrichment.yaml"

// Loader handles configuration loading with fallback to defaults.
// A missing or unparseable config file is never fatal; the loader logs a
// warning and returns the built-in defaults.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration from path, or from enrichment.yaml in the
// working directory when path is empty, or built-in defaults when neither
// exists.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			l.logger.Warn("Config file not found, using defaults", slog.String("path", path))
		} else {
			l.logger.Debug("No config file found, using defaults")
		}
		return DefaultConfig(), nil
	}

	config, err := LoadFromFile(path)
	if err != nil {
		l.logger.Warn("Failed to load config, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return DefaultConfig(), nil
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded config", slog.String("path", path))
	return config, nil
}
