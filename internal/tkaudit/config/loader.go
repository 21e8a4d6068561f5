package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file.
	ProjectConfigFile = "tkaudit.yaml"
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/tkaudit"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence.
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

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/tkaudit/config.yaml)
// 3. Project config (tkaudit.yaml in the working directory)
// 4. Explicit file passed on the command line
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	userPath := l.userConfigPath()
	if err := cfg.MergeFile(userPath); err == nil {
		l.logger.Debug("loaded user config", slog.String("path", userPath))
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
	}

	if err := cfg.MergeFile(ProjectConfigFile); err == nil {
		l.logger.Debug("loaded project config", slog.String("path", ProjectConfigFile))
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load project config", slog.String("path", ProjectConfigFile), slog.String("error", err.Error()))
	}

	if explicitPath != "" {
		if err := cfg.MergeFile(explicitPath); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config file", slog.String("path", explicitPath))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
