package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is the name of the project-level config file.
	ProjectConfigFile = "stikie.yaml"
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/stikie"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"

	// EnvDSN overrides the remote DSN.
	EnvDSN = "STIKIE_REMOTE_DSN"
	// EnvStateDir overrides the state directory.
	EnvStateDir = "STIKIE_STATE_DIR"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Defaults
// 2. User config (~/.config/stikie/config.yaml)
// 3. Project config (stikie.yaml in the current directory)
// 4. Environment variables (.env honored via godotenv)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load user config",
			slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	if projectConfig, err := LoadFromFile(ProjectConfigFile); err == nil {
		l.logger.Debug("loaded project config", slog.String("path", ProjectConfigFile))
		config.Merge(projectConfig)
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load project config",
			slog.String("path", ProjectConfigFile), slog.String("error", err.Error()))
	}

	// .env is optional sugar for the env layer.
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("loaded .env")
	}
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		config.Remote.DSN = dsn
	}
	if dir := os.Getenv(EnvStateDir); dir != "" {
		config.StateDir = dir
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(UserConfigDir, UserConfigFile)
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
