package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ProjectConfigFile is the name of the project-level config file
const ProjectConfigFile = "docdex.yaml"

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger   *slog.Logger
	startDir string
}

// NewLoader creates a configuration loader that searches for the project
// config from startDir upward. An empty startDir means the working
// directory.
func NewLoader(logger *slog.Logger, startDir string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, startDir: startDir}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. Project config (docdex.yaml in the start or a parent directory)
// 3. The explicit file, when not empty
//
// A project config that fails to load is logged and skipped; an explicit
// file that fails to load is an error.
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if explicit != "" {
		explicitConfig, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
		config.Merge(explicitConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// findProjectConfig searches for docdex.yaml in the start and parent directories
func (l *Loader) findProjectConfig() string {
	dir := l.startDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
