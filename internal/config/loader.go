package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads and merges configuration from global and project sources
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Return defaults if no home dir
	}

	cwd, err := os.Getwd()
	if err != nil {
		return cfg, nil // Return defaults if no cwd
	}

	// Load global config first
	globalPath := filepath.Join(home, ".shikigami", "config.yaml")
	if err := loadFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
		// Continue with defaults
	}

	// Load project config (overrides global)
	projectPath := filepath.Join(cwd, ".shikigami", "config.yaml")
	if err := loadFile(projectPath, cfg); err != nil && !os.IsNotExist(err) {
		// Continue
	}

	// Auto-detect project name if not set
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cwd)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// StorePath returns the datastore path with ~ expanded
func (c *Config) StorePath() string {
	p := c.Store.Path
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shikigami", "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".shikigami", "config.yaml")
}

// GlobalDirPath returns the path to the global shikigami directory
func GlobalDirPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shikigami")
}

// ProjectDirPath returns the path to the project shikigami directory
func ProjectDirPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".shikigami")
}
