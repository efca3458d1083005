package config

// Config represents the full shikigami configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Default actor recorded on mutations when --actor is not given
	Actor string `yaml:"actor" mapstructure:"actor"`

	// Datastore configuration
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Requirements document configuration
	Docs DocsConfig `yaml:"docs" mapstructure:"docs"`

	// Full-text search configuration
	Search SearchConfig `yaml:"search" mapstructure:"search"`

	// Read-only HTTP API configuration
	Web WebConfig `yaml:"web" mapstructure:"web"`

	// Project-specific settings (only in project config)
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
}

// StoreConfig configures the SQLite datastore
type StoreConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	IDPrefix string `yaml:"id_prefix" mapstructure:"id_prefix"`
}

// DocsConfig configures where referenced requirement documents live
type DocsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
	Ext string `yaml:"ext" mapstructure:"ext"`
}

// SearchConfig configures the FTS sidecar index
type SearchConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// WebConfig configures the read-only HTTP API
type WebConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// ProjectConfig holds project-specific settings
type ProjectConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}
