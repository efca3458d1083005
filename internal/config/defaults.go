package config

import (
	"os"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Store: StoreConfig{
			Path:     "~/.shikigami/tasks.db",
			IDPrefix: "sg-",
		},
		Docs: DocsConfig{
			Dir: "docs",
			Ext: "md",
		},
		Search: SearchConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Addr: "127.0.0.1:7411",
		},
	}
}

// WriteDefault writes the default global configuration to a file
func WriteDefault(path string) error {
	content := `# Shikigami Global Configuration
version: "1"

# Actor recorded on mutations when --actor is not given
# actor: ""

# Task datastore
store:
  path: ~/.shikigami/tasks.db
  id_prefix: sg-

# Requirements documents referenced by tasks
docs:
  dir: docs
  ext: md

# Full-text search sidecar index
search:
  enabled: true

# Read-only HTTP API (shiki serve)
web:
  addr: 127.0.0.1:7411
`
	return os.WriteFile(path, []byte(content), 0644)
}

// WriteProjectDefault writes the default project configuration to a file
func WriteProjectDefault(path string) error {
	content := `# Shikigami Project Configuration
version: "1"

# Project information
project:
  name: ""  # Auto-detected from directory name if empty

# Override global settings as needed
# store:
#   path: .shikigami/tasks.db
#   id_prefix: sg-
# docs:
#   dir: docs
#   ext: md
`
	return os.WriteFile(path, []byte(content), 0644)
}
