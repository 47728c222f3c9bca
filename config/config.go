// Package config holds the importer's configuration. The Config object is
// constructed explicitly and passed by reference; nothing in this module
// reads configuration from ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide importer configuration.
type Config struct {
	// CatalogURL is the base URL of the catalog action API.
	CatalogURL string `yaml:"catalog_url"`

	// APIKey authorizes catalog writes.
	APIKey string `yaml:"api_key"`

	// DefaultLicense applies when a record carries no license and no
	// per-call override is given.
	DefaultLicense string `yaml:"default_license"`

	// SourceURLFallback substitutes the fetch URL for an empty url field
	// instead of dropping the field.
	SourceURLFallback bool `yaml:"source_url_fallback"`

	// CatalogPathOld/New derive a catalog-entry resource from the source
	// URL by substituting one path segment for another.
	CatalogPathOld string `yaml:"catalog_path_old"`
	CatalogPathNew string `yaml:"catalog_path_new"`

	// AllowDuplicates creates a suffixed record instead of rejecting when
	// the identifier is taken.
	AllowDuplicates bool `yaml:"allow_duplicates"`

	// OverrideExisting merges the new record over an existing one.
	OverrideExisting bool `yaml:"override_existing"`
}

// Default returns the zero-policy configuration.
func Default() *Config {
	return &Config{}
}

// Load reads a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// LoadDefault reads ~/.ddiwalk/config.yaml when it exists, falling back to
// the default configuration.
func LoadDefault() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, ".ddiwalk", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}
