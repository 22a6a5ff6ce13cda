// Package config provides configuration management for the votv CLI.
//
// Values are layered with koanf: built-in defaults, then votv.yaml, then
// VOTV_ environment variables, then explicitly set command-line flags.
package config

import (
	"github.com/opencadc/votv/pkg/votable"
)

// Config holds all CLI configuration options.
type Config struct {
	DatatypeMode string       `koanf:"datatype_mode"`
	AnchorGlobs  bool         `koanf:"anchor_globs"`
	PageSize     int          `koanf:"page_size"`
	CacheSize    int          `koanf:"cache_size"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	Export       ExportConfig `koanf:"export"`
}

// ExportConfig selects the database written by votv export.
type ExportConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	Table  string `koanf:"table"`
}

// Default configuration values.
const (
	DefaultDatatypeMode = "permissive"
	DefaultAnchorGlobs  = true
	DefaultPageSize     = 50
	DefaultCacheSize    = 1000
	DefaultOutput       = "auto" // Auto-detect: TTY=table, non-TTY=markdown
	DefaultExportDriver = "sqlite"
	DefaultExportTable  = "votable"
)

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		DatatypeMode: DefaultDatatypeMode,
		AnchorGlobs:  DefaultAnchorGlobs,
		PageSize:     DefaultPageSize,
		CacheSize:    DefaultCacheSize,
		OutputFormat: DefaultOutput,
		Export: ExportConfig{
			Driver: DefaultExportDriver,
			Table:  DefaultExportTable,
		},
	}
}

// Mode returns the datatype classification mode. Unrecognised values fall
// back to permissive; Validate reports them.
func (c *Config) Mode() votable.Mode {
	m, ok := votable.ParseMode(c.DatatypeMode)
	if !ok {
		return votable.Permissive
	}
	return m
}
