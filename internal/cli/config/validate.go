package config

import (
	"fmt"
	"strings"

	"github.com/opencadc/votv/internal/cli/output"
	"github.com/opencadc/votv/internal/store"
	"github.com/opencadc/votv/pkg/votable"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := votable.ParseMode(c.DatatypeMode); !ok {
		return fmt.Errorf("invalid datatype_mode %q\nHint: use permissive or strict", c.DatatypeMode)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

// ValidateExport checks the export section before a database is opened.
func (c *Config) ValidateExport() error {
	if _, err := store.LookupDialect(c.Export.Driver); err != nil {
		return err
	}
	if strings.TrimSpace(c.Export.DSN) == "" {
		return fmt.Errorf("export.dsn is required\nHint: pass --dsn or set VOTV_EXPORT_DSN")
	}
	if strings.TrimSpace(c.Export.Table) == "" {
		return fmt.Errorf("export.table is required")
	}
	return nil
}
