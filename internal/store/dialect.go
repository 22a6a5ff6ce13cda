// Package store exports typed VOTable rows into SQL databases.
package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/opencadc/votv/pkg/votable"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// Dialect describes how one database names its driver, binds parameters
// and spells column types.
type Dialect struct {
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Numbered placeholders are $1, $2, ...; otherwise ?.
	Numbered bool

	Integer   string
	Float     string
	Boolean   string
	Timestamp string
	Text      string
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name: "sqlite", Driver: "sqlite",
		Integer: "BIGINT", Float: "REAL", Boolean: "BOOLEAN", Timestamp: "TIMESTAMP", Text: "TEXT",
	},
	"duckdb": {
		Name: "duckdb", Driver: "duckdb",
		Integer: "BIGINT", Float: "DOUBLE", Boolean: "BOOLEAN", Timestamp: "TIMESTAMP", Text: "TEXT",
	},
	"postgres": {
		Name: "postgres", Driver: "pgx", Numbered: true,
		Integer: "BIGINT", Float: "DOUBLE PRECISION", Boolean: "BOOLEAN", Timestamp: "TIMESTAMP", Text: "TEXT",
	},
}

// UnknownDialectError is returned when an unsupported driver is requested.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown export driver %q\nAvailable drivers: %v\nHint: check export.driver in votv.yaml", e.Name, e.Available)
}

// LookupDialect returns the dialect registered under name. "postgresql"
// and "pgx" are accepted for postgres.
func LookupDialect(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "postgresql", "pgx":
		key = "postgres"
	case "sqlite3":
		key = "sqlite"
	}
	d, ok := dialects[key]
	if !ok {
		return Dialect{}, &UnknownDialectError{Name: name, Available: Dialects()}
	}
	return d, nil
}

// Dialects lists the supported dialect names, sorted.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// ColumnType maps a field's DataType onto a column type. Interval fields
// keep their raw text.
func (d Dialect) ColumnType(f *votable.Field) string {
	if f.ContainsInterval() {
		return d.Text
	}
	switch f.DataType().Kind() {
	case votable.KindInteger:
		return d.Integer
	case votable.KindFloat:
		return d.Float
	case votable.KindBoolean:
		return d.Boolean
	case votable.KindTimestamp:
		return d.Timestamp
	default:
		return d.Text
	}
}

// QuoteIdent quotes an identifier with double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
