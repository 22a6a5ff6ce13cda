package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/opencadc/votv/pkg/value"
	"github.com/opencadc/votv/pkg/votable"
)

// ExportsTable records one row per export batch.
const ExportsTable = "votv_exports"

// Bookkeeping columns prepended to every exported table.
const (
	BatchColumn = "votv_batch"
	RowIDColumn = "votv_row_id"
)

// Exporter writes tables into a database through database/sql.
type Exporter struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *slog.Logger

	// NewID returns the batch identifier; nil means uuid.New.
	NewID func() uuid.UUID
	// Now returns the export timestamp; nil means time.Now.
	Now func() time.Time
}

// Summary describes a finished export.
type Summary struct {
	BatchID uuid.UUID
	Table   string
	Rows    int
	// Unparsed counts timestamp cells written as NULL because they could
	// not be read as a date.
	Unparsed int
}

// New wraps an open database.
func New(db *sql.DB, d Dialect, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{DB: db, Dialect: d, Logger: logger}
}

// Open connects to dsn with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Exporter, error) {
	d, err := LookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if d.Name == "sqlite" && dsn == "" {
		return nil, fmt.Errorf("sqlite export needs a database path")
	}

	e := New(nil, d, logger)
	e.Logger.Debug("connecting to export database", slog.String("driver", d.Name))

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.Name, err)
	}
	if d.Name == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	e.DB = db
	return e, nil
}

// Close closes the database connection.
func (e *Exporter) Close() error {
	if e.DB != nil {
		e.logger().Debug("closing export database connection")
		return e.DB.Close()
	}
	return nil
}

func (e *Exporter) exec(ctx context.Context, stmt string) error {
	if e.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := e.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// CreateExportsTableSQL returns the DDL of the bookkeeping table.
func (e *Exporter) CreateExportsTableSQL() string {
	d := e.Dialect
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (batch_id %s, table_name %s, row_count %s, exported_at %s)",
		ExportsTable, d.Text, d.Text, d.Integer, d.Timestamp)
}

// CreateTableSQL returns the DDL for a table holding fields.
func (e *Exporter) CreateTableSQL(table string, fields []*votable.Field) string {
	cols := []string{
		QuoteIdent(BatchColumn) + " " + e.Dialect.Text,
		QuoteIdent(RowIDColumn) + " " + e.Dialect.Text,
	}
	for _, f := range fields {
		cols = append(cols, QuoteIdent(f.ID())+" "+e.Dialect.ColumnType(f))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteIdent(table), strings.Join(cols, ", "))
}

// InsertSQL returns the parameterised insert for a table holding fields.
func (e *Exporter) InsertSQL(table string, fields []*votable.Field) string {
	cols := []string{QuoteIdent(BatchColumn), QuoteIdent(RowIDColumn)}
	for _, f := range fields {
		cols = append(cols, QuoteIdent(f.ID()))
	}
	marks := make([]string, len(cols))
	for i := range marks {
		marks[i] = e.Dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func (e *Exporter) recordSQL() string {
	d := e.Dialect
	return fmt.Sprintf("INSERT INTO %s (batch_id, table_name, row_count, exported_at) VALUES (%s, %s, %s, %s)",
		ExportsTable, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4))
}

// Export writes rows into table inside one transaction and records the
// batch in the bookkeeping table. Nil fields are skipped.
func (e *Exporter) Export(ctx context.Context, table string, fields []*votable.Field, rows []*votable.Row) (*Summary, error) {
	if e.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("export needs a table name")
	}

	cols := make([]*votable.Field, 0, len(fields))
	for _, f := range fields {
		if f != nil {
			cols = append(cols, f)
		}
	}

	if err := e.exec(ctx, e.CreateExportsTableSQL()); err != nil {
		return nil, fmt.Errorf("create %s: %w", ExportsTable, err)
	}
	if err := e.exec(ctx, e.CreateTableSQL(table, cols)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	newID, now := uuid.New, time.Now
	if e.NewID != nil {
		newID = e.NewID
	}
	if e.Now != nil {
		now = e.Now
	}
	sum := &Summary{BatchID: newID(), Table: table}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, e.InsertSQL(table, cols))
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	batch := sum.BatchID.String()
	for _, row := range rows {
		args := []any{batch, row.ID()}
		for _, f := range cols {
			v, _ := row.CellValue(f.ID())
			arg, ok := ColumnValue(f, v)
			if !ok {
				sum.Unparsed++
			}
			args = append(args, arg)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("insert row %s: %w", row.ID(), err)
		}
		sum.Rows++
	}

	if _, err := tx.ExecContext(ctx, e.recordSQL(), batch, table, int64(sum.Rows), now().UTC()); err != nil {
		return nil, fmt.Errorf("record export batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit export: %w", err)
	}

	e.logger().Info("exported table",
		slog.String("table", table),
		slog.String("batch", batch),
		slog.Int("rows", sum.Rows))
	if sum.Unparsed > 0 {
		e.logger().Warn("timestamps written as NULL", slog.Int("count", sum.Unparsed))
	}
	return sum, nil
}

// ColumnValue converts a cell value into a driver argument for f's column.
// Absent numbers and empty timestamps become NULL. ok is false when a
// non-empty timestamp could not be parsed.
func ColumnValue(f *votable.Field, v any) (arg any, ok bool) {
	if v == nil {
		return nil, true
	}
	if f.ContainsInterval() {
		return value.String(v), true
	}

	dt := f.DataType()
	switch dt.Kind() {
	case votable.KindInteger, votable.KindFloat:
		n, isFloat := dt.Sanitize(v).(float64)
		if !isFloat || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, true
		}
		if dt.Kind() == votable.KindInteger {
			return int64(n), true
		}
		return n, true
	case votable.KindBoolean:
		return dt.Sanitize(v), true
	case votable.KindTimestamp:
		s := value.TrimSpace(value.String(v))
		if s == "" {
			return nil, true
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return nil, false
		}
		return t.UTC(), true
	default:
		return value.String(v), true
	}
}
