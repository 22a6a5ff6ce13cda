// Package view is the presentation-side collaborator of the data model. It
// projects rows into ordered records keyed by field ID, applies per-column
// filter expressions with ! negation, sorts, and suggests filter values.
package view

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Velocidex/ordereddict"

	"github.com/opencadc/votv/pkg/compare"
	"github.com/opencadc/votv/pkg/filter"
	"github.com/opencadc/votv/pkg/value"
	"github.com/opencadc/votv/pkg/votable"
)

// Record is one row as ordered key/value pairs keyed by field ID in table
// order.
type Record struct {
	ID string
	// Row is the source row.
	Row *votable.Row
	*ordereddict.Dict
}

// Display returns a copy with absent numbers (NaN) replaced by nil, safe for
// JSON and YAML encoding.
func (r Record) Display() *ordereddict.Dict {
	out := ordereddict.NewDict()
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		out.Set(k, v)
	}
	return out
}

// Project converts rows into records. Every field gets a key; cells missing
// from a short row are nil.
func Project(fields []*votable.Field, rows []*votable.Row) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		byID := make(map[string]any, row.Size())
		for _, c := range row.Cells() {
			if c.Field() != nil {
				byID[c.Field().ID()] = c.Value()
			}
		}

		d := ordereddict.NewDict()
		for _, f := range fields {
			if f != nil {
				d.Set(f.ID(), byID[f.ID()])
			}
		}
		out = append(out, Record{ID: row.ID(), Row: row, Dict: d})
	}
	return out
}

// FormatValue renders a cell value as text. Absent numbers render empty.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(t) {
			return ""
		}
	}
	return value.String(v)
}

// ColumnFilters maps a field ID to a filter expression. Empty expressions
// are ignored.
type ColumnFilters map[string]string

// ParseColumnFilter splits "COLUMN=EXPR" at the first '=' so that
// "name==pull" yields the exact-match expression "=pull".
func ParseColumnFilter(s string) (column, expr string, err error) {
	column, expr, ok := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", fmt.Errorf("invalid filter %q (expected COLUMN=EXPR)", s)
	}
	return column, expr, nil
}

// View holds the projected records of one table.
type View struct {
	fields  []*votable.Field
	records []Record
	longest votable.LongestValues
	engine  *filter.Engine
	logger  *slog.Logger
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New projects table into a View evaluating filters with engine.
func New(table *votable.Table, engine *filter.Engine, opts ...Option) *View {
	v := &View{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}

	for _, f := range table.Fields() {
		if f != nil {
			v.fields = append(v.fields, f)
		}
	}
	v.records = Project(v.fields, table.Rows())
	if table.Data != nil {
		v.longest = table.Data.LongestValues
	}
	return v
}

// Fields returns the non-empty fields in table order.
func (v *View) Fields() []*votable.Field { return v.fields }

// Records returns every record in ingestion order.
func (v *View) Records() []Record { return v.records }

// LongestValues returns the ingestion pass's longest-value map unchanged.
func (v *View) LongestValues() votable.LongestValues { return v.longest }

// Field looks up a field by ID, falling back to a case-insensitive match
// on ID or name.
func (v *View) Field(column string) *votable.Field {
	for _, f := range v.fields {
		if f.ID() == column {
			return f
		}
	}
	for _, f := range v.fields {
		if strings.EqualFold(f.ID(), column) || strings.EqualFold(f.Name(), column) {
			return f
		}
	}
	return nil
}

// UnknownColumnError is returned when a filter or sort names a column the
// table does not have.
type UnknownColumnError struct {
	Column    string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (v *View) unknown(column string) error {
	ids := make([]string, 0, len(v.fields))
	for _, f := range v.fields {
		ids = append(ids, f.ID())
	}
	return &UnknownColumnError{Column: column, Available: ids}
}

// resolve maps column names in filters to field IDs.
func (v *View) resolve(filters ColumnFilters) (ColumnFilters, error) {
	out := make(ColumnFilters, len(filters))
	for col, expr := range filters {
		f := v.Field(col)
		if f == nil {
			return nil, v.unknown(col)
		}
		out[f.ID()] = expr
	}
	return out, nil
}

// Excludes reports whether one column filter hides value. A leading ! on
// the expression inverts the engine's decision.
func Excludes(engine *filter.Engine, expr string, val any) bool {
	expr = value.TrimSpace(expr)
	negate := strings.HasPrefix(expr, "!")
	if negate {
		expr = expr[1:]
	}

	out := engine.ValueFilters(expr, val)
	return (!negate && out) || (!out && negate)
}

// Matches reports whether rec passes every non-empty filter.
func Matches(engine *filter.Engine, rec Record, filters ColumnFilters) bool {
	for col, expr := range filters {
		if expr == "" {
			continue
		}
		val, _ := rec.Get(col)
		if Excludes(engine, expr, val) {
			return false
		}
	}
	return true
}

// Filter returns the records passing every column filter, in ingestion
// order. Columns may be named by ID or name.
func (v *View) Filter(filters ColumnFilters) ([]Record, error) {
	resolved, err := v.resolve(filters)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(v.records))
	for _, rec := range v.records {
		if Matches(v.engine, rec, resolved) {
			out = append(out, rec)
		}
	}

	v.logger.Debug("filtered records",
		slog.Int("filters", len(resolved)),
		slog.Int("kept", len(out)),
		slog.Int("total", len(v.records)))
	return out, nil
}

// Sort orders records in place by one column with a comparator built for
// this call.
func (v *View) Sort(records []Record, column string, ascending bool) error {
	f := v.Field(column)
	if f == nil {
		return v.unknown(column)
	}
	c, err := compare.ForField(f)
	if err != nil {
		return err
	}
	compare.Sort(records, c, ascending)
	return nil
}

// Suggest lists the distinct formatted values of a column that pass the
// entered filter, in record order. Input that is empty, ends with a space,
// starts with an operator or contains a range yields no suggestions.
func (v *View) Suggest(column, entered string) []string {
	trimmed := value.TrimSpace(entered)
	if trimmed == "" ||
		strings.HasSuffix(entered, " ") ||
		strings.ContainsAny(trimmed[:1], "<>=") ||
		strings.Contains(trimmed, "..") {
		return nil
	}

	f := v.Field(column)
	if f == nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, rec := range v.records {
		val, _ := rec.Get(f.ID())
		if Excludes(v.engine, entered, val) {
			continue
		}
		text := FormatValue(val)
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}

// Values returns the sorted distinct formatted values of a column.
func (v *View) Values(column string) []string {
	f := v.Field(column)
	if f == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, rec := range v.records {
		val, _ := rec.Get(f.ID())
		seen[FormatValue(val)] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
