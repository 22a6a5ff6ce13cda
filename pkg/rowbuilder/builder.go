// Package rowbuilder turns VOTable XML and delimited text documents into
// rows of typed cells.
//
// Two strategies implement RowBuildable: XMLBuilder and CSVBuilder. Both
// share one RowBuilder, which converts raw cell text through the column
// datatypes, tracks the longest value per column and notifies a Listener.
// Notifications are sent only after the whole document has been read, so a
// failed build never exposes partial rows.
package rowbuilder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/opencadc/votv/pkg/votable"
)

// DefaultPageSize is the number of rows per page notification.
const DefaultPageSize = 50

var (
	// ErrInvalidDocument wraps every failure to read the source document.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrMissingMetadata is returned when delimited text is built without
	// column metadata.
	ErrMissingMetadata = errors.New("table metadata is required")
)

// RowBuildable is an ingestion strategy.
type RowBuildable interface {
	Build(ctx context.Context) (*Result, error)
}

// Listener receives ingestion notifications.
type Listener interface {
	OnPageAddStart()
	OnPageAddEnd()
	OnRowAdd(row *votable.Row)
	OnDataLoadComplete(res *Result)
}

// NopListener ignores every notification. Embed it to implement only the
// methods of interest.
type NopListener struct{}

func (NopListener) OnPageAddStart()            {}
func (NopListener) OnPageAddEnd()              {}
func (NopListener) OnRowAdd(*votable.Row)      {}
func (NopListener) OnDataLoadComplete(*Result) {}

// Result is the output of one ingestion pass.
type Result struct {
	// VOTable is the parsed document; nil for delimited text.
	VOTable *votable.VOTable
	// Metadata holds the fields of every table read, in document order.
	Metadata      *votable.Metadata
	Rows          []*votable.Row
	LongestValues votable.LongestValues
}

// Table returns the result as a single table.
func (r *Result) Table() *votable.Table {
	return &votable.Table{
		Metadata: r.Metadata,
		Data:     &votable.TableData{Rows: r.Rows, LongestValues: r.LongestValues},
	}
}

// RowBuilder holds the behaviour shared by the ingestion strategies.
type RowBuilder struct {
	PageSize int
	Listener Listener
	Logger   *slog.Logger
}

// NewRowBuilder creates a RowBuilder with default page size. A nil listener
// or logger is replaced by a no-op one.
func NewRowBuilder(listener Listener, logger *slog.Logger) *RowBuilder {
	return &RowBuilder{PageSize: DefaultPageSize, Listener: listener, Logger: logger}
}

func (b *RowBuilder) pageSize() int {
	if b == nil || b.PageSize <= 0 {
		return DefaultPageSize
	}
	return b.PageSize
}

func (b *RowBuilder) listener() Listener {
	if b == nil || b.Listener == nil {
		return NopListener{}
	}
	return b.Listener
}

func (b *RowBuilder) logger() *slog.Logger {
	if b == nil || b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// notifyRows sends the per-row and page notifications for one table. Row
// counting starts at 1: a page starts at count%size == 1 and ends at
// count%size == 0.
func (b *RowBuilder) notifyRows(rows []*votable.Row) {
	l, size := b.listener(), b.pageSize()
	for i, row := range rows {
		switch (i + 1) % size {
		case 1:
			l.OnPageAddStart()
		case 0:
			l.OnPageAddEnd()
		}
		l.OnRowAdd(row)
	}
}

// Extract returns the text of the cell at index in one raw row.
type Extract[T any] func(raw []T, index int) string

// BuildRow converts one raw row into a Row. Cells are produced for the
// positions covered by both the fields and the raw row. Values of interval
// fields are kept as text; all others go through their datatype.
func BuildRow[T any](fields []*votable.Field, id string, raw []T, lv votable.LongestValues, extract Extract[T]) *votable.Row {
	n := min(len(fields), len(raw))
	cells := make([]votable.Cell, 0, n)
	for i := 0; i < n; i++ {
		f := fields[i]
		if f == nil {
			continue
		}
		text := extract(raw, i)
		if lv != nil {
			lv.Observe(f.ID(), text)
		}

		var v any = text
		if !f.ContainsInterval() {
			v = f.DataType().Sanitize(text)
		}
		cells = append(cells, votable.NewCell(v, f))
	}
	return votable.NewRow(id, cells)
}
