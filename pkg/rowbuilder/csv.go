package rowbuilder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/opencadc/votv/pkg/votable"
)

// CSVBuilder reads delimited text against caller-provided column metadata.
// The first record holds column names and is skipped; rows are matched to
// fields by position.
type CSVBuilder struct {
	*RowBuilder
	Reader   io.Reader
	Metadata *votable.Metadata
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// NewCSVBuilder creates a CSVBuilder reading r.
func NewCSVBuilder(r io.Reader, meta *votable.Metadata, rb *RowBuilder) *CSVBuilder {
	return &CSVBuilder{RowBuilder: rb, Reader: r, Metadata: meta}
}

func trimmedText(raw []string, index int) string {
	return strings.TrimSpace(raw[index])
}

// Build reads every record, then notifies the listener. A final page end is
// sent after load completion.
func (b *CSVBuilder) Build(ctx context.Context) (*Result, error) {
	if b.Metadata == nil {
		return nil, ErrMissingMetadata
	}
	if b.Reader == nil {
		return nil, fmt.Errorf("%w: no delimited input", ErrInvalidDocument)
	}

	r := newCSVReader(b.Reader, b.Comma)
	fields := b.Metadata.Fields()
	res := &Result{
		Metadata:      b.Metadata,
		LongestValues: votable.NewLongestValues(fields),
	}

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		if count == 0 {
			count++
			continue
		}

		id := "vov_" + strconv.Itoa(count)
		res.Rows = append(res.Rows, BuildRow(fields, id, record, res.LongestValues, trimmedText))
		count++
	}

	b.logger().Debug("delimited text read",
		slog.Int("fields", len(fields)),
		slog.Int("rows", len(res.Rows)))

	b.notifyRows(res.Rows)
	l := b.listener()
	l.OnDataLoadComplete(res)
	// A full last page was already closed by notifyRows.
	if len(res.Rows)%b.pageSize() != 0 {
		l.OnPageAddEnd()
	}
	return res, nil
}

func newCSVReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
