package votable

// Cell is an immutable value bound to its column. Values are string,
// float64 (NaN for absent or unparseable numbers) or bool.
type Cell struct {
	value any
	field *Field
}

// NewCell creates a cell.
func NewCell(v any, f *Field) Cell {
	return Cell{value: v, field: f}
}

// Value returns the typed value.
func (c Cell) Value() any { return c.value }

// Field returns the column descriptor.
func (c Cell) Field() *Field { return c.field }

// Row is an identifier plus one cell per field in table order. Rows are
// never modified after construction; replace them wholesale instead.
type Row struct {
	id    string
	cells []Cell
}

// NewRow creates a row. The cells slice is owned by the row afterwards.
func NewRow(id string, cells []Cell) *Row {
	return &Row{id: id, cells: cells}
}

// ID returns the row identifier.
func (r *Row) ID() string { return r.id }

// Cells returns the cells in table order.
func (r *Row) Cells() []Cell { return r.cells }

// Size returns the number of cells.
func (r *Row) Size() int { return len(r.cells) }

// CellValue returns the value of the cell whose field has the given ID.
func (r *Row) CellValue(fieldID string) (any, bool) {
	for _, c := range r.cells {
		if c.field != nil && c.field.ID() == fieldID {
			return c.value, true
		}
	}
	return nil, false
}
