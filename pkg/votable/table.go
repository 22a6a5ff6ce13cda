package votable

import "unicode/utf8"

// LongestValues maps a field ID to the longest rendered value length seen
// during one ingestion pass. A field with no non-empty value maps to -1.
type LongestValues map[string]int

// NewLongestValues returns a map with every field initialised to -1.
func NewLongestValues(fields []*Field) LongestValues {
	lv := make(LongestValues, len(fields))
	for _, f := range fields {
		if f != nil {
			lv[f.ID()] = -1
		}
	}
	return lv
}

// Observe records the rendered text of a cell, keeping the maximum length
// in runes.
func (lv LongestValues) Observe(fieldID, text string) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		n = -1
	}
	if cur, ok := lv[fieldID]; !ok || n > cur {
		lv[fieldID] = n
	}
}

// TableData holds the rows of a table.
type TableData struct {
	Rows          []*Row
	LongestValues LongestValues
}

// Table pairs Metadata with its TableData.
type Table struct {
	Metadata *Metadata
	Data     *TableData
}

// Fields returns the table's fields.
func (t *Table) Fields() []*Field {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata.Fields()
}

// Rows returns the table's rows.
func (t *Table) Rows() []*Row {
	if t.Data == nil {
		return nil
	}
	return t.Data.Rows
}
