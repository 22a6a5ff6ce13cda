package votable

// Metadata holds the ordered fields of a table together with its
// informational entries.
//
// Fields may be sparse after InsertField; nil slots are skipped by lookups.
type Metadata struct {
	fields      []*Field
	params      []*Parameter
	infos       []Info
	description string
}

// NewMetadata creates Metadata with the given fields.
func NewMetadata(fields ...*Field) *Metadata {
	return &Metadata{fields: fields}
}

// Fields returns the fields in table order. The slice may contain nil
// entries left by sparse insertion.
func (m *Metadata) Fields() []*Field {
	return m.fields
}

// SetFields replaces all fields.
func (m *Metadata) SetFields(fields []*Field) {
	m.fields = fields
}

// AddField appends a field.
func (m *Metadata) AddField(f *Field) {
	m.fields = append(m.fields, f)
}

// InsertField places f at index, growing the list with nil gaps as needed.
func (m *Metadata) InsertField(index int, f *Field) {
	if index < 0 {
		return
	}
	for len(m.fields) <= index {
		m.fields = append(m.fields, nil)
	}
	m.fields[index] = f
}

// Field returns the field with the given ID, or nil.
func (m *Metadata) Field(id string) *Field {
	if id == "" {
		return nil
	}
	for _, f := range m.fields {
		if f != nil && f.ID() == id {
			return f
		}
	}
	return nil
}

// HasFieldWithID reports whether a field with the ID exists.
func (m *Metadata) HasFieldWithID(id string) bool {
	return m.Field(id) != nil
}

// FieldIndex returns the position of the field with the given ID, or -1.
func (m *Metadata) FieldIndex(id string) int {
	for i, f := range m.fields {
		if f != nil && f.ID() == id {
			return i
		}
	}
	return -1
}

// Params returns the PARAM entries.
func (m *Metadata) Params() []*Parameter { return m.params }

// AddParam appends a PARAM entry.
func (m *Metadata) AddParam(p *Parameter) { m.params = append(m.params, p) }

// Infos returns the INFO entries.
func (m *Metadata) Infos() []Info { return m.infos }

// AddInfo appends an INFO entry.
func (m *Metadata) AddInfo(i Info) { m.infos = append(m.infos, i) }

// Errors returns the INFO entries named ERROR.
func (m *Metadata) Errors() []Info {
	var out []Info
	for _, i := range m.infos {
		if i.IsError() {
			out = append(out, i)
		}
	}
	return out
}

// Description returns the DESCRIPTION text.
func (m *Metadata) Description() string { return m.description }

// SetDescription sets the DESCRIPTION text.
func (m *Metadata) SetDescription(d string) { m.description = d }
