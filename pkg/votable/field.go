package votable

import (
	"fmt"
	"strings"
)

const intervalKeyword = "interval"

// FieldSpec carries the attributes of a FIELD element as declared in the
// source document.
type FieldSpec struct {
	Name        string
	ID          string
	UCD         string
	UType       string
	Unit        string
	XType       string
	DataType    string
	ArraySize   string
	Description string
	Label       string
}

// Field describes one column. It is immutable after construction and is
// shared read-only by every Cell of the column.
type Field struct {
	name        string
	id          string
	ucd         string
	utype       string
	unit        string
	xtype       string
	datatype    DataType
	arraySize   string
	description string
	label       string
}

// NewField builds a Field from its declared attributes. The ID falls back to
// the name. A recognized xtype such as "polygon" or "interval" overrides the
// declared datatype; an unrecognized xtype is kept as an annotation only.
func NewField(spec FieldSpec, mode Mode) (*Field, error) {
	dt, err := resolveDataType(spec.DataType, spec.XType, mode)
	if err != nil {
		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		return nil, fmt.Errorf("field %q: %w", name, err)
	}

	id := spec.ID
	if id == "" {
		id = spec.Name
	}

	xtype := spec.XType
	if xtype == "" && containsFold(spec.DataType, intervalKeyword) {
		xtype = intervalKeyword
	}

	return &Field{
		name:        spec.Name,
		id:          id,
		ucd:         spec.UCD,
		utype:       spec.UType,
		unit:        spec.Unit,
		xtype:       xtype,
		datatype:    dt,
		arraySize:   spec.ArraySize,
		description: spec.Description,
		label:       spec.Label,
	}, nil
}

// MustField is NewField in Strict mode that panics on failure.
func MustField(spec FieldSpec) *Field {
	f, err := NewField(spec, Strict)
	if err != nil {
		panic(err)
	}
	return f
}

func resolveDataType(declared, xtype string, mode Mode) (DataType, error) {
	if strings.TrimSpace(xtype) != "" {
		if dt, err := NewDataType(xtype, Strict); err == nil {
			return dt, nil
		}
	}
	return NewDataType(declared, mode)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Name returns the column name.
func (f *Field) Name() string { return f.name }

// ID returns the stable column identifier.
func (f *Field) ID() string { return f.id }

// UCD returns the unified content descriptor.
func (f *Field) UCD() string { return f.ucd }

// UType returns the utype annotation.
func (f *Field) UType() string { return f.utype }

// Unit returns the unit annotation.
func (f *Field) Unit() string { return f.unit }

// XType returns the extended type annotation.
func (f *Field) XType() string { return f.xtype }

// DataType returns the column's semantic type.
func (f *Field) DataType() DataType { return f.datatype }

// ArraySize returns the declared arraysize.
func (f *Field) ArraySize() string { return f.arraySize }

// Description returns the DESCRIPTION text.
func (f *Field) Description() string { return f.description }

// Label returns the display label, falling back to the name.
func (f *Field) Label() string {
	if f.label == "" {
		return f.name
	}
	return f.label
}

// ContainsInterval reports whether values of this column are delimited
// lists that must bypass sanitization.
func (f *Field) ContainsInterval() bool {
	return containsFold(f.xtype, intervalKeyword) || containsFold(f.datatype.Token(), intervalKeyword)
}

// Spec returns the attributes the field was built from, with the resolved
// ID and datatype token.
func (f *Field) Spec() FieldSpec {
	return FieldSpec{
		Name:        f.name,
		ID:          f.id,
		UCD:         f.ucd,
		UType:       f.utype,
		Unit:        f.unit,
		XType:       f.xtype,
		DataType:    f.datatype.Token(),
		ArraySize:   f.arraySize,
		Description: f.description,
		Label:       f.label,
	}
}

// Parameter is a PARAM element: a field-shaped descriptor with a constant
// value.
type Parameter struct {
	*Field
	Value string
}

// NewParameter builds a Parameter. Its datatype is resolved like a Field's.
func NewParameter(spec FieldSpec, val string, mode Mode) (*Parameter, error) {
	f, err := NewField(spec, mode)
	if err != nil {
		return nil, fmt.Errorf("param: %w", err)
	}
	return &Parameter{Field: f, Value: val}, nil
}

// TypedValue returns the parameter value sanitized by its datatype.
func (p *Parameter) TypedValue() any {
	if p.ContainsInterval() {
		return p.Value
	}
	return p.DataType().Sanitize(p.Value)
}

// Info is a name/value pair from an INFO element.
type Info struct {
	Name  string
	Value string
}

// IsError reports whether the entry carries a service error.
func (i Info) IsError() bool {
	return i.Name == "ERROR"
}
