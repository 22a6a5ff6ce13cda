package votable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField(t *testing.T) {
	t.Run("ID falls back to name", func(t *testing.T) {
		f := MustField(FieldSpec{Name: "RA", DataType: "float"})
		assert.Equal(t, "RA", f.ID())
		assert.Equal(t, "RA", f.Label())
	})

	t.Run("xtype overrides datatype", func(t *testing.T) {
		f := MustField(FieldSpec{Name: "s_region", DataType: "double", XType: "polygon", ArraySize: "*"})
		assert.True(t, f.DataType().IsCharDatatype())
		assert.Equal(t, "polygon", f.DataType().Token())
		assert.False(t, f.ContainsInterval())
	})

	t.Run("unrecognized xtype keeps datatype", func(t *testing.T) {
		f := MustField(FieldSpec{Name: "t", DataType: "double", XType: "mjd"})
		assert.True(t, f.DataType().IsFloatingPointNumeric())
		assert.Equal(t, "mjd", f.XType())
	})

	t.Run("interval xtype", func(t *testing.T) {
		f := MustField(FieldSpec{Name: "time_bounds", DataType: "double", XType: "INTERVAL"})
		assert.True(t, f.ContainsInterval())
	})

	t.Run("interval datatype", func(t *testing.T) {
		f := MustField(FieldSpec{Name: "bounds", DataType: "interval"})
		assert.True(t, f.ContainsInterval())
		assert.Equal(t, "interval", f.XType())
	})

	t.Run("strict rejects unknown datatype", func(t *testing.T) {
		_, err := NewField(FieldSpec{Name: "c", DataType: "floatComplex"}, Strict)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownDataType)
		assert.Contains(t, err.Error(), `field "c"`)
	})
}

func TestParameter(t *testing.T) {
	p, err := NewParameter(FieldSpec{Name: "Telescope", DataType: "float", Unit: "m"}, "3.6", Strict)
	require.NoError(t, err)
	assert.Equal(t, "Telescope", p.ID())
	assert.Equal(t, 3.6, p.TypedValue())
}

func TestInfo_IsError(t *testing.T) {
	assert.True(t, Info{Name: "ERROR", Value: "boom"}.IsError())
	assert.False(t, Info{Name: "QUERY_STATUS", Value: "OK"}.IsError())
}

func TestMetadata(t *testing.T) {
	ra := MustField(FieldSpec{Name: "RA", ID: "col1", DataType: "float"})
	dec := MustField(FieldSpec{Name: "Dec", ID: "col2", DataType: "float"})
	name := MustField(FieldSpec{Name: "Name", ID: "col3", DataType: "char"})

	m := NewMetadata()
	m.InsertField(2, name)
	m.InsertField(0, ra)
	require.Len(t, m.Fields(), 3)
	assert.Nil(t, m.Fields()[1])

	assert.Same(t, name, m.Field("col3"))
	assert.Nil(t, m.Field("col2"))
	assert.False(t, m.HasFieldWithID("col2"))
	assert.Nil(t, m.Field(""))

	m.InsertField(1, dec)
	assert.True(t, m.HasFieldWithID("col2"))
	assert.Equal(t, 1, m.FieldIndex("col2"))
	assert.Equal(t, -1, m.FieldIndex("nope"))

	m.AddInfo(Info{Name: "QUERY_STATUS", Value: "ERROR"})
	m.AddInfo(Info{Name: "ERROR", Value: "timeout"})
	assert.Len(t, m.Infos(), 2)
	assert.Equal(t, []Info{{Name: "ERROR", Value: "timeout"}}, m.Errors())
}

func TestRow_CellValue(t *testing.T) {
	ra := MustField(FieldSpec{Name: "RA", ID: "col1", DataType: "float"})
	name := MustField(FieldSpec{Name: "Name", ID: "col3", DataType: "char"})

	row := NewRow("vov_1", []Cell{NewCell(10.68, ra), NewCell("N  224", name)})
	assert.Equal(t, "vov_1", row.ID())
	assert.Equal(t, 2, row.Size())

	v, ok := row.CellValue("col3")
	assert.True(t, ok)
	assert.Equal(t, "N  224", v)

	_, ok = row.CellValue("col9")
	assert.False(t, ok)
}

func TestLongestValues(t *testing.T) {
	a := MustField(FieldSpec{Name: "a"})
	b := MustField(FieldSpec{Name: "b"})

	lv := NewLongestValues([]*Field{a, nil, b})
	assert.Equal(t, LongestValues{"a": -1, "b": -1}, lv)

	lv.Observe("a", "abc")
	lv.Observe("a", "é")
	lv.Observe("b", "")
	lv.Observe("a", "héllo")
	assert.Equal(t, 5, lv["a"])
	assert.Equal(t, -1, lv["b"])
}

func TestVOTable_ResultsResources(t *testing.T) {
	results := &Resource{Name: "results", Type: "results"}
	untyped := &Resource{Name: "default"}
	meta := &Resource{Name: "datalink", Type: "meta"}

	v := &VOTable{Resources: []*Resource{meta, results, untyped}}
	assert.Equal(t, []*Resource{results, untyped}, v.ResultsResources())
	assert.True(t, meta.IsMeta())
	assert.False(t, meta.IsResults())
}
