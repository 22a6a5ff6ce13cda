package view

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencadc/votv/internal/testutil"
	"github.com/opencadc/votv/pkg/filter"
	"github.com/opencadc/votv/pkg/votable"
)

func observationsTable() *votable.Table {
	id := votable.MustField(votable.FieldSpec{Name: "obs_id", DataType: "char"})
	ra := votable.MustField(votable.FieldSpec{Name: "ra", DataType: "double"})
	flag := votable.MustField(votable.FieldSpec{Name: "public", DataType: "boolean"})
	fields := []*votable.Field{id, ra, flag}

	raw := [][]any{
		{"2011.03.66.10.N", 10.5, true},
		{"2011.03.66.8.N", math.NaN(), false},
		{"2011.03.66.9.N", -3.25, true},
		{"2012.01.01.10.S", 200.0, false},
	}

	lv := votable.NewLongestValues(fields)
	rows := make([]*votable.Row, 0, len(raw))
	for i, r := range raw {
		cells := make([]votable.Cell, 0, len(r))
		for j, v := range r {
			cells = append(cells, votable.NewCell(v, fields[j]))
			lv.Observe(fields[j].ID(), FormatValue(v))
		}
		rows = append(rows, votable.NewRow("vov_"+string(rune('a'+i)), cells))
	}

	return &votable.Table{
		Metadata: votable.NewMetadata(fields...),
		Data:     &votable.TableData{Rows: rows, LongestValues: lv},
	}
}

func newView(t *testing.T) *View {
	t.Helper()
	engine := filter.New()
	t.Cleanup(func() { _ = engine.Close() })
	return New(observationsTable(), engine, WithLogger(testutil.NewTestLogger(t)))
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		v, _ := r.Get("obs_id")
		out = append(out, v.(string))
	}
	return out
}

func TestProject(t *testing.T) {
	v := newView(t)
	recs := v.Records()
	require.Len(t, recs, 4)

	assert.Equal(t, "vov_a", recs[0].ID)
	assert.Equal(t, []string{"obs_id", "ra", "public"}, recs[0].Keys())
	ra, ok := recs[0].Get("ra")
	require.True(t, ok)
	assert.Equal(t, 10.5, ra)
}

func TestProject_ShortRow(t *testing.T) {
	a := votable.MustField(votable.FieldSpec{Name: "a", DataType: "int"})
	b := votable.MustField(votable.FieldSpec{Name: "b", DataType: "char"})
	rows := []*votable.Row{votable.NewRow("r", []votable.Cell{votable.NewCell(1.0, a)})}

	recs := Project([]*votable.Field{a, b}, rows)
	require.Len(t, recs, 1)
	got, ok := recs[0].Get("b")
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestFilter_NegatedGlob(t *testing.T) {
	v := newView(t)

	got, err := v.Filter(ColumnFilters{"obs_id": "!*10*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2011.03.66.8.N", "2011.03.66.9.N"}, ids(got))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters ColumnFilters
		want    []string
	}{
		{"no filters", nil, []string{"2011.03.66.10.N", "2011.03.66.8.N", "2011.03.66.9.N", "2012.01.01.10.S"}},
		{"empty expression ignored", ColumnFilters{"ra": ""}, []string{"2011.03.66.10.N", "2011.03.66.8.N", "2011.03.66.9.N", "2012.01.01.10.S"}},
		{"glob", ColumnFilters{"obs_id": "2011*"}, []string{"2011.03.66.10.N", "2011.03.66.8.N", "2011.03.66.9.N"}},
		{"relational drops absent", ColumnFilters{"ra": ">0"}, []string{"2011.03.66.10.N", "2012.01.01.10.S"}},
		{"range", ColumnFilters{"ra": "-5..20"}, []string{"2011.03.66.10.N", "2011.03.66.8.N", "2011.03.66.9.N"}},
		{"conjunction", ColumnFilters{"obs_id": "2011*", "ra": ">0"}, []string{"2011.03.66.10.N"}},
		{"by name case-insensitively", ColumnFilters{"OBS_ID": "=2012.01.01.10.s"}, []string{"2012.01.01.10.S"}},
		{"negated exact", ColumnFilters{"obs_id": "!=2011.03.66.9.N"}, []string{"2011.03.66.10.N", "2011.03.66.8.N", "2012.01.01.10.S"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newView(t).Filter(tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_UnknownColumn(t *testing.T) {
	_, err := newView(t).Filter(ColumnFilters{"dec": ">1"})
	var unknown *UnknownColumnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "dec", unknown.Column)
	assert.Equal(t, []string{"obs_id", "ra", "public"}, unknown.Available)
}

func TestExcludes(t *testing.T) {
	engine := filter.New()
	defer engine.Close()

	assert.True(t, Excludes(engine, "!*10*", "2011.03.66.10.N"))
	assert.False(t, Excludes(engine, "!*10*", "2011.03.66.8.N"))
	assert.False(t, Excludes(engine, " ! *10* ", "2011.03.66.8.N"))
	assert.True(t, Excludes(engine, ">1", math.NaN()))
}

func TestSort(t *testing.T) {
	v := newView(t)

	recs := append([]Record(nil), v.Records()...)
	require.NoError(t, v.Sort(recs, "ra", true))
	assert.Equal(t, []string{"2011.03.66.8.N", "2011.03.66.9.N", "2011.03.66.10.N", "2012.01.01.10.S"}, ids(recs))

	require.NoError(t, v.Sort(recs, "obs_id", false))
	assert.Equal(t, []string{"2012.01.01.10.S", "2011.03.66.9.N", "2011.03.66.8.N", "2011.03.66.10.N"}, ids(recs))

	err := v.Sort(recs, "nope", true)
	var unknown *UnknownColumnError
	assert.ErrorAs(t, err, &unknown)
}

func TestSuggest(t *testing.T) {
	v := newView(t)

	tests := []struct {
		name    string
		entered string
		want    []string
	}{
		{"substring", "66.", []string{"2011.03.66.10.N", "2011.03.66.8.N", "2011.03.66.9.N"}},
		{"glob", "*.S", []string{"2012.01.01.10.S"}},
		{"trailing space", "66. ", nil},
		{"operator", ">2011", nil},
		{"exact", "=2011", nil},
		{"range", "1..5", nil},
		{"empty", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Suggest("obs_id", tt.entered))
		})
	}

	assert.Equal(t, []string{"true"}, v.Suggest("public", "tr"))
	assert.Nil(t, v.Suggest("missing", "x"))
}

func TestValues(t *testing.T) {
	v := newView(t)
	assert.Equal(t, []string{"false", "true"}, v.Values("public"))
	assert.Equal(t, []string{"", "-3.25", "10.5", "200"}, v.Values("ra"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "N 224", FormatValue("N 224"))
}

func TestDisplay_JSONSafe(t *testing.T) {
	recs := newView(t).Records()
	b, err := json.Marshal(recs[1].Display())
	require.NoError(t, err)
	assert.JSONEq(t, `{"obs_id":"2011.03.66.8.N","ra":null,"public":false}`, string(b))
}

func TestParseColumnFilter(t *testing.T) {
	tests := []struct {
		in      string
		col     string
		expr    string
		wantErr bool
	}{
		{"ra=>10", "ra", ">10", false},
		{"name==pull", "name", "=pull", false},
		{" obs_id =!*10*", "obs_id", "!*10*", false},
		{"ra", "", "", true},
		{"=5", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			col, expr, err := ParseColumnFilter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.expr, expr)
		})
	}
}

func TestLongestValues(t *testing.T) {
	v := newView(t)
	assert.Equal(t, votable.LongestValues{"obs_id": 15, "ra": 5, "public": 5}, v.LongestValues())
}
