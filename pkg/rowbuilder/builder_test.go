package rowbuilder

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencadc/votv/internal/testutil"
	"github.com/opencadc/votv/pkg/votable"
)

const galaxiesXML = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xmlns="http://www.ivoa.net/xml/VOTable/v1.2">
  <DESCRIPTION>Sample galaxies</DESCRIPTION>
  <INFO name="QUERY_STATUS" value="OK"/>
  <RESOURCE name="datalink" type="meta">
    <PARAM name="standardID" datatype="char" arraysize="*" value="ivo://ivoa.net/std/DataLink#links-1.0"/>
  </RESOURCE>
  <RESOURCE name="myFavouriteGalaxies" type="results">
    <INFO name="provider" value="CADC"/>
    <TABLE name="results">
      <DESCRIPTION>Velocities and Distance estimations</DESCRIPTION>
      <PARAM name="Telescope" datatype="float" ucd="phys.size;instr.tel" unit="m" value="3.6"/>
      <FIELD name="RA" ID="col1" ucd="pos.eq.ra;meta.main" datatype="float" unit="deg"/>
      <FIELD name="Dec" ID="col2" ucd="pos.eq.dec;meta.main" datatype="float" unit="deg"/>
      <FIELD name="Name" ID="col3" ucd="meta.id;meta.main" datatype="char" arraysize="8*"/>
      <FIELD name="RVel" ID="col4" ucd="spect.dopplerVeloc" datatype="int" unit="km/s"/>
      <FIELD name="e_RVel" ID="col5" datatype="int" unit="km/s"/>
      <FIELD name="R" ID="col6" datatype="float" unit="Mpc">
        <DESCRIPTION>Distance of Galaxy, assuming H=75km/s/Mpc</DESCRIPTION>
      </FIELD>
      <DATA>
        <TABLEDATA>
          <TR><TD>010.68</TD><TD>+41.27</TD><TD>N  224</TD><TD>-297</TD><TD>5</TD><TD>0.7</TD></TR>
          <TR><TD>287.43</TD><TD>-63.85</TD><TD>N 6744</TD><TD>839</TD><TD>6</TD><TD>10.4</TD></TR>
          <TR><TD>023.48</TD><TD>+30.66</TD><TD>N  598</TD><TD>-182</TD><TD>3</TD><TD></TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>`

type recorder struct {
	events   []string
	complete *Result
}

func (r *recorder) OnPageAddStart()           { r.events = append(r.events, "start") }
func (r *recorder) OnPageAddEnd()             { r.events = append(r.events, "end") }
func (r *recorder) OnRowAdd(row *votable.Row) { r.events = append(r.events, "row:"+row.ID()) }

func (r *recorder) OnDataLoadComplete(res *Result) {
	r.events = append(r.events, "complete")
	r.complete = res
}

func buildXML(t *testing.T, doc string, rec *recorder, mode votable.Mode) (*Result, error) {
	t.Helper()
	rb := NewRowBuilder(rec, testutil.NewTestLogger(t))
	return NewXMLBuilder(strings.NewReader(doc), rb, mode).Build(context.Background())
}

func TestXMLBuilder_Galaxies(t *testing.T) {
	rec := &recorder{}
	res, err := buildXML(t, galaxiesXML, rec, votable.Strict)
	require.NoError(t, err)

	fields := res.Metadata.Fields()
	require.Len(t, fields, 6)
	assert.Equal(t, "col1", fields[0].ID())
	assert.Equal(t, "deg", fields[0].Unit())
	assert.Equal(t, "Distance of Galaxy, assuming H=75km/s/Mpc", fields[5].Description())
	assert.True(t, fields[3].DataType().IsIntegerNumeric())

	require.Len(t, res.Rows, 3)
	first := res.Rows[0]
	assert.Equal(t, "vov_0", first.ID())
	assert.Equal(t, 6, first.Size())

	ra, _ := first.CellValue("col1")
	assert.Equal(t, 10.68, ra)
	name, _ := first.CellValue("col3")
	assert.Equal(t, "N  224", name)
	vel, _ := first.CellValue("col4")
	assert.Equal(t, -297.0, vel)

	missing, _ := res.Rows[2].CellValue("col6")
	assert.True(t, math.IsNaN(missing.(float64)))

	assert.Equal(t, votable.LongestValues{
		"col1": 6, "col2": 6, "col3": 6, "col4": 4, "col5": 1, "col6": 4,
	}, res.LongestValues)

	assert.Equal(t, []votable.Info{{Name: "provider", Value: "CADC"}}, res.Metadata.Infos())
	assert.Same(t, res, rec.complete)
}

func TestXMLBuilder_DocumentModel(t *testing.T) {
	res, err := buildXML(t, galaxiesXML, &recorder{}, votable.Strict)
	require.NoError(t, err)

	vot := res.VOTable
	require.NotNil(t, vot)
	assert.Equal(t, "Sample galaxies", vot.Description)
	assert.Equal(t, []votable.Info{{Name: "QUERY_STATUS", Value: "OK"}}, vot.Infos)
	require.Len(t, vot.Resources, 2)
	assert.True(t, vot.Resources[0].IsMeta())
	assert.Empty(t, vot.Resources[0].Tables)

	results := vot.ResultsResources()
	require.Len(t, results, 1)
	require.Len(t, results[0].Tables, 1)

	table := results[0].Tables[0]
	assert.Len(t, table.Rows(), 3)
	assert.Equal(t, "Velocities and Distance estimations", table.Metadata.Description())

	params := table.Metadata.Params()
	require.Len(t, params, 1)
	assert.Equal(t, "Telescope", params[0].Name())
	assert.Equal(t, 3.6, params[0].TypedValue())
}

func TestXMLBuilder_PageEvents(t *testing.T) {
	rec := &recorder{}
	rb := &RowBuilder{PageSize: 2, Listener: rec}
	_, err := NewXMLBuilder(strings.NewReader(galaxiesXML), rb, votable.Permissive).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"start", "row:vov_0",
		"end", "row:vov_1",
		"start", "row:vov_2",
		"complete",
	}, rec.events)
}

func TestXMLBuilder_RowIDsAndLowerCaseAttributes(t *testing.T) {
	doc := `<VOTABLE><RESOURCE><TABLE>
		<FIELD name="a" id="alpha" datatype="int"/>
		<FIELD name="b" datatype="char"/>
		<DATA><TABLEDATA>
			<TR ID="first"><TD>1</TD><TD>x</TD></TR>
			<TR><TD>2</TD></TR>
		</TABLEDATA></DATA>
	</TABLE></RESOURCE></VOTABLE>`

	res, err := buildXML(t, doc, &recorder{}, votable.Strict)
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "first", res.Rows[0].ID())
	assert.Equal(t, "vov_1", res.Rows[1].ID())
	assert.Equal(t, 1, res.Rows[1].Size(), "short rows produce only the cells present")

	assert.Equal(t, "alpha", res.Metadata.Fields()[0].ID())
	assert.Equal(t, "b", res.Metadata.Fields()[1].ID())
	assert.Equal(t, 1, res.LongestValues["b"])
}

func TestXMLBuilder_IntervalBypassesSanitize(t *testing.T) {
	doc := `<VOTABLE><RESOURCE type="results"><TABLE>
		<FIELD name="time_bounds" datatype="double" xtype="interval" arraysize="2"/>
		<FIELD name="exptime" datatype="double"/>
		<DATA><TABLEDATA>
			<TR><TD>55000.5 55001.25</TD><TD>55000.5 55001.25</TD></TR>
		</TABLEDATA></DATA>
	</TABLE></RESOURCE></VOTABLE>`

	res, err := buildXML(t, doc, &recorder{}, votable.Strict)
	require.NoError(t, err)

	bounds, _ := res.Rows[0].CellValue("time_bounds")
	assert.Equal(t, "55000.5 55001.25", bounds)
	exptime, _ := res.Rows[0].CellValue("exptime")
	assert.Equal(t, 55000.5, exptime)
}

func TestXMLBuilder_DeclaredEncoding(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<VOTABLE><RESOURCE type=\"results\"><TABLE>" +
		"<FIELD name=\"city\" datatype=\"char\"/>" +
		"<DATA><TABLEDATA><TR><TD>Montr\xe9al</TD></TR></TABLEDATA></DATA>" +
		"</TABLE></RESOURCE></VOTABLE>"

	res, err := buildXML(t, doc, &recorder{}, votable.Strict)
	require.NoError(t, err)

	city, _ := res.Rows[0].CellValue("city")
	assert.Equal(t, "Montréal", city)
	assert.Equal(t, 8, res.LongestValues["city"])
}

func TestXMLBuilder_Failures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"truncated", `<VOTABLE><RESOURCE type="results"><TABLE>`, ErrInvalidDocument},
		{"wrong root", `<html><body/></html>`, ErrInvalidDocument},
		{"empty", ``, ErrInvalidDocument},
		{
			"unknown datatype in strict mode",
			`<VOTABLE><RESOURCE><TABLE><FIELD name="z" datatype="floatComplex"/></TABLE></RESOURCE></VOTABLE>`,
			votable.ErrUnknownDataType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			res, err := buildXML(t, tt.doc, rec, votable.Strict)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Nil(t, res)
			assert.Empty(t, rec.events, "no notifications for a failed build")
		})
	}
}

func TestXMLBuilder_PermissiveUnknownDatatype(t *testing.T) {
	doc := `<VOTABLE><RESOURCE><TABLE><FIELD name="z" datatype="floatComplex"/>
		<DATA><TABLEDATA><TR><TD>1 2</TD></TR></TABLEDATA></DATA></TABLE></RESOURCE></VOTABLE>`

	res, err := buildXML(t, doc, &recorder{}, votable.Permissive)
	require.NoError(t, err)
	v, _ := res.Rows[0].CellValue("z")
	assert.Equal(t, "1 2", v)
}

func TestXMLBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	_, err := NewXMLBuilder(strings.NewReader(galaxiesXML), &RowBuilder{Listener: rec}, votable.Strict).Build(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rec.events)
}

func TestBuildRow(t *testing.T) {
	fields := []*votable.Field{
		votable.MustField(votable.FieldSpec{Name: "n", DataType: "int"}),
		nil,
		votable.MustField(votable.FieldSpec{Name: "ok", DataType: "boolean"}),
	}
	lv := votable.NewLongestValues(fields)

	row := BuildRow(fields, "r1", []int{7, 8, 1, 99}, lv, func(raw []int, i int) string {
		if raw[i] == 1 {
			return "true"
		}
		return strings.Repeat("9", raw[i])
	})

	assert.Equal(t, "r1", row.ID())
	require.Equal(t, 2, row.Size())
	n, _ := row.CellValue("n")
	assert.Equal(t, 9999999.0, n)
	ok, _ := row.CellValue("ok")
	assert.Equal(t, true, ok)
	assert.Equal(t, votable.LongestValues{"n": 7, "ok": 4}, lv)
}
