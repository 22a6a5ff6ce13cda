package commands

import (
	"strconv"

	"github.com/Velocidex/ordereddict"
	"github.com/opencadc/votv/internal/cli/output"
	"github.com/opencadc/votv/pkg/view"
	"github.com/opencadc/votv/pkg/votable"
)

// recordsDataset lays records out under their field labels.
func recordsDataset(fields []*votable.Field, recs []view.Record) output.Dataset {
	d := output.Dataset{
		Columns: make([]string, 0, len(fields)),
		Headers: make([]string, 0, len(fields)),
		Rows:    make([]*ordereddict.Dict, 0, len(recs)),
		Text:    view.FormatValue,
	}
	for _, f := range fields {
		d.Columns = append(d.Columns, f.ID())
		d.Headers = append(d.Headers, f.Label())
	}
	for _, rec := range recs {
		d.Rows = append(d.Rows, rec.Display())
	}
	return d
}

var fieldColumns = []string{"id", "name", "datatype", "unit", "ucd", "xtype", "longest", "tooltip"}

// fieldsDataset describes the columns of a table, one row per field.
func fieldsDataset(fields []*votable.Field, longest votable.LongestValues) output.Dataset {
	d := output.Dataset{Columns: fieldColumns}
	for _, f := range fields {
		d.Rows = append(d.Rows, ordereddict.NewDict().
			Set("id", f.ID()).
			Set("name", f.Name()).
			Set("datatype", f.DataType().Token()).
			Set("unit", f.Unit()).
			Set("ucd", f.UCD()).
			Set("xtype", f.XType()).
			Set("longest", longest[f.ID()]).
			Set("tooltip", f.DataType().TooltipText()))
	}
	d.Text = func(v any) string {
		if n, ok := v.(int); ok {
			return strconv.Itoa(n)
		}
		return view.FormatValue(v)
	}
	return d
}
