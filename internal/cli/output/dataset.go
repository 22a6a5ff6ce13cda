package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/Velocidex/ordereddict"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Dataset is a list of ordered records sharing a column set.
type Dataset struct {
	// Columns are the record keys in display order.
	Columns []string
	// Headers label the columns; missing entries fall back to the key.
	Headers []string
	Rows    []*ordereddict.Dict
	// Text renders a value for the text formats; nil uses fmt.
	Text func(any) string
}

func (d Dataset) header(i int) string {
	if i < len(d.Headers) && d.Headers[i] != "" {
		return d.Headers[i]
	}
	return d.Columns[i]
}

func (d Dataset) text(v any) string {
	if d.Text != nil {
		return d.Text(v)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (d Dataset) writer() table.Writer {
	t := table.NewWriter()
	hdr := make(table.Row, len(d.Columns))
	for i := range d.Columns {
		hdr[i] = d.header(i)
	}
	t.AppendHeader(hdr)

	for _, rec := range d.Rows {
		row := make(table.Row, len(d.Columns))
		for i, col := range d.Columns {
			v, _ := rec.Get(col)
			row[i] = d.text(v)
		}
		t.AppendRow(row)
	}
	return t
}

// Dataset writes d in the effective mode.
func (r *Renderer) Dataset(d Dataset) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.datasetJSON(d)
	case ModeYAML:
		return r.datasetYAML(d)
	case ModeCSV:
		return r.datasetCSV(d)
	case ModeMarkdown:
		r.Println(d.writer().RenderMarkdown())
		r.Println()
		r.Println(fmt.Sprintf("(%d rows)", len(d.Rows)))
		return nil
	default:
		if len(d.Rows) == 0 {
			r.Muted("(0 rows)")
			return nil
		}
		t := d.writer()
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		r.Muted(fmt.Sprintf("(%d rows)", len(d.Rows)))
		return nil
	}
}

// datasetCSV writes RFC 4180 records. go-pretty's RenderCSV backslash-escapes
// commas, so it is not used here.
func (r *Renderer) datasetCSV(d Dataset) error {
	w := csv.NewWriter(r.out)
	hdr := make([]string, len(d.Columns))
	for i := range d.Columns {
		hdr[i] = d.header(i)
	}
	if err := w.Write(hdr); err != nil {
		return err
	}
	for _, rec := range d.Rows {
		row := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			v, _ := rec.Get(col)
			row[i] = d.text(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Renderer) datasetJSON(d Dataset) error {
	rows := d.Rows
	if rows == nil {
		rows = []*ordereddict.Dict{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func (r *Renderer) datasetYAML(d Dataset) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range d.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range d.Columns {
			v, _ := rec.Get(col)
			val := &yaml.Node{}
			if err := val.Encode(v); err != nil {
				return fmt.Errorf("encode %s: %w", col, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: col},
				val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}
