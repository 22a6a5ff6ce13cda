package rowbuilder

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/net/html/charset"

	"github.com/opencadc/votv/pkg/votable"
)

// Element names carry no namespace so documents of every VOTable version
// decode the same way.
type xmlVOTable struct {
	XMLName     xml.Name      `xml:"VOTABLE"`
	Version     string        `xml:"version,attr"`
	Description string        `xml:"DESCRIPTION"`
	Infos       []xmlInfo     `xml:"INFO"`
	Params      []xmlField    `xml:"PARAM"`
	Resources   []xmlResource `xml:"RESOURCE"`
}

type xmlResource struct {
	ID          string        `xml:"ID,attr"`
	LowerID     string        `xml:"id,attr"`
	Name        string        `xml:"name,attr"`
	Type        string        `xml:"type,attr"`
	Description string        `xml:"DESCRIPTION"`
	Infos       []xmlInfo     `xml:"INFO"`
	Params      []xmlField    `xml:"PARAM"`
	Tables      []xmlTable    `xml:"TABLE"`
	Resources   []xmlResource `xml:"RESOURCE"`
}

type xmlTable struct {
	ID          string     `xml:"ID,attr"`
	LowerID     string     `xml:"id,attr"`
	Name        string     `xml:"name,attr"`
	Description string     `xml:"DESCRIPTION"`
	Infos       []xmlInfo  `xml:"INFO"`
	Params      []xmlField `xml:"PARAM"`
	Fields      []xmlField `xml:"FIELD"`
	Rows        []xmlRow   `xml:"DATA>TABLEDATA>TR"`
	Binary      *struct{}  `xml:"DATA>BINARY"`
	Binary2     *struct{}  `xml:"DATA>BINARY2"`
	FITS        *struct{}  `xml:"DATA>FITS"`
}

type xmlField struct {
	ID          string `xml:"ID,attr"`
	LowerID     string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	UCD         string `xml:"ucd,attr"`
	UType       string `xml:"utype,attr"`
	Unit        string `xml:"unit,attr"`
	XType       string `xml:"xtype,attr"`
	DataType    string `xml:"datatype,attr"`
	ArraySize   string `xml:"arraysize,attr"`
	Value       string `xml:"value,attr"`
	Description string `xml:"DESCRIPTION"`
}

type xmlInfo struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlRow struct {
	ID      string    `xml:"ID,attr"`
	LowerID string    `xml:"id,attr"`
	Cells   []xmlCell `xml:"TD"`
}

type xmlCell struct {
	Text string `xml:",chardata"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (f xmlField) spec() votable.FieldSpec {
	return votable.FieldSpec{
		Name:        f.Name,
		ID:          firstNonEmpty(f.ID, f.LowerID),
		UCD:         f.UCD,
		UType:       f.UType,
		Unit:        f.Unit,
		XType:       f.XType,
		DataType:    f.DataType,
		ArraySize:   f.ArraySize,
		Description: f.Description,
		Label:       f.Name,
	}
}

func cellText(raw []xmlCell, index int) string {
	return raw[index].Text
}

// XMLBuilder reads a VOTable XML document. Every TABLE of every results
// RESOURCE contributes fields and rows; only TABLEDATA serialization is
// read.
type XMLBuilder struct {
	*RowBuilder
	Reader io.Reader
	Mode   votable.Mode
}

// NewXMLBuilder creates an XMLBuilder reading r.
func NewXMLBuilder(r io.Reader, rb *RowBuilder, mode votable.Mode) *XMLBuilder {
	return &XMLBuilder{RowBuilder: rb, Reader: r, Mode: mode}
}

// Build decodes the whole document, then notifies the listener.
func (b *XMLBuilder) Build(ctx context.Context) (*Result, error) {
	if b.Reader == nil {
		return nil, fmt.Errorf("%w: no XML input", ErrInvalidDocument)
	}

	dec := xml.NewDecoder(b.Reader)
	dec.CharsetReader = charset.NewReaderLabel

	var doc xmlVOTable
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode VOTable: %w", ErrInvalidDocument, err)
	}

	res, tables, err := b.assemble(ctx, &doc)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		b.notifyRows(t.Rows())
	}
	b.listener().OnDataLoadComplete(res)
	return res, nil
}

func (b *XMLBuilder) assemble(ctx context.Context, doc *xmlVOTable) (*Result, []*votable.Table, error) {
	log := b.logger()

	vot := &votable.VOTable{
		Description: doc.Description,
		Metadata:    votable.NewMetadata(),
	}
	vot.Metadata.SetDescription(doc.Description)
	for _, i := range doc.Infos {
		info := votable.Info{Name: i.Name, Value: i.Value}
		vot.Infos = append(vot.Infos, info)
		vot.Metadata.AddInfo(info)
	}
	if err := addParams(vot.Metadata, doc.Params, b.Mode); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	res := &Result{
		VOTable:       vot,
		Metadata:      votable.NewMetadata(),
		LongestValues: votable.LongestValues{},
	}
	res.Metadata.SetDescription(doc.Description)

	var tables []*votable.Table
	for _, xr := range flattenResources(doc.Resources) {
		resource, err := b.resource(ctx, xr, res)
		if err != nil {
			return nil, nil, err
		}
		vot.Resources = append(vot.Resources, resource)
		if resource.IsResults() {
			tables = append(tables, resource.Tables...)
		}
	}

	log.Debug("VOTable decoded",
		slog.String("version", doc.Version),
		slog.Int("resources", len(vot.Resources)),
		slog.Int("tables", len(tables)),
		slog.Int("rows", len(res.Rows)))

	return res, tables, nil
}

// flattenResources lists resources depth first, nested ones after their
// parent.
func flattenResources(in []xmlResource) []xmlResource {
	var out []xmlResource
	for _, r := range in {
		out = append(out, r)
		out = append(out, flattenResources(r.Resources)...)
	}
	return out
}

func (b *XMLBuilder) resource(ctx context.Context, xr xmlResource, res *Result) (*votable.Resource, error) {
	meta := votable.NewMetadata()
	meta.SetDescription(xr.Description)
	for _, i := range xr.Infos {
		meta.AddInfo(votable.Info{Name: i.Name, Value: i.Value})
	}
	if err := addParams(meta, xr.Params, b.Mode); err != nil {
		return nil, fmt.Errorf("%w: resource %q: %w", ErrInvalidDocument, xr.Name, err)
	}

	resource := &votable.Resource{
		ID:       firstNonEmpty(xr.ID, xr.LowerID),
		Name:     xr.Name,
		Type:     xr.Type,
		Metadata: meta,
	}
	if !resource.IsResults() {
		return resource, nil
	}

	for _, i := range meta.Infos() {
		res.Metadata.AddInfo(i)
	}
	for _, p := range meta.Params() {
		res.Metadata.AddParam(p)
	}

	for ti, xt := range xr.Tables {
		table, err := b.table(ctx, xt, res)
		if err != nil {
			return nil, fmt.Errorf("resource %q table %d: %w", xr.Name, ti+1, err)
		}
		resource.Tables = append(resource.Tables, table)
	}
	return resource, nil
}

func (b *XMLBuilder) table(ctx context.Context, xt xmlTable, res *Result) (*votable.Table, error) {
	meta := votable.NewMetadata()
	meta.SetDescription(xt.Description)
	for _, i := range xt.Infos {
		meta.AddInfo(votable.Info{Name: i.Name, Value: i.Value})
	}
	if err := addParams(meta, xt.Params, b.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	for _, xf := range xt.Fields {
		f, err := votable.NewField(xf.spec(), b.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		meta.AddField(f)
		res.Metadata.AddField(f)
		res.LongestValues[f.ID()] = -1
	}

	if xt.Binary != nil || xt.Binary2 != nil || xt.FITS != nil {
		b.logger().Warn("table data is not TABLEDATA serialized, rows skipped",
			slog.String("table", xt.Name))
	}

	fields := meta.Fields()
	rows := make([]*votable.Row, 0, len(xt.Rows))
	for i, xr := range xt.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := firstNonEmpty(xr.ID, xr.LowerID)
		if id == "" {
			id = "vov_" + strconv.Itoa(i)
		}
		rows = append(rows, BuildRow(fields, id, xr.Cells, res.LongestValues, cellText))
	}
	res.Rows = append(res.Rows, rows...)

	return &votable.Table{
		Metadata: meta,
		Data:     &votable.TableData{Rows: rows, LongestValues: res.LongestValues},
	}, nil
}

func addParams(meta *votable.Metadata, params []xmlField, mode votable.Mode) error {
	for _, xp := range params {
		p, err := votable.NewParameter(xp.spec(), xp.Value, mode)
		if err != nil {
			return err
		}
		meta.AddParam(p)
	}
	return nil
}
