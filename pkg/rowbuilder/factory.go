package rowbuilder

import (
	"fmt"
	"io"
	"strings"

	"github.com/opencadc/votv/pkg/votable"
)

// Input types.
const (
	TypeXML = "xml"
	TypeCSV = "csv"
	TypeTSV = "tsv"
)

// Input describes a document to ingest.
type Input struct {
	// Type is xml (the default), csv or tsv.
	Type   string
	Reader io.Reader
	// Metadata describes the columns of delimited text.
	Metadata *votable.Metadata
	Mode     votable.Mode
}

// UnknownTypeError is returned by NewBuilder for an unsupported input type.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown input type %q (expected xml, csv or tsv)", e.Type)
}

// NewBuilder selects the ingestion strategy for in.
func NewBuilder(in Input, rb *RowBuilder) (RowBuildable, error) {
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case TypeXML, "", "votable":
		return NewXMLBuilder(in.Reader, rb, in.Mode), nil
	case TypeCSV:
		return NewCSVBuilder(in.Reader, in.Metadata, rb), nil
	case TypeTSV:
		b := NewCSVBuilder(in.Reader, in.Metadata, rb)
		b.Comma = '\t'
		return b, nil
	default:
		return nil, &UnknownTypeError{Type: in.Type}
	}
}

// TypeForPath guesses the input type from a file extension.
func TypeForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return TypeCSV
	case strings.HasSuffix(lower, ".tsv"), strings.HasSuffix(lower, ".tab"):
		return TypeTSV
	default:
		return TypeXML
	}
}

// Comma returns the delimiter for a delimited input type.
func Comma(typ string) rune {
	if strings.EqualFold(typ, TypeTSV) {
		return '\t'
	}
	return ','
}
