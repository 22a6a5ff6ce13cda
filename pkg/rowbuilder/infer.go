package rowbuilder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/opencadc/votv/pkg/value"
	"github.com/opencadc/votv/pkg/votable"
)

const inferSampleSize = 100

// candidate tokens from narrowest to widest
var inferOrder = []string{"boolean", "long", "double", "timestamp", "char"}

type columnGuess struct {
	possible map[string]bool
	seen     int
}

func (g *columnGuess) observe(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	g.seen++

	lower := strings.ToLower(text)
	if lower != "true" && lower != "false" {
		g.possible["boolean"] = false
	}
	if !isInteger(text) {
		g.possible["long"] = false
	}
	if !value.IsNumber(text) {
		g.possible["double"] = false
	}
	if _, err := dateparse.ParseAny(text); err != nil || value.IsNumber(text) {
		g.possible["timestamp"] = false
	}
}

func (g *columnGuess) token() string {
	if g.seen == 0 {
		return "char"
	}
	for _, t := range inferOrder {
		if g.possible[t] {
			return t
		}
	}
	return "char"
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InferMetadata reads the header and up to a hundred records of delimited
// text and returns Metadata with one field per header column. Column
// datatypes are guessed from the sampled values.
func InferMetadata(r io.Reader, comma rune) (*votable.Metadata, error) {
	cr := newCSVReader(r, comma)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidDocument, err)
	}

	guesses := make([]*columnGuess, len(header))
	for i := range guesses {
		possible := make(map[string]bool, len(inferOrder))
		for _, t := range inferOrder {
			possible[t] = true
		}
		guesses[i] = &columnGuess{possible: possible}
	}

	for n := 0; n < inferSampleSize; n++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		for i, text := range record {
			if i < len(guesses) {
				guesses[i].observe(text)
			}
		}
	}

	meta := votable.NewMetadata()
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		f, err := votable.NewField(votable.FieldSpec{Name: name, DataType: guesses[i].token()}, votable.Strict)
		if err != nil {
			return nil, err
		}
		meta.AddField(f)
	}
	return meta, nil
}
