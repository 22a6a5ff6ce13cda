// Package compare orders records by a single column.
//
// A Comparator is bound to its column key and mode at construction and is
// never modified, so each sort pass builds its own.
package compare

import (
	"errors"
	"fmt"
	"slices"

	"github.com/opencadc/votv/pkg/value"
	"github.com/opencadc/votv/pkg/votable"
)

// ErrNoSortKey is returned, or raised by a zero Comparator, when no column
// key is bound.
var ErrNoSortKey = errors.New("no sort key")

// Record is anything a column value can be looked up in.
type Record interface {
	Get(key string) (any, bool)
}

// MapRecord is a Record over a plain map.
type MapRecord map[string]any

// Get returns the value stored under key.
func (m MapRecord) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Comparator orders two records by the value of one column.
type Comparator struct {
	key     string
	numeric bool
}

// New binds a comparator to a column. Numeric mode applies the NaN-aware
// ordering where absent values (NaN) sort before every number.
func New(key string, numeric bool) (*Comparator, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: comparator needs a column key", ErrNoSortKey)
	}
	return &Comparator{key: key, numeric: numeric}, nil
}

// ForField binds a comparator to a field, choosing numeric mode from its
// datatype.
func ForField(f *votable.Field) (*Comparator, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil field", ErrNoSortKey)
	}
	return New(f.ID(), f.DataType().IsNumeric())
}

// Key returns the bound column key.
func (c *Comparator) Key() string { return c.key }

// Numeric reports whether the NaN-aware numeric ordering is used.
func (c *Comparator) Numeric() bool { return c.numeric }

// Compare returns -1, 0 or 1. It panics when no column key is bound; that
// is a programming error rather than a data condition.
func (c *Comparator) Compare(left, right Record) int {
	if c == nil || c.key == "" {
		panic(fmt.Errorf("%w: compare called before a column key was bound", ErrNoSortKey))
	}

	x, y := c.extract(left), c.extract(right)
	if c.numeric {
		return value.CompareNumeric(x, y)
	}
	return value.Compare(x, y)
}

func (c *Comparator) extract(r Record) any {
	if r == nil {
		return nil
	}
	v, _ := r.Get(c.key)
	return v
}

// Sort orders records in place with a stable sort. Descending order
// inverts every comparison, so ties keep their input order either way.
func Sort[R Record](records []R, c *Comparator, ascending bool) {
	slices.SortStableFunc(records, func(a, b R) int {
		if ascending {
			return c.Compare(a, b)
		}
		return -c.Compare(a, b)
	})
}
