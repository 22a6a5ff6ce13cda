// Package value implements the loose primitive semantics used when cell
// values of unknown or mixed type meet user-entered text.
//
// Every operation first normalizes its operands to one of four shapes:
// nil, bool, float64 or string. Go numeric kinds become float64, byte
// slices and fmt.Stringer implementations become strings, and anything else
// is represented by its fmt string form. The conversions follow the rules
// browsers apply to the same values, so filter expressions written against
// the web viewer behave identically here.
package value

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize returns v as nil, bool, float64 or string.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case bool:
		return t
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// IsString reports whether v normalizes to a string.
func IsString(v any) bool {
	_, ok := Normalize(v).(string)
	return ok
}

// AreStrings reports whether every argument is a string.
func AreStrings(vs ...any) bool {
	for _, v := range vs {
		if !IsString(v) {
			return false
		}
	}
	return true
}

// IsNumber reports whether v parses as a number and is finite as a whole.
// A string qualifies only when its leading numeric prefix parses and the
// complete trimmed text converts to a finite number, so "12" and " 1e3 "
// are numbers while "12abc", "" and "Infinity" are not.
func IsNumber(v any) bool {
	v = Normalize(v)
	if math.IsNaN(ParseFloat(String(v))) {
		return false
	}
	n := ToNumber(v)
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// AreNumbers reports whether every argument satisfies IsNumber.
func AreNumbers(vs ...any) bool {
	for _, v := range vs {
		if !IsNumber(v) {
			return false
		}
	}
	return true
}

// Float is the leading-prefix numeric reading of v's string form.
func Float(v any) float64 {
	if f, ok := Normalize(v).(float64); ok {
		return f
	}
	return ParseFloat(String(v))
}

// IsNaN reports whether v converts to NaN under ToNumber.
func IsNaN(v any) bool {
	return math.IsNaN(ToNumber(v))
}

// IsZero reports whether v is a number exactly equal to zero. Strings are
// never zero, even "0".
func IsZero(v any) bool {
	f, ok := Normalize(v).(float64)
	return ok && f == 0
}

// String returns the canonical string form of v: "null" for nil,
// "true"/"false" for booleans and the shortest round-trip decimal form for
// numbers ("NaN", "Infinity" and exponent forms included).
func String(v any) string {
	switch t := Normalize(v).(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(t)
	case string:
		return t
	}
	return ""
}

var upper = language.Und

// Upper upper-cases s without locale tailoring, expanding characters such
// as ß into their full upper-case sequence.
func Upper(s string) string {
	return cases.Upper(upper).String(s)
}

// TrimSpace removes leading and trailing white space, including the byte
// order mark.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
