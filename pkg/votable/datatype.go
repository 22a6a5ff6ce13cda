package votable

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/opencadc/votv/pkg/value"
)

// =============================================================================
// Kind & Mode
// =============================================================================

// Kind is the semantic type a declared datatype token resolves to.
type Kind int

// Semantic kinds.
const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Mode controls how NewDataType treats a token it does not recognize.
type Mode int

const (
	// Permissive resolves unknown tokens to KindString.
	Permissive Mode = iota
	// Strict rejects unknown tokens with an *UnknownDataTypeError.
	Strict
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// ParseMode converts a configuration value to a Mode.
// Returns the mode and true if valid, or Permissive and false if invalid.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permissive", "":
		return Permissive, true
	case "strict":
		return Strict, true
	default:
		return Permissive, false
	}
}

// =============================================================================
// Errors
// =============================================================================

// ErrUnknownDataType is wrapped by every *UnknownDataTypeError.
var ErrUnknownDataType = errors.New("unknown datatype")

// UnknownDataTypeError is returned in Strict mode for unrecognized tokens.
type UnknownDataTypeError struct {
	Token string
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("datatype %q is not a valid entry", e.Token)
}

// Unwrap returns ErrUnknownDataType.
func (e *UnknownDataTypeError) Unwrap() error {
	return ErrUnknownDataType
}

// =============================================================================
// DataType
// =============================================================================

const defaultToken = "varchar"

var kinds = map[string]Kind{
	"varchar":      KindString,
	"char":         KindString,
	"unicodechar":  KindString,
	"clob":         KindString,
	"region":       KindString,
	"polygon":      KindString,
	"point":        KindString,
	"circle":       KindString,
	"interval":     KindString,
	"uri":          KindString,
	"int":          KindInteger,
	"integer":      KindInteger,
	"long":         KindInteger,
	"bigint":       KindInteger,
	"short":        KindInteger,
	"smallint":     KindInteger,
	"unsignedbyte": KindInteger,
	"float":        KindFloat,
	"double":       KindFloat,
	"real":         KindFloat,
	"timestamp":    KindTimestamp,
	"boolean":      KindBoolean,
	"bool":         KindBoolean,
}

var trueText = regexp.MustCompile(`(?i)^\s*true\s*$`)

// Filter syntax hints shown per column.
const (
	TooltipString    = "String: Substring match , ! to negate matches"
	TooltipNumber    = "Number: 10 or >=10 or 10..20 for a range , ! to negate"
	TooltipTimestamp = "Timestamp: >=2010-01-01 or 2010-01-01..2011-01-01 for a range , ! to negate"
)

// DataType is the immutable semantic type of a column. The zero value is a
// varchar.
type DataType struct {
	token string
	kind  Kind
	known bool
}

// NewDataType classifies a declared datatype token such as "int",
// "adql:DOUBLE" or "unicodeChar". Matching ignores case, surrounding space
// and an "adql:" prefix; an empty token is a varchar.
func NewDataType(token string, mode Mode) (DataType, error) {
	norm := normalizeToken(token)
	if norm == "" {
		return DataType{token: defaultToken, kind: KindString, known: true}, nil
	}

	kind, ok := kinds[norm]
	if !ok {
		if mode == Strict {
			return DataType{}, &UnknownDataTypeError{Token: token}
		}
		return DataType{token: strings.TrimSpace(token), kind: KindString}, nil
	}
	return DataType{token: strings.TrimSpace(token), kind: kind, known: true}, nil
}

// MustDataType is NewDataType in Strict mode that panics on failure.
func MustDataType(token string) DataType {
	dt, err := NewDataType(token, Strict)
	if err != nil {
		panic(err)
	}
	return dt
}

func normalizeToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimPrefix(t, "adql:")
	return strings.TrimSpace(t)
}

// Token returns the declared token as given, trimmed.
func (d DataType) Token() string {
	if d.token == "" {
		return defaultToken
	}
	return d.token
}

// Kind returns the semantic kind.
func (d DataType) Kind() Kind { return d.kind }

// String returns the declared token.
func (d DataType) String() string { return d.Token() }

// IsKnown reports whether the token was recognized.
func (d DataType) IsKnown() bool { return d.known || d.token == "" }

// IsCharDatatype reports membership in the string-like token set. Unknown
// tokens accepted in Permissive mode are not members.
func (d DataType) IsCharDatatype() bool {
	return d.IsKnown() && d.kind == KindString
}

// IsTimestamp reports whether the token is a timestamp.
func (d DataType) IsTimestamp() bool { return d.kind == KindTimestamp }

// IsBoolean reports whether the token is a boolean.
func (d DataType) IsBoolean() bool { return d.kind == KindBoolean }

// IsIntegerNumeric reports whether the token is an integer type.
func (d DataType) IsIntegerNumeric() bool { return d.kind == KindInteger }

// IsFloatingPointNumeric reports whether the token is a floating point type.
func (d DataType) IsFloatingPointNumeric() bool { return d.kind == KindFloat }

// IsNumeric is true for everything that is neither string-like, timestamp
// nor boolean. Unknown tokens accepted in Permissive mode therefore report
// numeric even though they sanitize as strings.
func (d DataType) IsNumeric() bool {
	return !d.IsCharDatatype() && !d.IsTimestamp() && !d.IsBoolean()
}

// Sanitize converts a raw value into the native representation of this
// type: string for string-like and timestamp types, float64 for numbers
// (NaN when unparseable) and bool for booleans. Sanitize is idempotent.
func (d DataType) Sanitize(raw any) any {
	switch d.kind {
	case KindInteger:
		switch v := value.Normalize(raw).(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return v
			}
			return math.Trunc(v)
		case string:
			return value.ParseInt(v)
		default:
			return value.ParseInt(value.String(v))
		}
	case KindFloat:
		switch v := value.Normalize(raw).(type) {
		case float64:
			return v
		case string:
			return value.ParseFloat(v)
		default:
			return value.ParseFloat(value.String(v))
		}
	case KindBoolean:
		switch v := value.Normalize(raw).(type) {
		case bool:
			return v
		case string:
			return trueText.MatchString(v)
		default:
			return false
		}
	default:
		if raw == nil {
			return ""
		}
		return value.String(raw)
	}
}

// Compare orders two values of this type after sanitizing them: strings
// compare trimmed, numbers use the NaN-aware numeric ordering and false
// sorts before true.
func (d DataType) Compare(a, b any) int {
	if value.Normalize(a) == value.Normalize(b) {
		return 0
	}

	x, y := d.Sanitize(a), d.Sanitize(b)
	switch xv := x.(type) {
	case string:
		return strings.Compare(value.TrimSpace(xv), value.TrimSpace(y.(string)))
	case bool:
		yv := y.(bool)
		switch {
		case xv == yv:
			return 0
		case !xv:
			return -1
		default:
			return 1
		}
	default:
		return value.CompareNumeric(x, y)
	}
}

// TooltipText returns the filter syntax hint for columns of this type.
func (d DataType) TooltipText() string {
	switch {
	case d.IsTimestamp():
		return TooltipTimestamp
	case d.IsNumeric():
		return TooltipNumber
	default:
		return TooltipString
	}
}
