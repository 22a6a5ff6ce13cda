package value

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	floatPrefix   = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
	decimalNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	intPrefix     = regexp.MustCompile(`^\d+`)
	hexPrefix     = regexp.MustCompile(`^[0-9a-fA-F]+`)
)

// ParseFloat reads the longest numeric prefix of s after leading white
// space. It returns NaN when no prefix parses.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, isSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	if strings.HasSuffix(m, "Infinity") {
		if m[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return parseDecimal(m)
}

// ParseInt reads a leading integer from s, truncating any fraction. A
// "0x" prefix selects hexadecimal. It returns NaN when no digits are found.
func ParseInt(s string) float64 {
	s = TrimSpace(s)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits := hexPrefix.FindString(s[2:])
		if digits == "" {
			return math.NaN()
		}
		return sign * parseBase(digits, 16)
	}

	digits := intPrefix.FindString(s)
	if digits == "" {
		return math.NaN()
	}
	return sign * parseDecimal(digits)
}

// ToNumber converts v the way an arithmetic context would: nil is 0,
// booleans are 0 or 1, strings must be numeric in their entirety (blank
// strings are 0) and anything else is NaN.
func ToNumber(v any) float64 {
	switch t := Normalize(v).(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		return t
	case string:
		return stringToNumber(t)
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if strings.IndexFunc(digits, func(r rune) bool { return r == '+' || r == '-' || r == '_' }) >= 0 {
				return math.NaN()
			}
			return parseBase(digits, base)
		}
	}

	if !decimalNumber.MatchString(s) {
		return math.NaN()
	}
	return parseDecimal(s)
}

// parseDecimal parses a string already known to be a decimal literal.
// Out-of-range magnitudes saturate to ±Inf or 0 like strconv does.
func parseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

func parseBase(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// FormatNumber renders f in its shortest round-trip form. Magnitudes in
// [1e-6, 1e21) use plain decimal notation; the rest use an exponent without
// zero padding, e.g. 1e+21 and 1.5e-7.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
