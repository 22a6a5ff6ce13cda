package value

import "math"

// Equal reports loose equality. Strings compare with numbers by converting
// the string, booleans compare as 0 or 1, nil equals only nil and NaN
// equals nothing.
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x == y
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x == y
		}
	case bool:
		if y, ok := b.(bool); ok {
			return x == y
		}
		return Equal(ToNumber(x), b)
	}

	if _, ok := b.(bool); ok {
		return Equal(a, ToNumber(b))
	}
	return ToNumber(a) == ToNumber(b)
}

// less is the abstract relational comparison a < b. Two strings compare
// lexically; any other pairing compares numerically, and the result is
// undefined (ok == false) when either side is NaN.
func less(a, b any) (lt, ok bool) {
	a, b = Normalize(a), Normalize(b)
	if x, isStr := a.(string); isStr {
		if y, isStr := b.(string); isStr {
			return x < y, true
		}
	}

	x, y := ToNumber(a), ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false, false
	}
	return x < y, true
}

// LessThan is a < b under loose comparison.
func LessThan(a, b any) bool {
	lt, ok := less(a, b)
	return ok && lt
}

// GreaterThan is a > b under loose comparison.
func GreaterThan(a, b any) bool {
	lt, ok := less(b, a)
	return ok && lt
}

// LessOrEqual is a <= b under loose comparison; false when undefined.
func LessOrEqual(a, b any) bool {
	lt, ok := less(b, a)
	return ok && !lt
}

// GreaterOrEqual is a >= b under loose comparison; false when undefined.
func GreaterOrEqual(a, b any) bool {
	lt, ok := less(a, b)
	return ok && !lt
}

// Compare orders a and b loosely: 0 when Equal, 1 when a > b, -1
// otherwise. Incomparable pairs therefore report -1 in both directions.
func Compare(a, b any) int {
	switch {
	case Equal(a, b):
		return 0
	case GreaterThan(a, b):
		return 1
	default:
		return -1
	}
}

// CompareNumeric orders values of a numeric column where absent data is
// represented by NaN.
//
//   - NaN against an exact 0 sorts first, 0 against NaN sorts last.
//   - Two NaNs are equal.
//   - Otherwise a lone NaN sorts before the non-NaN value.
//   - Everything else falls back to Compare.
//
// Absent data therefore sorts low: ascending order puts every NaN ahead of
// the numbers.
func CompareNumeric(x, y any) int {
	xNaN, yNaN := IsNaN(x), IsNaN(y)
	xZero, yZero := IsZero(x), IsZero(y)

	switch {
	case xNaN && yZero:
		return -1
	case xZero && yNaN:
		return 1
	case xNaN && yNaN:
		return 0
	case !xNaN && yNaN:
		return 1
	case xNaN && !yNaN:
		return -1
	default:
		return Compare(x, y)
	}
}
