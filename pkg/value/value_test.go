package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"integer string", "12", true},
		{"padded float string", " 1e3 ", true},
		{"negative decimal", "-0.5", true},
		{"leading dot", ".5", true},
		{"trailing garbage", "12abc", false},
		{"empty", "", false},
		{"blank", "   ", false},
		{"infinity literal", "Infinity", false},
		{"NaN literal", "NaN", false},
		{"int", 42, true},
		{"float", 3.5, true},
		{"NaN float", math.NaN(), false},
		{"inf float", math.Inf(1), false},
		{"bool", true, false},
		{"nil", nil, false},
		{"letters", "N", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumber(tt.in))
		})
	}
}

func TestAreNumbersAndStrings(t *testing.T) {
	assert.True(t, AreNumbers("1", 2, "3.5"))
	assert.False(t, AreNumbers("1", "x"))
	assert.True(t, AreNumbers())

	assert.True(t, AreStrings("a", "b"))
	assert.False(t, AreStrings("a", 1))
	assert.False(t, AreStrings(nil))
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 12.0, ParseFloat("12abc"))
	assert.Equal(t, -0.25, ParseFloat("  -.25"))
	assert.Equal(t, 1000.0, ParseFloat("1e3x"))
	assert.Equal(t, 5.0, ParseFloat("5e"))
	assert.True(t, math.IsInf(ParseFloat("-Infinity and beyond"), -1))
	assert.True(t, math.IsNaN(ParseFloat("abc")))
	assert.True(t, math.IsNaN(ParseFloat("")))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3.0, ParseInt("3.7"))
	assert.Equal(t, -3.0, ParseInt("-3.7"))
	assert.Equal(t, 42.0, ParseInt("  42abc"))
	assert.Equal(t, 31.0, ParseInt("0x1F"))
	assert.Equal(t, 1.0, ParseInt("1e3"))
	assert.Equal(t, 735.0, ParseInt("735.0"))
	assert.True(t, math.IsNaN(ParseInt("")))
	assert.True(t, math.IsNaN(ParseInt("abc")))
	assert.True(t, math.IsNaN(ParseInt("0x")))
}

func TestToNumber(t *testing.T) {
	assert.Equal(t, 0.0, ToNumber(""))
	assert.Equal(t, 0.0, ToNumber(nil))
	assert.Equal(t, 1.0, ToNumber(true))
	assert.Equal(t, 16.0, ToNumber("0x10"))
	assert.Equal(t, 5.0, ToNumber("0b101"))
	assert.Equal(t, 12.5, ToNumber(" 12.5 "))
	assert.True(t, math.IsNaN(ToNumber("12abc")))
	assert.True(t, math.IsNaN(ToNumber("-0x10")))
	assert.True(t, math.IsInf(ToNumber("Infinity"), 1))
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{9, "9"},
		{-45, "-45"},
		{0.1, "0.1"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012.0, "123456789012"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
		{"text", "text"},
		{[]byte("raw"), "raw"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, String(tt.in))
	}
}

func TestUpper(t *testing.T) {
	assert.Equal(t, "PULL", Upper("pull"))
	assert.Equal(t, "STRASSE", Upper("straße"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("4", 4))
	assert.True(t, Equal(4, 4.0))
	assert.True(t, Equal(true, 1))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, 0))
	assert.False(t, Equal(math.NaN(), math.NaN()))
	assert.False(t, Equal("a", "A"))
}

func TestRelational(t *testing.T) {
	assert.True(t, LessThan("abc", "abd"))
	assert.True(t, LessThan("12", "9"), "two strings compare lexically")
	assert.True(t, GreaterThan(12, "9"), "mixed operands compare numerically")
	assert.False(t, LessOrEqual(9, "N"), "NaN makes the relation undefined")
	assert.False(t, GreaterOrEqual(9, "N"))
	assert.True(t, LessOrEqual(3, 3))
	assert.True(t, GreaterOrEqual("b", "a"))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("4", 4))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare("a", "b"))
	assert.Equal(t, -1, Compare(math.NaN(), 1))
	assert.Equal(t, -1, Compare(1, math.NaN()))
}

func TestCompareNumeric(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		x, y any
		want int
	}{
		{"NaN before zero", nan, 0.0, -1},
		{"zero after NaN", 0.0, nan, 1},
		{"both NaN", nan, nan, 0},
		{"number after NaN", -1.0, nan, 1},
		{"NaN before number", nan, 3.0, -1},
		{"plain less", -1.0, 3.0, -1},
		{"plain greater", 33.4, -56.5, 1},
		{"plain equal", 2.0, 2, 0},
		{"unparseable string is NaN", "abc", 5.0, -1},
		{"string zero is not zero", nan, "0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareNumeric(tt.x, tt.y))
		})
	}
}
