package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonNumberPattern    = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
	decimalNumberPattern = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// ParseNumber converts raw text the way a browser's Number() does: surrounding
// whitespace is ignored, the empty string is 0, decimal and exponent notation
// are accepted, as are unsigned 0x/0o/0b integer literals and (+/-)Infinity.
// Anything else is NaN.
func ParseNumber(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}

	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(trimmed) > 2 && trimmed[0] == '0' {
		switch trimmed[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			if strings.Contains(trimmed, "_") {
				return math.NaN()
			}
			n, err := strconv.ParseUint(trimmed, 0, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	if !decimalNumberPattern.MatchString(trimmed) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// out of range values still carry the right sign
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// Numeric coerces a value with Number() semantics: booleans are 0/1, an empty
// list is 0, a one-element list is its element, longer lists and blobs that do
// not parse are NaN.
func (v Value) Numeric() float64 {
	switch v.shape {
	case ShapeText, ShapeNumber, ShapeBlob:
		return ParseNumber(v.text)
	case ShapeBool:
		if v.flag {
			return 1
		}
		return 0
	case ShapeList:
		switch len(v.list) {
		case 0:
			return 0
		case 1:
			return ParseNumber(v.list[0])
		default:
			return math.NaN()
		}
	default:
		return math.NaN()
	}
}
