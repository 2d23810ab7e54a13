package interpreter

import (
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindUnset ValueKind = iota // slot never written
	KindInt
	KindFloat
	KindChar
	KindArray
)

// String returns the kind name used in error messages.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindArray:
		return "array"
	default:
		return "unset"
	}
}

// Value is a tagged machine value. Only the field selected by Kind is meaningful.
type Value struct {
	Kind ValueKind
	I32  int32
	F32  float32
	Char rune
	Arr  []Value
}

// NewInt creates a new integer Value.
func NewInt(i int32) Value {
	return Value{Kind: KindInt, I32: i}
}

// NewFloat creates a new float Value.
func NewFloat(f float32) Value {
	return Value{Kind: KindFloat, F32: f}
}

// NewChar creates a new character Value.
func NewChar(c rune) Value {
	return Value{Kind: KindChar, Char: c}
}

// NewArray creates a new array Value.
func NewArray(elems ...Value) Value {
	return Value{Kind: KindArray, Arr: elems}
}

// NewString creates an array of Char values, one per rune of s.
func NewString(s string) Value {
	elems := make([]Value, 0, len(s))
	for _, r := range s {
		elems = append(elems, NewChar(r))
	}
	return NewArray(elems...)
}

func boolValue(b bool) Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// IsNumeric reports whether the value is an Int or a Float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// IsZero reports whether a numeric value equals zero. The second result is
// false for Char, Array and unset slots.
func (v Value) IsZero() (bool, bool) {
	switch v.Kind {
	case KindInt:
		return v.I32 == 0, true
	case KindFloat:
		return v.F32 == 0, true
	default:
		return false, false
	}
}

// Equal reports whether v and o have the same kind and contents. Floats
// compare by IEEE equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case KindInt:
		return v.I32 == o.I32
	case KindFloat:
		return v.F32 == o.F32
	case KindChar:
		return v.Char == o.Char
	case KindArray:
		if len(v.Arr) != len(o.Arr) {
			return false
		}
		for n := range v.Arr {
			if !v.Arr[n].Equal(o.Arr[n]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the value the way PRINTI and the tracer show it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.I32), 10)
	case KindFloat:
		return FormatFloat(v.F32)
	case KindChar:
		return string(v.Char)
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('"')
		for _, e := range v.Arr {
			sb.WriteString(e.String())
		}
		sb.WriteByte('"')
		return sb.String()
	default:
		return "?"
	}
}

// FormatFloat renders a float32 with the shortest digits that round-trip,
// always keeping a fractional part ("7.0") and switching to E notation
// outside [1e-3, 1e7).
func FormatFloat(f float32) string {
	f64 := float64(f)
	switch {
	case math.IsNaN(f64):
		return "NaN"
	case math.IsInf(f64, 1):
		return "Infinity"
	case math.IsInf(f64, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f64) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f64)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f64, 'f', -1, 32)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f64, 'E', -1, 32)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mant + "E" + strconv.Itoa(e)
}
