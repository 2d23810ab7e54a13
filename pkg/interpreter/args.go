package interpreter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseArgs classifies command-line strings into machine values: anything
// with a letter becomes an array of chars, anything else with a '.' a float,
// and the rest an int.
func ParseArgs(args []string) ([]Value, error) {
	values := make([]Value, 0, len(args))
	for n, arg := range args {
		v, err := ParseArg(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", n+1, err)
		}
		values = append(values, v)
	}

	return values, nil
}

// ParseArg classifies a single argument string.
func ParseArg(arg string) (Value, error) {
	switch {
	case strings.IndexFunc(arg, unicode.IsLetter) >= 0:
		return NewString(arg), nil

	case strings.Contains(arg, "."):
		f, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float %q: %w", arg, err)
		}
		return NewFloat(float32(f)), nil

	default:
		n, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int %q: %w", arg, err)
		}
		return NewInt(int32(n)), nil
	}
}
