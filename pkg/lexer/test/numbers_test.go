package lexer_test

import (
	"tagvm/pkg/lexer"
	"testing"
)

func TestNumbers(t *testing.T) {
	tests := []struct {
		input       string
		expected    lexer.TokenType
		description string
	}{
		{"42", lexer.NUM, "integer"},
		{"0", lexer.NUM, "zero"},
		{"-7", lexer.NUM, "negative integer"},
		{"+7", lexer.NUM, "explicit sign"},
		{"1078523331", lexer.NUM, "float bit pattern"},
		{"-2147483648", lexer.NUM, "min int32"},

		{"3.14", lexer.NUM, "simple float"},
		{"-0.5", lexer.NUM, "negative float"},
		{"1e5", lexer.NUM, "scientific notation"},
		{"2.5E-3", lexer.NUM, "float with negative exponent E"},

		{"CSTI", lexer.ID, "mnemonic"},
		{"fact_loop", lexer.ID, "label"},
		{":", lexer.COLON, "colon"},
		{`"a"`, lexer.STRING, "string"},
	}

	for _, test := range tests {
		tokenType, lexeme, matched := lexer.MatchToken(test.input)
		if !matched {
			t.Errorf("Failed to match %s (%s)", test.input, test.description)
		}
		if tokenType != test.expected {
			t.Errorf("Input %s (%s): expected %s, got %s", test.input, test.description, test.expected, tokenType)
		}
		if lexeme != test.input {
			t.Errorf("Input %s (%s): expected lexeme %s, got %s", test.input, test.description, test.input, lexeme)
		}
	}
}

func TestIllegal(t *testing.T) {
	tests := []struct {
		input  string
		lexeme string
	}{
		{"12ab", "12ab"},
		{"-x 3", "-x"},
		{"@", "@"},
		{"3.14.15", "3.14.15"},
	}

	for _, test := range tests {
		tokenType, lexeme, matched := lexer.MatchToken(test.input)
		if matched || tokenType != lexer.ILLEGAL {
			t.Errorf("Input %q: expected ILLEGAL, got %s", test.input, tokenType)
		}
		if lexeme != test.lexeme {
			t.Errorf("Input %q: expected lexeme %q, got %q", test.input, test.lexeme, lexeme)
		}
	}
}
