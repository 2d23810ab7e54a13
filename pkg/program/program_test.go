package program_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"tagvm/pkg/program"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected program.Program
	}{
		{"empty", "", nil},
		{"single line", "0 3 0 4 1 22 25", program.Program{0, 3, 0, 4, 1, 22, 25}},
		{"newlines and tabs", "0\n3\r\n\t0 4\n1\n22\n25\n", program.Program{0, 3, 0, 4, 1, 22, 25}},
		{"form feed and vertical tab", "0\f3\v0 4 1 22\u00a025", program.Program{0, 3, 0, 4, 1, 22, 25}},
		{"negative operand", "15 -2 25", program.Program{15, -2, 25}},
		{"comments", "// add\n0 3 0 4 1 // sum\n25", program.Program{0, 3, 0, 4, 1, 25}},
		{"float bits", "26 1078523331 25", program.Program{26, 1078523331, 25}},
		{"no arity check", "19", program.Program{19}},
	}

	for _, test := range tests {
		got, err := program.Parse(test.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if !slices.Equal(got, test.expected) {
			t.Errorf("%s: expected %v, got %v", test.name, test.expected, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"mnemonic", "CSTI 3"},
		{"fraction", "0 3.5"},
		{"overflow", "0 2147483648"},
		{"garbage", "0 3 $"},
	}

	for _, test := range tests {
		_, err := program.Parse(test.input)
		if !errors.Is(err, program.ErrSyntax) {
			t.Errorf("%s: expected ErrSyntax, got %v", test.name, err)
		}
	}
}

func TestText(t *testing.T) {
	p := program.Program{0, -1, 25}
	got, err := program.Parse(p.Text())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, p) {
		t.Errorf("expected %v, got %v", p, got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.out")
	if err := os.WriteFile(path, []byte("0 3 0 4 1 22 25\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := program.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 7 {
		t.Errorf("expected 7 words, got %d", len(got))
	}

	if _, err := program.ReadFile(filepath.Join(t.TempDir(), "missing.out")); err == nil {
		t.Error("expected error for missing file")
	}
}
