// Package program loads the flat word sequence executed by the interpreter,
// either from numeric text or from a binary image.
package program

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"tagvm/pkg/lexer"
)

// Program is an ordered sequence of opcode and operand words.
type Program []int32

var ErrSyntax = errors.New("invalid program word")

// Parse reads whitespace-separated signed integers. Line comments starting
// with // are skipped. Opcode arity is not checked.
func Parse(src string) (Program, error) {
	l := lexer.NewLexer(src)
	var words Program

	for {
		tok := l.NextToken()
		switch tok.Type {
		case lexer.EOF:
			return words, nil
		case lexer.NUM:
			n, err := strconv.ParseInt(tok.Lexeme, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w %q at %s: not a 32-bit integer", ErrSyntax, tok.Lexeme, tok.Pos)
			}
			words = append(words, int32(n))
		default:
			return nil, fmt.Errorf("%w %q at %s", ErrSyntax, tok.Lexeme, tok.Pos)
		}
	}
}

// ReadFile parses the numeric text program stored at path.
func ReadFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Text renders the program in the numeric text format, one word per line.
func (p Program) Text() string {
	buf := make([]byte, 0, len(p)*4)
	for _, w := range p {
		buf = strconv.AppendInt(buf, int64(w), 10)
		buf = append(buf, '\n')
	}
	return string(buf)
}
