package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input    string // input string to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:  s,
		length: len(s),
		line:   1,
		column: 1,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.position >= l.length {
		return NewToken(EOF, "", "", l.currentPosition())
	}

	pos := l.currentPosition()
	tokenType, lexeme, matched := MatchToken(l.input[l.position:])
	l.advance(len(lexeme))

	if !matched {
		return NewToken(ILLEGAL, lexeme, "", pos)
	}

	literal := lexeme
	if tokenType == STRING {
		if s, err := strconv.Unquote(lexeme); err == nil {
			literal = s
		} else {
			literal = lexeme[1 : len(lexeme)-1]
		}
	}

	return NewToken(tokenType, lexeme, literal, pos)
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	cpos, cline, ccol := l.position, l.line, l.column

	token := l.NextToken()

	l.position, l.line, l.column = cpos, cline, ccol
	return token
}

// Tokens returns every remaining token up to and including EOF
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// Skip whitespace and // comments
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		r, size := utf8.DecodeRuneInString(l.input[l.position:])

		switch {
		case unicode.IsSpace(r):
			l.advance(size)

		case r == '/' && l.position+1 < l.length && l.input[l.position+1] == '/':
			for l.position < l.length && l.input[l.position] != '\n' {
				l.advance(1)
			}

		default:
			return
		}
	}
}

// Advance the lexer position by n bytes
func (l *Lexer) advance(n int) {
	for j := 0; j < n; j++ {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
