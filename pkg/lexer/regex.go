package lexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token regex patterns, tried in tokenOrder
var tokenRegexes = map[TokenType]*regexp.Regexp{
	NUM:    regexp.MustCompile(`^[-+]?\d+(\.\d+)?([eE][+-]?\d+)?`),
	STRING: regexp.MustCompile(`^"([^"\\]|\\.)*"`),
	ID:     regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*`),
	COLON:  regexp.MustCompile(`^:`),
}

var tokenOrder = []TokenType{NUM, STRING, ID, COLON}

// terminated reports whether s starts with something that may legally
// follow a token: the end of input, whitespace, a colon or a comment.
func terminated(s string) bool {
	if s == "" || s[0] == ':' || strings.HasPrefix(s, "//") {
		return true
	}

	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// MatchToken matches the token at the start of s. A match that runs into
// something other than whitespace, a colon, a comment or the end of input is
// reported as ILLEGAL so that "12ab" is not split into two tokens.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	}

	for _, tokenType := range tokenOrder {
		match := tokenRegexes[tokenType].FindString(s)
		if match == "" {
			continue
		}
		if tokenType != COLON && !terminated(s[len(match):]) {
			break
		}
		return tokenType, match, true
	}

	return ILLEGAL, illegalRun(s), false
}

// illegalRun returns the text up to the next whitespace
func illegalRun(s string) string {
	n := strings.IndexFunc(s, unicode.IsSpace)
	switch {
	case n < 0:
		return s
	case n == 0:
		_, size := utf8.DecodeRuneInString(s)
		return s[:size]
	default:
		return s[:n]
	}
}
