// Package asm assembles mnemonic source into program words.
//
// Source is a sequence of statements separated by whitespace:
//
//	name:          defines a label at the next word
//	CSTI 3         an instruction and its operands
//	GOTO name      label operands for jump and call targets
//	CSTF 3.14      float literal, stored as its IEEE-754 bits
//	CSTC "a"       single character literal
//	42             a raw word
//
// Comments start with // and run to the end of the line.
package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"tagvm/pkg/interpreter"
	"tagvm/pkg/lexer"
)

type operandKind int

const (
	intOperand    operandKind = iota // plain integer
	targetOperand                    // integer or label
	floatOperand                     // float literal
	charOperand                      // one-character string or integer code
)

// operandKinds lists the operand kinds of every instruction that takes operands
var operandKinds = map[interpreter.Opcode][]operandKind{
	interpreter.CSTI:   {intOperand},
	interpreter.CSTF:   {floatOperand},
	interpreter.CSTC:   {charOperand},
	interpreter.INCSP:  {intOperand},
	interpreter.GOTO:   {targetOperand},
	interpreter.IFZERO: {targetOperand},
	interpreter.IFNZRO: {targetOperand},
	interpreter.CALL:   {intOperand, targetOperand},
	interpreter.TCALL:  {intOperand, intOperand, targetOperand},
	interpreter.RET:    {intOperand},
}

type Parser struct {
	lexer        *lexer.Lexer // lexer instance
	cg           *Codegen     // code generator instance
	currentToken lexer.Token  // current token
	errors       []string     // list of errors
}

// NewParser creates a new parser instance
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		lexer: l,
		cg:    NewCodegen(),
	}

	// Initialize current token
	p.nextToken()

	return p
}

// Parse reads statements until the end of input, then resolves labels
func (p *Parser) Parse() {
	for p.currentToken.Type != lexer.EOF {
		p.statement()
	}

	p.cg.backpatch()
}

func (p *Parser) statement() {
	tok := p.currentToken

	switch tok.Type {
	case lexer.NUM:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			p.addError(fmt.Sprintf("Expected 32-bit integer word, found `%s`", tok.Lexeme))
		} else {
			p.cg.emit(int32(n))
		}
		p.nextToken()

	case lexer.ID:
		p.nextToken()
		if p.currentToken.Type == lexer.COLON {
			p.cg.defineLabel(tok.Lexeme, tok.Pos)
			p.nextToken()
			return
		}
		p.instruction(tok)

	default:
		p.addError(fmt.Sprintf("Unexpected `%s`", tok.Lexeme))
		p.nextToken()
	}
}

// instruction emits the opcode named by tok and reads its operands
func (p *Parser) instruction(tok lexer.Token) {
	op, ok := interpreter.ParseOpcode(tok.Lexeme)
	if !ok {
		p.addErrorAt(fmt.Sprintf("Unknown instruction `%s`", tok.Lexeme), tok.Pos)
		return
	}

	p.cg.emit(int32(op))
	for _, kind := range operandKinds[op] {
		p.operand(op, kind)
	}
}

func (p *Parser) operand(op interpreter.Opcode, kind operandKind) {
	tok := p.currentToken

	switch {
	case tok.Type == lexer.ID && kind == targetOperand:
		if _, isOp := interpreter.ParseOpcode(tok.Lexeme); isOp {
			p.addError(fmt.Sprintf("Missing operand for %s", op))
			p.cg.emit(0)
			return
		}
		p.cg.emitLabelRef(tok.Lexeme, tok.Pos)

	case tok.Type == lexer.STRING && kind == charOperand:
		r, size := utf8.DecodeRuneInString(tok.Literal)
		if size == 0 || size != len(tok.Literal) {
			p.addError(fmt.Sprintf("Expected single character for %s, found %s", op, tok.Lexeme))
		}
		p.cg.emit(int32(r))

	case tok.Type == lexer.NUM && kind == floatOperand:
		f, err := strconv.ParseFloat(tok.Lexeme, 32)
		if err != nil {
			p.addError(fmt.Sprintf("Expected float for %s, found `%s`", op, tok.Lexeme))
		}
		p.cg.emit(int32(math.Float32bits(float32(f))))

	case tok.Type == lexer.NUM:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			p.addError(fmt.Sprintf("Expected integer for %s, found `%s`", op, tok.Lexeme))
		}
		p.cg.emit(int32(n))

	default:
		p.addError(fmt.Sprintf("Missing operand for %s", op))
		p.cg.emit(0)
		return
	}

	p.nextToken()
}

// nextToken advances to the next token from the lexer
func (p *Parser) nextToken() {
	p.currentToken = p.lexer.NextToken()
}

// addError records a parsing error at the current token
func (p *Parser) addError(msg string) {
	p.addErrorAt(msg, p.currentToken.Pos)
}

func (p *Parser) addErrorAt(msg string, pos lexer.Position) {
	p.errors = append(p.errors, fmt.Sprintf("%s at %s", msg, pos))
}

// Errors returns syntax errors followed by label errors
func (p *Parser) Errors() []string {
	return append(append([]string(nil), p.errors...), p.cg.GetErrors()...)
}

// GetProgram returns the assembled words
func (p *Parser) GetProgram() []int32 {
	return p.cg.GetProgram()
}

// GetCG returns the code generator instance
func (p *Parser) GetCG() *Codegen {
	return p.cg
}

// Error lists every problem found while assembling.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 1 {
		return "assembly failed: " + e.Messages[0]
	}
	return fmt.Sprintf("assembly failed with %d errors: %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

// Assemble translates mnemonic source into program words.
func Assemble(src string) ([]int32, error) {
	p := NewParser(lexer.NewLexer(src))
	p.Parse()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, &Error{Messages: errs}
	}
	return p.GetProgram(), nil
}

// MustAssemble is like Assemble but panics on error. Intended for tests and
// fixed programs.
func MustAssemble(src string) []int32 {
	code, err := Assemble(src)
	if err != nil {
		panic(err)
	}
	return code
}
