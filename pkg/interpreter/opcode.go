package interpreter

import (
	"fmt"
	"strings"
)

type Opcode int32

// Opcode numbers are fixed by the external compiler and must not change.
const (
	CSTI   Opcode = 0
	ADD    Opcode = 1
	SUB    Opcode = 2
	MUL    Opcode = 3
	DIV    Opcode = 4
	MOD    Opcode = 5
	EQ     Opcode = 6
	LT     Opcode = 7
	NOT    Opcode = 8
	DUP    Opcode = 9
	SWAP   Opcode = 10
	LDI    Opcode = 11
	STI    Opcode = 12
	GETBP  Opcode = 13
	GETSP  Opcode = 14
	INCSP  Opcode = 15
	GOTO   Opcode = 16
	IFZERO Opcode = 17
	IFNZRO Opcode = 18
	CALL   Opcode = 19
	TCALL  Opcode = 20
	RET    Opcode = 21
	PRINTI Opcode = 22
	PRINTC Opcode = 23
	LDARGS Opcode = 24
	STOP   Opcode = 25
	CSTF   Opcode = 26
	CSTC   Opcode = 27
)

type opcodeInfo struct {
	name     string
	operands int
}

var opcodeTable = map[Opcode]opcodeInfo{
	CSTI:   {"CSTI", 1},
	CSTF:   {"CSTF", 1},
	CSTC:   {"CSTC", 1},
	ADD:    {"ADD", 0},
	SUB:    {"SUB", 0},
	MUL:    {"MUL", 0},
	DIV:    {"DIV", 0},
	MOD:    {"MOD", 0},
	EQ:     {"EQ", 0},
	LT:     {"LT", 0},
	NOT:    {"NOT", 0},
	DUP:    {"DUP", 0},
	SWAP:   {"SWAP", 0},
	LDI:    {"LDI", 0},
	STI:    {"STI", 0},
	GETBP:  {"GETBP", 0},
	GETSP:  {"GETSP", 0},
	INCSP:  {"INCSP", 1},
	GOTO:   {"GOTO", 1},
	IFZERO: {"IFZERO", 1},
	IFNZRO: {"IFNZRO", 1},
	CALL:   {"CALL", 2},
	TCALL:  {"TCALL", 3},
	RET:    {"RET", 1},
	PRINTI: {"PRINTI", 0},
	PRINTC: {"PRINTC", 0},
	LDARGS: {"LDARGS", 0},
	STOP:   {"STOP", 0},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.name] = op
	}
	return m
}()

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	_, ok := opcodeTable[o]
	return ok
}

// Operands returns the number of operand words following the opcode, or -1
// for an unknown opcode.
func (o Opcode) Operands() int {
	if info, ok := opcodeTable[o]; ok {
		return info.operands
	}
	return -1
}

// String returns the mnemonic of the opcode.
func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(o))
}

// ParseOpcode looks up a mnemonic, ignoring case.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[strings.ToUpper(name)]
	return op, ok
}
