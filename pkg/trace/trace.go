// Package trace renders machine state for humans: single instructions, the
// live stack, per-step trace lines and whole-program listings. Nothing here
// changes the state of an interpreter.
package trace

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"tagvm/pkg/color"
	"tagvm/pkg/interpreter"
)

const unknown = "<unknown>"

// Instruction returns the mnemonic and operands of the instruction at pc.
// Operand words missing past the end of the program are shown as "?".
func Instruction(code []int32, pc int) string {
	if pc < 0 || pc >= len(code) {
		return unknown
	}

	op := interpreter.Opcode(code[pc])
	if !op.Valid() {
		return unknown
	}

	var sb strings.Builder
	sb.WriteString(op.String())
	for n := 1; n <= op.Operands(); n++ {
		sb.WriteByte(' ')
		if pc+n >= len(code) {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(operand(op, code[pc+n]))
	}
	return sb.String()
}

func operand(op interpreter.Opcode, w int32) string {
	switch op {
	case interpreter.CSTF:
		return interpreter.FormatFloat(math.Float32frombits(uint32(w)))
	case interpreter.CSTC:
		return string(rune(uint16(w)))
	default:
		return strconv.FormatInt(int64(w), 10)
	}
}

// Stack renders the live slots 0..sp as "[ 1 2.5 a ]"
func Stack(it *interpreter.Interpreter) string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, v := range it.Live() {
		sb.WriteString(v.String())
		sb.WriteByte(' ')
	}
	sb.WriteByte(']')
	return sb.String()
}

// Line renders the stack followed by the instruction about to execute
func Line(it *interpreter.Interpreter) string {
	return fmt.Sprintf("%s{%d: %s}", Stack(it), it.PC(), Instruction(it.Program(), it.PC()))
}

// Disassemble lists every instruction of code with its address
func Disassemble(code []int32) string {
	var buf bytes.Buffer
	listing(&buf, code, -1, false)
	return buf.String()
}

// WriteListing writes a coloured listing of code to w, marking the
// instruction at mark with an arrow. A negative mark marks nothing.
func WriteListing(w io.Writer, code []int32, mark int) error {
	var buf bytes.Buffer
	listing(&buf, code, mark, true)
	_, err := w.Write(buf.Bytes())
	return err
}

func listing(buf *bytes.Buffer, code []int32, mark int, paint bool) {
	for pc := 0; pc < len(code); {
		addr := fmt.Sprintf("%04d", pc)
		insn := Instruction(code, pc)
		if paint {
			addr = color.CyanText(addr)
			insn = color.YellowText(insn)
		}

		switch {
		case mark < 0:
		case pc == mark:
			buf.WriteString("=> ")
		default:
			buf.WriteString("   ")
		}
		fmt.Fprintf(buf, "%s: %s\n", addr, insn)

		// unknown words are listed one at a time
		op := interpreter.Opcode(code[pc])
		pc += 1 + max(op.Operands(), 0)
	}
}

// Tracer writes one trace line per executed instruction
type Tracer struct {
	w io.Writer
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Hook is installed with interpreter.WithStepHook
func (t *Tracer) Hook(it *interpreter.Interpreter) {
	pc := it.PC()
	fmt.Fprintf(t.w, "%s%s\n",
		color.GrayText(Stack(it)),
		color.CyanText(fmt.Sprintf("{%d: ", pc))+color.YellowText(Instruction(it.Program(), pc))+color.CyanText("}"))
}
