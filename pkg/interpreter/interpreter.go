package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	initialBP = -999 // bp before the first CALL
	noHandler = -1
)

// Interpreter executes a flat program of opcode and operand words over a
// single evaluation stack.
type Interpreter struct {
	code  []int32 // program words (opcodes interleaved with operands)
	stack *Stack  // evaluation stack
	args  []Value // values pushed by LDARGS

	pc int // next word to fetch
	sp int // index of the stack top, -1 when empty
	bp int // base of the current frame
	hr int // index of the most recent handler record

	out io.Writer // output writer for PRINTI/PRINTC

	stepHook func(*Interpreter) // called before every instruction

	maxSteps int   // maximum steps (0 = unlimited)
	steps    int   // steps executed
	halted   bool  // STOP reached or unhandled fault
	fault    error // sticky fault returned by further Step calls
}

type Option func(*Interpreter)

// WithWriter sets the output writer for PRINTI and PRINTC
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithStackSize sets the number of stack slots
func WithStackSize(n int) Option {
	return func(i *Interpreter) { i.stack = NewStack(n) }
}

// WithArgs sets the values pushed by LDARGS
func WithArgs(args ...Value) Option {
	return func(i *Interpreter) { i.args = append([]Value(nil), args...) }
}

// WithStepHook installs an observer called before each instruction executes
func WithStepHook(fn func(*Interpreter)) Option {
	return func(i *Interpreter) { i.stepHook = fn }
}

// NewInterpreter creates a new Interpreter instance
func NewInterpreter(code []int32, opts ...Option) *Interpreter {
	it := &Interpreter{
		code: append([]int32(nil), code...),
	}

	for _, o := range opts {
		o(it)
	}

	if it.stack == nil {
		it.stack = NewStack(DefaultStackSize)
	}

	if it.out == nil {
		it.out = os.Stdout
	}

	it.Reset()
	return it
}

// Load replaces the current program with a new one, resetting registers
func (i *Interpreter) Load(code []int32) {
	i.code = append([]int32(nil), code...)
	i.Reset()
}

// Reset restores the registers and counters. Stack slots keep whatever they
// held before.
func (i *Interpreter) Reset() {
	i.pc = 0
	i.sp = -1
	i.bp = initialBP
	i.hr = noHandler
	i.steps = 0
	i.halted = false
	i.fault = nil
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.fault != nil {
		return i.halted, i.fault
	}

	if i.halted {
		return true, nil
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	if i.stepHook != nil {
		i.stepHook(i)
	}

	pc := i.pc
	halted, err := coreStep(i)
	i.steps++

	if err != nil {
		i.halted = errors.Is(err, ErrUnhandledFault)
		i.fault = &Fault{PC: pc, Op: i.OpcodeAt(pc), Err: err}
		return i.halted, i.fault
	}

	i.halted = halted
	return halted, nil
}

// Run executes until STOP or a fault and returns the final stack pointer
func (i *Interpreter) Run() (int, error) {
	for {
		halted, err := i.Step()
		if err != nil {
			return i.sp, err
		}

		if halted {
			return i.sp, nil
		}
	}
}

// InstallHandler pushes a division-by-zero handler record
// [tag, resume, previous] and makes it the head of the handler chain.
// The instruction set has no opcode for this; it lets an embedder make the
// unwind path reachable.
func (i *Interpreter) InstallHandler(resume int32) error {
	prev := int32(i.hr)
	for _, v := range []Value{NewInt(divideByZeroTag), NewInt(resume), NewInt(prev)} {
		if err := i.push(v); err != nil {
			return err
		}
	}

	i.hr = i.sp - 2
	return nil
}

// PC returns the program counter
func (i *Interpreter) PC() int { return i.pc }

// SP returns the stack pointer
func (i *Interpreter) SP() int { return i.sp }

// BP returns the base pointer
func (i *Interpreter) BP() int { return i.bp }

// HR returns the handler register, -1 when no handler is installed
func (i *Interpreter) HR() int { return i.hr }

// Steps returns the number of instructions executed since the last reset
func (i *Interpreter) Steps() int { return i.steps }

// Halted reports whether the run has finished
func (i *Interpreter) Halted() bool { return i.halted }

// Program returns the loaded program words
func (i *Interpreter) Program() []int32 { return i.code }

// Output returns the output writer used for PRINTI and PRINTC
func (i *Interpreter) Output() io.Writer { return i.out }

// StackSize returns the number of stack slots
func (i *Interpreter) StackSize() int { return i.stack.Size() }

// Slot returns the value at absolute stack index idx
func (i *Interpreter) Slot(idx int) (Value, error) {
	return i.stack.Get(idx)
}

// Live returns a copy of the slots 0..sp
func (i *Interpreter) Live() []Value {
	if i.sp < 0 {
		return nil
	}

	n := min(i.sp+1, i.stack.Size())
	return append([]Value(nil), i.stack.Array()[:n]...)
}

// OpcodeAt returns the word at pc as an opcode, or -1 when pc is outside the program
func (i *Interpreter) OpcodeAt(pc int) Opcode {
	if pc < 0 || pc >= len(i.code) {
		return Opcode(-1)
	}

	return Opcode(i.code[pc])
}

// fetch reads the word at pc and advances pc
func (i *Interpreter) fetch() (int32, error) {
	if i.pc < 0 || i.pc >= len(i.code) {
		return 0, fmt.Errorf("%w: pc %d outside program of %d words", ErrIllegalInstruction, i.pc, len(i.code))
	}

	w := i.code[i.pc]
	i.pc++
	return w, nil
}

// push writes v above the current top
func (i *Interpreter) push(v Value) error {
	if err := i.stack.Set(i.sp+1, v); err != nil {
		return fmt.Errorf("stack overflow: %w", err)
	}

	i.sp++
	return nil
}

// top returns the value at sp
func (i *Interpreter) top() (Value, error) {
	return i.stack.Get(i.sp)
}

// intAt reads an Int slot, used for addresses and saved registers
func (i *Interpreter) intAt(idx int) (int, error) {
	v, err := i.stack.Get(idx)
	if err != nil {
		return 0, err
	}

	if v.Kind != KindInt {
		return 0, fmt.Errorf("%w: slot %d holds %s, expected int", ErrTypeMismatch, idx, v.Kind)
	}

	return int(v.I32), nil
}
