package interpreter

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrOperator           = errors.New("operator error")
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrStackBounds        = errors.New("stack index out of bounds")
	ErrUnhandledFault     = errors.New("no handler for integer division by zero")
	ErrMaxStepsExceeded   = errors.New("maximum steps exceeded")
)

// errIntDivZero is returned by binaryOperator for an integer division by
// zero; the dispatcher turns it into a handler-chain unwind.
var errIntDivZero = errors.New("integer division by zero")

// Fault records the instruction that stopped a run.
type Fault struct {
	PC  int
	Op  Opcode
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at address %d: %v", f.Op, f.PC, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
