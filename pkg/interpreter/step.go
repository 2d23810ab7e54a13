package interpreter

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// coreStep is the main single-step execution function
// it returns (halted, error).
func coreStep(i *Interpreter) (bool, error) {
	w, err := i.fetch()
	if err != nil {
		return false, err
	}

	switch op := Opcode(w); op {
	case CSTI:
		n, err := i.fetch()
		if err != nil {
			return false, err
		}
		return false, i.push(NewInt(n))

	case CSTF:
		// the operand word is the raw IEEE-754 bit pattern
		n, err := i.fetch()
		if err != nil {
			return false, err
		}
		return false, i.push(NewFloat(math.Float32frombits(uint32(n))))

	case CSTC:
		n, err := i.fetch()
		if err != nil {
			return false, err
		}
		return false, i.push(NewChar(rune(uint16(n))))

	case ADD, SUB, MUL, MOD, EQ, LT:
		return false, i.binary(op)

	case DIV:
		return i.divide()

	case NOT:
		v, err := i.top()
		if err != nil {
			return false, err
		}
		res, err := notOperator(v)
		if err != nil {
			return false, err
		}
		return false, i.stack.Set(i.sp, res)

	case DUP:
		v, err := i.top()
		if err != nil {
			return false, err
		}
		return false, i.push(v)

	case SWAP:
		a, err := i.stack.Get(i.sp - 1)
		if err != nil {
			return false, err
		}
		b, err := i.top()
		if err != nil {
			return false, err
		}
		_ = i.stack.Set(i.sp-1, b)
		return false, i.stack.Set(i.sp, a)

	case LDI:
		addr, err := i.intAt(i.sp)
		if err != nil {
			return false, fmt.Errorf("LDI address: %w", err)
		}
		v, err := i.stack.Get(addr)
		if err != nil {
			return false, err
		}
		return false, i.stack.Set(i.sp, v)

	case STI:
		addr, err := i.intAt(i.sp - 1)
		if err != nil {
			return false, fmt.Errorf("STI address: %w", err)
		}
		v, err := i.top()
		if err != nil {
			return false, err
		}
		if err := i.stack.Set(addr, v); err != nil {
			return false, err
		}
		_ = i.stack.Set(i.sp-1, v)
		i.sp--
		return false, nil

	case GETBP:
		return false, i.push(NewInt(int32(i.bp)))

	case GETSP:
		return false, i.push(NewInt(int32(i.sp)))

	case INCSP:
		n, err := i.fetch()
		if err != nil {
			return false, err
		}
		sp := i.sp + int(n)
		if sp < -1 || sp >= i.stack.Size() {
			return false, fmt.Errorf("%w: INCSP %d moves sp to %d (capacity %d)", ErrStackBounds, n, sp, i.stack.Size())
		}
		i.sp = sp
		return false, nil

	case GOTO:
		target, err := i.fetch()
		if err != nil {
			return false, err
		}
		i.pc = int(target)
		return false, nil

	case IFZERO, IFNZRO:
		v, err := i.top()
		if err != nil {
			return false, err
		}
		zero, ok := v.IsZero()
		if !ok {
			return false, fmt.Errorf("%w: %s condition is %s, not int or float", ErrTypeMismatch, op, v.Kind)
		}
		i.sp--
		target, err := i.fetch()
		if err != nil {
			return false, err
		}
		if zero == (op == IFZERO) {
			i.pc = int(target)
		}
		return false, nil

	case CALL:
		return false, i.call()

	case TCALL:
		return false, i.tailCall()

	case RET:
		return false, i.ret()

	case PRINTI:
		v, err := i.top()
		if err != nil {
			return false, err
		}
		switch v.Kind {
		case KindInt, KindFloat, KindChar:
			_, err = io.WriteString(i.out, v.String()+" ")
			return false, err
		default:
			return false, fmt.Errorf("%w: PRINTI operand is %s", ErrTypeMismatch, v.Kind)
		}

	case PRINTC:
		v, err := i.top()
		if err != nil {
			return false, err
		}
		if v.Kind != KindChar {
			return false, fmt.Errorf("%w: PRINTC operand is %s, not char", ErrTypeMismatch, v.Kind)
		}
		_, err = io.WriteString(i.out, string(v.Char))
		return false, err

	case LDARGS:
		for _, a := range i.args {
			// string arguments occupy one slot per character
			if a.Kind == KindArray {
				for _, e := range a.Arr {
					if err := i.push(e); err != nil {
						return false, err
					}
				}
				continue
			}
			if err := i.push(a); err != nil {
				return false, err
			}
		}
		return false, nil

	case STOP:
		return true, nil

	default:
		return false, fmt.Errorf("%w: opcode %d", ErrIllegalInstruction, w)
	}
}

// binary pops two operands and pushes the result of op
func (i *Interpreter) binary(op Opcode) error {
	lhs, err := i.stack.Get(i.sp - 1)
	if err != nil {
		return err
	}

	rhs, err := i.top()
	if err != nil {
		return err
	}

	res, err := binaryOperator(lhs, rhs, op)
	if err != nil {
		return err
	}

	_ = i.stack.Set(i.sp-1, res)
	i.sp--
	return nil
}

// divide is binary DIV with the handler-chain path for integer zero divisors
func (i *Interpreter) divide() (bool, error) {
	err := i.binary(DIV)
	if errors.Is(err, errIntDivZero) {
		return i.unwind()
	}

	return false, err
}
