package interpreter

import "fmt"

// binaryOperator applies ADD, SUB, MUL, DIV, MOD, EQ or LT to two numeric
// values. The float domain is used when either operand is a Float.
func binaryOperator(lhs, rhs Value, op Opcode) (Value, error) {
	if !lhs.IsNumeric() {
		return Value{}, fmt.Errorf("%w: left operand of %s is %s, not int or float", ErrTypeMismatch, op, lhs.Kind)
	}
	if !rhs.IsNumeric() {
		return Value{}, fmt.Errorf("%w: right operand of %s is %s, not int or float", ErrTypeMismatch, op, rhs.Kind)
	}

	if lhs.Kind == KindFloat || rhs.Kind == KindFloat {
		return floatOperator(asFloat(lhs), asFloat(rhs), op)
	}
	return intOperator(lhs.I32, rhs.I32, op)
}

func asFloat(v Value) float32 {
	if v.Kind == KindInt {
		return float32(v.I32)
	}
	return v.F32
}

func floatOperator(a, b float32, op Opcode) (Value, error) {
	switch op {
	case ADD:
		return NewFloat(a + b), nil
	case SUB:
		return NewFloat(a - b), nil
	case MUL:
		return NewFloat(a * b), nil
	case DIV:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: float division by zero", ErrOperator)
		}
		return NewFloat(a / b), nil
	case MOD:
		return Value{}, fmt.Errorf("%w: modulo is not defined on floats", ErrOperator)
	case EQ:
		return boolValue(a == b), nil
	case LT:
		return boolValue(a < b), nil
	default:
		return Value{}, fmt.Errorf("%w: %s is not a binary operator", ErrOperator, op)
	}
}

func intOperator(a, b int32, op Opcode) (Value, error) {
	switch op {
	case ADD:
		return NewInt(a + b), nil
	case SUB:
		return NewInt(a - b), nil
	case MUL:
		return NewInt(a * b), nil
	case DIV:
		if b == 0 {
			return Value{}, errIntDivZero
		}
		return NewInt(a / b), nil
	case MOD:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: integer modulo by zero", ErrOperator)
		}
		return NewInt(a % b), nil
	case EQ:
		return boolValue(a == b), nil
	case LT:
		return boolValue(a < b), nil
	default:
		return Value{}, fmt.Errorf("%w: %s is not a binary operator", ErrOperator, op)
	}
}

// notOperator yields Int(1) for a numeric zero and Int(0) otherwise.
func notOperator(v Value) (Value, error) {
	zero, ok := v.IsZero()
	if !ok {
		return Value{}, fmt.Errorf("%w: NOT operand is %s, not int or float", ErrTypeMismatch, v.Kind)
	}
	return boolValue(zero), nil
}
