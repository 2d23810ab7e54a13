package interpreter

import "fmt"

const DefaultStackSize = 1000

// Stack is the fixed-capacity evaluation stack. Slots are addressed by
// absolute index; the stack pointer lives in the interpreter, not here.
type Stack struct {
	a []Value
}

// NewStack creates a stack with the given number of slots
func NewStack(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultStackSize
	}

	return &Stack{a: make([]Value, capacity)}
}

// Get returns the value stored at index i
func (s *Stack) Get(i int) (Value, error) {
	if i < 0 || i >= len(s.a) {
		return Value{}, fmt.Errorf("%w: read at %d (capacity %d)", ErrStackBounds, i, len(s.a))
	}

	return s.a[i], nil
}

// Set stores v at index i
func (s *Stack) Set(i int, v Value) error {
	if i < 0 || i >= len(s.a) {
		return fmt.Errorf("%w: write at %d (capacity %d)", ErrStackBounds, i, len(s.a))
	}

	s.a[i] = v
	return nil
}

// Size returns the capacity of the stack
func (s *Stack) Size() int {
	return len(s.a)
}

// Array returns the underlying slots of the stack
func (s *Stack) Array() []Value {
	return s.a
}
