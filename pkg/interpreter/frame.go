package interpreter

import "fmt"

// A call frame on the stack, from low to high addresses:
//
//	[return address][saved bp][arg 0 ... arg argc-1][locals ...]
//	                           ^ bp
//
// A handler record occupies three slots:
//
//	[tag][resume address][previous hr]
//	 ^ hr
const divideByZeroTag = 1

// call implements CALL argc target: the argc arguments on top of the stack
// move up two slots to make room for the return address and the saved bp.
func (i *Interpreter) call() error {
	argc, err := i.fetch()
	if err != nil {
		return err
	}

	target, err := i.fetch()
	if err != nil {
		return err
	}

	n := int(argc)
	if n < 0 || i.sp-n+1 < 0 {
		return fmt.Errorf("%w: CALL with %d arguments on a stack of %d", ErrStackBounds, n, i.sp+1)
	}

	if i.sp+2 >= i.stack.Size() {
		return fmt.Errorf("stack overflow: %w: CALL needs slot %d (capacity %d)", ErrStackBounds, i.sp+2, i.stack.Size())
	}

	a := i.stack.Array()
	for k := 0; k < n; k++ {
		a[i.sp-k+2] = a[i.sp-k]
	}

	a[i.sp-n+1] = NewInt(int32(i.pc))
	a[i.sp-n+2] = NewInt(int32(i.bp))
	i.sp += 2
	i.bp = i.sp + 1 - n
	i.pc = int(target)
	return nil
}

// tailCall implements TCALL argc pop target: the argc new arguments slide
// down over the pop dead slots of the current frame, which is then reused.
func (i *Interpreter) tailCall() error {
	argc, err := i.fetch()
	if err != nil {
		return err
	}

	pop, err := i.fetch()
	if err != nil {
		return err
	}

	target, err := i.fetch()
	if err != nil {
		return err
	}

	n, p := int(argc), int(pop)
	if n < 0 || p < 0 || i.sp-n+1-p < 0 || i.sp >= i.stack.Size() {
		return fmt.Errorf("%w: TCALL %d %d with stack top %d", ErrStackBounds, n, p, i.sp)
	}

	a := i.stack.Array()
	for k := n - 1; k >= 0; k-- {
		a[i.sp-k-p] = a[i.sp-k]
	}

	i.sp -= p
	i.pc = int(target)
	return nil
}

// ret implements RET k: drop k slots under the result, restore bp and pc
// from the frame header and leave the result in place of the header.
func (i *Interpreter) ret() error {
	k, err := i.fetch()
	if err != nil {
		return err
	}

	res, err := i.top()
	if err != nil {
		return err
	}

	base := i.sp - int(k) - 2
	if k < 0 || base < 0 {
		return fmt.Errorf("%w: RET %d with stack top %d", ErrStackBounds, k, i.sp)
	}

	bp, err := i.intAt(base + 1)
	if err != nil {
		return fmt.Errorf("saved base pointer: %w", err)
	}

	pc, err := i.intAt(base)
	if err != nil {
		return fmt.Errorf("return address: %w", err)
	}

	i.stack.Array()[base] = res
	i.sp = base
	i.bp = bp
	i.pc = pc
	return nil
}

// unwind walks the handler chain after an integer division by zero. It
// returns true with ErrUnhandledFault when no division handler exists,
// leaving sp untouched.
func (i *Interpreter) unwind() (bool, error) {
	for i.hr != noHandler {
		tag, err := i.intAt(i.hr)
		if err != nil {
			return false, fmt.Errorf("handler record at %d: %w", i.hr, err)
		}

		if tag == divideByZeroTag {
			break
		}

		prev, err := i.previousHandler()
		if err != nil {
			return false, err
		}
		i.hr = prev
	}

	if i.hr == noHandler {
		return true, ErrUnhandledFault
	}

	resume, err := i.intAt(i.hr + 1)
	if err != nil {
		return false, fmt.Errorf("handler record at %d: %w", i.hr, err)
	}

	prev, err := i.previousHandler()
	if err != nil {
		return false, err
	}

	i.sp = i.hr - 1
	i.pc = resume
	i.hr = prev
	return false, nil
}

// previousHandler reads the back-link of the record at hr. A predecessor
// always lies lower on the stack, so any other link is corrupt.
func (i *Interpreter) previousHandler() (int, error) {
	prev, err := i.intAt(i.hr + 2)
	if err != nil {
		return 0, fmt.Errorf("handler record at %d: %w", i.hr, err)
	}

	if prev != noHandler && (prev < 0 || prev >= i.hr) {
		return 0, fmt.Errorf("%w: handler record at %d links to %d", ErrStackBounds, i.hr, prev)
	}
	return prev, nil
}
