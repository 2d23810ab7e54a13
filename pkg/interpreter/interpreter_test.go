package interpreter_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"tagvm/pkg/asm"
	"tagvm/pkg/interpreter"
)

// run assembles src, executes it and returns the output and final sp
func run(t *testing.T, src string, opts ...interpreter.Option) (string, int, error) {
	t.Helper()
	var out bytes.Buffer
	it := interpreter.NewInterpreter(asm.MustAssemble(src), append([]interpreter.Option{interpreter.WithWriter(&out)}, opts...)...)
	sp, err := it.Run()
	return out.String(), sp, err
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		args   []string
		output string
		sp     int
	}{
		{"add", "CSTI 3 CSTI 4 ADD PRINTI STOP", nil, "7 ", 0},
		{"float argument", "LDARGS PRINTI STOP", []string{"3.14"}, "3.14 ", 0},
		{"string argument", `LDARGS
			CSTI 0 LDI PRINTC INCSP -1
			CSTI 1 LDI PRINTC INCSP -1
			CSTI 2 LDI PRINTC
			STOP`, []string{"abc"}, "abc", 3},
		{"arguments in order", "LDARGS PRINTI INCSP -1 PRINTI STOP", []string{"1", "2"}, "2 1 ", 0},
		{"no arguments", "LDARGS GETSP PRINTI STOP", nil, "-1 ", 0},
		{"subtract after swap", "CSTI 10 CSTI 3 SWAP SUB PRINTI STOP", nil, "-7 ", 0},
		{"int division truncates", "CSTI -7 CSTI 2 DIV PRINTI STOP", nil, "-3 ", 0},
		{"float division", "CSTF 7 CSTI 2 DIV PRINTI STOP", nil, "3.5 ", 0},
		{"mixed addition", "CSTI 1 CSTF 0.5 ADD PRINTI STOP", nil, "1.5 ", 0},
		{"float keeps fraction", "CSTI 6 CSTF 2 MUL PRINTI STOP", nil, "12.0 ", 0},
		{"modulo", "CSTI 7 CSTI 3 MOD PRINTI STOP", nil, "1 ", 0},
		{"comparisons", "CSTF 1 CSTI 1 EQ PRINTI CSTI 2 CSTF 2.5 LT PRINTI STOP", nil, "1 1 ", 1},
		{"not", "CSTI 0 NOT PRINTI CSTF 2.5 NOT PRINTI STOP", nil, "1 0 ", 1},
		{"dup", "CSTI 4 DUP MUL PRINTI STOP", nil, "16 ", 0},
		{"store and load", `CSTI 5 CSTI 0 CSTI 9 STI PRINTI
			INCSP -1 CSTI 0 LDI PRINTI STOP`, nil, "9 9 ", 1},
		{"registers at start", "GETSP PRINTI GETBP PRINTI STOP", nil, "-1 -999 ", 1},
		{"ifzero on float zero", "CSTF 0.0 IFZERO yes CSTI 0 PRINTI STOP yes: CSTI 1 PRINTI STOP", nil, "1 ", 0},
		{"ifnzro on float", "CSTF 0.5 IFNZRO yes CSTI 0 PRINTI STOP yes: CSTI 1 PRINTI STOP", nil, "1 ", 0},
		{"ifzero falls through", "CSTI 3 IFZERO yes CSTI 0 PRINTI STOP yes: CSTI 1 PRINTI STOP", nil, "0 ", 0},
		{"char", `CSTC "x" PRINTC PRINTI STOP`, nil, "xx ", 0},
		{"print does not pop", "CSTI 1 PRINTI PRINTI STOP", nil, "1 1 ", 0},
		{"int wraparound", "CSTI 2147483647 CSTI 1 ADD PRINTI STOP", nil, "-2147483648 ", 0},
	}

	for _, test := range tests {
		args, err := interpreter.ParseArgs(test.args)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		out, sp, err := run(t, test.src, interpreter.WithArgs(args...))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if out != test.output {
			t.Errorf("%s: expected output %q, got %q", test.name, test.output, out)
		}
		if sp != test.sp {
			t.Errorf("%s: expected sp %d, got %d", test.name, test.sp, sp)
		}
	}
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []interpreter.Option
		err  error
		pc   int
		op   interpreter.Opcode
	}{
		{"illegal opcode", "99", nil, interpreter.ErrIllegalInstruction, 0, 99},
		{"runs off the end", "CSTI 1", nil, interpreter.ErrIllegalInstruction, 2, -1},
		{"float division by zero", "CSTF 1 CSTF 0 DIV", nil, interpreter.ErrOperator, 4, interpreter.DIV},
		{"float mod", "CSTI 4 CSTF 2 MOD", nil, interpreter.ErrOperator, 4, interpreter.MOD},
		{"int mod by zero", "CSTI 4 CSTI 0 MOD", nil, interpreter.ErrOperator, 4, interpreter.MOD},
		{"char operand", `CSTC "a" CSTI 1 ADD`, nil, interpreter.ErrTypeMismatch, 4, interpreter.ADD},
		{"not on char", `CSTC "a" NOT`, nil, interpreter.ErrTypeMismatch, 2, interpreter.NOT},
		{"ifzero on char", `CSTC "a" IFZERO 0`, nil, interpreter.ErrTypeMismatch, 2, interpreter.IFZERO},
		{"printc on int", "CSTI 65 PRINTC", nil, interpreter.ErrTypeMismatch, 2, interpreter.PRINTC},
		{"float address", "CSTF 1 LDI", nil, interpreter.ErrTypeMismatch, 2, interpreter.LDI},
		{"address out of range", "CSTI 5000 LDI", nil, interpreter.ErrStackBounds, 2, interpreter.LDI},
		{"add on empty stack", "ADD", nil, interpreter.ErrStackBounds, 0, interpreter.ADD},
		{"incsp below empty", "INCSP -1", nil, interpreter.ErrStackBounds, 0, interpreter.INCSP},
		{"overflow", "CSTI 1 CSTI 2 CSTI 3", []interpreter.Option{interpreter.WithStackSize(2)}, interpreter.ErrStackBounds, 4, interpreter.CSTI},
		{"ret without frame", "CSTI 1 RET 0", nil, interpreter.ErrStackBounds, 2, interpreter.RET},
	}

	for _, test := range tests {
		out, _, err := run(t, test.src, test.opts...)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.name, test.err, err)
			continue
		}
		var fault *interpreter.Fault
		if !errors.As(err, &fault) {
			t.Errorf("%s: expected *Fault, got %T", test.name, err)
			continue
		}
		if fault.PC != test.pc || fault.Op != test.op {
			t.Errorf("%s: expected fault at %d (%s), got %d (%s)", test.name, test.pc, test.op, fault.PC, fault.Op)
		}
		if out != "" {
			t.Errorf("%s: unexpected output %q", test.name, out)
		}
	}
}

func TestPartialOutputSurvivesFault(t *testing.T) {
	out, _, err := run(t, "CSTI 1 PRINTI CSTF 1 CSTF 0 DIV")
	if !errors.Is(err, interpreter.ErrOperator) {
		t.Fatalf("expected ErrOperator, got %v", err)
	}
	if out != "1 " {
		t.Errorf("expected partial output %q, got %q", "1 ", out)
	}
}

func TestIntDivisionByZeroWithoutHandler(t *testing.T) {
	out, sp, err := run(t, "CSTI 1 CSTI 5 CSTI 0 DIV PRINTI STOP")
	if !errors.Is(err, interpreter.ErrUnhandledFault) {
		t.Fatalf("expected ErrUnhandledFault, got %v", err)
	}
	if sp != 2 {
		t.Errorf("expected sp 2 (unchanged), got %d", sp)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestHandlerResumesAfterDivisionByZero(t *testing.T) {
	var out bytes.Buffer
	it := interpreter.NewInterpreter(asm.MustAssemble(`
		CSTI 10 CSTI 0 DIV PRINTI STOP
	handler:
		CSTI 99 PRINTI STOP`), interpreter.WithWriter(&out))

	if err := it.InstallHandler(7); err != nil {
		t.Fatal(err)
	}
	if it.HR() != 0 || it.SP() != 2 {
		t.Fatalf("expected handler at 0 with sp 2, got hr %d sp %d", it.HR(), it.SP())
	}

	sp, err := it.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "99 " {
		t.Errorf("expected %q, got %q", "99 ", out.String())
	}
	if sp != 0 {
		t.Errorf("expected sp 0, got %d", sp)
	}
	if it.HR() != -1 {
		t.Errorf("expected handler chain to be empty, got hr %d", it.HR())
	}
}

func TestNestedHandlers(t *testing.T) {
	var out bytes.Buffer
	it := interpreter.NewInterpreter(asm.MustAssemble(`
		CSTI 1 CSTI 0 DIV STOP
	inner:
		CSTI 2 CSTI 0 DIV STOP
	outer:
		CSTI 3 PRINTI STOP`), interpreter.WithWriter(&out))

	if err := it.InstallHandler(12); err != nil {
		t.Fatal(err)
	}
	if err := it.InstallHandler(6); err != nil {
		t.Fatal(err)
	}

	if _, err := it.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "3 " {
		t.Errorf("expected %q, got %q", "3 ", out.String())
	}
}

func TestHandlerChainSkipsOtherTags(t *testing.T) {
	var out bytes.Buffer
	// overwrite the tag of the inner record (slot 3) before dividing
	it := interpreter.NewInterpreter(asm.MustAssemble(`
		CSTI 3 CSTI 0 STI INCSP -1
		CSTI 1 CSTI 0 DIV STOP
	outer:
		CSTI 7 PRINTI STOP`), interpreter.WithWriter(&out))

	if err := it.InstallHandler(13); err != nil {
		t.Fatal(err)
	}
	if err := it.InstallHandler(12); err != nil {
		t.Fatal(err)
	}

	sp, err := it.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "7 " || sp != 0 {
		t.Errorf("expected output %q and sp 0, got %q and sp %d", "7 ", out.String(), sp)
	}
}

func TestCorruptHandlerLinkFaults(t *testing.T) {
	// clear the tag at slot 0 and point the back-link at slot 2 to link
	for _, link := range []int{0, 1, 5} {
		src := fmt.Sprintf(`
			CSTI 0 CSTI 0 STI INCSP -1
			CSTI 2 CSTI %d STI INCSP -1
			CSTI 1 CSTI 0 DIV STOP`, link)
		it := interpreter.NewInterpreter(asm.MustAssemble(src),
			interpreter.WithWriter(&bytes.Buffer{}),
			interpreter.WithMaxSteps(100))

		if err := it.InstallHandler(0); err != nil {
			t.Fatal(err)
		}

		_, err := it.Run()
		if !errors.Is(err, interpreter.ErrStackBounds) {
			t.Errorf("link %d: expected ErrStackBounds, got %v", link, err)
			continue
		}
		var fault *interpreter.Fault
		if errors.As(err, &fault) && fault.Op != interpreter.DIV {
			t.Errorf("link %d: expected the fault at DIV, got %s", link, fault.Op)
		}
	}
}

func TestConditionalJumpFaultKeepsStack(t *testing.T) {
	for _, op := range []string{"IFZERO", "IFNZRO"} {
		_, sp, err := run(t, fmt.Sprintf(`CSTI 1 CSTC "a" %s 0`, op))
		if !errors.Is(err, interpreter.ErrTypeMismatch) {
			t.Errorf("%s: expected ErrTypeMismatch, got %v", op, err)
		}
		if sp != 1 {
			t.Errorf("%s: expected sp 1 after the fault, got %d", op, sp)
		}
	}
}

func TestCallAndReturnRestoreRegisters(t *testing.T) {
	var out bytes.Buffer
	it := interpreter.NewInterpreter(asm.MustAssemble(`
		CSTI 10
		CSTI 5
		CALL 1 f
		PRINTI
		STOP
	f:	GETBP LDI CSTI 1 ADD
		RET 1`), interpreter.WithWriter(&out))

	step := func(n int) {
		t.Helper()
		for j := 0; j < n; j++ {
			if _, err := it.Step(); err != nil {
				t.Fatalf("step: %v", err)
			}
		}
	}

	step(3)
	if it.PC() != 9 || it.BP() != 3 || it.SP() != 3 {
		t.Fatalf("after CALL: expected pc 9 bp 3 sp 3, got pc %d bp %d sp %d", it.PC(), it.BP(), it.SP())
	}
	if ret, _ := it.Slot(1); !ret.Equal(interpreter.NewInt(7)) {
		t.Errorf("expected return address 7, got %v", ret)
	}

	step(5)
	if it.PC() != 7 || it.BP() != -999 || it.SP() != 1 {
		t.Fatalf("after RET: expected pc 7 bp -999 sp 1, got pc %d bp %d sp %d", it.PC(), it.BP(), it.SP())
	}
	if v, _ := it.Slot(1); !v.Equal(interpreter.NewInt(6)) {
		t.Errorf("expected result 6, got %v", v)
	}
	if v, _ := it.Slot(0); !v.Equal(interpreter.NewInt(10)) {
		t.Errorf("expected caller slot untouched, got %v", v)
	}
}

const countdownCall = `
		LDARGS
		CALL 1 f
		PRINTI
		STOP
	f:	GETBP LDI
		IFZERO done
		GETBP LDI CSTI 1 SUB
		CALL 1 f
		RET 1
	done:
		CSTI 0
		RET 1`

const countdownTailCall = `
		LDARGS
		CALL 1 f
		PRINTI
		STOP
	f:	GETBP LDI
		IFZERO done
		GETBP LDI CSTI 1 SUB
		TCALL 1 1 f
	done:
		CSTI 0
		RET 1`

// maxDepth runs src with n as argument and reports the highest sp reached
func maxDepth(t *testing.T, src string, n int32, opts ...interpreter.Option) (int, string, error) {
	t.Helper()
	var out bytes.Buffer
	high := -1
	opts = append(opts,
		interpreter.WithWriter(&out),
		interpreter.WithArgs(interpreter.NewInt(n)),
		interpreter.WithStepHook(func(it *interpreter.Interpreter) { high = max(high, it.SP()) }),
	)
	_, err := interpreter.NewInterpreter(asm.MustAssemble(src), opts...).Run()
	return high, out.String(), err
}

func TestTailCallKeepsStackFlat(t *testing.T) {
	for _, n := range []int32{1, 10, 10000} {
		high, out, err := maxDepth(t, countdownTailCall, n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if out != "0 " {
			t.Errorf("n=%d: expected %q, got %q", n, "0 ", out)
		}
		if high > 4 {
			t.Errorf("n=%d: expected stack height bounded by one frame, got sp %d", n, high)
		}
	}
}

func TestCallStackGrowsWithDepth(t *testing.T) {
	high, out, err := maxDepth(t, countdownCall, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0 " {
		t.Errorf("expected %q, got %q", "0 ", out)
	}
	if high < 300 {
		t.Errorf("expected linear growth, got max sp %d", high)
	}

	if _, _, err := maxDepth(t, countdownCall, 1000); !errors.Is(err, interpreter.ErrStackBounds) {
		t.Errorf("expected stack overflow for deep recursion, got %v", err)
	}
}

func TestIncspKeepsResidualSlots(t *testing.T) {
	var out bytes.Buffer
	it := interpreter.NewInterpreter(asm.MustAssemble("CSTI 7 CSTI 8 INCSP -2 STOP"), interpreter.WithWriter(&out))
	if _, err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.SP() != -1 {
		t.Fatalf("expected sp -1, got %d", it.SP())
	}

	it.Load(asm.MustAssemble("INCSP 2 PRINTI STOP"))
	sp, err := it.Run()
	if err != nil {
		t.Fatal(err)
	}
	if sp != 1 || out.String() != "8 " {
		t.Errorf("expected residual 8 at sp 1, got %q at sp %d", out.String(), sp)
	}
	if v, _ := it.Slot(0); !v.Equal(interpreter.NewInt(7)) {
		t.Errorf("expected residual 7 in slot 0, got %v", v)
	}
}

func TestMaxSteps(t *testing.T) {
	_, _, err := run(t, "top: GOTO top", interpreter.WithMaxSteps(10))
	if !errors.Is(err, interpreter.ErrMaxStepsExceeded) {
		t.Errorf("expected ErrMaxStepsExceeded, got %v", err)
	}
}

func TestStepAfterHalt(t *testing.T) {
	it := interpreter.NewInterpreter(asm.MustAssemble("STOP"), interpreter.WithWriter(&bytes.Buffer{}))
	if halted, err := it.Step(); !halted || err != nil {
		t.Fatalf("expected halt, got %v %v", halted, err)
	}
	if halted, err := it.Step(); !halted || err != nil {
		t.Errorf("expected to stay halted, got %v %v", halted, err)
	}
	if it.Steps() != 1 {
		t.Errorf("expected 1 step, got %d", it.Steps())
	}
}

func TestFaultIsSticky(t *testing.T) {
	it := interpreter.NewInterpreter([]int32{99}, interpreter.WithWriter(&bytes.Buffer{}))
	_, first := it.Step()
	_, second := it.Step()
	if first == nil || first != second {
		t.Errorf("expected the same fault twice, got %v and %v", first, second)
	}
}

func TestLiveSlots(t *testing.T) {
	it := interpreter.NewInterpreter(asm.MustAssemble(`CSTI 1 CSTF 2.5 CSTC "c" STOP`), interpreter.WithWriter(&bytes.Buffer{}))
	if it.Live() != nil {
		t.Errorf("expected no live slots before running")
	}
	if _, err := it.Run(); err != nil {
		t.Fatal(err)
	}

	live := it.Live()
	expected := []interpreter.Value{interpreter.NewInt(1), interpreter.NewFloat(2.5), interpreter.NewChar('c')}
	if len(live) != len(expected) {
		t.Fatalf("expected %d live slots, got %d", len(expected), len(live))
	}
	for n := range expected {
		if !live[n].Equal(expected[n]) {
			t.Errorf("slot %d: expected %v, got %v", n, expected[n], live[n])
		}
	}
}
