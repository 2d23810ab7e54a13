package runner

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"tagvm/pkg/color"
	"tagvm/pkg/interpreter"
	"tagvm/pkg/trace"
)

const prompt = "(tagvm) "

const debugHelp = `Commands:
  step [n]   execute n instructions (default 1)
  continue   run until the program stops
  stack      show the live stack
  regs       show pc, sp, bp and hr
  list       disassemble the program
  quit       leave the debugger
An empty line repeats the previous command.
`

// Debugger drives an interpreter one command at a time
type Debugger struct {
	it   *interpreter.Interpreter
	out  io.Writer
	last string
	done bool
	err  error
}

func NewDebugger(it *interpreter.Interpreter, out io.Writer) *Debugger {
	return &Debugger{it: it, out: out}
}

// Done reports whether the program finished or the user quit
func (d *Debugger) Done() bool {
	return d.done
}

// Err returns the fault that ended the program, if any
func (d *Debugger) Err() error {
	return d.err
}

// Exec runs one debugger command line
func (d *Debugger) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		if d.last == "" {
			return
		}
		fields = strings.Fields(d.last)
	} else {
		d.last = line
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "s", "step":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 {
				fmt.Fprintln(d.out, color.Error(fmt.Sprintf("invalid step count %q", fields[1])))
				return
			}
			n = v
		}
		d.step(n)

	case "c", "continue":
		d.step(-1)

	case "stack":
		fmt.Fprintln(d.out, trace.Stack(d.it))

	case "r", "regs":
		fmt.Fprintf(d.out, "pc=%d sp=%d bp=%d hr=%d steps=%d\n",
			d.it.PC(), d.it.SP(), d.it.BP(), d.it.HR(), d.it.Steps())

	case "l", "list":
		if err := trace.WriteListing(d.out, d.it.Program(), d.it.PC()); err != nil {
			log.Error("Listing failed", "error", err)
		}

	case "q", "quit":
		d.done = true

	case "h", "help":
		fmt.Fprint(d.out, debugHelp)

	default:
		fmt.Fprintln(d.out, color.Warning(fmt.Sprintf("unknown command %q, type help", cmd)))
	}
}

// step executes n instructions, or until the end when n is negative
func (d *Debugger) step(n int) {
	if d.done {
		return
	}

	for k := 0; n < 0 || k < n; k++ {
		halted, err := d.it.Step()
		if err != nil {
			d.done, d.err = true, err
			fmt.Fprintln(d.out, color.Error(err.Error()))
			return
		}
		if halted {
			d.done = true
			fmt.Fprintln(d.out, color.Info(fmt.Sprintf("program stopped after %d steps", d.it.Steps())))
			return
		}
	}

	fmt.Fprintln(d.out, trace.Line(d.it))
}

// debug runs the interactive stepper on the terminal
func (r *Runner) debug(it *interpreter.Interpreter) (int, error) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	d := NewDebugger(it, r.Stdout)
	fmt.Fprintln(r.Stdout, trace.Line(it))

	for !d.Done() {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			break
		}
		if err != nil {
			return it.SP(), err
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		d.Exec(line)
	}

	if !it.Halted() && d.Err() == nil {
		log.Info("Debugger quit before the program stopped", "pc", it.PC())
	}
	return it.SP(), d.Err()
}
