package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"tagvm/internal/config"
	"tagvm/pkg/interpreter"
	"tagvm/pkg/program"
	"tagvm/pkg/trace"
)

type Runner struct {
	Help        bool     // Show help message
	Verbose     bool     // Enable debug logging
	NoColor     bool     // Disable colored output
	Trace       bool     // Print the stack and instruction before every step
	Debug       bool     // Step through the program interactively
	List        bool     // Print the disassembly instead of running
	OutputFile  string   // Write a program image instead of running
	MaxSteps    int      // Step limit, 0 for none
	StackSize   int      // Number of stack slots
	ConfigFile  string   // Path to tagvm.toml
	ProgramFile string   // Path to the program
	Args        []string // Arguments classified for LDARGS

	Stdout io.Writer // program output, trace and listings
	Stderr io.Writer // elapsed time report
}

// ApplyConfig copies values from c into every option not set on the
// command line and checks the resulting machine limits. set holds the names
// of the flags given explicitly.
func (r *Runner) ApplyConfig(c *config.Config, set map[string]bool) error {
	if !set["s"] {
		r.MaxSteps = c.Machine.MaxSteps
	}
	if !set["S"] {
		r.StackSize = c.Machine.StackSize
	}
	if !set["t"] {
		r.Trace = c.Trace.Enabled
	}
	if !set["n"] {
		r.NoColor = !c.Trace.Color
	}
	if !set["v"] {
		r.Verbose = c.Log.Debug
	}

	if r.StackSize <= 0 {
		return fmt.Errorf("%w: stack size must be positive, got %d", config.ErrInvalid, r.StackSize)
	}
	if r.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must not be negative, got %d", config.ErrInvalid, r.MaxSteps)
	}
	return nil
}

// Run loads the program and then lists it, writes its image or executes it.
func (r *Runner) Run() error {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}

	log.Info("Loading program", "file", r.ProgramFile)
	p, source, err := program.Load(r.ProgramFile)
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}
	log.Debug("Program loaded", "words", len(p))

	if r.List {
		return trace.WriteListing(r.Stdout, p, -1)
	}

	if r.OutputFile != "" {
		if err := program.WriteImage(r.OutputFile, p, source); err != nil {
			return err
		}
		log.Info("Image written", "file", r.OutputFile, "words", len(p))
		return nil
	}

	args, err := interpreter.ParseArgs(r.Args)
	if err != nil {
		return err
	}

	opts := []interpreter.Option{
		interpreter.WithWriter(r.Stdout),
		interpreter.WithArgs(args...),
		interpreter.WithStackSize(r.StackSize),
		interpreter.WithMaxSteps(r.MaxSteps),
	}
	if r.Trace {
		opts = append(opts, interpreter.WithStepHook(trace.NewTracer(r.Stdout).Hook))
	}
	it := interpreter.NewInterpreter(p, opts...)

	start := time.Now()
	var sp int
	if r.Debug {
		sp, err = r.debug(it)
	} else {
		sp, err = it.Run()
	}
	r.reportElapsed(time.Since(start))

	switch {
	case errors.Is(err, interpreter.ErrUnhandledFault):
		log.Warn("Integer division by zero without a handler, run terminated", "sp", sp, "steps", it.Steps())
		return nil
	case err != nil:
		return err
	}

	log.Info("Program stopped", "sp", sp, "steps", it.Steps())
	return nil
}

func (r *Runner) reportElapsed(d time.Duration) {
	secs := float32(d.Milliseconds()) / 1000
	fmt.Fprintf(r.Stderr, "\nRan %s seconds\n", interpreter.FormatFloat(secs))
}
