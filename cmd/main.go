package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"tagvm/internal/config"
	"tagvm/internal/logger"
	"tagvm/internal/runner"
	"tagvm/pkg/color"
	"tagvm/pkg/interpreter"
)

// Main entry point for the tagvm interpreter.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Trace, "t", false, "Trace every instruction")
	flag.BoolVar(&options.Debug, "d", false, "Step through the program interactively")
	flag.BoolVar(&options.List, "l", false, "Disassemble the program and exit")
	flag.StringVar(&options.OutputFile, "o", "", "Write a program image (.tvmi) instead of running")
	flag.IntVar(&options.MaxSteps, "s", 0, "Maximum number of steps (0 = unlimited)")
	flag.IntVar(&options.StackSize, "S", interpreter.DefaultStackSize, "Number of stack slots")
	flag.StringVar(&options.ConfigFile, "f", "", "Configuration file (default ./"+config.FileName+")")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <program> [args...]\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	cfg, err := loadConfig(options.ConfigFile)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := options.ApplyConfig(cfg, set); err != nil {
		log.Fatal("Invalid options", "error", err)
	}

	// the configuration may change verbosity or colour
	logger.Init(options.Verbose, options.NoColor)
	if options.NoColor {
		color.EnableColor(false)
	}
	if cfg.Path != "" {
		log.Debug("Configuration loaded", "file", cfg.Path)
	}

	if len(args) == 0 {
		log.Fatal("No program file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.ProgramFile = args[0]
	options.Args = args[1:]

	if err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}
