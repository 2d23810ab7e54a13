// Package config handles tagvm.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tagvm/pkg/interpreter"
)

const FileName = "tagvm.toml"

var ErrInvalid = errors.New("invalid configuration")

// Config represents a tagvm.toml file.
type Config struct {
	Machine Machine `toml:"machine"`
	Trace   Trace   `toml:"trace"`
	Log     Log     `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Machine sizes the interpreter.
type Machine struct {
	StackSize int `toml:"stack-size"`
	MaxSteps  int `toml:"max-steps"` // 0 = unlimited
}

// Trace controls per-instruction tracing.
type Trace struct {
	Enabled bool `toml:"enabled"`
	Color   bool `toml:"color"`
}

type Log struct {
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Machine: Machine{StackSize: interpreter.DefaultStackSize},
		Trace:   Trace{Color: true},
	}
}

// Load parses the file at path over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for n, k := range undecoded {
			keys[n] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path
	return c, nil
}

// FindAndLoad loads tagvm.toml from dir, falling back to the defaults when
// the file does not exist.
func FindAndLoad(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	return Load(path)
}

// Validate checks the machine limits.
func (c *Config) Validate() error {
	if c.Machine.StackSize <= 0 {
		return fmt.Errorf("%w: machine.stack-size must be positive, got %d", ErrInvalid, c.Machine.StackSize)
	}
	if c.Machine.MaxSteps < 0 {
		return fmt.Errorf("%w: machine.max-steps must not be negative, got %d", ErrInvalid, c.Machine.MaxSteps)
	}
	return nil
}
