package asm

import (
	"fmt"

	"tagvm/pkg/lexer"
)

// fixup is a program word waiting for a label address
type fixup struct {
	index int
	label string
	pos   lexer.Position
}

type Codegen struct {
	pb     []int32        // Program block (words emitted so far)
	labels map[string]int // Label name -> word address
	fixups []fixup        // Label references to backpatch
	errors []string       // List of semantic errors
}

// NewCodegen creates a new Codegen instance
func NewCodegen() *Codegen {
	return &Codegen{
		pb:     make([]int32, 0),
		labels: make(map[string]int),
	}
}

// emit appends a word and returns its address
func (c *Codegen) emit(w int32) int {
	c.pb = append(c.pb, w)
	return len(c.pb) - 1
}

// emitLabelRef emits a placeholder word for a label resolved by backpatch
func (c *Codegen) emitLabelRef(name string, pos lexer.Position) {
	idx := c.emit(0)
	c.fixups = append(c.fixups, fixup{index: idx, label: name, pos: pos})
}

// defineLabel binds name to the address of the next emitted word
func (c *Codegen) defineLabel(name string, pos lexer.Position) {
	if _, exists := c.labels[name]; exists {
		c.addError(fmt.Sprintf("Duplicate label `%s` at %s", name, pos))
		return
	}
	c.labels[name] = len(c.pb)
}

// backpatch fills every label reference with its address
func (c *Codegen) backpatch() {
	for _, f := range c.fixups {
		addr, ok := c.labels[f.label]
		if !ok {
			c.addError(fmt.Sprintf("Undefined label `%s` at %s", f.label, f.pos))
			continue
		}
		c.pb[f.index] = int32(addr)
	}
	c.fixups = nil
}

func (c *Codegen) addError(e string) {
	c.errors = append(c.errors, e)
}

// GetProgram returns the generated words
func (c *Codegen) GetProgram() []int32 {
	return c.pb
}

// Labels returns the label table
func (c *Codegen) Labels() map[string]int {
	return c.labels
}

func (c *Codegen) GetErrors() []string {
	return c.errors
}
