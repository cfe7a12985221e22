// Package ir defines the LPIR intermediate representation: types, SSA
// values, instructions, basic blocks, functions, and modules, together
// with their textual parser and printer.
package ir

import "fmt"

// invalidIndex marks an absent entity reference. Go has no niche
// optimization, so a sentinel value stands in for lpc-lpir's
// PackedOption<T>.
const invalidIndex uint32 = ^uint32(0)

// Block identifies a basic block within a function's arena.
type Block uint32

// Inst identifies an instruction within a function's arena.
type Inst uint32

func (b Block) String() string { return fmt.Sprintf("block%d", uint32(b)) }
func (i Inst) String() string  { return fmt.Sprintf("inst%d", uint32(i)) }

// IsValid reports whether b refers to a real block.
func (b Block) IsValid() bool { return uint32(b) != invalidIndex }

// IsValid reports whether i refers to a real instruction.
func (i Inst) IsValid() bool { return uint32(i) != invalidIndex }

const (
	// InvalidBlock is the sentinel for "no block" (not the zero value,
	// which is block0).
	InvalidBlock Block = Block(invalidIndex)
	// InvalidInst is the sentinel for "no instruction" (not the zero
	// value, which is inst0).
	InvalidInst Inst = Inst(invalidIndex)
)
