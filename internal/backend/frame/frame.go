// Package frame computes a function's stack frame layout (spec.md
// §4.7): where spills, callee-saved saves, the return address, and
// the incoming/outgoing argument areas live relative to sp, plus the
// concrete prologue/epilogue instruction sequences.
package frame

import (
	"sort"

	"lpc/internal/riscv32"
)

// Request describes what a function's frame needs to hold, gathered
// from regalloc's output and the function's own call/argument shape.
type Request struct {
	CalleeSaved       []riscv32.Gpr
	HasCalls          bool
	UsesFramePointer  bool
	OutgoingArgBytes  int
	IncomingArgBytes  int
	SpillSlotCount    int
	MaxTempSpillSlots int
}

// Layout is the computed frame: byte offsets from sp (lowest first),
// the total frame size (16-byte aligned), and ready-to-emit
// prologue/epilogue sequences.
type Layout struct {
	OutgoingArgsOffset int
	SpillSlotsOffset   int
	CalleeSavedOffset  int
	ReturnAddrOffset   int
	SavedFPOffset      int
	HasFP              bool
	Size               int

	CalleeSaved []riscv32.Gpr
}

// Compute lays out a frame satisfying req, per spec.md §4.7's ordering:
// outgoing args lowest, then spill slots, callee-saved saves, the
// return address, the saved frame pointer (no fixed-storage area is
// reserved between outgoing args and spill slots), with the
// incoming argument area (addressed via sp+Size+offset, above the
// frame entirely) highest.
func Compute(req Request) *Layout {
	saved := append([]riscv32.Gpr(nil), req.CalleeSaved...)
	sort.Slice(saved, func(i, j int) bool { return saved[i] < saved[j] })

	cursor := 0
	l := &Layout{CalleeSaved: saved}

	l.OutgoingArgsOffset = cursor
	cursor += roundUp4(req.OutgoingArgBytes)

	l.SpillSlotsOffset = cursor
	cursor += (req.SpillSlotCount + req.MaxTempSpillSlots) * 4

	l.CalleeSavedOffset = cursor
	cursor += len(saved) * 4

	if req.HasCalls {
		l.ReturnAddrOffset = cursor
		cursor += 4
	}

	l.HasFP = req.UsesFramePointer
	if l.HasFP {
		l.SavedFPOffset = cursor
		cursor += 4
	}

	l.Size = roundUp16(cursor)
	return l
}

func roundUp4(n int) int  { return (n + 3) &^ 3 }
func roundUp16(n int) int { return (n + 15) &^ 15 }

// IncomingArgOffset returns the sp-relative byte offset (after the
// prologue has run) of the i'th incoming stack argument, i counting
// from the first argument spilled to the stack (argument index 8).
func (l *Layout) IncomingArgOffset(i int) int {
	return l.Size + i*4
}

// Prologue returns the instruction sequence a function's entry block
// must emit before any lowered code: shrink the stack, save ra, save
// every callee-saved register the body clobbers, and set up fp if
// requested.
func (l *Layout) Prologue(hasCalls bool) []riscv32.Inst {
	var insts []riscv32.Inst
	if l.Size == 0 {
		return insts
	}
	insts = append(insts, riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.Sp, Rs1: riscv32.Sp, Imm: int32(-l.Size)})
	if hasCalls {
		insts = append(insts, riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: riscv32.Ra, Imm: int32(l.ReturnAddrOffset)})
	}
	for i, r := range l.CalleeSaved {
		insts = append(insts, riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: r, Imm: int32(l.CalleeSavedOffset + i*4)})
	}
	if l.HasFP {
		insts = append(insts, riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: riscv32.Fp, Imm: int32(l.SavedFPOffset)})
		insts = append(insts, riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.Fp, Rs1: riscv32.Sp, Imm: int32(l.Size)})
	}
	return insts
}

// Epilogue mirrors Prologue and ends with a return ("jalr x0, ra, 0").
func (l *Layout) Epilogue(hasCalls bool) []riscv32.Inst {
	var insts []riscv32.Inst
	if l.HasFP {
		insts = append(insts, riscv32.Inst{Op: riscv32.LW, Rd: riscv32.Fp, Rs1: riscv32.Sp, Imm: int32(l.SavedFPOffset)})
	}
	for i := len(l.CalleeSaved) - 1; i >= 0; i-- {
		insts = append(insts, riscv32.Inst{Op: riscv32.LW, Rd: l.CalleeSaved[i], Rs1: riscv32.Sp, Imm: int32(l.CalleeSavedOffset + i*4)})
	}
	if hasCalls {
		insts = append(insts, riscv32.Inst{Op: riscv32.LW, Rd: riscv32.Ra, Rs1: riscv32.Sp, Imm: int32(l.ReturnAddrOffset)})
	}
	if l.Size != 0 {
		insts = append(insts, riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.Sp, Rs1: riscv32.Sp, Imm: int32(l.Size)})
	}
	insts = append(insts, riscv32.Inst{Op: riscv32.JALR, Rd: riscv32.Zero, Rs1: riscv32.Ra, Imm: 0})
	return insts
}
