// Package emu is a reference RV32IM interpreter, the oracle emission
// tests check encoded output against. It decodes with
// internal/riscv32 and executes one instruction at a time with no
// speculation, caching, or pipelining — determinism, not speed, is
// the point.
package emu

import "lpc/internal/riscv32"

// StepKind classifies what Step just did.
type StepKind int

const (
	StepContinued StepKind = iota
	StepHalted
	StepSyscall
)

// StepResult reports the outcome of one Step call.
type StepResult struct {
	Kind StepKind
	// Syscall carries the ecall's number (from a7) and argument
	// registers a0..a6 when Kind == StepSyscall. ecall itself is never
	// executed by the interpreter: the number and arguments are
	// surfaced for the host to act on and resume from, exactly as
	// spec.md §4.9 describes.
	Syscall SyscallInfo
}

// SyscallInfo is the decoded ecall request the host must service.
type SyscallInfo struct {
	Number uint32
	Args   [7]uint32
}

// Emulator is the interpreter's full state: the 32 integer registers
// (x0 hardwired to zero), the program counter, and memory.
type Emulator struct {
	Regs [32]uint32
	PC   uint32
	Mem  *Memory
}

// NewEmulator returns an interpreter over mem with PC at 0 and every
// register zeroed.
func NewEmulator(mem *Memory) *Emulator {
	return &Emulator{Mem: mem}
}

func (e *Emulator) reg(g riscv32.Gpr) uint32 {
	if g == riscv32.X0 {
		return 0
	}
	return e.Regs[g]
}

func (e *Emulator) setReg(g riscv32.Gpr, v uint32) {
	if g == riscv32.X0 {
		return
	}
	e.Regs[g] = v
}

// Step decodes and executes the instruction at PC. On success it
// returns whether execution should continue, has halted (ebreak), or
// is blocked on a syscall the host must resolve. On error, state is
// left unmutated: the PC has not advanced and no register or memory
// write took effect.
func (e *Emulator) Step() (StepResult, error) {
	word, err := e.Mem.Load(e.PC, 4)
	if err != nil {
		return StepResult{}, err
	}
	inst, err := riscv32.Decode(word)
	if err != nil {
		return StepResult{}, &Error{PC: e.PC, Message: err.Error()}
	}
	return e.execute(inst)
}
