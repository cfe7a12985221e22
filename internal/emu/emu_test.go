package emu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/emu"
	"lpc/internal/riscv32"
)

func assembleCode(t *testing.T, insts []riscv32.Inst) []byte {
	t.Helper()
	buf := make([]byte, 0, len(insts)*4)
	for _, inst := range insts {
		word, err := riscv32.Encode(inst)
		require.NoError(t, err)
		buf = append(buf, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	return buf
}

func runToHaltOrSyscall(t *testing.T, e *emu.Emulator, maxSteps int) emu.StepResult {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		res, err := e.Step()
		require.NoError(t, err)
		if res.Kind != emu.StepContinued {
			return res
		}
	}
	t.Fatalf("did not halt within %d steps", maxSteps)
	return emu.StepResult{}
}

func TestEmulatorExecutesMul(t *testing.T) {
	code := assembleCode(t, []riscv32.Inst{
		{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: 5},
		{Op: riscv32.ADDI, Rd: riscv32.A1, Rs1: riscv32.Zero, Imm: 10},
		{Op: riscv32.MUL, Rd: riscv32.A0, Rs1: riscv32.A0, Rs2: riscv32.A1},
		{Op: riscv32.EBREAK},
	})
	e := emu.NewEmulator(emu.NewMemory(code, 256))
	res := runToHaltOrSyscall(t, e, 10)
	assert.Equal(t, emu.StepHalted, res.Kind)
	assert.Equal(t, uint32(50), e.Regs[riscv32.A0])
}

func TestEmulatorExecutesBranchLoop(t *testing.T) {
	// a0 = 0; while (a0 < 10) a0 += 1;
	code := assembleCode(t, []riscv32.Inst{
		{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: 0},   // 0
		{Op: riscv32.ADDI, Rd: riscv32.T0, Rs1: riscv32.Zero, Imm: 10},  // 4
		{Op: riscv32.BGE, Rs1: riscv32.A0, Rs2: riscv32.T0, Imm: 12},    // 8: -> 20
		{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.A0, Imm: 1},     // 12
		{Op: riscv32.JAL, Rd: riscv32.Zero, Imm: -8},                    // 16: -> 8
		{Op: riscv32.EBREAK},                                            // 20
	})
	e := emu.NewEmulator(emu.NewMemory(code, 256))
	res := runToHaltOrSyscall(t, e, 100)
	assert.Equal(t, emu.StepHalted, res.Kind)
	assert.Equal(t, uint32(10), e.Regs[riscv32.A0])
}

func TestEmulatorSurfacesSyscallWithoutExecutingIt(t *testing.T) {
	code := assembleCode(t, []riscv32.Inst{
		{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: 15},
		{Op: riscv32.ADDI, Rd: riscv32.A7, Rs1: riscv32.Zero, Imm: 0},
		{Op: riscv32.ECALL},
		{Op: riscv32.EBREAK},
	})
	e := emu.NewEmulator(emu.NewMemory(code, 256))
	res := runToHaltOrSyscall(t, e, 10)
	require.Equal(t, emu.StepSyscall, res.Kind)
	assert.Equal(t, uint32(0), res.Syscall.Number)
	assert.Equal(t, uint32(15), res.Syscall.Args[0])
}

func TestEmulatorLoadStoreRoundTrip(t *testing.T) {
	code := assembleCode(t, []riscv32.Inst{
		{Op: riscv32.LUI, Rd: riscv32.T0, Imm: int32(emu.RAMOffset)},
		{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: 99},
		{Op: riscv32.SW, Rs1: riscv32.T0, Rs2: riscv32.A0, Imm: 0},
		{Op: riscv32.LW, Rd: riscv32.A1, Rs1: riscv32.T0, Imm: 0},
		{Op: riscv32.EBREAK},
	})
	e := emu.NewEmulator(emu.NewMemory(code, 256))
	res := runToHaltOrSyscall(t, e, 10)
	assert.Equal(t, emu.StepHalted, res.Kind)
	assert.Equal(t, uint32(99), e.Regs[riscv32.A1])
}

func TestEmulatorReportsUnalignedAccess(t *testing.T) {
	mem := emu.NewMemory(nil, 256)
	_, err := mem.Load(emu.RAMOffset+1, 4)
	require.Error(t, err)
	var unaligned *emu.UnalignedAccess
	require.ErrorAs(t, err, &unaligned)
	assert.Equal(t, emu.RAMOffset+1, unaligned.Address)
	assert.Equal(t, uint32(4), unaligned.Alignment)
}

func TestEmulatorRejectsWriteToCodeRegion(t *testing.T) {
	code := make([]byte, 16)
	mem := emu.NewMemory(code, 256)
	err := mem.Store(0, 0xdeadbeef, 4)
	require.Error(t, err)
	var invalid *emu.InvalidMemoryAccess
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, uint32(0), invalid.Address)
	assert.Equal(t, emu.AccessWrite, invalid.Kind)
}
