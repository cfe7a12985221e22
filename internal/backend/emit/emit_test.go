package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/backend/emit"
	"lpc/internal/emu"
	"lpc/internal/ir"
	"lpc/internal/riscv32"
)

func mustModule(t *testing.T, fns ...string) *ir.Module {
	t.Helper()
	mod := ir.NewModule()
	for _, src := range fns {
		fn, err := ir.ParseFunction("t.lpir", src)
		require.NoError(t, err)
		require.NoError(t, mod.AddFunction(fn))
	}
	mod.Entry = mod.Order[0]
	return mod
}

func TestEmitStraightLineArithmeticProducesEncodableCode(t *testing.T) {
	mod := mustModule(t, `
function %add(i32, i32) -> i32 {
block0(v0: i32, v1: i32):
    v2 = iadd v0, v1
    return v2
}
`)
	m, err := emit.EmitModule(mod)
	require.NoError(t, err)
	require.NotEmpty(t, m.Insts)

	code, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, len(m.Insts)*4, len(code))
}

func TestEmitIfElseBranchResolvesBothArms(t *testing.T) {
	mod := mustModule(t, `
function %pick(i32, i32) -> i32 {
block0(v0: i32, v1: i32):
    v2 = iconst 0
    v3 = icmp sgt v0, v2
    brif v3, block1, block2
block1:
    jump block3(v0)
block2:
    jump block3(v1)
block3(v4: i32):
    return v4
}
`)
	m, err := emit.EmitModule(mod)
	require.NoError(t, err)
	_, err = m.Encode()
	require.NoError(t, err)
}

func TestEmitWhileLoopHaltsTheInterpreter(t *testing.T) {
	mod := mustModule(t, `
function %countdown(i32) -> i32 {
block0(v0: i32):
    jump block1(v0)
block1(v1: i32):
    v2 = iconst 0
    v3 = icmp sgt v1, v2
    brif v3, block2, block3
block2:
    v4 = iconst 1
    v5 = isub v1, v4
    jump block1(v5)
block3:
    halt
}
`)
	m, err := emit.EmitModule(mod)
	require.NoError(t, err)
	code, err := m.Encode()
	require.NoError(t, err)

	mem := emu.NewMemory(code, 256)
	e := emu.NewEmulator(mem)
	e.Regs[riscv32.A0] = 3
	for i := 0; i < 10000; i++ {
		res, err := e.Step()
		require.NoError(t, err)
		if res.Kind == emu.StepHalted {
			return
		}
	}
	t.Fatal("program did not halt")
}

func TestEmitCallProducesACallAndRelocatesItToTheCallee(t *testing.T) {
	mod := mustModule(t, `
function %caller(i32) -> i32 {
block0(v0: i32):
    v1 = call %helper(v0)
    return v1
}
function %helper(i32) -> i32 {
block0(v0: i32):
    v1 = iconst 1
    v2 = iadd v0, v1
    return v2
}
`)
	m, err := emit.EmitModule(mod)
	require.NoError(t, err)
	callerStart, ok := m.Symbols["caller"]
	require.True(t, ok)
	helperStart, ok := m.Symbols["helper"]
	require.True(t, ok)

	var jal *riscv32.Inst
	for i := callerStart; i < helperStart; i++ {
		if m.Insts[i].Op == riscv32.JAL && m.Insts[i].Rd == riscv32.Ra {
			jal = &m.Insts[i]
			break
		}
	}
	require.NotNil(t, jal, "call site must lower to a jal ra, <callee>")

	_, err = m.Encode()
	require.NoError(t, err)
}

func TestEmitUndefinedCalleeIsAnError(t *testing.T) {
	mod := mustModule(t, `
function %caller(i32) -> i32 {
block0(v0: i32):
    v1 = call %missing(v0)
    return v1
}
`)
	_, err := emit.EmitModule(mod)
	assert.Error(t, err)
}
