package vcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/backend/vcode"
	"lpc/internal/ir"
)

func TestFormatParseRoundTripsSimpleAdd(t *testing.T) {
	src := `vcode {
  entry: block0
  block0(v0, v1):
    v2 = add v0, v1
    ret v2
}
`
	fn, err := vcode.Parse("t.vcode", src)
	require.NoError(t, err)
	assert.Equal(t, src, vcode.Format(fn))
}

func TestFormatParseRoundTripsBranchTwoDest(t *testing.T) {
	src := `vcode {
  entry: block0
  block0(v0, v1):
    brtwo slt v0, v1, block1, block2
  block1:
    ret v0
  block2:
    ret v1
}
`
	fn, err := vcode.Parse("t.vcode", src)
	require.NoError(t, err)
	assert.Equal(t, src, vcode.Format(fn))

	inst := fn.Blocks[ir.Block(0)].Insts[0]
	assert.Equal(t, vcode.OpBranchTwoDest, inst.Op)
	assert.Equal(t, ir.IntSignedLessThan, inst.Cond)
	assert.Equal(t, ir.Block(1), inst.TrueTarget.Block)
	assert.Equal(t, ir.Block(2), inst.FalseTarget.Block)
}

func TestFormatParseRoundTripsCallAndSyscall(t *testing.T) {
	src := `vcode {
  entry: block0
  block0(v0):
    v1 = call %helper(v0)
    v2 = syscall 1(v1)
    ret v2
}
`
	fn, err := vcode.Parse("t.vcode", src)
	require.NoError(t, err)
	assert.Equal(t, src, vcode.Format(fn))
}

func TestFormatParseRoundTripsLoadStoreAndTraps(t *testing.T) {
	src := `vcode {
  entry: block0
  block0(v0, v1):
    v2 = load4 v0
    store4 v0, v1
    trapz int_div_by_zero, v2
    trapnz bounds_check, v2
    halt
}
`
	fn, err := vcode.Parse("t.vcode", src)
	require.NoError(t, err)
	assert.Equal(t, src, vcode.Format(fn))
}

func TestRegAllocatorSeedsPastParsedVRegs(t *testing.T) {
	src := `vcode {
  entry: block0
  block0(v0, v5):
    ret v5
}
`
	fn, err := vcode.Parse("t.vcode", src)
	require.NoError(t, err)
	fresh := fn.Regs.NewVReg()
	assert.Equal(t, 6, fresh.Index, "fresh allocation continues past the highest parsed vreg index")
}
