package blockorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/analysis"
	"lpc/internal/backend/blockorder"
	"lpc/internal/ir"
)

func mustParse(t *testing.T, src string) *ir.Function {
	t.Helper()
	fn, err := ir.ParseFunction("t.lpir", src)
	require.NoError(t, err)
	return fn
}

func TestBuildPlacesFallthroughForDiamond(t *testing.T) {
	fn := mustParse(t, `
function %diamond(i32) -> i32 {
block0(v0: i32):
    brif v0, block1, block2
block1:
    v1 = iconst 1
    jump block3(v1)
block2:
    v2 = iconst 2
    jump block3(v2)
block3(v3: i32):
    return v3
}
`)
	cfg := analysis.BuildCFG(fn)
	blo := blockorder.Build(fn, cfg)
	blocks := fn.Blocks()
	entry, thenB, elseB, merge := blocks[0], blocks[1], blocks[2], blocks[3]

	require.Len(t, blo.LoweredOrder, 4)
	assert.Equal(t, entry, blo.LoweredOrder[0], "entry is always first")
	assert.Equal(t, thenB, blo.LoweredOrder[1], "the true arm, named first in brif, becomes the fallthrough")

	assert.True(t, blo.IndirectTargets[merge], "the join is reached by at least one non-fallthrough jump")
	assert.False(t, blo.IndirectTargets[thenB], "the fallthrough arm needs no explicit branch")
	assert.True(t, blo.IndirectTargets[elseB], "the else arm is only reached by an explicit branch from entry")
}

func TestBuildPlacesColdBlocksAfterHotOnes(t *testing.T) {
	fn := ir.NewFunction("coldpath", ir.NewSignature([]ir.Type{ir.I32}, []ir.Type{ir.I32}))
	b := ir.NewFunctionBuilder(fn)
	entry, params := b.CreateBlock(ir.I32)
	hot, _ := b.CreateBlock()
	cold, _ := b.CreateBlock()

	b.AppendBlock(entry)
	b.Br(params[0], hot, cold, nil, nil)
	fn.DFG.MarkBlockCold(cold)

	b.AppendBlock(hot)
	one := b.Iconst(ir.I32, 1)
	b.Return([]ir.Value{one})

	b.AppendBlock(cold)
	two := b.Iconst(ir.I32, 2)
	b.Return([]ir.Value{two})

	cfg := analysis.BuildCFG(fn)
	blo := blockorder.Build(fn, cfg)

	require.Len(t, blo.LoweredOrder, 3)
	assert.Equal(t, entry, blo.LoweredOrder[0])
	assert.Equal(t, hot, blo.LoweredOrder[1], "the non-cold arm is preferred as fallthrough over the cold arm")
	assert.Equal(t, cold, blo.LoweredOrder[2])
	assert.True(t, blo.ColdBlocks[cold])
	assert.False(t, blo.ColdBlocks[hot])
}

func TestBuildHandlesLoopBackEdge(t *testing.T) {
	fn := mustParse(t, `
function %loopy(i32) -> i32 {
block0(v0: i32):
    v1 = iconst 0
    jump block1(v1)
block1(v2: i32):
    v3 = icmp slt v2, v0
    brif v3, block2, block3
block2:
    v4 = iadd v2, v0
    jump block1(v4)
block3:
    return v2
}
`)
	cfg := analysis.BuildCFG(fn)
	blo := blockorder.Build(fn, cfg)
	require.Len(t, blo.LoweredOrder, 4)

	blocks := fn.Blocks()
	block1, block2 := blocks[1], blocks[2]
	assert.True(t, blo.IndirectTargets[block1], "the loop header is re-entered by an explicit backward jump")
	assert.NotEqual(t, -1, blo.BlockToIndex[block2])
}
