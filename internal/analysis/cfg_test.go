package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/analysis"
	"lpc/internal/ir"
)

const loopySrc = `
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
`

func mustParse(t *testing.T, src string) *ir.Function {
	t.Helper()
	fn, err := ir.ParseFunction("t.lpir", src)
	require.NoError(t, err)
	return fn
}

func TestBuildCFGSuccessorsAndPredecessors(t *testing.T) {
	fn := mustParse(t, loopySrc)
	cfg := analysis.BuildCFG(fn)
	blocks := fn.Blocks()
	block0, block1, block2, block3 := blocks[0], blocks[1], blocks[2], blocks[3]

	assert.ElementsMatch(t, []ir.Block{block1}, cfg.Successors(block0))
	assert.ElementsMatch(t, []ir.Block{block2, block3}, cfg.Successors(block1))
	assert.ElementsMatch(t, []ir.Block{block1}, cfg.Successors(block2))
	assert.Empty(t, cfg.Successors(block3))

	assert.ElementsMatch(t, []ir.Block{block0, block2}, cfg.Predecessors(block1))
	assert.ElementsMatch(t, []ir.Block{block1}, cfg.Predecessors(block2))
	assert.ElementsMatch(t, []ir.Block{block1}, cfg.Predecessors(block3))
	assert.Empty(t, cfg.Predecessors(block0))
}
