package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lpc/internal/analysis"
)

func TestDominatorTreeOverLoop(t *testing.T) {
	fn := mustParse(t, loopySrc)
	cfg := analysis.BuildCFG(fn)
	dom := analysis.BuildDominatorTree(fn, cfg)
	blocks := fn.Blocks()
	block0, block1, block2, block3 := blocks[0], blocks[1], blocks[2], blocks[3]

	assert.True(t, dom.Dominates(block0, block1))
	assert.True(t, dom.Dominates(block0, block2))
	assert.True(t, dom.Dominates(block0, block3))
	assert.True(t, dom.Dominates(block1, block2))
	assert.True(t, dom.Dominates(block1, block3))
	assert.False(t, dom.Dominates(block2, block1), "the loop body never dominates its own header")
	assert.False(t, dom.Dominates(block2, block3))
	assert.True(t, dom.Dominates(block1, block1), "a block dominates itself")

	idom1, ok := dom.ImmediateDominator(block1)
	assert.True(t, ok)
	assert.Equal(t, block0, idom1)

	idom3, ok := dom.ImmediateDominator(block3)
	assert.True(t, ok)
	assert.Equal(t, block1, idom3)

	_, ok = dom.ImmediateDominator(block0)
	assert.False(t, ok, "the entry block has no immediate dominator")
}

func TestDominatorTreeOverDiamond(t *testing.T) {
	src := `
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
`
	fn := mustParse(t, src)
	cfg := analysis.BuildCFG(fn)
	dom := analysis.BuildDominatorTree(fn, cfg)
	blocks := fn.Blocks()
	entry, thenB, elseB, merge := blocks[0], blocks[1], blocks[2], blocks[3]

	assert.True(t, dom.Dominates(entry, merge))
	assert.False(t, dom.Dominates(thenB, merge), "neither arm alone dominates the join")
	assert.False(t, dom.Dominates(elseB, merge))

	idom, ok := dom.ImmediateDominator(merge)
	assert.True(t, ok)
	assert.Equal(t, entry, idom, "the join's immediate dominator is the branch point, not either arm")
}
