package regalloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/analysis"
	"lpc/internal/backend/blockorder"
	"lpc/internal/backend/lower"
	"lpc/internal/backend/regalloc"
	"lpc/internal/backend/vcode"
	"lpc/internal/ir"
	"lpc/internal/riscv32"
)

func lowerSrc(t *testing.T, src string) *vcode.Function {
	t.Helper()
	fn, err := ir.ParseFunction("t.lpir", src)
	require.NoError(t, err)
	cfg := analysis.BuildCFG(fn)
	blo := blockorder.Build(fn, cfg)
	res, err := lower.Lower(fn, blo)
	require.NoError(t, err)
	return res.Function
}

func TestAllocateAssignsDistinctRegistersToOverlappingValues(t *testing.T) {
	vfn := lowerSrc(t, `
function %add3(i32, i32, i32) -> i32 {
block0(v0: i32, v1: i32, v2: i32):
    v3 = iadd v0, v1
    v4 = iadd v3, v2
    return v4
}
`)
	alloc := regalloc.Allocate(vfn)
	blk := vfn.Order[0]
	params := vfn.Blocks[blk].Params
	locs := map[riscv32.Gpr]bool{}
	for _, p := range params {
		loc := alloc.Location(p)
		require.False(t, loc.IsStack, "small function shouldn't need to spill")
		locs[loc.Reg] = true
	}
	assert.Len(t, locs, 3, "each live-simultaneously param needs its own register")
}

func TestAllocateUsesCalleeSavedAcrossCalls(t *testing.T) {
	vfn := lowerSrc(t, `
function %caller(i32) -> i32 {
block0(v0: i32):
    v1 = call %helper(v0)
    v2 = iadd v0, v1
    return v2
}
`)
	alloc := regalloc.Allocate(vfn)
	blk := vfn.Order[0]
	v0 := vfn.Blocks[blk].Params[0]
	loc := alloc.Location(v0)
	require.False(t, loc.IsStack)
	assert.True(t, riscv32.IsCalleeSaved(loc.Reg), "value live across a call must land in a callee-saved register")
	require.Contains(t, alloc.CalleeSaved, loc.Reg)
}

func TestAllocateSpillsWhenRegistersRunOut(t *testing.T) {
	vfn := lowerSrc(t, `
function %many(i32) -> i32 {
block0(v0: i32):
    v1 = iconst 1
    v2 = iconst 2
    v3 = iconst 3
    v4 = iconst 4
    v5 = iconst 5
    v6 = iconst 6
    v7 = iconst 7
    v8 = iconst 8
    v9 = iconst 9
    v10 = iconst 10
    v11 = iconst 11
    v12 = iconst 12
    v13 = iconst 13
    v14 = iconst 14
    v15 = iconst 15
    v16 = iconst 16
    v17 = iconst 17
    v18 = iconst 18
    v19 = iconst 19
    v20 = iconst 20
    v21 = iconst 21
    v22 = iconst 22
    v23 = iconst 23
    v24 = iconst 24
    v25 = iconst 25
    v26 = iconst 26
    v27 = iconst 27
    v28 = iconst 28
    v29 = iconst 29
    v30 = iconst 30
    v31 = iconst 31
    v32 = iconst 32
    v33 = iconst 33
    v34 = iconst 34
    v35 = iadd v1, v2
    v36 = iadd v35, v3
    v37 = iadd v36, v4
    v38 = iadd v37, v5
    v39 = iadd v38, v6
    v40 = iadd v39, v7
    v41 = iadd v40, v8
    v42 = iadd v41, v9
    v43 = iadd v42, v10
    v44 = iadd v43, v11
    v45 = iadd v44, v12
    v46 = iadd v45, v13
    v47 = iadd v46, v14
    v48 = iadd v47, v15
    v49 = iadd v48, v16
    v50 = iadd v49, v17
    v51 = iadd v50, v18
    v52 = iadd v51, v19
    v53 = iadd v52, v20
    v54 = iadd v53, v21
    v55 = iadd v54, v22
    v56 = iadd v55, v23
    v57 = iadd v56, v24
    v58 = iadd v57, v25
    v59 = iadd v58, v26
    v60 = iadd v59, v27
    v61 = iadd v60, v28
    v62 = iadd v61, v29
    v63 = iadd v62, v30
    v64 = iadd v63, v31
    v65 = iadd v64, v32
    v66 = iadd v65, v33
    v67 = iadd v66, v34
    return v67
}
`)
	alloc := regalloc.Allocate(vfn)
	spilled := 0
	for _, loc := range alloc.Locations {
		if loc.IsStack {
			spilled++
		}
	}
	assert.Greater(t, spilled, 0, "more simultaneously-live values than physical registers must spill")
	assert.Greater(t, alloc.SpillSlotCount, 0)
}
