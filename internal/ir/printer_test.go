package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/ir"
)

func buildAddTwoFunction() *ir.Function {
	fn := ir.NewFunction("add_two", ir.NewSignature([]ir.Type{ir.I32, ir.I32}, []ir.Type{ir.I32}))
	b := ir.NewFunctionBuilder(fn)
	entry, params := b.CreateBlock(ir.I32, ir.I32)
	b.AppendBlock(entry)
	sum := b.Iadd(ir.I32, params[0], params[1])
	b.Return([]ir.Value{sum})
	return fn
}

func TestPrintFunctionMatchesTextFormat(t *testing.T) {
	fn := buildAddTwoFunction()
	text := ir.PrintFunction(fn)
	assert.Contains(t, text, "function %add_two(i32, i32) -> i32 {")
	assert.Contains(t, text, "block0(v0: i32, v1: i32):")
	assert.Contains(t, text, "v2 = iadd v0, v1")
	assert.Contains(t, text, "return v2")
}

func TestCatRoundTripsThroughParser(t *testing.T) {
	fn := buildAddTwoFunction()
	printed := ir.PrintFunction(fn)

	parsed, err := ir.ParseFunction("add_two.lpir", printed)
	require.NoError(t, err)

	reprinted := ir.PrintFunction(parsed)
	assert.Equal(t, printed, reprinted)
}

func TestParseFunctionWithBranchesAndLoop(t *testing.T) {
	src := `
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
	fn, err := ir.ParseFunction("loopy.lpir", src)
	require.NoError(t, err)
	assert.Equal(t, "loopy", fn.Name)
	assert.Len(t, fn.Blocks(), 4)

	reprinted := ir.PrintFunction(fn)
	reparsed, err := ir.ParseFunction("loopy.lpir", reprinted)
	require.NoError(t, err)
	assert.Equal(t, reprinted, ir.PrintFunction(reparsed))
}

func TestParseModuleResolvesCallResultTypes(t *testing.T) {
	src := `
module {
entry: %main
function %main() -> i32 {
block0:
    v0 = iconst 10
    v1 = call %helper(v0)
    return v1
}
function %helper(i32) -> i32 {
block0(v0: i32):
    return v0
}
}
`
	mod, entry, err := ir.ParseModule("prog.lpir", src)
	require.NoError(t, err)
	assert.Equal(t, "main", entry)
	assert.Equal(t, "main", mod.Entry)

	main, ok := mod.Lookup("main")
	require.True(t, ok)
	callInst := main.BlockInsts(main.Blocks()[0])[1]
	data, _ := main.DFG.InstData(callInst)
	ty, _ := main.ValueType(data.Results[0])
	assert.Equal(t, ir.I32, ty)
}
