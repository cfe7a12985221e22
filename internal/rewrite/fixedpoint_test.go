package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/ir"
	"lpc/internal/rewrite"
	"lpc/internal/verifier"
)

func buildFloatFunction() *ir.Function {
	fn := ir.NewFunction("scale", ir.NewSignature([]ir.Type{ir.F32}, []ir.Type{ir.F32}))
	b := ir.NewFunctionBuilder(fn)
	entry, params := b.CreateBlock(ir.F32)
	b.AppendBlock(entry)

	half := b.Fconst(0.5)
	cond := b.Fcmp(ir.FloatLessThan, params[0], half)

	thenBlk, _ := b.CreateBlock()
	elseBlk, _ := b.CreateBlock()
	merge, mergeParams := b.CreateBlock(ir.F32)
	b.Br(cond, thenBlk, elseBlk, nil, nil)

	b.AppendBlock(thenBlk)
	one := b.Fconst(1.0)
	b.Jump(merge, []ir.Value{one})

	b.AppendBlock(elseBlk)
	b.Jump(merge, []ir.Value{params[0]})

	b.AppendBlock(merge)
	b.Return([]ir.Value{mergeParams[0]})

	return fn
}

func TestFixedPointRewritesFconstToScaledIconst(t *testing.T) {
	fn := buildFloatFunction()
	rewrite.FixedPoint(fn)

	entry := fn.Blocks()[0]
	var halfConst ir.InstData
	for _, inst := range fn.BlockInsts(entry) {
		data, _ := fn.DFG.InstData(inst)
		if data.Op == ir.OpIconst && data.ConstI == rewrite.FixedPointScale/2 {
			halfConst = data
		}
	}
	require.Equal(t, ir.OpIconst, halfConst.Op, "fconst 0.5 must become iconst 32768")

	ty, _ := fn.ValueType(halfConst.Results[0])
	assert.Equal(t, ir.I32, ty)
}

func TestFixedPointRewritesFcmpToIcmpWithMappedCondition(t *testing.T) {
	fn := buildFloatFunction()
	rewrite.FixedPoint(fn)

	entry := fn.Blocks()[0]
	var cmp ir.InstData
	for _, inst := range fn.BlockInsts(entry) {
		data, _ := fn.DFG.InstData(inst)
		if data.Op == ir.OpIcmp {
			cmp = data
		}
	}
	require.Equal(t, ir.OpIcmp, cmp.Op)
	assert.Equal(t, ir.IntSignedLessThan, cmp.Cond)
}

func TestFixedPointRetypesSignatureAndBlockParams(t *testing.T) {
	fn := buildFloatFunction()
	rewrite.FixedPoint(fn)

	assert.Equal(t, ir.I32, fn.Signature.Params[0])
	assert.Equal(t, ir.I32, fn.Signature.Returns[0])

	merge := fn.Blocks()[3]
	params := fn.BlockParams(merge)
	require.Len(t, params, 1)
	ty, _ := fn.ValueType(params[0])
	assert.Equal(t, ir.I32, ty)

	errs := verifier.VerifyFunction(fn, nil)
	assert.Empty(t, errs, "the rewritten function must still verify cleanly")
}

func TestFixedPointIsIdempotent(t *testing.T) {
	fn := buildFloatFunction()
	rewrite.FixedPoint(fn)
	once := ir.PrintFunction(fn)

	rewrite.FixedPoint(fn)
	twice := ir.PrintFunction(fn)

	assert.Equal(t, once, twice, "running FixedPoint again on an all-integer function must be a no-op")
}

func TestToFixedPoint16_16(t *testing.T) {
	assert.Equal(t, int64(65536), rewrite.ToFixedPoint16_16(1.0))
	assert.Equal(t, int64(32768), rewrite.ToFixedPoint16_16(0.5))
	assert.Equal(t, int64(-65536), rewrite.ToFixedPoint16_16(-1.0))
	assert.Equal(t, int64(0), rewrite.ToFixedPoint16_16(0.0))
}
