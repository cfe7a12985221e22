// Package rewrite implements IR-to-IR transforms over a built
// function. The only transform today is the float-to-fixed-point-16.16
// conversion that retires every F32 value, since the backend never
// emits float instructions. Nothing in the compile pipeline
// (emit.EmitModule, lpc-cli) calls it; callers run it themselves.
package rewrite

import (
	"math"

	"lpc/internal/ir"
)

// FixedPointScale is the Q16.16 scale factor: one unit of the fixed
// representation is 1/65536 of a unit of the original float value.
const FixedPointScale = 1 << 16

// ToFixedPoint16_16 float converts f to its nearest signed Q16.16
// representation.
func ToFixedPoint16_16(f float32) int64 {
	return int64(math.Round(float64(f) * FixedPointScale))
}

// FixedPoint rewrites fn so that it contains no F32 values: every
// `fconst` becomes an `iconst` of the value's Q16.16 encoding, every
// `fcmp` becomes the equivalent signed `icmp` (fixed-point comparison
// under two's complement behaves exactly like signed integer
// comparison at a constant scale), and every F32-typed block
// parameter, signature entry, load result, and call result is retyped
// to I32. The
// pass is idempotent: once no F32 value remains, it is a no-op, so
// running it twice never double-scales a constant.
func FixedPoint(fn *ir.Function) {
	retypeSignature(fn)
	retypeBlockParams(fn)

	for _, blk := range fn.Blocks() {
		for _, inst := range fn.BlockInsts(blk) {
			data, ok := fn.DFG.InstData(inst)
			if !ok {
				continue
			}
			switch data.Op {
			case ir.OpFconst:
				rewriteFconst(fn, inst, data)
			case ir.OpFcmp:
				rewriteFcmp(fn, inst, data)
			case ir.OpLoad:
				retypeLoad(fn, inst, data)
			case ir.OpCall:
				for _, r := range data.Results {
					if ty, _ := fn.ValueType(r); ty == ir.F32 {
						fn.DFG.SetValueType(r, ir.I32)
					}
				}
			}
		}
	}
}

func retypeSignature(fn *ir.Function) {
	for i, t := range fn.Signature.Params {
		if t == ir.F32 {
			fn.Signature.Params[i] = ir.I32
		}
	}
	for i, t := range fn.Signature.Returns {
		if t == ir.F32 {
			fn.Signature.Returns[i] = ir.I32
		}
	}
}

func retypeBlockParams(fn *ir.Function) {
	for _, blk := range fn.Blocks() {
		for _, p := range fn.BlockParams(blk) {
			if ty, _ := fn.ValueType(p); ty == ir.F32 {
				fn.DFG.RetypeBlockParam(blk, p, ir.I32)
			}
		}
	}
}

func rewriteFconst(fn *ir.Function, inst ir.Inst, data ir.InstData) {
	fixed := ToFixedPoint16_16(data.ConstF)
	rb := ir.NewReplaceBuilder(fn, inst)
	rb.With(ir.NewIconst(data.Results[0], fixed))
	fn.DFG.SetValueType(data.Results[0], ir.I32)
}

func rewriteFcmp(fn *ir.Function, inst ir.Inst, data ir.InstData) {
	cond := mapFloatCond(data.FCond)
	rb := ir.NewReplaceBuilder(fn, inst)
	rb.With(ir.NewIcmp(data.Results[0], cond, data.Args[0], data.Args[1]))
}

func retypeLoad(fn *ir.Function, inst ir.Inst, data ir.InstData) {
	if data.ValType != ir.F32 {
		return
	}
	rb := ir.NewReplaceBuilder(fn, inst)
	rb.With(ir.NewLoad(data.Results[0], ir.I32, data.Args[0]))
	fn.DFG.SetValueType(data.Results[0], ir.I32)
}

// mapFloatCond maps a FloatCC to the IntCC that behaves identically
// over two's-complement Q16.16 values at a shared scale.
func mapFloatCond(c ir.FloatCC) ir.IntCC {
	switch c {
	case ir.FloatEqual:
		return ir.IntEqual
	case ir.FloatNotEqual:
		return ir.IntNotEqual
	case ir.FloatLessThan:
		return ir.IntSignedLessThan
	case ir.FloatLessThanOrEqual:
		return ir.IntSignedLessThanOrEqual
	case ir.FloatGreaterThan:
		return ir.IntSignedGreaterThan
	case ir.FloatGreaterThanOrEqual:
		return ir.IntSignedGreaterThanOrEqual
	default:
		return ir.IntEqual
	}
}
