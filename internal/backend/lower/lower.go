// Package lower implements the per-opcode rules that turn a verified
// LPIR function into VCode: virtual-register machine instructions,
// two-destination conditional branches, and ABI-directed parameter and
// return moves (spec.md §4.5).
package lower

import (
	"fmt"

	"lpc/internal/backend/blockorder"
	"lpc/internal/backend/vcode"
	"lpc/internal/ir"
)

// RelocationKind identifies why a relocation record exists.
type RelocationKind uint8

const FunctionCall RelocationKind = 0

// Relocation records that the OpCall at InstIndex (the instruction's
// position within its block's VCode instruction slice) calls Symbol,
// whose address is not known until the module is emitted.
type Relocation struct {
	Block     vcode.Block
	InstIndex int
	Kind      RelocationKind
	Symbol    string
}

// Result is a lowered function together with the relocations its
// calls require and the block lowering order it was built from.
type Result struct {
	Function      *vcode.Function
	Relocations   []Relocation
	BlockOrder    *blockorder.BlockLoweringOrder
}

// Lower translates fn, whose blocks are already verified and placed in
// blo's lowered order, into VCode.
func Lower(fn *ir.Function, blo *blockorder.BlockLoweringOrder) (*Result, error) {
	vfn := vcode.NewFunction(fn.Name, fn.Signature, append([]vcode.Block(nil), blo.LoweredOrder...))

	l := &lowerer{
		fn:     fn,
		vfn:    vfn,
		values: make(map[ir.Value]vcode.VReg),
	}

	for _, b := range blo.LoweredOrder {
		params := fn.BlockParams(b)
		vparams := make([]vcode.VReg, len(params))
		for i, p := range params {
			vr := vfn.Regs.NewVReg()
			l.values[p] = vr
			vparams[i] = vr
		}
		vfn.SetParams(b, vparams)
	}

	for _, b := range blo.LoweredOrder {
		for _, inst := range fn.BlockInsts(b) {
			data, ok := fn.DFG.InstData(inst)
			if !ok {
				return nil, fmt.Errorf("lower: dangling instruction reference in %s", b)
			}
			if err := l.lowerInst(b, data); err != nil {
				return nil, err
			}
		}
	}

	return &Result{Function: vfn, Relocations: l.relocations, BlockOrder: blo}, nil
}

type lowerer struct {
	fn          *ir.Function
	vfn         *vcode.Function
	values      map[ir.Value]vcode.VReg
	relocations []Relocation
}

func (l *lowerer) vreg(v ir.Value) vcode.VReg {
	if vr, ok := l.values[v]; ok {
		return vr
	}
	vr := l.vfn.Regs.NewVReg()
	l.values[v] = vr
	return vr
}

func (l *lowerer) def(v ir.Value) vcode.Writable {
	return vcode.W(l.vreg(v))
}

func (l *lowerer) target(t ir.BlockTarget) vcode.Target {
	args := make([]vcode.VReg, len(t.Args))
	for i, a := range t.Args {
		args[i] = l.vreg(a)
	}
	return vcode.Target{Block: t.Block, Args: args}
}

func binaryOp(op ir.Opcode) (vcode.Op, bool) {
	switch op {
	case ir.OpIadd:
		return vcode.OpAdd, true
	case ir.OpIsub:
		return vcode.OpSub, true
	case ir.OpImul:
		return vcode.OpMul, true
	case ir.OpIdiv:
		return vcode.OpDiv, true
	case ir.OpIrem:
		return vcode.OpRem, true
	default:
		return 0, false
	}
}

func (l *lowerer) lowerInst(b ir.Block, d ir.InstData) error {
	if op, ok := binaryOp(d.Op); ok {
		l.vfn.Emit(b, vcode.Inst{
			Op:   op,
			Rd:   l.def(d.Results[0]),
			Args: []vcode.VReg{l.vreg(d.Args[0]), l.vreg(d.Args[1])},
			Loc:  d.Loc,
		})
		return nil
	}

	switch d.Op {
	case ir.OpIcmp:
		l.vfn.Emit(b, vcode.Inst{
			Op:   vcode.OpIcmp,
			Rd:   l.def(d.Results[0]),
			Args: []vcode.VReg{l.vreg(d.Args[0]), l.vreg(d.Args[1])},
			Cond: d.Cond,
			Loc:  d.Loc,
		})
		return nil

	case ir.OpIconst:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpIconst, Rd: l.def(d.Results[0]), ImmValue: d.ConstI, Loc: d.Loc})
		return nil

	case ir.OpJump:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpJump, JumpTarget: l.target(d.Targets[0]), Loc: d.Loc})
		return nil

	case ir.OpBr:
		trueT, falseT := l.target(d.Targets[0]), l.target(d.Targets[1])
		zero := l.vfn.Regs.NewVReg()
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpIconst, Rd: vcode.W(zero), ImmValue: 0, Loc: d.Loc})
		l.vfn.Emit(b, vcode.Inst{
			Op:          vcode.OpBranchTwoDest,
			Cond:        ir.IntNotEqual,
			CondLHS:     l.vreg(d.Args[0]),
			CondRHS:     zero,
			TrueTarget:  trueT,
			FalseTarget: falseT,
			Loc:         d.Loc,
		})
		return nil

	case ir.OpReturn:
		args := make([]vcode.VReg, len(d.Args))
		for i, a := range d.Args {
			args[i] = l.vreg(a)
		}
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpReturn, Args: args, Loc: d.Loc})
		return nil

	case ir.OpCall:
		args := make([]vcode.VReg, len(d.Args))
		for i, a := range d.Args {
			args[i] = l.vreg(a)
		}
		results := make([]vcode.Writable, len(d.Results))
		for i, r := range d.Results {
			results[i] = l.def(r)
		}
		insts := l.vfn.Blocks[b].Insts
		l.relocations = append(l.relocations, Relocation{Block: b, InstIndex: len(insts), Kind: FunctionCall, Symbol: d.Callee})
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpCall, Callee: d.Callee, Args: args, Results: results, Loc: d.Loc})
		return nil

	case ir.OpSyscall:
		args := make([]vcode.VReg, len(d.Args))
		for i, a := range d.Args {
			args[i] = l.vreg(a)
		}
		results := make([]vcode.Writable, len(d.Results))
		for i, r := range d.Results {
			results[i] = l.def(r)
		}
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpSyscall, ImmValue: d.ConstI, Args: args, Results: results, Loc: d.Loc})
		return nil

	case ir.OpHalt:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpHalt, Loc: d.Loc})
		return nil

	case ir.OpLoad:
		size, signed := memSizeFor(d.ValType)
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpLoad, Rd: l.def(d.Results[0]), Args: []vcode.VReg{l.vreg(d.Args[0])}, Size: size, Signed: signed, Loc: d.Loc})
		return nil

	case ir.OpStore:
		size, _ := memSizeFor(ir.I32)
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpStore, Args: []vcode.VReg{l.vreg(d.Args[0]), l.vreg(d.Args[1])}, Size: size, Loc: d.Loc})
		return nil

	case ir.OpTrap:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpTrap, Trap: d.Trap, Loc: d.Loc})
		return nil

	case ir.OpTrapz:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpTrapz, Trap: d.Trap, Args: []vcode.VReg{l.vreg(d.Args[0])}, Loc: d.Loc})
		return nil

	case ir.OpTrapnz:
		l.vfn.Emit(b, vcode.Inst{Op: vcode.OpTrapnz, Trap: d.Trap, Args: []vcode.VReg{l.vreg(d.Args[0])}, Loc: d.Loc})
		return nil

	default:
		return fmt.Errorf("lower: unsupported opcode %s", d.Op)
	}
}

func memSizeFor(ty ir.Type) (vcode.MemSize, bool) {
	switch ty {
	case ir.I32, ir.F32:
		return vcode.Size4, ty == ir.I32
	case ir.U32:
		return vcode.Size4, false
	default:
		return vcode.Size4, true
	}
}
