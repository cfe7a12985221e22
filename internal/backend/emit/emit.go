// Package emit turns lowered, allocated VCode into a position-bound
// stream of RV32IM instructions (spec.md §4.8): it resolves
// two-destination branches against the block lowering order, inserts
// each function's prologue/epilogue, wires the calling convention at
// call sites and block entry, patches call relocations once every
// function in a module has an address, and performs the iconst
// 12-bit-vs-lui+addi split lowering deferred to this stage.
package emit

import (
	"fmt"

	"lpc/internal/analysis"
	"lpc/internal/backend/blockorder"
	"lpc/internal/backend/frame"
	"lpc/internal/backend/lower"
	"lpc/internal/backend/regalloc"
	"lpc/internal/backend/vcode"
	"lpc/internal/ir"
	"lpc/internal/riscv32"
)

// scratch1/scratch2 are reserved exclusively for emission: spill
// reloads, address arithmetic, and multi-step comparisons need a
// couple of registers that regalloc never hands to a live VReg (see
// regalloc.allocatablePreferred).
const (
	scratch1 = riscv32.T5
	scratch2 = riscv32.T6
)

// Symbol is a function's address within a linked module's code.
type Symbol struct {
	Name   string
	Offset int
}

// Module is the result of emitting every function in an ir.Module:
// one flat, relocated instruction stream plus each function's entry,
// recorded as an index into Insts (its byte offset is four times that).
type Module struct {
	Insts   []riscv32.Inst
	Symbols map[string]int
}

// CodeBuffer accumulates one function's instructions as structured
// riscv32.Inst values. Encoding to raw machine words is deferred
// until the whole module is assembled (Module.Encode), so branch and
// call targets can be resolved as real byte offsets first.
type CodeBuffer struct {
	insts []riscv32.Inst
}

func (c *CodeBuffer) emit(i riscv32.Inst) int {
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *CodeBuffer) patchImm(idx int, imm int32) { c.insts[idx].Imm = imm }

// crossFunctionReloc records a call site whose jal target isn't known
// until every function in the module has been placed.
type crossFunctionReloc struct {
	instIndex int
	symbol    string
}

// EmitModule assembles every function in mod, returning one linear
// instruction stream with every intra- and inter-function branch,
// jump, and call target resolved to a concrete offset.
func EmitModule(mod *ir.Module) (*Module, error) {
	out := &Module{Symbols: map[string]int{}}
	var relocs []crossFunctionReloc

	for _, fn := range mod.FunctionsInOrder() {
		cfg := analysis.BuildCFG(fn)
		blo := blockorder.Build(fn, cfg)
		lowered, err := lower.Lower(fn, blo)
		if err != nil {
			return nil, fmt.Errorf("emit: lowering %s: %w", fn.Name, err)
		}
		fnBuf, fnRelocs, err := emitFunction(lowered, blo)
		if err != nil {
			return nil, fmt.Errorf("emit: %s: %w", fn.Name, err)
		}

		base := len(out.Insts)
		out.Symbols[fn.Name] = base
		out.Insts = append(out.Insts, fnBuf.insts...)
		for _, r := range fnRelocs {
			relocs = append(relocs, crossFunctionReloc{instIndex: base + r.instIndex, symbol: r.symbol})
		}
	}

	for _, r := range relocs {
		target, ok := out.Symbols[r.symbol]
		if !ok {
			return nil, fmt.Errorf("emit: call to undefined function %q", r.symbol)
		}
		out.Insts[r.instIndex].Imm = int32((target - r.instIndex) * 4)
	}
	return out, nil
}

// Encode lowers every structured instruction to its 32-bit machine
// word, in order.
func (m *Module) Encode() ([]byte, error) {
	out := make([]byte, 0, len(m.Insts)*4)
	for i, inst := range m.Insts {
		word, err := riscv32.Encode(inst)
		if err != nil {
			return nil, fmt.Errorf("emit: encoding instruction %d (%s): %w", i, inst.Op, err)
		}
		out = append(out, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	return out, nil
}

type funcReloc struct {
	instIndex int
	symbol    string
}

func emitFunction(res *lower.Result, blo *blockorder.BlockLoweringOrder) (*CodeBuffer, []funcReloc, error) {
	vfn := res.Function
	alloc := regalloc.Allocate(vfn)

	hasCalls := false
	for _, b := range vfn.Order {
		for _, inst := range vfn.Blocks[b].Insts {
			if inst.Op == vcode.OpCall {
				hasCalls = true
			}
		}
	}

	outgoing := 0
	for _, b := range vfn.Order {
		for _, inst := range vfn.Blocks[b].Insts {
			if inst.Op == vcode.OpCall && len(inst.Args) > 8 {
				if n := (len(inst.Args) - 8) * 4; n > outgoing {
					outgoing = n
				}
			}
		}
	}
	incoming := 0
	if n := vfn.Signature.ParamCount(); n > 8 {
		incoming = (n - 8) * 4
	}

	layout := frame.Compute(frame.Request{
		CalleeSaved:       alloc.CalleeSaved,
		HasCalls:          hasCalls,
		OutgoingArgBytes:  outgoing,
		IncomingArgBytes:  incoming,
		SpillSlotCount:    alloc.SpillSlotCount,
		MaxTempSpillSlots: alloc.MaxTempSpillSlots,
	})

	e := &funcEmitter{
		vfn:        vfn,
		blo:        blo,
		alloc:      alloc,
		layout:     layout,
		hasCalls:   hasCalls,
		blockStart: map[vcode.Block]int{},
		buf:        &CodeBuffer{},
	}

	for _, i := range layout.Prologue(hasCalls) {
		e.buf.emit(i)
	}
	e.moveIncomingParams()

	for idx, b := range vfn.Order {
		e.blockStart[b] = len(e.buf.insts)
		e.currentIndex = idx
		for _, inst := range vfn.Blocks[b].Insts {
			if err := e.emitInst(b, inst); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, p := range e.pendingBlockBranches {
		target, ok := e.blockStart[p.block]
		if !ok {
			return nil, nil, fmt.Errorf("branch to unemitted block %s", p.block)
		}
		e.buf.patchImm(p.instIndex, int32((target-p.instIndex)*4))
	}

	return e.buf, e.relocs, nil
}

type pendingBlockBranch struct {
	instIndex int
	block     vcode.Block
}

type funcEmitter struct {
	vfn          *vcode.Function
	blo          *blockorder.BlockLoweringOrder
	alloc        *regalloc.Allocation
	layout       *frame.Layout
	hasCalls     bool
	currentIndex int

	buf                  *CodeBuffer
	blockStart           map[vcode.Block]int
	pendingBlockBranches []pendingBlockBranch
	relocs               []funcReloc
}

func (e *funcEmitter) fallthroughBlock() (vcode.Block, bool) {
	if e.currentIndex+1 >= len(e.vfn.Order) {
		return ir.InvalidBlock, false
	}
	return e.vfn.Order[e.currentIndex+1], true
}

// loadOperand resolves v to a physical register, first reloading it
// from its spill slot into scratch if v lives on the stack. Spill
// slots live in the frame's spill-slots area.
func (e *funcEmitter) loadOperand(v vcode.VReg, scratch riscv32.Gpr) riscv32.Gpr {
	loc := e.alloc.Location(v)
	if !loc.IsStack {
		return loc.Reg
	}
	e.buf.emit(riscv32.Inst{Op: riscv32.LW, Rd: scratch, Rs1: riscv32.Sp, Imm: int32(e.spillOffset(loc.Slot))})
	return scratch
}

func (e *funcEmitter) storeResult(rd vcode.Writable, value riscv32.Gpr) {
	loc := e.alloc.Location(rd.Reg)
	if !loc.IsStack {
		if loc.Reg != value {
			e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: loc.Reg, Rs1: value, Imm: 0})
		}
		return
	}
	e.buf.emit(riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: value, Imm: int32(e.spillOffset(loc.Slot))})
}

func (e *funcEmitter) spillOffset(slot int) int { return e.layout.SpillSlotsOffset + slot*4 }

func (e *funcEmitter) moveIncomingParams() {
	entry := e.vfn.Order[0]
	for i, p := range e.vfn.Blocks[entry].Params {
		if i < 8 {
			e.storeResult(vcode.W(p), abiArgReg(i))
			continue
		}
		loc := e.alloc.Location(p)
		off := e.layout.IncomingArgOffset(i - 8)
		if loc.IsStack {
			e.buf.emit(riscv32.Inst{Op: riscv32.LW, Rd: scratch1, Rs1: riscv32.Sp, Imm: int32(off)})
			e.buf.emit(riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: scratch1, Imm: int32(e.spillOffset(loc.Slot))})
		} else {
			e.buf.emit(riscv32.Inst{Op: riscv32.LW, Rd: loc.Reg, Rs1: riscv32.Sp, Imm: int32(off)})
		}
	}
}

func abiArgReg(i int) riscv32.Gpr {
	return []riscv32.Gpr{riscv32.A0, riscv32.A1, riscv32.A2, riscv32.A3, riscv32.A4, riscv32.A5, riscv32.A6, riscv32.A7}[i]
}

func (e *funcEmitter) emitInst(b vcode.Block, inst vcode.Inst) error {
	switch inst.Op {
	case vcode.OpAdd, vcode.OpSub, vcode.OpMul, vcode.OpDiv, vcode.OpRem,
		vcode.OpAnd, vcode.OpOr, vcode.OpXor, vcode.OpShl, vcode.OpShr, vcode.OpSar,
		vcode.OpSlt, vcode.OpSltu:
		return e.emitBinary(inst)

	case vcode.OpIcmp:
		return e.emitIcmp(inst)

	case vcode.OpIconst:
		e.emitLoadImmediate(e.destReg(inst.Rd), inst.ImmValue)
		e.storeResult(inst.Rd, e.destReg(inst.Rd))
		return nil

	case vcode.OpMov:
		src := e.loadOperand(inst.Args[0], scratch1)
		e.storeResult(inst.Rd, src)
		return nil

	case vcode.OpLoad:
		base := e.loadOperand(inst.Args[0], scratch1)
		e.buf.emit(riscv32.Inst{Op: loadMnemonic(inst.Size, inst.Signed), Rd: scratch2, Rs1: base, Imm: 0})
		e.storeResult(inst.Rd, scratch2)
		return nil

	case vcode.OpStore:
		base := e.loadOperand(inst.Args[0], scratch1)
		value := e.loadOperand(inst.Args[1], scratch2)
		e.buf.emit(riscv32.Inst{Op: storeMnemonic(inst.Size), Rs1: base, Rs2: value, Imm: 0})
		return nil

	case vcode.OpJump:
		e.movePhiArgs(inst.JumpTarget)
		return e.emitJumpTo(inst.JumpTarget.Block)

	case vcode.OpBranchTwoDest:
		return e.emitBranchTwoDest(inst)

	case vcode.OpReturn:
		for i, a := range inst.Args {
			r := e.loadOperand(a, scratch1)
			if i < 8 && r != abiArgReg(i) {
				e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: abiArgReg(i), Rs1: r, Imm: 0})
			}
		}
		for _, i := range e.layout.Epilogue(e.hasCalls) {
			e.buf.emit(i)
		}
		return nil

	case vcode.OpCall:
		return e.emitCall(inst)

	case vcode.OpSyscall:
		for i, a := range inst.Args {
			if i >= 7 {
				break
			}
			r := e.loadOperand(a, scratch1)
			if r != abiArgReg(i) {
				e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: abiArgReg(i), Rs1: r, Imm: 0})
			}
		}
		e.emitLoadImmediate(riscv32.A7, inst.ImmValue)
		e.buf.emit(riscv32.Inst{Op: riscv32.ECALL})
		if len(inst.Results) > 0 {
			e.storeResult(inst.Results[0], riscv32.A0)
		}
		return nil

	case vcode.OpHalt:
		e.buf.emit(riscv32.Inst{Op: riscv32.EBREAK})
		return nil

	case vcode.OpTrap:
		e.buf.emit(riscv32.Inst{Op: riscv32.EBREAK})
		return nil

	case vcode.OpTrapz, vcode.OpTrapnz:
		return e.emitConditionalTrap(inst)

	default:
		return fmt.Errorf("emit: unsupported vcode op %s", inst.Op)
	}
}

func (e *funcEmitter) destReg(w vcode.Writable) riscv32.Gpr {
	loc := e.alloc.Location(w.Reg)
	if loc.IsStack {
		return scratch2
	}
	return loc.Reg
}

func (e *funcEmitter) emitBinary(inst vcode.Inst) error {
	lhs := e.loadOperand(inst.Args[0], scratch1)
	rhs := e.loadOperand(inst.Args[1], scratch2)
	mn, ok := binaryMnemonic(inst.Op)
	if !ok {
		return fmt.Errorf("emit: %s has no RV32 binary encoding", inst.Op)
	}
	dst := e.destReg(inst.Rd)
	e.buf.emit(riscv32.Inst{Op: mn, Rd: dst, Rs1: lhs, Rs2: rhs})
	e.storeResult(inst.Rd, dst)
	return nil
}

func binaryMnemonic(op vcode.Op) (riscv32.Mnemonic, bool) {
	switch op {
	case vcode.OpAdd:
		return riscv32.ADD, true
	case vcode.OpSub:
		return riscv32.SUB, true
	case vcode.OpMul:
		return riscv32.MUL, true
	case vcode.OpDiv:
		return riscv32.DIV, true
	case vcode.OpRem:
		return riscv32.REM, true
	case vcode.OpAnd:
		return riscv32.AND, true
	case vcode.OpOr:
		return riscv32.OR, true
	case vcode.OpXor:
		return riscv32.XOR, true
	case vcode.OpShl:
		return riscv32.SLL, true
	case vcode.OpShr:
		return riscv32.SRL, true
	case vcode.OpSar:
		return riscv32.SRA, true
	case vcode.OpSlt:
		return riscv32.SLT, true
	case vcode.OpSltu:
		return riscv32.SLTU, true
	default:
		return 0, false
	}
}

// branchForm maps an IntCC to one of RV32's six branch mnemonics,
// swapping operands where the condition has no direct encoding (sgt,
// sle, ugt, ule all reuse blt/bge/bltu/bgeu with lhs and rhs
// exchanged).
func branchForm(cc ir.IntCC) (mn riscv32.Mnemonic, swap bool) {
	switch cc {
	case ir.IntEqual:
		return riscv32.BEQ, false
	case ir.IntNotEqual:
		return riscv32.BNE, false
	case ir.IntSignedLessThan:
		return riscv32.BLT, false
	case ir.IntSignedGreaterThanOrEqual:
		return riscv32.BGE, false
	case ir.IntSignedGreaterThan:
		return riscv32.BLT, true
	case ir.IntSignedLessThanOrEqual:
		return riscv32.BGE, true
	case ir.IntUnsignedLessThan:
		return riscv32.BLTU, false
	case ir.IntUnsignedGreaterThanOrEqual:
		return riscv32.BGEU, false
	case ir.IntUnsignedGreaterThan:
		return riscv32.BLTU, true
	case ir.IntUnsignedLessThanOrEqual:
		return riscv32.BGEU, true
	default:
		return riscv32.BNE, false
	}
}

func (e *funcEmitter) emitIcmp(inst vcode.Inst) error {
	lhs := e.loadOperand(inst.Args[0], scratch1)
	rhs := e.loadOperand(inst.Args[1], scratch2)
	dst := e.destReg(inst.Rd)

	switch inst.Cond {
	case ir.IntEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SUB, Rd: dst, Rs1: lhs, Rs2: rhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTIU, Rd: dst, Rs1: dst, Imm: 1})
	case ir.IntNotEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SUB, Rd: dst, Rs1: lhs, Rs2: rhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTU, Rd: dst, Rs1: riscv32.Zero, Rs2: dst})
	case ir.IntSignedLessThan:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLT, Rd: dst, Rs1: lhs, Rs2: rhs})
	case ir.IntSignedGreaterThanOrEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLT, Rd: dst, Rs1: lhs, Rs2: rhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.XORI, Rd: dst, Rs1: dst, Imm: 1})
	case ir.IntSignedGreaterThan:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLT, Rd: dst, Rs1: rhs, Rs2: lhs})
	case ir.IntSignedLessThanOrEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLT, Rd: dst, Rs1: rhs, Rs2: lhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.XORI, Rd: dst, Rs1: dst, Imm: 1})
	case ir.IntUnsignedLessThan:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTU, Rd: dst, Rs1: lhs, Rs2: rhs})
	case ir.IntUnsignedGreaterThanOrEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTU, Rd: dst, Rs1: lhs, Rs2: rhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.XORI, Rd: dst, Rs1: dst, Imm: 1})
	case ir.IntUnsignedGreaterThan:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTU, Rd: dst, Rs1: rhs, Rs2: lhs})
	case ir.IntUnsignedLessThanOrEqual:
		e.buf.emit(riscv32.Inst{Op: riscv32.SLTU, Rd: dst, Rs1: rhs, Rs2: lhs})
		e.buf.emit(riscv32.Inst{Op: riscv32.XORI, Rd: dst, Rs1: dst, Imm: 1})
	default:
		return fmt.Errorf("emit: unhandled icmp condition %s", inst.Cond)
	}
	e.storeResult(inst.Rd, dst)
	return nil
}

// emitLoadImmediate performs the iconst split spec.md §4.5 describes:
// a 12-bit signed immediate materializes as a single addi from x0;
// anything wider needs lui (the upper 20 bits) followed by addi (the
// low 12, sign-extended, hence the +0x800 rounding before the shift).
func (e *funcEmitter) emitLoadImmediate(dst riscv32.Gpr, v int64) {
	if fitsSigned12(v) {
		e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: dst, Rs1: riscv32.Zero, Imm: int32(v)})
		return
	}
	u := uint32(int32(v))
	hi := (u + 0x800) & 0xfffff000
	lo := int32(u - hi)
	e.buf.emit(riscv32.Inst{Op: riscv32.LUI, Rd: dst, Imm: int32(hi)})
	if lo != 0 {
		e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: dst, Rs1: dst, Imm: lo})
	}
}

func fitsSigned12(v int64) bool { return v >= -2048 && v <= 2047 }

func (e *funcEmitter) emitJumpTo(target vcode.Block) error {
	if fall, ok := e.fallthroughBlock(); ok && fall == target {
		return nil
	}
	idx := e.buf.emit(riscv32.Inst{Op: riscv32.JAL, Rd: riscv32.Zero, Imm: 0})
	e.pendingBlockBranches = append(e.pendingBlockBranches, pendingBlockBranch{instIndex: idx, block: target})
	return nil
}

// emitBranchTwoDest resolves a two-destination branch against the
// fallthrough block: branch straight to the true edge when false is
// the fallthrough and the true edge carries no block arguments; invert
// and branch to the false edge when true is the fallthrough and the
// false edge carries no block arguments; otherwise branch on the
// inverted condition past an inline true-arm trampoline (the true
// arm's moves plus a jump to it), then run the false arm's moves and
// fall through or jump to it.
func (e *funcEmitter) emitBranchTwoDest(inst vcode.Inst) error {
	lhs := e.loadOperand(inst.CondLHS, scratch1)
	rhs := e.loadOperand(inst.CondRHS, scratch2)
	fall, hasFall := e.fallthroughBlock()

	hasTrueArgs := len(inst.TrueTarget.Args) > 0
	hasFalseArgs := len(inst.FalseTarget.Args) > 0

	switch {
	case hasFall && fall == inst.FalseTarget.Block && !hasTrueArgs:
		mn, swap := branchForm(inst.Cond)
		e.emitBranchPlaceholder(mn, lhs, rhs, swap, inst.TrueTarget.Block)
		e.movePhiArgs(inst.FalseTarget)
		return nil

	case hasFall && fall == inst.TrueTarget.Block && !hasFalseArgs:
		mn, swap := branchForm(inst.Cond.Inverted())
		e.emitBranchPlaceholder(mn, lhs, rhs, swap, inst.FalseTarget.Block)
		e.movePhiArgs(inst.TrueTarget)
		return nil

	default:
		// Neither arm is a plain fallthrough (or an arm carries block
		// arguments that must run only on its own path): branch on the
		// inverted condition past an inline true-arm trampoline, which
		// runs the true arm's moves and always jumps to it, then run the
		// false arm's moves in place and fall through or jump on.
		mn, swap := branchForm(inst.Cond.Inverted())
		skipIdx := e.emitBranchPlaceholder(mn, lhs, rhs, swap, ir.InvalidBlock)
		e.movePhiArgs(inst.TrueTarget)
		jumpIdx := e.buf.emit(riscv32.Inst{Op: riscv32.JAL, Rd: riscv32.Zero, Imm: 0})
		e.pendingBlockBranches = append(e.pendingBlockBranches, pendingBlockBranch{instIndex: jumpIdx, block: inst.TrueTarget.Block})
		e.patchPlaceholderHere(skipIdx)
		e.movePhiArgs(inst.FalseTarget)
		return e.emitJumpTo(inst.FalseTarget.Block)
	}
}

// emitBranchPlaceholder emits a conditional branch to target (if
// target is ir.InvalidBlock, the branch is a forward reference to be
// patched immediately after via patchPlaceholderHere instead).
func (e *funcEmitter) emitBranchPlaceholder(mn riscv32.Mnemonic, lhs, rhs riscv32.Gpr, swap bool, target vcode.Block) int {
	rs1, rs2 := lhs, rhs
	if swap {
		rs1, rs2 = rhs, lhs
	}
	idx := e.buf.emit(riscv32.Inst{Op: mn, Rs1: rs1, Rs2: rs2, Imm: 0})
	if target != ir.InvalidBlock {
		e.pendingBlockBranches = append(e.pendingBlockBranches, pendingBlockBranch{instIndex: idx, block: target})
	}
	return idx
}

// patchPlaceholderHere backpatches a branch emitted via
// emitBranchPlaceholder with an ir.InvalidBlock target to land just past the
// instructions emitted since.
func (e *funcEmitter) patchPlaceholderHere(idx int) {
	here := len(e.buf.insts)
	e.buf.patchImm(idx, int32((here-idx)*4))
}

func (e *funcEmitter) movePhiArgs(t vcode.Target) {
	if len(t.Args) == 0 {
		return
	}
	params := e.vfn.Blocks[t.Block].Params
	for i, a := range t.Args {
		if i >= len(params) {
			break
		}
		r := e.loadOperand(a, scratch1)
		e.storeResult(vcode.W(params[i]), r)
	}
}

func (e *funcEmitter) emitCall(inst vcode.Inst) error {
	for i, a := range inst.Args {
		r := e.loadOperand(a, scratch1)
		if i < 8 {
			if r != abiArgReg(i) {
				e.buf.emit(riscv32.Inst{Op: riscv32.ADDI, Rd: abiArgReg(i), Rs1: r, Imm: 0})
			}
			continue
		}
		off := e.layout.OutgoingArgsOffset + (i-8)*4
		e.buf.emit(riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: r, Imm: int32(off)})
	}
	idx := e.buf.emit(riscv32.Inst{Op: riscv32.JAL, Rd: riscv32.Ra, Imm: 0})
	e.relocs = append(e.relocs, funcReloc{instIndex: idx, symbol: inst.Callee})

	for i, res := range inst.Results {
		if i >= 8 {
			break
		}
		e.storeResult(res, abiArgReg(i))
	}
	return nil
}

func (e *funcEmitter) emitConditionalTrap(inst vcode.Inst) error {
	v := e.loadOperand(inst.Args[0], scratch1)
	var mn riscv32.Mnemonic
	if inst.Op == vcode.OpTrapz {
		mn = riscv32.BNE // branch past the trap when v != 0
	} else {
		mn = riscv32.BEQ // branch past the trap when v == 0
	}
	skip := e.emitBranchPlaceholder(mn, v, riscv32.Zero, false, ir.InvalidBlock)
	e.buf.emit(riscv32.Inst{Op: riscv32.EBREAK})
	e.patchPlaceholderHere(skip)
	return nil
}

func loadMnemonic(size vcode.MemSize, signed bool) riscv32.Mnemonic {
	switch size {
	case vcode.Size1:
		if signed {
			return riscv32.LB
		}
		return riscv32.LBU
	case vcode.Size2:
		if signed {
			return riscv32.LH
		}
		return riscv32.LHU
	default:
		return riscv32.LW
	}
}

func storeMnemonic(size vcode.MemSize) riscv32.Mnemonic {
	switch size {
	case vcode.Size1:
		return riscv32.SB
	case vcode.Size2:
		return riscv32.SH
	default:
		return riscv32.SW
	}
}
