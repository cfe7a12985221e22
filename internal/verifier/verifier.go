// Package verifier checks the structural and typing invariants every
// function must hold before lowering runs. It never mutates the
// function under check and always collects every violation it finds
// rather than stopping at the first, the same batched-diagnostics
// shape the teacher's own error-reporting takes.
package verifier

import (
	"fmt"

	"lpc/internal/analysis"
	"lpc/internal/ir"
)

// Kind classifies a verifier violation.
type Kind int

const (
	KindMultipleDefinition Kind = iota
	KindUseNotDominated
	KindBadTerminator
	KindOperandMismatch
	KindUnknownCallee
	KindUnreachableBlock
)

// Error reports one invariant violation, located at a block and
// (when relevant) an instruction within it.
type Error struct {
	Kind    Kind
	Block   ir.Block
	Inst    ir.Inst
	Message string
}

func (e *Error) Error() string {
	if e.Inst.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Block, e.Inst, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Block, e.Message)
}

func newErr(kind Kind, block ir.Block, inst ir.Inst, format string, args ...any) *Error {
	return &Error{Kind: kind, Block: block, Inst: inst, Message: fmt.Sprintf(format, args...)}
}

// VerifyFunction runs every invariant of spec.md §3 against fn. mod may
// be nil when verifying a function outside any module context, in
// which case call-callee checks are skipped.
func VerifyFunction(fn *ir.Function, mod *ir.Module) []error {
	var errs []error

	cfg := analysis.BuildCFG(fn)
	dom := analysis.BuildDominatorTree(fn, cfg)

	errs = append(errs, checkSingleDefinition(fn)...)
	errs = append(errs, checkTerminators(fn)...)
	errs = append(errs, checkOperands(fn)...)
	errs = append(errs, checkDominance(fn, dom)...)
	errs = append(errs, checkCalls(fn, mod)...)
	errs = append(errs, checkReachability(fn, cfg)...)

	return errs
}

// VerifyModule verifies every function in m and collects every
// function's errors together.
func VerifyModule(m *ir.Module) []error {
	var errs []error
	for _, fn := range m.FunctionsInOrder() {
		errs = append(errs, VerifyFunction(fn, m)...)
	}
	if _, ok := m.Lookup(m.Entry); !ok {
		errs = append(errs, fmt.Errorf("module: entry %q does not resolve to a function", m.Entry))
	}
	return errs
}

func checkSingleDefinition(fn *ir.Function) []error {
	var errs []error
	seen := map[ir.Value]bool{}
	mark := func(v ir.Value, block ir.Block, inst ir.Inst) {
		if seen[v] {
			errs = append(errs, newErr(KindMultipleDefinition, block, inst, "value %s defined more than once", v))
			return
		}
		seen[v] = true
	}
	for _, blk := range fn.Blocks() {
		for _, p := range fn.BlockParams(blk) {
			mark(p, blk, ir.InvalidInst)
		}
		for _, inst := range fn.BlockInsts(blk) {
			data, _ := fn.DFG.InstData(inst)
			for _, r := range data.Results {
				mark(r, blk, inst)
			}
		}
	}
	return errs
}

func checkTerminators(fn *ir.Function) []error {
	var errs []error
	for _, blk := range fn.Blocks() {
		insts := fn.BlockInsts(blk)
		if len(insts) == 0 {
			errs = append(errs, newErr(KindBadTerminator, blk, ir.InvalidInst, "block has no instructions"))
			continue
		}
		for i, inst := range insts {
			data, _ := fn.DFG.InstData(inst)
			isLast := i == len(insts)-1
			if data.IsTerminator() != isLast {
				if data.IsTerminator() {
					errs = append(errs, newErr(KindBadTerminator, blk, inst, "terminator is not the last instruction in its block"))
				} else {
					errs = append(errs, newErr(KindBadTerminator, blk, inst, "block falls through without a terminator"))
				}
			}
		}
	}
	return errs
}

// checkOperands validates each instruction's arity and operand/result
// types against the shape its opcode requires.
func checkOperands(fn *ir.Function) []error {
	var errs []error
	typeOf := func(v ir.Value) ir.Type {
		t, _ := fn.ValueType(v)
		return t
	}
	fits := func(ty ir.Type, value int64) bool {
		switch ty {
		case ir.I32:
			return value >= -(1<<31) && value <= (1<<31)-1
		case ir.U32:
			return value >= 0 && value <= (1<<32)-1
		default:
			return false
		}
	}

	for _, blk := range fn.Blocks() {
		for _, inst := range fn.BlockInsts(blk) {
			data, _ := fn.DFG.InstData(inst)
			bad := func(format string, args ...any) {
				errs = append(errs, newErr(KindOperandMismatch, blk, inst, format, args...))
			}

			switch data.Op {
			case ir.OpIadd, ir.OpIsub, ir.OpImul, ir.OpIdiv, ir.OpIrem:
				if len(data.Args) != 2 || len(data.Results) != 1 {
					bad("%s requires two operands and one result", data.Op)
					break
				}
				lt, rt := typeOf(data.Args[0]), typeOf(data.Args[1])
				if !lt.IsInteger() || lt != rt {
					bad("%s operands must share an integer type", data.Op)
				}
				if typeOf(data.Results[0]) != lt {
					bad("%s result type must match its operand type", data.Op)
				}

			case ir.OpIcmp:
				if len(data.Args) != 2 || len(data.Results) != 1 {
					bad("icmp requires two operands and one result")
					break
				}
				if !typeOf(data.Args[0]).IsInteger() || typeOf(data.Args[0]) != typeOf(data.Args[1]) {
					bad("icmp operands must share an integer type")
				}
				if typeOf(data.Results[0]) != ir.U32 {
					bad("icmp result must be u32")
				}

			case ir.OpFcmp:
				if len(data.Args) != 2 || len(data.Results) != 1 {
					bad("fcmp requires two operands and one result")
					break
				}
				if !typeOf(data.Args[0]).IsFloat() || !typeOf(data.Args[1]).IsFloat() {
					bad("fcmp operands must be f32")
				}
				if typeOf(data.Results[0]) != ir.U32 {
					bad("fcmp result must be u32")
				}

			case ir.OpIconst:
				if len(data.Results) != 1 {
					bad("iconst requires exactly one result")
					break
				}
				if !fits(typeOf(data.Results[0]), data.ConstI) {
					bad("iconst value %d does not fit in %s", data.ConstI, typeOf(data.Results[0]))
				}

			case ir.OpFconst:
				if len(data.Results) != 1 || !typeOf(data.Results[0]).IsFloat() {
					bad("fconst requires exactly one f32 result")
				}

			case ir.OpJump:
				if len(data.Targets) != 1 {
					bad("jump requires exactly one target")
					break
				}
				checkTargetArity(fn, data.Targets[0], bad)

			case ir.OpBr:
				if len(data.Args) != 1 || len(data.Targets) != 2 {
					bad("brif requires one condition and two targets")
					break
				}
				if !typeOf(data.Args[0]).IsInteger() {
					bad("brif condition must be an integer type")
				}
				checkTargetArity(fn, data.Targets[0], bad)
				checkTargetArity(fn, data.Targets[1], bad)

			case ir.OpReturn:
				want := fn.Signature.Returns
				if len(data.Args) != len(want) {
					bad("return has %d values, function returns %d", len(data.Args), len(want))
					break
				}
				for i, a := range data.Args {
					if typeOf(a) != want[i] {
						bad("return value %d has type %s, expected %s", i, typeOf(a), want[i])
					}
				}

			case ir.OpLoad:
				if len(data.Args) != 1 || len(data.Results) != 1 {
					bad("load requires one address and one result")
					break
				}
				if !typeOf(data.Args[0]).IsInteger() {
					bad("load address must be an integer type")
				}
				if typeOf(data.Results[0]) != data.ValType {
					bad("load result type does not match its declared type")
				}

			case ir.OpStore:
				if len(data.Args) != 2 {
					bad("store requires an address and a value")
					break
				}
				if !typeOf(data.Args[0]).IsInteger() {
					bad("store address must be an integer type")
				}

			case ir.OpTrapz, ir.OpTrapnz:
				if len(data.Args) != 1 || !typeOf(data.Args[0]).IsInteger() {
					bad("%s requires one integer condition operand", data.Op)
				}

			case ir.OpTrap, ir.OpHalt, ir.OpSyscall, ir.OpCall:
				// Arity for call/syscall is checked against the module
				// signature (call) or is unconstrained (syscall/trap/halt).
			}
		}
	}
	return errs
}

func checkTargetArity(fn *ir.Function, t ir.BlockTarget, bad func(string, ...any)) {
	if !fn.HasBlock(t.Block) {
		bad("branch target %s is not part of this function", t.Block)
		return
	}
	params := fn.BlockParams(t.Block)
	if len(t.Args) != len(params) {
		bad("branch to %s passes %d arguments, expects %d", t.Block, len(t.Args), len(params))
		return
	}
	for i, a := range t.Args {
		pt, _ := fn.ValueType(params[i])
		at, _ := fn.ValueType(a)
		if at != pt {
			bad("branch to %s argument %d has type %s, expected %s", t.Block, i, at, pt)
		}
	}
}

func checkDominance(fn *ir.Function, dom *analysis.DominatorTree) []error {
	var errs []error
	defBlock := func(v ir.Value) (ir.Block, bool) { return fn.DFG.ValueDefBlock(v) }

	checkUse := func(v ir.Value, useBlock ir.Block, inst ir.Inst) {
		db, ok := defBlock(v)
		if !ok {
			errs = append(errs, newErr(KindUseNotDominated, useBlock, inst, "use of %s has no recorded definition", v))
			return
		}
		if !dom.Dominates(db, useBlock) {
			errs = append(errs, newErr(KindUseNotDominated, useBlock, inst, "use of %s is not dominated by its definition in %s", v, db))
		}
	}

	for _, blk := range fn.Blocks() {
		for _, inst := range fn.BlockInsts(blk) {
			data, _ := fn.DFG.InstData(inst)
			for _, a := range data.Args {
				checkUse(a, blk, inst)
			}
			for _, t := range data.Targets {
				for _, a := range t.Args {
					checkUse(a, blk, inst)
				}
			}
		}
	}
	return errs
}

func checkCalls(fn *ir.Function, mod *ir.Module) []error {
	var errs []error
	for _, blk := range fn.Blocks() {
		for _, inst := range fn.BlockInsts(blk) {
			data, _ := fn.DFG.InstData(inst)
			if data.Op != ir.OpCall {
				continue
			}
			if mod == nil {
				continue
			}
			callee, ok := mod.Lookup(data.Callee)
			if !ok {
				errs = append(errs, newErr(KindUnknownCallee, blk, inst, "call to unknown function %q", data.Callee))
				continue
			}
			sig := callee.Signature
			if len(data.Args) != len(sig.Params) {
				errs = append(errs, newErr(KindOperandMismatch, blk, inst,
					"call to %q passes %d arguments, expected %d", data.Callee, len(data.Args), len(sig.Params)))
			} else {
				for i, a := range data.Args {
					if ty, ok := fn.ValueType(a); ok && ty != sig.Params[i] {
						errs = append(errs, newErr(KindOperandMismatch, blk, inst,
							"call to %q argument %d has type %s, expected %s", data.Callee, i, ty, sig.Params[i]))
					}
				}
			}
			if len(data.Results) != len(sig.Returns) {
				errs = append(errs, newErr(KindOperandMismatch, blk, inst,
					"call to %q produces %d results, expected %d", data.Callee, len(data.Results), len(sig.Returns)))
			}
		}
	}
	return errs
}

func checkReachability(fn *ir.Function, cfg *analysis.ControlFlowGraph) []error {
	var errs []error
	entry, ok := fn.EntryBlock()
	if !ok {
		return errs
	}
	reached := map[ir.Block]bool{entry: true}
	queue := []ir.Block{entry}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, s := range cfg.Successors(b) {
			if !fn.HasBlock(s) {
				errs = append(errs, newErr(KindUnreachableBlock, b, ir.InvalidInst, "branch targets block %s, which is not part of this function", s))
				continue
			}
			if !reached[s] {
				reached[s] = true
				queue = append(queue, s)
			}
		}
	}
	for _, blk := range fn.Blocks() {
		if !reached[blk] {
			errs = append(errs, newErr(KindUnreachableBlock, blk, ir.InvalidInst, "block is not reachable from the entry block"))
		}
	}
	return errs
}
