package vcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"lpc/internal/ir"
)

var vcParser = participle.MustBuild[vcodeProgramAST](
	participle.Lexer(vcodeLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseError wraps a VCode textual syntax error with its source
// position.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
}

func wrapParseError(filename string, err error) error {
	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		return &ParseError{Filename: filename, Line: pos.Line, Column: pos.Column, Message: pe.Message()}
	}
	return err
}

// Parse reads the textual VCode format (spec.md §6.2) for a single
// function.
func Parse(filename, source string) (*Function, error) {
	prog, err := vcParser.ParseString(filename, source)
	if err != nil {
		return nil, wrapParseError(filename, err)
	}
	return build(prog)
}

func blockFromLabel(label string) Block {
	n, err := strconv.ParseUint(strings.TrimPrefix(label, "block"), 10, 32)
	if err != nil {
		panic("vcode: parser: malformed block label " + label)
	}
	return ir.Block(n)
}

func vregFromLabel(label string) VReg {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "v"))
	if err != nil {
		panic("vcode: parser: malformed vreg label " + label)
	}
	return VReg{Index: n, Class: RegClassInt}
}

func vregs(labels []string) []VReg {
	out := make([]VReg, len(labels))
	for i, l := range labels {
		out[i] = vregFromLabel(l)
	}
	return out
}

func writables(labels []string) []Writable {
	out := make([]Writable, len(labels))
	for i, l := range labels {
		out[i] = W(vregFromLabel(l))
	}
	return out
}

func target(t *vtargetAST) Target {
	return Target{Block: blockFromLabel(t.Block), Args: vregs(t.Args)}
}

func build(prog *vcodeProgramAST) (*Function, error) {
	order := make([]Block, 0, len(prog.Blocks))
	for _, b := range prog.Blocks {
		order = append(order, blockFromLabel(b.Label))
	}

	fn := &Function{
		Order:  order,
		Blocks: make(map[Block]*BlockData, len(order)),
		Regs:   &VRegAllocator{},
	}

	maxVReg := -1
	trackVReg := func(v VReg) {
		if v.Index > maxVReg {
			maxVReg = v.Index
		}
	}

	for _, b := range prog.Blocks {
		blk := blockFromLabel(b.Label)
		params := vregs(b.Params)
		for _, p := range params {
			trackVReg(p)
		}
		bd := &BlockData{Params: params}
		for _, iast := range b.Insts {
			inst, err := buildInst(iast, trackVReg)
			if err != nil {
				return nil, err
			}
			bd.Insts = append(bd.Insts, inst)
		}
		fn.Blocks[blk] = bd
	}
	fn.Regs.next = maxVReg + 1
	return fn, nil
}

func buildInst(iast *vinstAST, track func(VReg)) (Inst, error) {
	results := writables(iast.Results)
	for _, r := range results {
		track(r.Reg)
	}

	rd := func() Writable {
		if len(results) == 0 {
			return Writable{}
		}
		return results[0]
	}

	switch {
	case iast.Binary != nil:
		b := iast.Binary
		lhs, rhs := vregFromLabel(b.Lhs), vregFromLabel(b.Rhs)
		track(lhs)
		track(rhs)
		op, ok := binaryOpFromText(b.Op)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown binary op %q", b.Op)
		}
		return Inst{Op: op, Rd: rd(), Args: []VReg{lhs, rhs}}, nil

	case iast.Icmp != nil:
		ic := iast.Icmp
		cond, ok := ir.ParseIntCC(ic.Cond)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown condition %q", ic.Cond)
		}
		lhs, rhs := vregFromLabel(ic.Lhs), vregFromLabel(ic.Rhs)
		track(lhs)
		track(rhs)
		return Inst{Op: OpIcmp, Rd: rd(), Cond: cond, Args: []VReg{lhs, rhs}}, nil

	case iast.Iconst != nil:
		v, err := strconv.ParseInt(iast.Iconst.Value, 0, 64)
		if err != nil {
			return Inst{}, fmt.Errorf("vcode: bad iconst literal %q: %w", iast.Iconst.Value, err)
		}
		return Inst{Op: OpIconst, Rd: rd(), ImmValue: v}, nil

	case iast.Mov != nil:
		src := vregFromLabel(iast.Mov.Src)
		track(src)
		return Inst{Op: OpMov, Rd: rd(), Args: []VReg{src}}, nil

	case iast.Load != nil:
		l := iast.Load
		addr := vregFromLabel(l.Address)
		track(addr)
		size, signed, err := memSizeFromText(l.Op)
		if err != nil {
			return Inst{}, err
		}
		return Inst{Op: OpLoad, Rd: rd(), Args: []VReg{addr}, Size: size, Signed: signed}, nil

	case iast.Store != nil:
		s := iast.Store
		addr, val := vregFromLabel(s.Address), vregFromLabel(s.Value)
		track(addr)
		track(val)
		size, _, err := memSizeFromText(s.Op)
		if err != nil {
			return Inst{}, err
		}
		return Inst{Op: OpStore, Args: []VReg{addr, val}, Size: size}, nil

	case iast.Jump != nil:
		t := target(iast.Jump.Target)
		for _, a := range t.Args {
			track(a)
		}
		return Inst{Op: OpJump, JumpTarget: t}, nil

	case iast.BranchTwo != nil:
		b := iast.BranchTwo
		cond, ok := ir.ParseIntCC(b.Cond)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown condition %q", b.Cond)
		}
		lhs, rhs := vregFromLabel(b.Lhs), vregFromLabel(b.Rhs)
		track(lhs)
		track(rhs)
		tt, ft := target(b.True), target(b.False)
		for _, a := range tt.Args {
			track(a)
		}
		for _, a := range ft.Args {
			track(a)
		}
		return Inst{Op: OpBranchTwoDest, Cond: cond, CondLHS: lhs, CondRHS: rhs, TrueTarget: tt, FalseTarget: ft}, nil

	case iast.Ret != nil:
		args := vregs(iast.Ret.Args)
		for _, a := range args {
			track(a)
		}
		return Inst{Op: OpReturn, Args: args}, nil

	case iast.Call != nil:
		c := iast.Call
		args := vregs(c.Args)
		for _, a := range args {
			track(a)
		}
		return Inst{Op: OpCall, Callee: c.Callee, Args: args, Results: results}, nil

	case iast.Syscall != nil:
		s := iast.Syscall
		n, err := strconv.ParseInt(s.Number, 0, 64)
		if err != nil {
			return Inst{}, fmt.Errorf("vcode: bad syscall number %q: %w", s.Number, err)
		}
		args := vregs(s.Args)
		for _, a := range args {
			track(a)
		}
		return Inst{Op: OpSyscall, ImmValue: n, Args: args, Results: results}, nil

	case iast.Halt != nil:
		return Inst{Op: OpHalt}, nil

	case iast.Trap != nil:
		code, ok := ir.ParseTrapCode(iast.Trap.Code)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown trap code %q", iast.Trap.Code)
		}
		return Inst{Op: OpTrap, Trap: code}, nil

	case iast.Trapz != nil:
		code, ok := ir.ParseTrapCode(iast.Trapz.Code)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown trap code %q", iast.Trapz.Code)
		}
		cond := vregFromLabel(iast.Trapz.Cond)
		track(cond)
		return Inst{Op: OpTrapz, Trap: code, Args: []VReg{cond}}, nil

	case iast.Trapnz != nil:
		code, ok := ir.ParseTrapCode(iast.Trapnz.Code)
		if !ok {
			return Inst{}, fmt.Errorf("vcode: unknown trap code %q", iast.Trapnz.Code)
		}
		cond := vregFromLabel(iast.Trapnz.Cond)
		track(cond)
		return Inst{Op: OpTrapnz, Trap: code, Args: []VReg{cond}}, nil
	}
	return Inst{}, fmt.Errorf("vcode: empty instruction alternative")
}

func binaryOpFromText(s string) (Op, bool) {
	for op, name := range opNames {
		if name == s {
			switch op {
			case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpSar, OpSlt, OpSltu:
				return op, true
			}
		}
	}
	return 0, false
}

func memSizeFromText(s string) (MemSize, bool, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "load"), "store")
	signed := !strings.HasSuffix(s, "u")
	base := strings.TrimSuffix(s, "u")
	switch base {
	case "1":
		return Size1, signed, nil
	case "2":
		return Size2, signed, nil
	case "4":
		return Size4, signed, nil
	default:
		return 0, false, fmt.Errorf("vcode: unknown memory access size %q", s)
	}
}
