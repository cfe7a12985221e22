package vcode

import (
	"fmt"
	"strings"
)

// Format renders fn in the textual VCode format (spec.md §6.2).
// Parse(Format(fn)) reconstructs an equal Function, modulo the
// StackArgs/Signature fields a bare golden file never carries.
func Format(fn *Function) string {
	var b strings.Builder
	b.WriteString("vcode {\n")
	if len(fn.Order) > 0 {
		fmt.Fprintf(&b, "  entry: %s\n", fn.Order[0])
	}
	for _, blk := range fn.Order {
		bd := fn.Blocks[blk]
		b.WriteString("  ")
		b.WriteString(blk.String())
		if len(bd.Params) > 0 {
			b.WriteString("(")
			b.WriteString(joinVRegs(bd.Params))
			b.WriteString(")")
		}
		b.WriteString(":\n")
		for _, inst := range bd.Insts {
			b.WriteString("    ")
			b.WriteString(formatInst(inst))
			b.WriteString("\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func formatInst(i Inst) string {
	switch i.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpSar, OpSlt, OpSltu:
		return fmt.Sprintf("%s = %s %s, %s", i.Rd.Reg, i.Op, i.Args[0], i.Args[1])
	case OpIcmp:
		return fmt.Sprintf("%s = icmp %s %s, %s", i.Rd.Reg, i.Cond, i.Args[0], i.Args[1])
	case OpIconst:
		return fmt.Sprintf("%s = iconst %d", i.Rd.Reg, i.ImmValue)
	case OpMov:
		return fmt.Sprintf("%s = mov %s", i.Rd.Reg, i.Args[0])
	case OpLoad:
		return fmt.Sprintf("%s = load%s %s", i.Rd.Reg, memSizeText(i.Size, i.Signed), i.Args[0])
	case OpStore:
		return fmt.Sprintf("store%s %s, %s", memSizeText(i.Size, true), i.Args[0], i.Args[1])
	case OpJump:
		return fmt.Sprintf("jump %s", formatTarget(i.JumpTarget))
	case OpBranchTwoDest:
		return fmt.Sprintf("brtwo %s %s, %s, %s, %s", i.Cond, i.CondLHS, i.CondRHS, formatTarget(i.TrueTarget), formatTarget(i.FalseTarget))
	case OpReturn:
		return fmt.Sprintf("ret %s", joinVRegs(i.Args))
	case OpCall:
		return fmt.Sprintf("%scall %%%s(%s)", formatResultPrefix(i.Results), i.Callee, joinVRegs(i.Args))
	case OpSyscall:
		return fmt.Sprintf("%ssyscall %d(%s)", formatResultPrefix(i.Results), i.ImmValue, joinVRegs(i.Args))
	case OpHalt:
		return "halt"
	case OpTrap:
		return fmt.Sprintf("trap %s", i.Trap)
	case OpTrapz:
		return fmt.Sprintf("trapz %s, %s", i.Trap, i.Args[0])
	case OpTrapnz:
		return fmt.Sprintf("trapnz %s, %s", i.Trap, i.Args[0])
	default:
		return "<invalid-vcode-inst>"
	}
}

func formatResultPrefix(results []Writable) string {
	if len(results) == 0 {
		return ""
	}
	names := make([]string, len(results))
	for idx, r := range results {
		names[idx] = r.Reg.String()
	}
	return strings.Join(names, ", ") + " = "
}

func formatTarget(t Target) string {
	if len(t.Args) == 0 {
		return t.Block.String()
	}
	return fmt.Sprintf("%s(%s)", t.Block, joinVRegs(t.Args))
}

func joinVRegs(rs []VReg) string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

func memSizeText(size MemSize, signed bool) string {
	s := fmt.Sprintf("%d", size)
	if !signed {
		s += "u"
	}
	return s
}
