package ir

// SourceLoc is a best-effort origin for an instruction, used only for
// diagnostics (verifier errors, disassembly comments).
type SourceLoc struct {
	File string
	Line int
}

// BlockTarget is a branch destination together with the block-parameter
// arguments supplied across that edge.
type BlockTarget struct {
	Block Block
	Args  []Value
}

// InstData is the (opcode, args, results, payload, source-loc) record
// for one instruction. Payload-carrying opcodes (Icmp, Call, Trap, ...)
// use only the fields relevant to their opcode; this keeps operands and
// results uniform across opcodes instead of needing a parallel
// side-table per opcode, per spec.md's "tagged opcodes with per-variant
// payload" design note.
type InstData struct {
	Op      Opcode
	Args    []Value
	Results []Value

	Cond  IntCC
	FCond FloatCC
	// ConstI carries Iconst's value, or Syscall's number.
	ConstI int64
	ConstF float32
	Callee string
	Trap   TrapCode
	// ValType carries the result type for opcodes the verifier cannot
	// infer from operands alone (Load's loaded type).
	ValType Type
	// Targets holds one entry for Jump, two (true, false) for Br.
	Targets []BlockTarget

	Loc SourceLoc
}

func binary(op Opcode, result, lhs, rhs Value) InstData {
	return InstData{Op: op, Args: []Value{lhs, rhs}, Results: []Value{result}}
}

func NewIadd(result, lhs, rhs Value) InstData { return binary(OpIadd, result, lhs, rhs) }
func NewIsub(result, lhs, rhs Value) InstData { return binary(OpIsub, result, lhs, rhs) }
func NewImul(result, lhs, rhs Value) InstData { return binary(OpImul, result, lhs, rhs) }
func NewIdiv(result, lhs, rhs Value) InstData { return binary(OpIdiv, result, lhs, rhs) }
func NewIrem(result, lhs, rhs Value) InstData { return binary(OpIrem, result, lhs, rhs) }

func NewIcmp(result Value, cond IntCC, lhs, rhs Value) InstData {
	i := binary(OpIcmp, result, lhs, rhs)
	i.Cond = cond
	return i
}

func NewFcmp(result Value, cond FloatCC, lhs, rhs Value) InstData {
	i := binary(OpFcmp, result, lhs, rhs)
	i.FCond = cond
	return i
}

func NewIconst(result Value, value int64) InstData {
	return InstData{Op: OpIconst, Results: []Value{result}, ConstI: value}
}

func NewFconst(result Value, value float32) InstData {
	return InstData{Op: OpFconst, Results: []Value{result}, ConstF: value}
}

func NewJump(target Block, args []Value) InstData {
	return InstData{Op: OpJump, Targets: []BlockTarget{{Block: target, Args: args}}}
}

func NewBr(cond Value, trueBlock, falseBlock Block, trueArgs, falseArgs []Value) InstData {
	return InstData{
		Op:   OpBr,
		Args: []Value{cond},
		Targets: []BlockTarget{
			{Block: trueBlock, Args: trueArgs},
			{Block: falseBlock, Args: falseArgs},
		},
	}
}

func NewReturn(args []Value) InstData {
	return InstData{Op: OpReturn, Args: args}
}

func NewCall(results []Value, callee string, args []Value) InstData {
	return InstData{Op: OpCall, Results: results, Callee: callee, Args: args}
}

func NewSyscall(number int64, args []Value) InstData {
	return InstData{Op: OpSyscall, Args: args, ConstI: number}
}

func NewHalt() InstData {
	return InstData{Op: OpHalt}
}

func NewLoad(result Value, ty Type, address Value) InstData {
	return InstData{Op: OpLoad, Results: []Value{result}, Args: []Value{address}, ValType: ty}
}

func NewStore(address, value Value) InstData {
	return InstData{Op: OpStore, Args: []Value{address, value}}
}

func NewTrap(code TrapCode) InstData {
	return InstData{Op: OpTrap, Trap: code}
}

func NewTrapz(cond Value, code TrapCode) InstData {
	return InstData{Op: OpTrapz, Args: []Value{cond}, Trap: code}
}

func NewTrapnz(cond Value, code TrapCode) InstData {
	return InstData{Op: OpTrapnz, Args: []Value{cond}, Trap: code}
}

// IsTerminator reports whether this instruction must end its block.
func (d InstData) IsTerminator() bool { return d.Op.IsTerminator() }

// Successors returns the blocks this instruction may transfer control
// to, in target order (for Br: true then false).
func (d InstData) Successors() []Block {
	if len(d.Targets) == 0 {
		return nil
	}
	out := make([]Block, len(d.Targets))
	for i, t := range d.Targets {
		out[i] = t.Block
	}
	return out
}
