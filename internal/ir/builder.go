package ir

// FunctionBuilder appends instructions and blocks to a function in
// program order. It is the only intended way to populate a fresh
// Function; callers should not poke DFG/Layout directly.
type FunctionBuilder struct {
	fn      *Function
	current Block
}

// NewFunctionBuilder returns a builder over an already-allocated,
// empty function.
func NewFunctionBuilder(fn *Function) *FunctionBuilder {
	return &FunctionBuilder{fn: fn, current: InvalidBlock}
}

// Function returns the function under construction.
func (b *FunctionBuilder) Function() *Function { return b.fn }

// CreateBlock allocates a new block (not yet laid out) with the given
// parameter types, returning it and its parameter values in order.
func (b *FunctionBuilder) CreateBlock(paramTypes ...Type) (Block, []Value) {
	params := make([]Value, len(paramTypes))
	for i, ty := range paramTypes {
		params[i] = b.fn.DFG.makeValue(ty)
	}
	blk := b.fn.DFG.makeBlockWithParams(params, paramTypes)
	return blk, params
}

// AppendBlock lays block out at the end of the function's block chain
// and switches the insertion point to it.
func (b *FunctionBuilder) AppendBlock(blk Block) {
	b.fn.Layout.appendBlock(blk)
	b.current = blk
}

// SwitchToBlock changes the insertion point without affecting layout;
// blk must already be laid out.
func (b *FunctionBuilder) SwitchToBlock(blk Block) {
	if !b.fn.Layout.isBlockInserted(blk) {
		panic("ir: SwitchToBlock on a block not yet laid out")
	}
	b.current = blk
}

// CurrentBlock returns the block new instructions append to.
func (b *FunctionBuilder) CurrentBlock() Block { return b.current }

// result declares a fresh result value of ty, for use by the
// convenience emit helpers below.
func (b *FunctionBuilder) result(ty Type) Value {
	return b.fn.DFG.makeValue(ty)
}

// Insert appends a fully-formed instruction to the current block and
// returns its Inst handle. Results must already have been allocated
// via result() or an existing Value.
func (b *FunctionBuilder) Insert(data InstData) Inst {
	if !b.current.IsValid() {
		panic("ir: Insert with no current block")
	}
	inst := b.fn.DFG.makeInst(data)
	b.fn.Layout.appendInst(inst, b.current)
	b.fn.DFG.defineAtInst(inst, b.current)
	return inst
}

// Iadd, Isub, Imul, Idiv, Irem append a binary integer op and return
// its result value.
func (b *FunctionBuilder) Iadd(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewIadd(r, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Isub(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewIsub(r, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Imul(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewImul(r, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Idiv(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewIdiv(r, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Irem(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewIrem(r, lhs, rhs))
	return r
}

// Icmp appends an integer comparison, always producing a U32 0/1.
func (b *FunctionBuilder) Icmp(cond IntCC, lhs, rhs Value) Value {
	r := b.result(U32)
	b.Insert(NewIcmp(r, cond, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Fcmp(cond FloatCC, lhs, rhs Value) Value {
	r := b.result(U32)
	b.Insert(NewFcmp(r, cond, lhs, rhs))
	return r
}

func (b *FunctionBuilder) Iconst(ty Type, value int64) Value {
	r := b.result(ty)
	b.Insert(NewIconst(r, value))
	return r
}

func (b *FunctionBuilder) Fconst(value float32) Value {
	r := b.result(F32)
	b.Insert(NewFconst(r, value))
	return r
}

func (b *FunctionBuilder) Jump(target Block, args []Value) Inst {
	return b.Insert(NewJump(target, args))
}

func (b *FunctionBuilder) Br(cond Value, trueBlock, falseBlock Block, trueArgs, falseArgs []Value) Inst {
	return b.Insert(NewBr(cond, trueBlock, falseBlock, trueArgs, falseArgs))
}

func (b *FunctionBuilder) Return(args []Value) {
	b.Insert(NewReturn(args))
}

// Call appends a call instruction, allocating one result value per
// returnType and returning them.
func (b *FunctionBuilder) Call(callee string, returnTypes []Type, args []Value) []Value {
	results := make([]Value, len(returnTypes))
	for i, ty := range returnTypes {
		results[i] = b.result(ty)
	}
	b.Insert(NewCall(results, callee, args))
	return results
}

func (b *FunctionBuilder) Syscall(number int64, args []Value) {
	b.Insert(NewSyscall(number, args))
}

func (b *FunctionBuilder) Halt() {
	b.Insert(NewHalt())
}

func (b *FunctionBuilder) Load(ty Type, address Value) Value {
	r := b.result(ty)
	b.Insert(NewLoad(r, ty, address))
	return r
}

func (b *FunctionBuilder) Store(address, value Value) {
	b.Insert(NewStore(address, value))
}

func (b *FunctionBuilder) Trap(code TrapCode) {
	b.Insert(NewTrap(code))
}

func (b *FunctionBuilder) Trapz(cond Value, code TrapCode) {
	b.Insert(NewTrapz(cond, code))
}

func (b *FunctionBuilder) Trapnz(cond Value, code TrapCode) {
	b.Insert(NewTrapnz(cond, code))
}

// InsertBuilder inserts instructions immediately before an existing
// instruction rather than at the end of a block, used by rewrite
// passes that need to materialize operands ahead of the instruction
// they are rewriting.
type InsertBuilder struct {
	fn     *Function
	before Inst
	block  Block
}

// NewInsertBuilder returns a builder that inserts before existing,
// which must already be laid out.
func NewInsertBuilder(fn *Function, existing Inst) *InsertBuilder {
	block, ok := fn.Layout.instBlock(existing)
	if !ok {
		panic("ir: NewInsertBuilder target not laid out")
	}
	return &InsertBuilder{fn: fn, before: existing, block: block}
}

func (b *InsertBuilder) result(ty Type) Value {
	return b.fn.DFG.makeValue(ty)
}

// Insert allocates inst, splices it before the target instruction, and
// records its defining block.
func (b *InsertBuilder) Insert(data InstData) Inst {
	inst := b.fn.DFG.makeInst(data)
	b.fn.Layout.insertInstBefore(inst, b.before)
	b.fn.DFG.defineAtInst(inst, b.block)
	return inst
}

func (b *InsertBuilder) Iadd(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewIadd(r, lhs, rhs))
	return r
}

func (b *InsertBuilder) Imul(ty Type, lhs, rhs Value) Value {
	r := b.result(ty)
	b.Insert(NewImul(r, lhs, rhs))
	return r
}

func (b *InsertBuilder) Iconst(ty Type, value int64) Value {
	r := b.result(ty)
	b.Insert(NewIconst(r, value))
	return r
}

// ReplaceBuilder overwrites an existing instruction's data in place,
// keeping its Inst identity and position in layout. Used by the
// fixed-point rewrite pass, which must replace float ops with integer
// ops without disturbing surrounding program order.
type ReplaceBuilder struct {
	fn   *Function
	inst Inst
}

// NewReplaceBuilder returns a builder that replaces the data of inst,
// which must already be laid out.
func NewReplaceBuilder(fn *Function, inst Inst) *ReplaceBuilder {
	return &ReplaceBuilder{fn: fn, inst: inst}
}

// With replaces the instruction's data. Existing result Values keep
// their identity and type; data.Results is ignored in favor of the
// current result list so downstream uses are unaffected.
func (b *ReplaceBuilder) With(data InstData) {
	old, ok := b.fn.DFG.InstData(b.inst)
	if !ok {
		panic("ir: ReplaceBuilder on unknown instruction")
	}
	data.Results = old.Results
	block, _ := b.fn.Layout.instBlock(b.inst)
	b.fn.DFG.ReplaceInst(b.inst, data, block)
}
