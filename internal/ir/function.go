package ir

// Function is one compilation unit: a name, its calling-convention
// signature, its data-flow graph, and the program-order layout over
// that graph. The first block in layout order is the entry block and
// its parameters are the function's incoming arguments.
type Function struct {
	Name      string
	Signature Signature

	DFG    *DataFlowGraph
	Layout *Layout
}

// NewFunction creates an empty function ready for a builder to
// populate.
func NewFunction(name string, sig Signature) *Function {
	return &Function{
		Name:      name,
		Signature: sig,
		DFG:       newDataFlowGraph(),
		Layout:    newLayout(),
	}
}

// EntryBlock returns the function's entry block, or (InvalidBlock,
// false) if no block has been laid out yet.
func (f *Function) EntryBlock() (Block, bool) {
	b := f.Layout.firstBlock
	return b, b.IsValid()
}

// Blocks returns every block in program order.
func (f *Function) Blocks() []Block {
	return f.Layout.blocksInOrder()
}

// HasBlock reports whether b is laid out in this function.
func (f *Function) HasBlock(b Block) bool {
	return f.Layout.isBlockInserted(b)
}

// BlockInsts returns every instruction in b, in program order.
func (f *Function) BlockInsts(b Block) []Inst {
	return f.Layout.blockInsts(b)
}

// BlockParams returns the block parameters (= SSA values) declared by b.
func (f *Function) BlockParams(b Block) []Value {
	bd, ok := f.DFG.BlockData(b)
	if !ok {
		return nil
	}
	return bd.Params
}

// Terminator returns the terminating instruction of b, if laid out.
func (f *Function) Terminator(b Block) (Inst, bool) {
	insts := f.Layout.blockInsts(b)
	if len(insts) == 0 {
		return InvalidInst, false
	}
	last := insts[len(insts)-1]
	data, ok := f.DFG.InstData(last)
	if !ok || !data.IsTerminator() {
		return InvalidInst, false
	}
	return last, true
}

// IsBlockCold reports whether b was marked cold.
func (f *Function) IsBlockCold(b Block) bool {
	return f.DFG.IsBlockCold(b)
}

// ValueType returns the declared type of v.
func (f *Function) ValueType(v Value) (Type, bool) {
	return f.DFG.ValueType(v)
}
