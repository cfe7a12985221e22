package vcode

import "lpc/internal/ir"

// Block identifies a VCode block. VCode never introduces new blocks of
// its own; it reuses the IR's block identities, laid out in the order
// internal/backend/blockorder computed.
type Block = ir.Block

// BlockData is one block's parameter list (VRegs materialized from the
// IR block's params) and its straight-line instruction body.
type BlockData struct {
	Params []VReg
	Insts  []Inst
}

// Function is a lowered function: its ABI, the order its blocks will
// be emitted in, and each block's instructions.
type Function struct {
	Name      string
	Signature ir.Signature

	Order  []Block
	Blocks map[Block]*BlockData

	Regs *VRegAllocator

	// StackArgs is not set by lower.Lower and not read by emission,
	// which sizes the incoming stack-argument area from Signature's
	// parameter count instead.
	StackArgs int
}

// NewFunction creates an empty lowered function for name/sig, with its
// blocks laid out in order.
func NewFunction(name string, sig ir.Signature, order []Block) *Function {
	blocks := make(map[Block]*BlockData, len(order))
	for _, b := range order {
		blocks[b] = &BlockData{}
	}
	return &Function{
		Name:      name,
		Signature: sig,
		Order:     order,
		Blocks:    blocks,
		Regs:      &VRegAllocator{},
	}
}

// Emit appends inst to the end of b's instruction list.
func (f *Function) Emit(b Block, inst Inst) {
	f.Blocks[b].Insts = append(f.Blocks[b].Insts, inst)
}

// SetParams records the VRegs materialized for b's block parameters.
func (f *Function) SetParams(b Block, params []VReg) {
	f.Blocks[b].Params = params
}
