package ir

// SSABuilder incrementally converts mutable front-end variables into
// SSA values while a function is being built block by block, following
// the variable-based construction algorithm (Braun et al., "Simple and
// Efficient Construction of Static Single Assignment Form"): reads
// walk to a single predecessor where possible and otherwise
// materialize a block parameter, recursing through predecessors to
// fill it in once every predecessor is known.
//
// Trivial-phi removal (the algorithm's optional third step) is not
// implemented: this toolchain's front end only ever produces the
// reducible, structured control flow of if/else and while, so a
// redundant block parameter costs a register, not correctness, and the
// verifier and lowering tolerate it.
type SSABuilder struct {
	fn *Function

	varTypes map[string]Type
	defs     map[Block]map[string]Value

	sealed map[Block]bool
	preds  map[Block][]ssaEdge

	// pending holds, per unsealed block, the variables that already
	// received a placeholder block parameter and still need their
	// predecessor operands filled in once the block is sealed.
	pending map[Block][]pendingPhi
}

type ssaEdge struct {
	pred Block
	jump Inst
}

type pendingPhi struct {
	variable string
	value    Value
}

// NewSSABuilder returns a builder over fn's data-flow graph.
func NewSSABuilder(fn *Function) *SSABuilder {
	return &SSABuilder{
		fn:       fn,
		varTypes: make(map[string]Type),
		defs:     make(map[Block]map[string]Value),
		sealed:   make(map[Block]bool),
		preds:    make(map[Block][]ssaEdge),
		pending:  make(map[Block][]pendingPhi),
	}
}

// DeclareVariable registers a front-end variable's static type. Must
// be called before the variable is ever read or written.
func (s *SSABuilder) DeclareVariable(name string, ty Type) {
	s.varTypes[name] = ty
}

// WriteVariable records that name holds value at the end of block.
func (s *SSABuilder) WriteVariable(name string, block Block, value Value) {
	m, ok := s.defs[block]
	if !ok {
		m = make(map[string]Value)
		s.defs[block] = m
	}
	m[name] = value
}

// ReadVariable returns the value of name as of the end of block,
// materializing block parameters across predecessors as needed.
func (s *SSABuilder) ReadVariable(name string, block Block) Value {
	if m, ok := s.defs[block]; ok {
		if v, ok := m[name]; ok {
			return v
		}
	}
	return s.readVariableRecursive(name, block)
}

func (s *SSABuilder) readVariableRecursive(name string, block Block) Value {
	var val Value
	switch {
	case !s.sealed[block]:
		val = s.newParam(block, name)
		s.pending[block] = append(s.pending[block], pendingPhi{variable: name, value: val})
	case len(s.preds[block]) == 1:
		val = s.ReadVariable(name, s.preds[block][0].pred)
	case len(s.preds[block]) == 0:
		panic("ir: ssa: read of undefined variable " + name + " in unreachable block")
	default:
		val = s.newParam(block, name)
		s.WriteVariable(name, block, val)
		s.fillPhiOperands(name, block, val, s.preds[block])
	}
	s.WriteVariable(name, block, val)
	return val
}

// newParam allocates a fresh block parameter of the variable's type on
// block, growing BlockData.Params/ParamTypes in place.
func (s *SSABuilder) newParam(block Block, name string) Value {
	ty := s.varTypes[name]
	v := s.fn.DFG.makeValue(ty)
	bd := s.fn.DFG.blocks[block]
	bd.Params = append(bd.Params, v)
	bd.ParamTypes = append(bd.ParamTypes, ty)
	s.fn.DFG.blocks[block] = bd
	s.fn.DFG.valueBlock[v] = block
	s.fn.DFG.valueInst[v] = InvalidInst
	return v
}

func (s *SSABuilder) fillPhiOperands(name string, block Block, phi Value, edges []ssaEdge) {
	for _, e := range edges {
		arg := s.ReadVariable(name, e.pred)
		s.fn.DFG.appendTargetArg(e.jump, block, arg)
	}
}

// RecordJump registers that jumpInst, laid out in pred, transfers
// control to target (as a Jump target or one arm of a Br). Must be
// called for every control-flow edge before target is sealed.
func (s *SSABuilder) RecordJump(pred Block, jumpInst Inst, target Block) {
	s.preds[target] = append(s.preds[target], ssaEdge{pred: pred, jump: jumpInst})
}

// SealBlock declares that every predecessor of block has now been
// registered via RecordJump, finalizing any block parameters that were
// materialized while block was still open.
func (s *SSABuilder) SealBlock(block Block) {
	if s.sealed[block] {
		return
	}
	s.sealed[block] = true
	edges := s.preds[block]
	for _, p := range s.pending[block] {
		s.fillPhiOperands(p.variable, block, p.value, edges)
	}
	delete(s.pending, block)
}

// appendTargetArg appends arg to the argument list jumpInst passes to
// target (its Jump target, or whichever Br arm points at target).
func (d *DataFlowGraph) appendTargetArg(jumpInst Inst, target Block, arg Value) {
	data := d.insts[jumpInst]
	for i := range data.Targets {
		if data.Targets[i].Block == target {
			data.Targets[i].Args = append(data.Targets[i].Args, arg)
		}
	}
	d.insts[jumpInst] = data
}
