// Package analysis computes the control-flow graph, dominator tree,
// and value liveness over an already-built ir.Function. Every analysis
// here is read-only: it never mutates the function, matching the
// "analyses observe, passes mutate" split spec.md draws between
// lowering's inputs and the rewrite pass.
package analysis

import "lpc/internal/ir"

// ControlFlowGraph holds, for every block in a function, its direct
// successors (from the block's terminator) and predecessors (by
// inversion).
type ControlFlowGraph struct {
	blocks []ir.Block
	succs  map[ir.Block][]ir.Block
	preds  map[ir.Block][]ir.Block
}

// BuildCFG constructs the control-flow graph of fn from its layout and
// terminator instructions.
func BuildCFG(fn *ir.Function) *ControlFlowGraph {
	cfg := &ControlFlowGraph{
		blocks: fn.Blocks(),
		succs:  make(map[ir.Block][]ir.Block),
		preds:  make(map[ir.Block][]ir.Block),
	}
	for _, blk := range cfg.blocks {
		term, ok := fn.Terminator(blk)
		if !ok {
			continue
		}
		data, _ := fn.DFG.InstData(term)
		succs := data.Successors()
		cfg.succs[blk] = succs
		for _, s := range succs {
			cfg.preds[s] = append(cfg.preds[s], blk)
		}
	}
	return cfg
}

// Blocks returns every block of the function, in layout order.
func (c *ControlFlowGraph) Blocks() []ir.Block { return c.blocks }

// Successors returns the blocks b's terminator may transfer control to.
func (c *ControlFlowGraph) Successors(b ir.Block) []ir.Block { return c.succs[b] }

// Predecessors returns the blocks whose terminator may transfer
// control to b.
func (c *ControlFlowGraph) Predecessors(b ir.Block) []ir.Block { return c.preds[b] }
