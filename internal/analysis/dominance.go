package analysis

import "lpc/internal/ir"

// DominatorTree maps every reachable block to its immediate dominator,
// computed with the iterative Cooper/Harvey/Kennedy algorithm ("A
// Simple, Fast Dominance Algorithm"). No third-party graph library in
// the example pack covers dominance; this is the standard fixed-point
// formulation used by every in-tree compiler that needs it (including
// Go's own SSA backend), so it is implemented directly rather than
// imported.
type DominatorTree struct {
	entry    ir.Block
	idom     map[ir.Block]ir.Block
	rpoIndex map[ir.Block]int
}

// BuildDominatorTree computes the dominator tree of fn's entry block
// over cfg. Blocks unreachable from the entry are absent from the
// result.
func BuildDominatorTree(fn *ir.Function, cfg *ControlFlowGraph) *DominatorTree {
	entry, ok := fn.EntryBlock()
	if !ok {
		return &DominatorTree{idom: map[ir.Block]ir.Block{}, rpoIndex: map[ir.Block]int{}}
	}

	rpo := reversePostorder(entry, cfg)
	rpoIndex := make(map[ir.Block]int, len(rpo))
	for i, b := range rpo {
		rpoIndex[b] = i
	}

	idom := make(map[ir.Block]ir.Block, len(rpo))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom ir.Block
			found := false
			for _, p := range cfg.Predecessors(b) {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !found {
					newIdom = p
					found = true
					continue
				}
				newIdom = intersect(idom, rpoIndex, newIdom, p)
			}
			if !found {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return &DominatorTree{entry: entry, idom: idom, rpoIndex: rpoIndex}
}

func intersect(idom map[ir.Block]ir.Block, rpoIndex map[ir.Block]int, a, b ir.Block) ir.Block {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(entry ir.Block, cfg *ControlFlowGraph) []ir.Block {
	var post []ir.Block
	visited := map[ir.Block]bool{}
	var visit func(ir.Block)
	visit = func(b ir.Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range cfg.Successors(b) {
			visit(s)
		}
		post = append(post, b)
	}
	visit(entry)
	rpo := make([]ir.Block, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// Dominates reports whether a dominates b (every path from the entry
// to b passes through a). A block dominates itself.
func (d *DominatorTree) Dominates(a, b ir.Block) bool {
	if _, ok := d.idom[b]; !ok {
		return false
	}
	for {
		if a == b {
			return true
		}
		if b == d.entry {
			return a == d.entry
		}
		next := d.idom[b]
		if next == b {
			return false
		}
		b = next
	}
}

// ImmediateDominator returns b's immediate dominator, or
// (ir.InvalidBlock, false) if b is unreachable or is the entry.
func (d *DominatorTree) ImmediateDominator(b ir.Block) (ir.Block, bool) {
	if b == d.entry {
		return ir.InvalidBlock, false
	}
	idom, ok := d.idom[b]
	if !ok {
		return ir.InvalidBlock, false
	}
	return idom, true
}
