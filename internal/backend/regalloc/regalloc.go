// Package regalloc implements linear-scan register allocation over
// VCode (spec.md §4.6): it assigns every virtual register a physical
// integer register or a stack slot, preferring caller-saved registers
// except across a call, where only callee-saved registers are handed
// out so the call doesn't need its own save/restore sequence.
package regalloc

import (
	"sort"

	"lpc/internal/backend/vcode"
	"lpc/internal/riscv32"
)

// allocatablePreferred excludes t5/t6 from riscv32.PreferredIntGprs:
// internal/backend/emit reserves exactly those two as its spill-reload
// scratch registers, so a live VReg can never collide with them.
var allocatablePreferred = func() []riscv32.Gpr {
	var out []riscv32.Gpr
	for _, r := range riscv32.PreferredIntGprs {
		if r == riscv32.T5 || r == riscv32.T6 {
			continue
		}
		out = append(out, r)
	}
	return out
}()

// Location is where a VReg lives after allocation: either a physical
// register, or a spill slot index (a word offset within the frame's
// spill area, resolved to a real sp-relative address once
// internal/backend/frame computes the frame).
type Location struct {
	Reg     riscv32.Gpr
	IsStack bool
	Slot    int
}

// Allocation is the result of running the allocator over one
// function's VCode.
type Allocation struct {
	Locations         map[vcode.VReg]Location
	SpillSlotCount    int
	MaxTempSpillSlots int
	// CalleeSaved lists every callee-saved register the allocation put
	// to use; the frame must save and restore exactly these.
	CalleeSaved []riscv32.Gpr
}

// Location looks up where v lives, defaulting to zero-valued (treated
// as an allocator bug, not a user error, if ever missing).
func (a *Allocation) Location(v vcode.VReg) Location { return a.Locations[v] }

type interval struct {
	reg        vcode.VReg
	start, end int
	spansCall  bool
}

// Allocate runs linear-scan register allocation over fn, whose blocks
// are already in their lowered emission order.
func Allocate(fn *vcode.Function) *Allocation {
	positions, spanEnd := numberPositions(fn)
	liveIn, liveOut := computeLiveness(fn)
	intervals := buildIntervals(fn, positions, spanEnd, liveIn, liveOut)

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	alloc := &Allocation{Locations: make(map[vcode.VReg]Location, len(intervals))}
	var active []*activeEntry
	nextSlot := 0
	usedCalleeSaved := map[riscv32.Gpr]bool{}

	for i := range intervals {
		iv := &intervals[i]
		active = expireOld(active, iv.start)

		pool := allocatablePreferred
		if iv.spansCall {
			pool = riscv32.CalleeSavedIntGprs
		}
		if reg, ok := firstFree(pool, active); ok {
			alloc.Locations[iv.reg] = Location{Reg: reg}
			if riscv32.IsCalleeSaved(reg) {
				usedCalleeSaved[reg] = true
			}
			active = append(active, &activeEntry{iv: iv, reg: reg})
			continue
		}
		// Fall back to the other pool before spilling: a value that
		// does not span a call may take a free callee-saved register.
		// A value that spans a call never takes a caller-saved one,
		// since the call clobbers it; it spills instead.
		other := riscv32.CalleeSavedIntGprs
		if iv.spansCall {
			other = allocatablePreferred
		}
		if reg, ok := firstFree(other, active); ok && !iv.spansCall {
			alloc.Locations[iv.reg] = Location{Reg: reg}
			if riscv32.IsCalleeSaved(reg) {
				usedCalleeSaved[reg] = true
			}
			active = append(active, &activeEntry{iv: iv, reg: reg})
			continue
		}
		_ = other

		alloc.Locations[iv.reg] = Location{IsStack: true, Slot: nextSlot}
		nextSlot++
	}

	alloc.SpillSlotCount = nextSlot
	if nextSlot > 0 {
		alloc.MaxTempSpillSlots = 1
	}
	for r := range usedCalleeSaved {
		alloc.CalleeSaved = append(alloc.CalleeSaved, r)
	}
	sort.Slice(alloc.CalleeSaved, func(i, j int) bool { return alloc.CalleeSaved[i] < alloc.CalleeSaved[j] })
	return alloc
}

type activeEntry struct {
	iv  *interval
	reg riscv32.Gpr
}

func expireOld(active []*activeEntry, start int) []*activeEntry {
	kept := active[:0]
	for _, e := range active {
		if e.iv.end >= start {
			kept = append(kept, e)
		}
	}
	return kept
}

func firstFree(pool []riscv32.Gpr, active []*activeEntry) (riscv32.Gpr, bool) {
	taken := map[riscv32.Gpr]bool{}
	for _, e := range active {
		taken[e.reg] = true
	}
	for _, r := range pool {
		if !taken[r] {
			return r, true
		}
	}
	return 0, false
}

// numberPositions assigns a strictly increasing position to every
// instruction in fn's lowered order, plus one position per block
// (its params' definition point, immediately before its first
// instruction). spanEnd maps each block to its last instruction's
// position (or its param position, for an empty block).
func numberPositions(fn *vcode.Function) (pos map[blockInst]int, spanEnd map[vcode.Block]int) {
	pos = map[blockInst]int{}
	spanEnd = map[vcode.Block]int{}
	p := 0
	for _, b := range fn.Order {
		pos[blockInst{b, -1}] = p // block-param definition point
		p++
		bd := fn.Blocks[b]
		last := p - 1
		for i := range bd.Insts {
			pos[blockInst{b, i}] = p
			last = p
			p++
		}
		spanEnd[b] = last
	}
	return pos, spanEnd
}

type blockInst struct {
	block vcode.Block
	index int // -1 denotes the block's param-definition point
}

func buildIntervals(fn *vcode.Function, pos map[blockInst]int, spanEnd map[vcode.Block]int, liveIn, liveOut map[vcode.Block]map[vcode.VReg]bool) []interval {
	ranges := map[vcode.VReg]*interval{}
	touch := func(v vcode.VReg, p int) {
		iv, ok := ranges[v]
		if !ok {
			iv = &interval{reg: v, start: p, end: p}
			ranges[v] = iv
			return
		}
		if p < iv.start {
			iv.start = p
		}
		if p > iv.end {
			iv.end = p
		}
	}

	callPositions := map[int]bool{}

	for _, b := range fn.Order {
		paramPos := pos[blockInst{b, -1}]
		for _, p := range fn.Blocks[b].Params {
			touch(p, paramPos)
		}
		for v := range liveIn[b] {
			touch(v, paramPos)
		}
		end := spanEnd[b]
		for v := range liveOut[b] {
			touch(v, end)
		}

		for i, inst := range fn.Blocks[b].Insts {
			p := pos[blockInst{b, i}]
			if inst.Op == vcode.OpCall {
				callPositions[p] = true
			}
			for _, a := range instUses(inst) {
				touch(a, p)
			}
			for _, r := range instDefs(inst) {
				touch(r, p)
			}
		}
	}

	out := make([]interval, 0, len(ranges))
	for _, iv := range ranges {
		for cp := range callPositions {
			if cp > iv.start && cp <= iv.end {
				iv.spansCall = true
				break
			}
		}
		out = append(out, *iv)
	}
	return out
}

func instUses(i vcode.Inst) []vcode.VReg {
	uses := append([]vcode.VReg(nil), i.Args...)
	switch i.Op {
	case vcode.OpBranchTwoDest:
		uses = append(uses, i.CondLHS, i.CondRHS)
		uses = append(uses, i.TrueTarget.Args...)
		uses = append(uses, i.FalseTarget.Args...)
	case vcode.OpJump:
		uses = append(uses, i.JumpTarget.Args...)
	}
	return uses
}

func instDefs(i vcode.Inst) []vcode.VReg {
	var defs []vcode.VReg
	if i.Rd != (vcode.Writable{}) {
		defs = append(defs, i.Rd.Reg)
	}
	for _, r := range i.Results {
		defs = append(defs, r.Reg)
	}
	return defs
}

func computeLiveness(fn *vcode.Function) (liveIn, liveOut map[vcode.Block]map[vcode.VReg]bool) {
	liveIn = map[vcode.Block]map[vcode.VReg]bool{}
	liveOut = map[vcode.Block]map[vcode.VReg]bool{}
	def := map[vcode.Block]map[vcode.VReg]bool{}
	use := map[vcode.Block]map[vcode.VReg]bool{}
	succs := map[vcode.Block][]vcode.Block{}

	for _, b := range fn.Order {
		d, u := map[vcode.VReg]bool{}, map[vcode.VReg]bool{}
		for _, p := range fn.Blocks[b].Params {
			d[p] = true
		}
		for _, inst := range fn.Blocks[b].Insts {
			for _, a := range instUses(inst) {
				if !d[a] {
					u[a] = true
				}
			}
			for _, r := range instDefs(inst) {
				d[r] = true
			}
		}
		def[b], use[b] = d, u
		liveIn[b], liveOut[b] = map[vcode.VReg]bool{}, map[vcode.VReg]bool{}
		succs[b] = successorsOf(fn.Blocks[b])
	}

	changed := true
	for changed {
		changed = false
		for i := len(fn.Order) - 1; i >= 0; i-- {
			b := fn.Order[i]
			out := map[vcode.VReg]bool{}
			for _, s := range succs[b] {
				for v := range liveIn[s] {
					out[v] = true
				}
			}
			in := map[vcode.VReg]bool{}
			for v := range use[b] {
				in[v] = true
			}
			for v := range out {
				if !def[b][v] {
					in[v] = true
				}
			}
			if !setEqual(in, liveIn[b]) {
				liveIn[b] = in
				changed = true
			}
			if !setEqual(out, liveOut[b]) {
				liveOut[b] = out
				changed = true
			}
		}
	}
	return liveIn, liveOut
}

func successorsOf(bd *vcode.BlockData) []vcode.Block {
	if len(bd.Insts) == 0 {
		return nil
	}
	return bd.Insts[len(bd.Insts)-1].Successors()
}

func setEqual(a, b map[vcode.VReg]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}
