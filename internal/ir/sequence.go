package ir

// SequenceNumber orders instructions in program order without an O(n)
// linked-list walk. Numbers are assigned BASIC-line-number style
// (10, 20, 30, ...) so a single insertion between N and N+10 can take
// the midpoint (N+5) without renumbering anything else.
type SequenceNumber uint32

// MajorStride is the initial gap between sequence numbers.
const MajorStride SequenceNumber = 10

// MinorStride is not used by the layout code: an exhausted gap is
// always handled by renumbering the block.
const MinorStride SequenceNumber = 2

// LocalLimit is likewise not used by the layout code; no count of
// insertions into a gap is kept.
const LocalLimit SequenceNumber = 100 * MinorStride

// midpoint returns a sequence number strictly between a and b, or false
// if no integer exists between them (the gap is exhausted and the
// caller must renumber).
func midpoint(a, b SequenceNumber) (SequenceNumber, bool) {
	if a >= b {
		panic("ir: midpoint requires a < b")
	}
	m := a + (b-a)/2
	if m > a {
		return m, true
	}
	return 0, false
}
