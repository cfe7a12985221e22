package ir

import "fmt"

// Value is an opaque SSA value identifier. Every Value is defined
// exactly once; it may be referenced by many instructions and blocks.
type Value uint32

func (v Value) String() string { return fmt.Sprintf("v%d", uint32(v)) }

// Index returns the numeric index of v.
func (v Value) Index() uint32 { return uint32(v) }
