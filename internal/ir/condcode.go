package ir

// IntCC is an integer comparison condition code: eq/ne plus the signed
// and unsigned <, <=, > and >= comparisons. Only eq, ne, < and >= (in
// both signednesses) correspond to a single RV32 branch
// (beq/bne/blt/bge/bltu/bgeu).
type IntCC uint8

const (
	IntEqual IntCC = iota
	IntNotEqual
	IntSignedLessThan
	IntSignedGreaterThanOrEqual
	IntSignedGreaterThan
	IntSignedLessThanOrEqual
	IntUnsignedLessThan
	IntUnsignedGreaterThanOrEqual
	IntUnsignedGreaterThan
	IntUnsignedLessThanOrEqual
)

func (c IntCC) String() string {
	switch c {
	case IntEqual:
		return "eq"
	case IntNotEqual:
		return "ne"
	case IntSignedLessThan:
		return "slt"
	case IntSignedGreaterThanOrEqual:
		return "sge"
	case IntSignedGreaterThan:
		return "sgt"
	case IntSignedLessThanOrEqual:
		return "sle"
	case IntUnsignedLessThan:
		return "ult"
	case IntUnsignedGreaterThanOrEqual:
		return "uge"
	case IntUnsignedGreaterThan:
		return "ugt"
	case IntUnsignedLessThanOrEqual:
		return "ule"
	default:
		return "<invalid-intcc>"
	}
}

// ParseIntCC parses the textual spelling of an IntCC.
func ParseIntCC(s string) (IntCC, bool) {
	switch s {
	case "eq":
		return IntEqual, true
	case "ne":
		return IntNotEqual, true
	case "slt":
		return IntSignedLessThan, true
	case "sge":
		return IntSignedGreaterThanOrEqual, true
	case "sgt":
		return IntSignedGreaterThan, true
	case "sle":
		return IntSignedLessThanOrEqual, true
	case "ult":
		return IntUnsignedLessThan, true
	case "uge":
		return IntUnsignedGreaterThanOrEqual, true
	case "ugt":
		return IntUnsignedGreaterThan, true
	case "ule":
		return IntUnsignedLessThanOrEqual, true
	default:
		return 0, false
	}
}

// Swapped returns the condition code for (b cond a) given (a cond b),
// i.e. the code to use after swapping operands.
func (c IntCC) Swapped() IntCC {
	switch c {
	case IntSignedLessThan:
		return IntSignedGreaterThan
	case IntSignedGreaterThan:
		return IntSignedLessThan
	case IntSignedLessThanOrEqual:
		return IntSignedGreaterThanOrEqual
	case IntSignedGreaterThanOrEqual:
		return IntSignedLessThanOrEqual
	case IntUnsignedLessThan:
		return IntUnsignedGreaterThan
	case IntUnsignedGreaterThan:
		return IntUnsignedLessThan
	case IntUnsignedLessThanOrEqual:
		return IntUnsignedGreaterThanOrEqual
	case IntUnsignedGreaterThanOrEqual:
		return IntUnsignedLessThanOrEqual
	default:
		return c
	}
}

// Inverted returns the logical negation of c.
func (c IntCC) Inverted() IntCC {
	switch c {
	case IntEqual:
		return IntNotEqual
	case IntNotEqual:
		return IntEqual
	case IntSignedLessThan:
		return IntSignedGreaterThanOrEqual
	case IntSignedGreaterThanOrEqual:
		return IntSignedLessThan
	case IntSignedGreaterThan:
		return IntSignedLessThanOrEqual
	case IntSignedLessThanOrEqual:
		return IntSignedGreaterThan
	case IntUnsignedLessThan:
		return IntUnsignedGreaterThanOrEqual
	case IntUnsignedGreaterThanOrEqual:
		return IntUnsignedLessThan
	case IntUnsignedGreaterThan:
		return IntUnsignedLessThanOrEqual
	case IntUnsignedLessThanOrEqual:
		return IntUnsignedGreaterThan
	default:
		return c
	}
}

// FloatCC is a floating point comparison condition code. IR-only:
// lowering has no rule for Fcmp, so a function containing one lowers
// only after rewrite.FixedPoint has turned it into an Icmp; neither
// emit.EmitModule nor the CLI runs that rewrite.
type FloatCC uint8

const (
	FloatEqual FloatCC = iota
	FloatNotEqual
	FloatLessThan
	FloatLessThanOrEqual
	FloatGreaterThan
	FloatGreaterThanOrEqual
)

func (c FloatCC) String() string {
	switch c {
	case FloatEqual:
		return "eq"
	case FloatNotEqual:
		return "ne"
	case FloatLessThan:
		return "lt"
	case FloatLessThanOrEqual:
		return "le"
	case FloatGreaterThan:
		return "gt"
	case FloatGreaterThanOrEqual:
		return "ge"
	default:
		return "<invalid-floatcc>"
	}
}

// ParseFloatCC parses the textual spelling of a FloatCC.
func ParseFloatCC(s string) (FloatCC, bool) {
	switch s {
	case "eq":
		return FloatEqual, true
	case "ne":
		return FloatNotEqual, true
	case "lt":
		return FloatLessThan, true
	case "le":
		return FloatLessThanOrEqual, true
	case "gt":
		return FloatGreaterThan, true
	case "ge":
		return FloatGreaterThanOrEqual, true
	default:
		return 0, false
	}
}
