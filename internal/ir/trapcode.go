package ir

import "fmt"

// TrapCode identifies the reason a trap/trapz/trapnz fired. It is
// carried through lowering and emission so the interpreter (and any
// real hardware debugger) can report why execution stopped.
type TrapCode uint8

const (
	TrapUser0 TrapCode = iota
	TrapIntegerOverflow
	TrapIntegerDivisionByZero
	TrapArrayBoundsCheck
	TrapUnreachable
)

func (c TrapCode) String() string {
	switch c {
	case TrapIntegerOverflow:
		return "int_overflow"
	case TrapIntegerDivisionByZero:
		return "int_div_by_zero"
	case TrapArrayBoundsCheck:
		return "bounds_check"
	case TrapUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("user%d", uint8(c))
	}
}

// ParseTrapCode parses the textual spelling of a TrapCode.
func ParseTrapCode(s string) (TrapCode, bool) {
	switch s {
	case "int_overflow":
		return TrapIntegerOverflow, true
	case "int_div_by_zero":
		return TrapIntegerDivisionByZero, true
	case "bounds_check":
		return TrapArrayBoundsCheck, true
	case "unreachable":
		return TrapUnreachable, true
	default:
		var n uint8
		if _, err := fmt.Sscanf(s, "user%d", &n); err == nil {
			return TrapCode(n), true
		}
		return 0, false
	}
}
