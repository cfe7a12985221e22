package riscv32

import "fmt"

// String renders inst in objdump-ish "mnemonic operands" form.
func (i Inst) String() string {
	switch i.Op.Format() {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", i.Op, i.Rd, i.Rs1, i.Rs2)
	case FormatI:
		switch i.Op {
		case LB, LH, LW, LBU, LHU:
			return fmt.Sprintf("%s %s, %d(%s)", i.Op, i.Rd, i.Imm, i.Rs1)
		case JALR:
			return fmt.Sprintf("jalr %s, %d(%s)", i.Rd, i.Imm, i.Rs1)
		default:
			return fmt.Sprintf("%s %s, %s, %d", i.Op, i.Rd, i.Rs1, i.Imm)
		}
	case FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", i.Op, i.Rs2, i.Imm, i.Rs1)
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", i.Op, i.Rs1, i.Rs2, i.Imm)
	case FormatU:
		return fmt.Sprintf("%s %s, %#x", i.Op, i.Rd, uint32(i.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("jal %s, %d", i.Rd, i.Imm)
	case FormatSystem:
		return i.Op.String()
	default:
		return fmt.Sprintf("<invalid: %s>", i.Op)
	}
}

// Disassemble decodes word and renders it, surfacing a decode error
// as an inline "<bad opcode ...>" string rather than failing — used
// by `lpc-cli -disasm`, where a best-effort listing is more useful
// than aborting on the first unrecognized word.
func Disassemble(word uint32) string {
	inst, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	return inst.String()
}

// DisassembleAll decodes a code region word by word, returning one
// rendered line per instruction annotated with its byte offset.
func DisassembleAll(code []byte) []string {
	lines := make([]string, 0, len(code)/4)
	for off := 0; off+4 <= len(code); off += 4 {
		word := uint32(code[off]) | uint32(code[off+1])<<8 | uint32(code[off+2])<<16 | uint32(code[off+3])<<24
		lines = append(lines, fmt.Sprintf("%6d: %s", off, Disassemble(word)))
	}
	return lines
}
