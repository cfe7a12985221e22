package riscv32

import "fmt"

var rTypeFromFuncts = invertRFuncts()

func invertRFuncts() map[funct]Mnemonic {
	out := make(map[funct]Mnemonic, len(rTypeFuncts))
	for m, f := range rTypeFuncts {
		out[f] = m
	}
	return out
}

var iTypeArithFromFunct3 = map[uint32]Mnemonic{
	0b000: ADDI, 0b010: SLTI, 0b011: SLTIU, 0b100: XORI, 0b110: ORI, 0b111: ANDI,
}

var loadFromFunct3 = map[uint32]Mnemonic{
	0b000: LB, 0b001: LH, 0b010: LW, 0b100: LBU, 0b101: LHU,
}

var storeFromFunct3 = map[uint32]Mnemonic{0b000: SB, 0b001: SH, 0b010: SW}

var branchFromFunct3 = map[uint32]Mnemonic{
	0b000: BEQ, 0b001: BNE, 0b100: BLT, 0b101: BGE, 0b110: BLTU, 0b111: BGEU,
}

// Decode unpacks a 32-bit machine word into an Inst.
func Decode(word uint32) (Inst, error) {
	opcode := word & 0x7f
	rd := Gpr((word >> 7) & 0x1f)
	funct3 := (word >> 12) & 0x7
	rs1 := Gpr((word >> 15) & 0x1f)
	rs2 := Gpr((word >> 20) & 0x1f)
	funct7 := (word >> 25) & 0x7f

	switch opcode {
	case opcodeR:
		m, ok := rTypeFromFuncts[funct{funct3, funct7}]
		if !ok {
			return Inst{}, fmt.Errorf("riscv32: unknown R-type funct3=%#o funct7=%#o", funct3, funct7)
		}
		return Inst{Op: m, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case opcodeI:
		imm12 := signExtend(word>>20, 12)
		switch funct3 {
		case 0b001:
			return Inst{Op: SLLI, Rd: rd, Rs1: rs1, Imm: int32((word >> 20) & 0x1f)}, nil
		case 0b101:
			shamt := int32((word >> 20) & 0x1f)
			if funct7 == 0b0100000 {
				return Inst{Op: SRAI, Rd: rd, Rs1: rs1, Imm: shamt}, nil
			}
			return Inst{Op: SRLI, Rd: rd, Rs1: rs1, Imm: shamt}, nil
		default:
			m, ok := iTypeArithFromFunct3[funct3]
			if !ok {
				return Inst{}, fmt.Errorf("riscv32: unknown I-type arith funct3=%#o", funct3)
			}
			return Inst{Op: m, Rd: rd, Rs1: rs1, Imm: imm12}, nil
		}

	case opcodeLoad:
		m, ok := loadFromFunct3[funct3]
		if !ok {
			return Inst{}, fmt.Errorf("riscv32: unknown load funct3=%#o", funct3)
		}
		return Inst{Op: m, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}, nil

	case opcodeJalr:
		return Inst{Op: JALR, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}, nil

	case opcodeStore:
		m, ok := storeFromFunct3[funct3]
		if !ok {
			return Inst{}, fmt.Errorf("riscv32: unknown store funct3=%#o", funct3)
		}
		imm := (funct7 << 5) | uint32(rd)
		return Inst{Op: m, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 12)}, nil

	case opcodeBranch:
		m, ok := branchFromFunct3[funct3]
		if !ok {
			return Inst{}, fmt.Errorf("riscv32: unknown branch funct3=%#o", funct3)
		}
		bit12 := (word >> 31) & 1
		bit11 := (word >> 7) & 1
		bits10_5 := (word >> 25) & 0x3f
		bits4_1 := (word >> 8) & 0xf
		imm := bit12<<12 | bit11<<11 | bits10_5<<5 | bits4_1<<1
		return Inst{Op: m, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 13)}, nil

	case opcodeLui:
		return Inst{Op: LUI, Rd: rd, Imm: int32(word & 0xfffff000)}, nil

	case opcodeAuipc:
		return Inst{Op: AUIPC, Rd: rd, Imm: int32(word & 0xfffff000)}, nil

	case opcodeJal:
		bit20 := (word >> 31) & 1
		bits19_12 := (word >> 12) & 0xff
		bit11 := (word >> 20) & 1
		bits10_1 := (word >> 21) & 0x3ff
		imm := bit20<<20 | bits19_12<<12 | bit11<<11 | bits10_1<<1
		return Inst{Op: JAL, Rd: rd, Imm: signExtend(imm, 21)}, nil

	case opcodeSystem:
		if (word >> 20) == 1 {
			return Inst{Op: EBREAK}, nil
		}
		return Inst{Op: ECALL}, nil
	}
	return Inst{}, fmt.Errorf("riscv32: unknown opcode %#07b", opcode)
}

// signExtend sign-extends the low bits-wide field of v.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
