package emu

import "lpc/internal/riscv32"

// execute runs one decoded instruction, mutating registers/PC/memory
// only once every fault check for that instruction has already
// passed.
func (e *Emulator) execute(inst riscv32.Inst) (StepResult, error) {
	switch inst.Op {
	case riscv32.EBREAK:
		return StepResult{Kind: StepHalted}, nil

	case riscv32.ECALL:
		info := SyscallInfo{Number: e.reg(riscv32.A7)}
		args := [7]riscv32.Gpr{riscv32.A0, riscv32.A1, riscv32.A2, riscv32.A3, riscv32.A4, riscv32.A5, riscv32.A6}
		for i, g := range args {
			info.Args[i] = e.reg(g)
		}
		e.PC += 4
		return StepResult{Kind: StepSyscall, Syscall: info}, nil
	}

	if inst.Op.Format() == riscv32.FormatB {
		taken, target, err := e.evalBranch(inst)
		if err != nil {
			return StepResult{}, err
		}
		if taken {
			e.PC = target
		} else {
			e.PC += 4
		}
		return StepResult{Kind: StepContinued}, nil
	}

	switch inst.Op {
	case riscv32.JAL:
		link := e.PC + 4
		target := uint32(int64(e.PC) + int64(inst.Imm))
		e.setReg(inst.Rd, link)
		e.PC = target
		return StepResult{Kind: StepContinued}, nil

	case riscv32.JALR:
		link := e.PC + 4
		target := (e.reg(inst.Rs1) + uint32(inst.Imm)) &^ 1
		e.setReg(inst.Rd, link)
		e.PC = target
		return StepResult{Kind: StepContinued}, nil
	}

	if err := e.executeALUOrMem(inst); err != nil {
		return StepResult{}, err
	}
	e.PC += 4
	return StepResult{Kind: StepContinued}, nil
}

func (e *Emulator) evalBranch(inst riscv32.Inst) (bool, uint32, error) {
	a := int32(e.reg(inst.Rs1))
	b := int32(e.reg(inst.Rs2))
	ua := e.reg(inst.Rs1)
	ub := e.reg(inst.Rs2)
	var taken bool
	switch inst.Op {
	case riscv32.BEQ:
		taken = a == b
	case riscv32.BNE:
		taken = a != b
	case riscv32.BLT:
		taken = a < b
	case riscv32.BGE:
		taken = a >= b
	case riscv32.BLTU:
		taken = ua < ub
	case riscv32.BGEU:
		taken = ua >= ub
	}
	return taken, uint32(int64(e.PC) + int64(inst.Imm)), nil
}

func (e *Emulator) executeALUOrMem(inst riscv32.Inst) error {
	switch inst.Op {
	case riscv32.ADD:
		e.setReg(inst.Rd, e.reg(inst.Rs1)+e.reg(inst.Rs2))
	case riscv32.SUB:
		e.setReg(inst.Rd, e.reg(inst.Rs1)-e.reg(inst.Rs2))
	case riscv32.AND:
		e.setReg(inst.Rd, e.reg(inst.Rs1)&e.reg(inst.Rs2))
	case riscv32.OR:
		e.setReg(inst.Rd, e.reg(inst.Rs1)|e.reg(inst.Rs2))
	case riscv32.XOR:
		e.setReg(inst.Rd, e.reg(inst.Rs1)^e.reg(inst.Rs2))
	case riscv32.SLL:
		e.setReg(inst.Rd, e.reg(inst.Rs1)<<(e.reg(inst.Rs2)&0x1f))
	case riscv32.SRL:
		e.setReg(inst.Rd, e.reg(inst.Rs1)>>(e.reg(inst.Rs2)&0x1f))
	case riscv32.SRA:
		e.setReg(inst.Rd, uint32(int32(e.reg(inst.Rs1))>>(e.reg(inst.Rs2)&0x1f)))
	case riscv32.SLT:
		e.setReg(inst.Rd, boolToWord(int32(e.reg(inst.Rs1)) < int32(e.reg(inst.Rs2))))
	case riscv32.SLTU:
		e.setReg(inst.Rd, boolToWord(e.reg(inst.Rs1) < e.reg(inst.Rs2)))

	case riscv32.MUL:
		e.setReg(inst.Rd, e.reg(inst.Rs1)*e.reg(inst.Rs2))
	case riscv32.MULH:
		e.setReg(inst.Rd, uint32((int64(int32(e.reg(inst.Rs1)))*int64(int32(e.reg(inst.Rs2))))>>32))
	case riscv32.MULHU:
		e.setReg(inst.Rd, uint32((uint64(e.reg(inst.Rs1))*uint64(e.reg(inst.Rs2)))>>32))
	case riscv32.MULHSU:
		e.setReg(inst.Rd, uint32((int64(int32(e.reg(inst.Rs1)))*int64(uint64(e.reg(inst.Rs2))))>>32))
	case riscv32.DIV:
		e.setReg(inst.Rd, divSigned(int32(e.reg(inst.Rs1)), int32(e.reg(inst.Rs2))))
	case riscv32.DIVU:
		e.setReg(inst.Rd, divUnsigned(e.reg(inst.Rs1), e.reg(inst.Rs2)))
	case riscv32.REM:
		e.setReg(inst.Rd, remSigned(int32(e.reg(inst.Rs1)), int32(e.reg(inst.Rs2))))
	case riscv32.REMU:
		e.setReg(inst.Rd, remUnsigned(e.reg(inst.Rs1), e.reg(inst.Rs2)))

	case riscv32.ADDI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)+uint32(inst.Imm))
	case riscv32.ANDI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)&uint32(inst.Imm))
	case riscv32.ORI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)|uint32(inst.Imm))
	case riscv32.XORI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)^uint32(inst.Imm))
	case riscv32.SLTI:
		e.setReg(inst.Rd, boolToWord(int32(e.reg(inst.Rs1)) < inst.Imm))
	case riscv32.SLTIU:
		e.setReg(inst.Rd, boolToWord(e.reg(inst.Rs1) < uint32(inst.Imm)))
	case riscv32.SLLI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)<<uint32(inst.Imm))
	case riscv32.SRLI:
		e.setReg(inst.Rd, e.reg(inst.Rs1)>>uint32(inst.Imm))
	case riscv32.SRAI:
		e.setReg(inst.Rd, uint32(int32(e.reg(inst.Rs1))>>uint32(inst.Imm)))

	case riscv32.LUI:
		e.setReg(inst.Rd, uint32(inst.Imm))
	case riscv32.AUIPC:
		e.setReg(inst.Rd, e.PC+uint32(inst.Imm))

	case riscv32.LB, riscv32.LH, riscv32.LW, riscv32.LBU, riscv32.LHU:
		return e.executeLoad(inst)
	case riscv32.SB, riscv32.SH, riscv32.SW:
		return e.executeStore(inst)
	}
	return nil
}

func (e *Emulator) executeLoad(inst riscv32.Inst) error {
	addr := e.reg(inst.Rs1) + uint32(inst.Imm)
	var size uint32
	switch inst.Op {
	case riscv32.LB, riscv32.LBU:
		size = 1
	case riscv32.LH, riscv32.LHU:
		size = 2
	default:
		size = 4
	}
	raw, err := e.Mem.Load(addr, size)
	if err != nil {
		return err
	}
	switch inst.Op {
	case riscv32.LB:
		e.setReg(inst.Rd, uint32(int32(int8(raw))))
	case riscv32.LH:
		e.setReg(inst.Rd, uint32(int32(int16(raw))))
	default:
		e.setReg(inst.Rd, raw)
	}
	return nil
}

func (e *Emulator) executeStore(inst riscv32.Inst) error {
	addr := e.reg(inst.Rs1) + uint32(inst.Imm)
	var size uint32
	switch inst.Op {
	case riscv32.SB:
		size = 1
	case riscv32.SH:
		size = 2
	default:
		size = 4
	}
	return e.Mem.Store(addr, e.reg(inst.Rs2), size)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func divSigned(a, b int32) uint32 {
	if b == 0 {
		return 0xffffffff
	}
	if a == -2147483648 && b == -1 {
		return uint32(a)
	}
	return uint32(a / b)
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xffffffff
	}
	return a / b
}

func remSigned(a, b int32) uint32 {
	if b == 0 {
		return uint32(a)
	}
	if a == -2147483648 && b == -1 {
		return 0
	}
	return uint32(a % b)
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
