package riscv32_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/riscv32"
)

func roundTrip(t *testing.T, inst riscv32.Inst) riscv32.Inst {
	t.Helper()
	word, err := riscv32.Encode(inst)
	require.NoError(t, err)
	decoded, err := riscv32.Decode(word)
	require.NoError(t, err)
	return decoded
}

func TestEncodeDecodeRoundTripsRType(t *testing.T) {
	inst := riscv32.Inst{Op: riscv32.ADD, Rd: riscv32.A0, Rs1: riscv32.A1, Rs2: riscv32.A2}
	assert.Equal(t, inst, roundTrip(t, inst))

	mulInst := riscv32.Inst{Op: riscv32.MUL, Rd: riscv32.T0, Rs1: riscv32.A0, Rs2: riscv32.A1}
	assert.Equal(t, mulInst, roundTrip(t, mulInst))
}

func TestEncodeDecodeRoundTripsIType(t *testing.T) {
	for _, imm := range []int32{0, 2047, -2048, 1, -1} {
		inst := riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: imm}
		assert.Equal(t, inst, roundTrip(t, inst))
	}
}

func TestEncodeDecodeRoundTripsShiftImmediates(t *testing.T) {
	slli := riscv32.Inst{Op: riscv32.SLLI, Rd: riscv32.A0, Rs1: riscv32.A0, Imm: 3}
	assert.Equal(t, slli, roundTrip(t, slli))

	srai := riscv32.Inst{Op: riscv32.SRAI, Rd: riscv32.A0, Rs1: riscv32.A0, Imm: 31}
	assert.Equal(t, srai, roundTrip(t, srai))
}

func TestEncodeDecodeRoundTripsLoadStore(t *testing.T) {
	load := riscv32.Inst{Op: riscv32.LW, Rd: riscv32.A0, Rs1: riscv32.Sp, Imm: 16}
	assert.Equal(t, load, roundTrip(t, load))

	store := riscv32.Inst{Op: riscv32.SW, Rs1: riscv32.Sp, Rs2: riscv32.A0, Imm: -4}
	assert.Equal(t, store, roundTrip(t, store))
}

func TestEncodeDecodeRoundTripsBranch(t *testing.T) {
	inst := riscv32.Inst{Op: riscv32.BLT, Rs1: riscv32.A0, Rs2: riscv32.A1, Imm: -16}
	assert.Equal(t, inst, roundTrip(t, inst))
}

func TestEncodeDecodeRoundTripsJalAndJalr(t *testing.T) {
	jal := riscv32.Inst{Op: riscv32.JAL, Rd: riscv32.Ra, Imm: 1 << 19}
	assert.Equal(t, jal, roundTrip(t, jal))

	jalr := riscv32.Inst{Op: riscv32.JALR, Rd: riscv32.Zero, Rs1: riscv32.Ra, Imm: 0}
	assert.Equal(t, jalr, roundTrip(t, jalr))
}

func TestEncodeDecodeRoundTripsLuiAndAuipc(t *testing.T) {
	lui := riscv32.Inst{Op: riscv32.LUI, Rd: riscv32.A0, Imm: int32(0x12345000)}
	assert.Equal(t, lui, roundTrip(t, lui))
}

func TestEncodeDecodeRoundTripsSystem(t *testing.T) {
	assert.Equal(t, riscv32.Inst{Op: riscv32.EBREAK}, roundTrip(t, riscv32.Inst{Op: riscv32.EBREAK}))
	assert.Equal(t, riscv32.Inst{Op: riscv32.ECALL}, roundTrip(t, riscv32.Inst{Op: riscv32.ECALL}))
}

func TestEncodeRejectsOutOfRangeImmediate(t *testing.T) {
	_, err := riscv32.Encode(riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.A0, Imm: 4096})
	assert.Error(t, err)

	_, err = riscv32.Encode(riscv32.Inst{Op: riscv32.JAL, Rd: riscv32.Ra, Imm: 1 << 21})
	assert.Error(t, err)
}

func TestDisassembleRendersAddImmediate(t *testing.T) {
	word, err := riscv32.Encode(riscv32.Inst{Op: riscv32.ADDI, Rd: riscv32.A0, Rs1: riscv32.Zero, Imm: 42})
	require.NoError(t, err)
	assert.Equal(t, "addi a0, zero, 42", riscv32.Disassemble(word))
}
