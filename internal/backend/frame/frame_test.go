package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/backend/frame"
	"lpc/internal/riscv32"
)

func TestComputeRoundsFrameSizeTo16Bytes(t *testing.T) {
	l := frame.Compute(frame.Request{
		CalleeSaved: []riscv32.Gpr{riscv32.S1},
		HasCalls:    true,
	})
	assert.Equal(t, 0, l.OutgoingArgsOffset)
	assert.Equal(t, 0, l.CalleeSavedOffset)
	assert.Equal(t, 4, l.ReturnAddrOffset)
	assert.Equal(t, 0, l.Size%16, "frame size must be 16-byte aligned")
	assert.GreaterOrEqual(t, l.Size, 8)
}

func TestComputeOrdersAreasLowToHigh(t *testing.T) {
	l := frame.Compute(frame.Request{
		CalleeSaved:       []riscv32.Gpr{riscv32.S1, riscv32.S2},
		HasCalls:          true,
		UsesFramePointer:  true,
		OutgoingArgBytes:  8,
		SpillSlotCount:    2,
		MaxTempSpillSlots: 1,
	})
	assert.Less(t, l.OutgoingArgsOffset, l.SpillSlotsOffset)
	assert.Less(t, l.SpillSlotsOffset, l.CalleeSavedOffset)
	assert.Less(t, l.CalleeSavedOffset, l.ReturnAddrOffset)
	assert.Less(t, l.ReturnAddrOffset, l.SavedFPOffset)
	assert.Equal(t, 0, l.Size%16)
}

func TestPrologueAndEpilogueMirrorEachOther(t *testing.T) {
	l := frame.Compute(frame.Request{
		CalleeSaved: []riscv32.Gpr{riscv32.S1, riscv32.S2},
		HasCalls:    true,
	})
	prologue := l.Prologue(true)
	epilogue := l.Epilogue(true)

	require.NotEmpty(t, prologue)
	assert.Equal(t, riscv32.ADDI, prologue[0].Op)
	assert.Equal(t, int32(-l.Size), prologue[0].Imm)

	last := epilogue[len(epilogue)-1]
	assert.Equal(t, riscv32.JALR, last.Op)
	assert.Equal(t, riscv32.Zero, last.Rd)
	assert.Equal(t, riscv32.Ra, last.Rs1)
}

func TestIncomingArgOffsetIsAboveTheFrame(t *testing.T) {
	l := frame.Compute(frame.Request{HasCalls: false})
	assert.Equal(t, l.Size, l.IncomingArgOffset(0))
	assert.Equal(t, l.Size+4, l.IncomingArgOffset(1))
}
