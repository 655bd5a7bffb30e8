package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangle_400BArmsReloadIndependentOfControlBit(t *testing.T) {
	a := New()

	a.WriteRegister(0x4008, 0x00) // control bit clear, reload value 0
	a.WriteRegister(0x400A, 0x00)
	a.WriteRegister(0x400B, 0x08) // any $400B write arms the reload flag

	require.True(t, a.Triangle.ReloadFlag)

	a.WriteRegister(0x4008, 0x7F) // set linear reload value, control bit clear
	a.Triangle.ReloadFlag = true
	a.stepLinearCounter()

	assert.Equal(t, a.Triangle.LinearReload, a.Triangle.LinearCounter, "quarter-frame reload pulls from LinearReload")
	assert.False(t, a.Triangle.ReloadFlag, "reload flag clears after one reload when control bit is clear")
}

func TestTriangle_ReloadFlagPersistsWhileControlBitSet(t *testing.T) {
	a := New()
	a.Triangle.LinearControl = true
	a.Triangle.ReloadFlag = true
	a.Triangle.LinearReload = 10

	a.stepLinearCounter()
	assert.Equal(t, uint8(10), a.Triangle.LinearCounter)
	assert.True(t, a.Triangle.ReloadFlag, "control bit set keeps the reload flag armed every quarter-frame")
}

func TestDMC_IRQLatchesOnSampleEndAndClearsOnDisableIRQ(t *testing.T) {
	a := New()
	a.dmcIRQPending = true

	assert.True(t, a.DMCIRQAsserted())

	a.WriteRegister(0x4010, 0x00) // IRQ-enable bit clear
	assert.False(t, a.DMCIRQAsserted(), "disabling DMC IRQs clears a pending latch")
}

func TestDMC_IRQClearsWhenChannelDisabled(t *testing.T) {
	a := New()
	a.dmcIRQPending = true

	a.WriteRegister(0x4015, 0x00) // disable DMC (bit 4 clear)
	assert.False(t, a.DMCIRQAsserted())
}

func TestDMC_RestartOnlyReloadsAfterFullDrain(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x10) // sample address
	a.WriteRegister(0x4013, 0x04) // sample length

	a.WriteRegister(0x4015, 0x10) // enable DMC: fully drained (CurrentLength==0) -> reload
	assert.Equal(t, a.DMC.SampleAddress, a.DMC.CurrentAddress)
	assert.Equal(t, a.DMC.SampleLength, a.DMC.CurrentLength)

	// Simulate an in-flight sample, then disable the channel while it is running.
	a.DMC.CurrentLength = 3
	a.DMC.CurrentAddress = 0xBEEF
	a.WriteRegister(0x4015, 0x00) // disabling clears CurrentLength per hardware
	assert.Equal(t, uint16(0), a.DMC.CurrentLength)
}

func TestAPU_StatusRegister_ReportsDMCIRQAndClearsOnlyFrameIRQ(t *testing.T) {
	a := New()
	a.dmcIRQPending = true
	a.FrameIRQ = true

	status := a.ReadRegister(0x4015)
	assert.NotZero(t, status&0x80, "bit 7 reports DMC IRQ")
	assert.NotZero(t, status&0x40, "bit 6 reports frame IRQ")

	assert.False(t, a.FrameIRQ, "reading $4015 clears the frame IRQ flag")
	assert.True(t, a.dmcIRQPending, "reading $4015 does not clear the DMC IRQ flag")
}
