package cpu

import (
	"testing"

	"github.com/kestrelsys/nesgo/pkg/memory"
	"github.com/stretchr/testify/assert"
)

// TestOAMDMAStall_EvenCycleCosts513 verifies the base OAM DMA stall duration.
func TestOAMDMAStall_EvenCycleCosts513(t *testing.T) {
	cpu := createTestCPU()
	cpu.Cycles = 0 // even

	cpu.write(0x4014, 0x02)
	assert.Equal(t, 513, cpu.dmaStall)
}

// TestOAMDMAStall_OddCycleCosts514 verifies the one-cycle penalty on odd start.
func TestOAMDMAStall_OddCycleCosts514(t *testing.T) {
	cpu := createTestCPU()
	cpu.Cycles = 1 // odd

	cpu.write(0x4014, 0x02)
	assert.Equal(t, 514, cpu.dmaStall)
}

// TestOAMDMAStall_FoldsIntoStepCycleCount confirms Step() reports the stall
// as part of the instruction's returned cycle count, then clears it.
func TestOAMDMAStall_FoldsIntoStepCycleCount(t *testing.T) {
	cpu := createTestCPU()
	cpu.Cycles = 0
	cpu.Memory.Write(cpu.PC, 0xEA) // NOP, 2 cycles

	cpu.write(0x4014, 0x02) // simulate the DMA trigger landing mid-instruction

	cycles := cpu.Step()
	assert.Equal(t, 2+513, cycles)
	assert.Equal(t, 0, cpu.dmaStall, "the stall must not be double-counted on the next Step")
}

func TestSetIRQLine_NeverClearsOnItsOwn(t *testing.T) {
	cpu := createTestCPU()

	cpu.SetIRQLine(true)
	assert.True(t, cpu.IRQ)

	// A subsequent call with false must not clear an already-latched request;
	// the line is level-triggered and only handleIRQ acks it.
	cpu.SetIRQLine(false)
	assert.True(t, cpu.IRQ, "SetIRQLine(false) must not clear a pending IRQ")
}

func TestSetIRQLine_ServicedClearsLatchAndVectorsPC(t *testing.T) {
	cpu := createTestCPU()
	mem := memory.New()
	mem.Write(0xFFFE, 0x00)
	mem.Write(0xFFFF, 0x03) // IRQ vector -> $0300
	cpu.Memory = mem
	cpu.P &^= FlagInterrupt // unmask interrupts

	cpu.SetIRQLine(true)
	cycles := cpu.Step()

	assert.Equal(t, 7, cycles)
	assert.False(t, cpu.IRQ, "handleIRQ must clear the latch once serviced")
	assert.Equal(t, uint16(0x0300), cpu.PC)
}

// TestBRK_NMIHijacksVector models an NMI landing during BRK's push sequence:
// the interrupt sequence completes but fetches the NMI vector instead.
func TestBRK_NMIHijacksVector(t *testing.T) {
	cpu := createTestCPU()
	cpu.Memory.Write(0xFFFA, 0x00)
	cpu.Memory.Write(0xFFFB, 0x04) // NMI vector -> $0400
	cpu.Memory.Write(0xFFFE, 0x00)
	cpu.Memory.Write(0xFFFF, 0x05) // IRQ/BRK vector -> $0500

	cpu.NMI = true
	cpu.brk(AddrImplied)

	assert.Equal(t, uint16(0x0400), cpu.PC, "pending NMI replaces the BRK vector")
	assert.False(t, cpu.NMI, "the hijacked NMI is consumed")
}

func TestIRQ_NMIHijacksVector(t *testing.T) {
	cpu := createTestCPU()
	cpu.Memory.Write(0xFFFA, 0x00)
	cpu.Memory.Write(0xFFFB, 0x04)
	cpu.Memory.Write(0xFFFE, 0x00)
	cpu.Memory.Write(0xFFFF, 0x05)

	cpu.NMI = true
	cpu.handleIRQ()

	assert.Equal(t, uint16(0x0400), cpu.PC)
	assert.False(t, cpu.NMI)
}
