package nes

import (
	"github.com/kestrelsys/nesgo/pkg/apu"
	"github.com/kestrelsys/nesgo/pkg/cartridge"
	"github.com/kestrelsys/nesgo/pkg/cpu"
	"github.com/kestrelsys/nesgo/pkg/input"
	"github.com/kestrelsys/nesgo/pkg/memory"
	"github.com/kestrelsys/nesgo/pkg/ppu"
)

// NES represents the Nintendo Entertainment System
type NES struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Memory    *memory.Memory
	Cartridge *cartridge.Cartridge
	Input     *input.Pair

	Cycles uint64
	Frame  uint64
}

// NewNES creates a new NES instance
func NewNES() *NES {
	nes := &NES{}

	// Initialize components
	nes.Memory = memory.New()
	nes.CPU = cpu.New(nes.Memory)
	nes.PPU = ppu.New(nes.Memory)
	nes.APU = apu.New()
	nes.APU.SetMemory(nes.Memory)
	nes.Input = input.New()

	// Connect components to memory
	nes.Memory.SetPPU(nes.PPU)
	nes.Memory.SetAPU(nes.APU)
	nes.Memory.SetInput(nes.Input)

	return nes
}

// LoadCartridge loads a cartridge into the NES
func (n *NES) LoadCartridge(cart *cartridge.Cartridge) {
	n.Cartridge = cart
	n.Memory.SetCartridge(cart)
	n.PPU.SetCartridge(cart)
}

// Reset resets the NES to initial state
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	n.Cycles = 0
	n.Frame = 0
}

// Step executes one CPU instruction (or interrupt dispatch) and advances
// every other component in lockstep: 3 PPU dots and 1 APU cycle per CPU cycle.
func (n *NES) Step() int {
	cpuCycles := n.CPU.Step()

	// DMC sample fetches during the previous step stalled the CPU; folding
	// them in here keeps the 3:1 PPU and 1:1 APU fan-out ratios exact.
	cpuCycles += n.APU.TakeStolenCycles()

	// PPU runs 3 times faster than CPU
	for i := 0; i < cpuCycles*3; i++ {
		n.PPU.Step()

		// Check if PPU requested NMI
		if n.PPU.NMIRequested {
			n.CPU.TriggerNMI()
			n.PPU.NMIRequested = false
		}

		// Mapper IRQ is acked by the game writing its control register, but we
		// still have to hand it to the CPU as an edge so it isn't missed.
		if n.PPU.IsMapperIRQPending() {
			n.CPU.TriggerIRQ()
			n.PPU.ClearMapperIRQ()
		}
	}

	// APU runs at CPU speed
	for i := 0; i < cpuCycles; i++ {
		n.APU.Step()
	}

	// APU frame counter and DMC are level-triggered IRQ sources, OR-ed onto
	// the same line the mapper edge above feeds.
	n.CPU.SetIRQLine(n.APU.FrameIRQ || n.APU.DMCIRQAsserted())

	n.Cycles += uint64(cpuCycles)
	return cpuCycles
}

// StepFrame executes until frame is complete
func (n *NES) StepFrame() {
	stepCount := 0
	maxSteps := 50000 // Proper limit for normal NES frame processing

	for !n.PPU.FrameComplete {
		n.Step()
		stepCount++

		// Safety check to prevent infinite loops during game freezes
		if stepCount > maxSteps {
			n.PPU.FrameComplete = true
			break
		}
	}

	n.PPU.FrameComplete = false
	// Frame counter is managed by PPU, don't increment here
	n.Frame = n.PPU.Frame
}

// GetInput returns the controller pair
func (n *NES) GetInput() *input.Pair {
	return n.Input
}

// GetFramebuffer returns the current framebuffer from PPU
func (n *NES) GetFramebuffer() []uint8 {
	return n.PPU.GetFramebuffer()
}

// GetFrame returns the current frame number
func (n *NES) GetFrame() uint64 {
	return n.Frame
}

// GetDisplayFramebufferRaw returns the frame to present as 0xAARRGGBB
// pixels, falling back to the PPU's last known-good frame across short
// rendering gaps.
func (n *NES) GetDisplayFramebufferRaw() []uint32 {
	return n.PPU.GetDisplayFrameBuffer()
}

// GetDisplayFramebuffer returns the frame to present as RGBA bytes
func (n *NES) GetDisplayFramebuffer() []uint8 {
	frameBuffer := n.PPU.GetDisplayFrameBuffer()
	rgba := make([]uint8, 256*240*4)
	for i, pixel := range frameBuffer {
		rgba[i*4+0] = uint8(pixel >> 16)
		rgba[i*4+1] = uint8(pixel >> 8)
		rgba[i*4+2] = uint8(pixel)
		rgba[i*4+3] = uint8(pixel >> 24)
	}
	return rgba
}
