package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mmc1LoadRegister performs the five serial $8000-range writes MMC1 needs to
// latch a 5-bit value into whichever internal register the address selects.
func mmc1LoadRegister(m *Mapper1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		bit := (value >> uint(i)) & 1
		m.WritePRG(addr, bit)
	}
}

func TestMapper1_GetMirroringMode_TranslatesControlBits(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM32KB, CHRRAM: make([]uint8, 8*1024)}
	m := NewMapper1(data)

	cases := []struct {
		controlMirroringBits uint8
		want                 uint8
		name                 string
	}{
		{0, 2, "single-screen-low -> PPU single-screen-lower"},
		{1, 3, "single-screen-high -> PPU single-screen-upper"},
		{2, 1, "vertical -> PPU vertical"},
		{3, 0, "horizontal -> PPU horizontal"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// Control register: mirroring bits are the low 2 bits; keep the
			// rest of the register (PRG/CHR mode) at its current value.
			control := (m.control &^ 0x03) | c.controlMirroringBits
			mmc1LoadRegister(m, 0x8000, control)
			assert.Equal(t, c.want, m.GetMirroringMode())
		})
	}
}

func TestMapper1_ShiftRegisterResetOnHighBitWrite(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM32KB, CHRRAM: make([]uint8, 8*1024)}
	m := NewMapper1(data)

	// Partial load, then a reset write (bit 7 set) must discard it.
	m.WritePRG(0x8000, 0x01)
	m.WritePRG(0x8000, 0x80)

	// A full fresh load must still work correctly afterwards.
	mmc1LoadRegister(m, 0x8000, 0x03) // horizontal mirroring
	assert.Equal(t, uint8(0), m.GetMirroringMode())
}
