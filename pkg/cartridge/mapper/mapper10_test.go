package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapper10Fixture(prgBanks, chrBanks int) *Mapper10 {
	prg := make([]uint8, prgBanks*16384)
	for i := range prg {
		prg[i] = uint8((i / 16384) + 1)
	}
	chr := make([]uint8, chrBanks*4096)
	for i := range chr {
		chr[i] = uint8((i / 4096) + 0x10)
	}
	data := &CartridgeData{PRGROM: prg, CHRROM: chr}
	return NewMapper10(data)
}

func TestMapper10_MMC4(t *testing.T) {
	t.Run("OneFixedBankAboveSwitchable", func(t *testing.T) {
		m := newMapper10Fixture(4, 4)
		require.Equal(t, uint8(4), m.ReadPRG(0xC000), "top 16KB is fixed to the last bank")

		m.WritePRG(0xA000, 0x01)
		assert.Equal(t, uint8(2), m.ReadPRG(0x8000))
		assert.Equal(t, uint8(4), m.ReadPRG(0xC000), "fixed bank unaffected by switch")
	})

	t.Run("CHRLatchTogglesOnTileFetch", func(t *testing.T) {
		m := newMapper10Fixture(4, 4)
		m.WritePRG(0xB000, 0x00)
		m.WritePRG(0xC000, 0x01)

		assert.Equal(t, uint8(0x10), m.ReadCHR(0x0000))
		m.ReadCHR(0x0FE8)
		assert.Equal(t, uint8(0x11), m.ReadCHR(0x0000))
		m.ReadCHR(0x0FD8)
		assert.Equal(t, uint8(0x10), m.ReadCHR(0x0000))
	})

	t.Run("MirroringBit", func(t *testing.T) {
		m := newMapper10Fixture(4, 4)
		assert.Equal(t, uint8(1), m.GetMirroringMode())
		m.WritePRG(0xF000, 0x01)
		assert.Equal(t, uint8(0), m.GetMirroringMode())
	})
}
