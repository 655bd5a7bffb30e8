package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapper66Fixture(prgBanks, chrBanks int) *Mapper66 {
	prg := make([]uint8, prgBanks*32768)
	for i := range prg {
		prg[i] = uint8((i / 32768) + 1)
	}
	chr := make([]uint8, chrBanks*8192)
	for i := range chr {
		chr[i] = uint8((i / 8192) + 0x10)
	}
	data := &CartridgeData{PRGROM: prg, CHRROM: chr}
	return NewMapper66(data)
}

func TestMapper66_GxROM(t *testing.T) {
	t.Run("BitFieldsAreSwappedRelativeToColorDreams", func(t *testing.T) {
		m := newMapper66Fixture(4, 4)
		require.Equal(t, uint8(1), m.ReadPRG(0x8000))
		require.Equal(t, uint8(0x10), m.ReadCHR(0x0000))

		m.WritePRG(0x8000, 0x12) // PRG bits 4-5 = 1, CHR bits 0-1 = 2
		assert.Equal(t, uint8(2), m.ReadPRG(0x8000), "bits 4-5 select the PRG bank")
		assert.Equal(t, uint8(0x12), m.ReadCHR(0x0000), "bits 0-1 select the CHR bank")
	})

	t.Run("NoIRQSource", func(t *testing.T) {
		m := newMapper66Fixture(2, 2)
		m.Step()
		assert.False(t, m.IsIRQPending())
	})
}
