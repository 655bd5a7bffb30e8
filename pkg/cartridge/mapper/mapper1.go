package mapper

// Mapper1 (MMC1) exposes its four internal registers through a single
// serial port: the CPU writes one bit per cycle into a 5-bit shift register,
// and the fifth write latches the accumulated value into whichever of the
// four registers the written address selects. A write with bit 7 set resets
// the shift register immediately instead of shifting in a bit.
type Mapper1 struct {
	noIRQ
	cartridge *CartridgeData

	shiftRegister uint8
	shiftCount    uint8

	control  uint8 // $8000-$9FFF
	chrBank0 uint8 // $A000-$BFFF
	chrBank1 uint8 // $C000-$DFFF
	prgBank  uint8 // $E000-$FFFF

	prgMode   uint8 // 0/1: 32KB; 2: first bank fixed; 3: last bank fixed
	chrMode   uint8 // 0: 8KB; 1: two independent 4KB banks
	mirroring uint8 // MMC1's native encoding, see GetMirroringMode
}

func NewMapper1(data *CartridgeData) *Mapper1 {
	return &Mapper1{
		cartridge: data,
		control:   0x0C,
		prgMode:   3,
	}
}

func (m *Mapper1) prgRAMEnabled() bool {
	return m.prgBank&0x10 == 0
}

func (m *Mapper1) ReadPRG(addr uint16) uint8 {
	if addr < 0x8000 {
		if addr >= 0x6000 && m.prgRAMEnabled() {
			return readPRGRAM(m.cartridge.PRGRAM, addr)
		}
		return 0
	}

	offset := addr - 0x8000
	prgSize := len(m.cartridge.PRGROM)
	lastBank := uint8(prgSize/0x4000 - 1)

	var bank uint8
	var bankOffset uint16
	switch m.prgMode {
	case 0, 1: // 32KB mode: bit 0 of the bank register is ignored
		final := uint32(m.prgBank>>1)*0x8000 + uint32(offset)
		if int(final) < prgSize {
			return m.cartridge.PRGROM[final]
		}
		return 0
	case 2: // first 16KB fixed at $8000, switchable bank at $C000
		if offset < 0x4000 {
			if int(offset) < prgSize {
				return m.cartridge.PRGROM[offset]
			}
			return 0
		}
		bank, bankOffset = m.prgBank&0x0F, offset-0x4000
	default: // mode 3: switchable bank at $8000, last 16KB fixed at $C000
		if offset >= 0x4000 {
			bank, bankOffset = lastBank, offset-0x4000
		} else {
			bank, bankOffset = m.prgBank&0x0F, offset
		}
	}

	final := uint32(bank)*0x4000 + uint32(bankOffset)
	if int(final) < prgSize {
		return m.cartridge.PRGROM[final]
	}
	return 0
}

// WritePRG feeds the serial port when targeting a mapper register, or the
// battery-backed work RAM when targeting $6000-$7FFF.
func (m *Mapper1) WritePRG(addr uint16, value uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 && m.prgRAMEnabled() {
			writePRGRAM(m.cartridge.PRGRAM, addr, value)
		}
		return
	}

	if value&0x80 != 0 {
		m.shiftRegister = 0
		m.shiftCount = 0
		m.control |= 0x0C
		m.prgMode = 3
		return
	}

	m.shiftRegister = (m.shiftRegister >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	m.latchRegister(addr, m.shiftRegister)
	m.shiftRegister = 0
	m.shiftCount = 0
}

// latchRegister commits a completed 5-bit serial write into the register
// selected by the address it targeted.
func (m *Mapper1) latchRegister(addr uint16, value uint8) {
	switch {
	case addr <= 0x9FFF:
		m.control = value
		m.mirroring = value & 3
		m.prgMode = (value >> 2) & 3
		m.chrMode = (value >> 4) & 1
	case addr <= 0xBFFF:
		m.chrBank0 = value
	case addr <= 0xDFFF:
		m.chrBank1 = value
	default:
		m.prgBank = value
	}
}

func (m *Mapper1) ReadCHR(addr uint16) uint8 {
	if len(m.cartridge.CHRROM) == 0 {
		if int(addr) < len(m.cartridge.CHRRAM) {
			return m.cartridge.CHRRAM[addr]
		}
		return 0
	}

	var offset uint32
	if m.chrMode == 0 {
		offset = uint32(m.chrBank0>>1)*0x2000 + uint32(addr)
	} else if addr < 0x1000 {
		offset = uint32(m.chrBank0)*0x1000 + uint32(addr)
	} else {
		offset = uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
	}

	if int(offset) < len(m.cartridge.CHRROM) {
		return m.cartridge.CHRROM[offset]
	}
	return 0
}

// WriteCHR only applies to CHR RAM carts; CHR ROM is read-only.
func (m *Mapper1) WriteCHR(addr uint16, value uint8) {
	if int(addr) < len(m.cartridge.CHRRAM) {
		m.cartridge.CHRRAM[addr] = value
	}
}

// Step does nothing: MMC1 has no scanline counter.
func (m *Mapper1) Step() {}

// GetMirroringMode translates the control register's mirroring bits (MMC1
// encoding: 0=single-low, 1=single-high, 2=vertical, 3=horizontal) into the
// PPU's encoding (0=horizontal, 1=vertical, 2=single-low, 3=single-high).
func (m *Mapper1) GetMirroringMode() uint8 {
	switch m.mirroring {
	case 0:
		return 2
	case 1:
		return 3
	case 2:
		return 1
	default:
		return 0
	}
}
