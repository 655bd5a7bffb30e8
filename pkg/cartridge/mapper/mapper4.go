package mapper

import (
	"github.com/kestrelsys/nesgo/pkg/logger"
)

// Mapper4 (MMC3) banks PRG ROM in four 8KB windows and CHR ROM/RAM in six
// windows (two 2KB + four 1KB, or the mirror image), all selected through a
// single bank-select/bank-data register pair. It also carries an IRQ
// counter clocked by PPU A12 rising edges, used by games for split-screen
// and raster effects.
type Mapper4 struct {
	data *CartridgeData

	bankRegisters [8]uint8 // R0-R7
	bankSelect    uint8    // selects which Rn bank-data targets, plus PRG/CHR mode bits

	mirroringMode uint8 // $A000 bit 0, MMC3's native vertical=0/horizontal=1 encoding
	prgRAMProtect uint8

	irqReloadValue uint8
	irqCounter     uint8
	irqEnabled     bool
	irqPending     bool
	irqReloadFlag  bool

	// A12 edge filtering: real MMC3 only clocks the IRQ counter once A12 has
	// been low for at least 3 M2 (CPU) cycles, so wiggling the PPU address
	// bus mid-fetch doesn't double-clock it. a12History is a ring of recent
	// A12 samples used to confirm that low period before honoring a rise.
	a12Low        bool
	a12FilterPass bool
	a12History    [8]bool
	a12HistoryPos int

	prgBankCount uint8
	chrBankCount uint8
}

func NewMapper4(data *CartridgeData) *Mapper4 {
	m := &Mapper4{
		data:          data,
		prgBankCount:  uint8(len(data.PRGROM) / 8192),
		prgRAMProtect: 0x80,
	}

	switch {
	case len(data.CHRROM) > 0:
		m.chrBankCount = uint8(len(data.CHRROM) / 1024)
	case len(data.CHRRAM) > 0:
		m.chrBankCount = uint8(len(data.CHRRAM) / 1024)
	default:
		m.chrBankCount = 8
	}
	logger.LogMapper("MMC3 initialized: prgBanks=%d chrBanks=%d", m.prgBankCount, m.chrBankCount)

	if m.prgBankCount >= 2 {
		m.bankRegisters[6] = m.prgBankCount - 2
		m.bankRegisters[7] = m.prgBankCount - 1
	}
	for i := 0; i < 6; i++ {
		if m.chrBankCount > 0 {
			m.bankRegisters[i] = uint8(i) % m.chrBankCount
		} else {
			m.bankRegisters[i] = uint8(i)
		}
	}
	m.a12Low = true

	return m
}

// prgBank resolves which 8KB PRG bank backs the given CPU address, per the
// fixed/switchable layout that depends on bank-select bit 6.
func (m *Mapper4) prgBank(addr uint16) uint8 {
	swapMode := (m.bankSelect >> 6) & 1

	var bank uint8
	switch {
	case addr < 0xA000: // $8000-$9FFF: R6, or second-to-last when swapped
		if swapMode == 0 {
			bank = m.bankRegisters[6]
		} else {
			bank = m.prgBankCount - 2
		}
	case addr < 0xC000: // $A000-$BFFF: always R7
		bank = m.bankRegisters[7]
	case addr < 0xE000: // $C000-$DFFF: second-to-last, or R6 when swapped
		if swapMode == 0 {
			bank = m.prgBankCount - 2
		} else {
			bank = m.bankRegisters[6]
		}
	default: // $E000-$FFFF: always the last bank, so the reset/IRQ vectors stay put
		bank = m.prgBankCount - 1
	}

	if bank >= m.prgBankCount {
		bank = m.prgBankCount - 1
	}
	return bank
}

func (m *Mapper4) ReadPRG(addr uint16) uint8 {
	if addr >= 0x6000 && addr < 0x8000 {
		if len(m.data.PRGRAM) > 0 && m.prgRAMProtect&0x80 != 0 {
			return m.data.PRGRAM[addr-0x6000]
		}
		return 0
	}
	if addr < 0x8000 {
		return 0
	}

	offset := uint32(m.prgBank(addr))*0x2000 + uint32(addr&0x1FFF)
	if offset < uint32(len(m.data.PRGROM)) {
		return m.data.PRGROM[offset]
	}
	return 0
}

func (m *Mapper4) WritePRG(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		if len(m.data.PRGRAM) > 0 && m.prgRAMProtect&0x80 != 0 && m.prgRAMProtect&0x40 == 0 {
			m.data.PRGRAM[addr-0x6000] = value
		}
		return
	}
	if addr < 0x8000 {
		return
	}

	switch addr & 0xE001 {
	case 0x8000:
		m.bankSelect = value
	case 0x8001:
		m.writeBankData(value)
	case 0xA000:
		m.mirroringMode = value & 1
	case 0xA001:
		m.prgRAMProtect = value
	case 0xC000:
		m.irqReloadValue = value
	case 0xC001:
		m.irqReloadFlag = true
		m.irqCounter = 0
	case 0xE000:
		m.irqEnabled = false
		m.irqPending = false
	case 0xE001:
		m.irqEnabled = true
	}
}

// writeBankData latches a bank number into the Rn register bankSelect's low
// 3 bits currently point at, clamping to the cartridge's actual bank count
// so a buggy or adversarial ROM can't index PRG/CHR out of bounds.
func (m *Mapper4) writeBankData(value uint8) {
	regIndex := m.bankSelect & 0x07
	if regIndex >= 6 {
		m.bankRegisters[regIndex] = value % m.prgBankCount
		return
	}
	if m.chrBankCount > 0 {
		m.bankRegisters[regIndex] = value % m.chrBankCount
	} else {
		m.bankRegisters[regIndex] = value
	}
}

// chrBank resolves which 1KB CHR bank backs the given PPU address. Bank
// registers R0/R1 are 2KB banks (their low bit is ignored); which half of
// the pattern table they cover depends on bank-select bit 7.
func (m *Mapper4) chrBank(addr uint16) uint8 {
	swapMode := (m.bankSelect >> 7) & 1
	lowHalf, highHalf := addr < 0x1000, addr >= 0x1000

	twoKB := func(reg uint8, within uint16) uint8 {
		return (m.bankRegisters[reg] &^ 1) + uint8(within/0x400)
	}
	oneKB := func(within uint16) uint8 {
		return m.bankRegisters[2+within/0x400]
	}

	switch {
	case swapMode == 0 && lowHalf:
		if addr < 0x800 {
			return twoKB(0, addr)
		}
		return twoKB(1, addr-0x800)
	case swapMode == 0 && highHalf:
		return oneKB(addr - 0x1000)
	case swapMode != 0 && lowHalf:
		return oneKB(addr)
	default: // swapMode != 0 && highHalf
		if addr < 0x1800 {
			return twoKB(0, addr-0x1000)
		}
		return twoKB(1, addr-0x1800)
	}
}

func (m *Mapper4) ReadCHR(addr uint16) uint8 {
	if addr >= 0x2000 {
		return 0
	}
	bank := m.chrBank(addr)

	if len(m.data.CHRROM) > 0 {
		if m.chrBankCount > 0 {
			bank %= m.chrBankCount
		}
		offset := uint32(bank)*0x400 + uint32(addr&0x3FF)
		if offset < uint32(len(m.data.CHRROM)) {
			return m.data.CHRROM[offset]
		}
		return 0
	}

	if len(m.data.CHRRAM) > 0 {
		if m.chrBankCount > 0 {
			bank %= m.chrBankCount
		}
		offset := uint32(bank)*0x400 + uint32(addr&0x3FF)
		if offset < uint32(len(m.data.CHRRAM)) {
			return m.data.CHRRAM[offset]
		}
	}
	return 0
}

func (m *Mapper4) WriteCHR(addr uint16, value uint8) {
	if addr >= 0x2000 || len(m.data.CHRRAM) == 0 {
		return
	}

	bank := m.chrBank(addr)
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	offset := uint32(bank)*0x400 + uint32(addr&0x3FF)
	if offset < uint32(len(m.data.CHRRAM)) {
		m.data.CHRRAM[offset] = value
	}
}

// Step clocks the IRQ counter, called once per qualifying PPU A12 rising
// edge (see NotifyA12). A reload-pending write takes priority over the
// normal decrement, and a counter already at zero reloads on the next clock
// instead of decrementing, so with IRQs enabled the interrupt repeats every
// reload+1 clocks until disabled.
func (m *Mapper4) Step() {
	switch {
	case m.irqReloadFlag:
		m.irqCounter = m.irqReloadValue
		m.irqReloadFlag = false
	case m.irqCounter == 0:
		m.irqCounter = m.irqReloadValue
	default:
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
		logger.LogMapper("MMC3 IRQ triggered (reload=%d)", m.irqReloadValue)
	}
}

// NotifyA12 feeds one PPU CHR address into the A12 edge filter. Real MMC3
// only clocks its IRQ counter (via Step) on a rising edge that followed at
// least 3 M2 cycles (9 PPU dots) of A12 held low - short blips from sprite
// fetches crossing pattern-table halves must not count.
func (m *Mapper4) NotifyA12(chrAddr uint16, renderingEnabled bool) {
	if !renderingEnabled {
		return
	}

	a12High := chrAddr&0x1000 != 0
	m.a12History[m.a12HistoryPos] = a12High
	m.a12HistoryPos = (m.a12HistoryPos + 1) % 8

	if !a12High {
		consecutiveLow := 0
		for i := 0; i < 8; i++ {
			if !m.a12History[i] {
				consecutiveLow++
			} else {
				break
			}
		}
		if consecutiveLow >= 6 {
			m.a12FilterPass = true
		}
	} else {
		if m.a12Low && m.a12FilterPass && m.a12HeldLow(3) {
			m.Step()
		}
		m.a12FilterPass = false
	}

	m.a12Low = !a12High
}

// a12HeldLow reports whether the n samples recorded just before the most
// recent one were all low, confirming a clean falling-to-rising transition.
func (m *Mapper4) a12HeldLow(n int) bool {
	for i := 1; i <= n; i++ {
		pos := (m.a12HistoryPos - 1 - i + 8) % 8
		if m.a12History[pos] {
			return false
		}
	}
	return true
}

func (m *Mapper4) IsIRQPending() bool { return m.irqPending }
func (m *Mapper4) ClearIRQ()          { m.irqPending = false }

// GetMirroringMode returns the current mirroring mode. $A000 bit 0 is
// 0=vertical/1=horizontal on real MMC3; translate to the PPU's encoding
// (0=horizontal, 1=vertical).
func (m *Mapper4) GetMirroringMode() uint8 {
	if m.mirroringMode == 0 {
		return 1
	}
	return 0
}

// GetBankRegisters returns the current bank registers for debugging.
func (m *Mapper4) GetBankRegisters() [8]uint8 {
	return m.bankRegisters
}

// GetIRQState returns current IRQ state for debugging.
func (m *Mapper4) GetIRQState() (uint8, uint8, bool, bool) {
	return m.irqCounter, m.irqReloadValue, m.irqEnabled, m.irqPending
}

// GetCurrentPRGBanks returns the current PRG bank configuration for debugging.
func (m *Mapper4) GetCurrentPRGBanks() [4]uint8 {
	return [4]uint8{
		m.prgBank(0x8000),
		m.prgBank(0xA000),
		m.prgBank(0xC000),
		m.prgBank(0xE000),
	}
}

// GetDebugInfo returns detailed debug information for Mapper4.
func (m *Mapper4) GetDebugInfo() map[string]interface{} {
	return map[string]interface{}{
		"bankSelect":     m.bankSelect,
		"bankRegisters":  m.bankRegisters,
		"prgMode":        (m.bankSelect >> 6) & 1,
		"chrMode":        (m.bankSelect >> 7) & 1,
		"mirroringMode":  m.mirroringMode,
		"prgRAMProtect":  m.prgRAMProtect,
		"irqReloadValue": m.irqReloadValue,
		"irqCounter":     m.irqCounter,
		"irqEnabled":     m.irqEnabled,
		"irqPending":     m.irqPending,
		"prgBankCount":   m.prgBankCount,
		"chrBankCount":   m.chrBankCount,
	}
}
