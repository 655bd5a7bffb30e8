package cartridge

import (
	"fmt"
	"io"

	"github.com/kestrelsys/nesgo/pkg/cartridge/mapper"
)

// Cartridge owns a loaded ROM's data and a mapper instance that knows how
// to bank it into the CPU/PPU address spaces.
type Cartridge struct {
	PRGROM []uint8
	CHRROM []uint8
	PRGRAM []uint8
	CHRRAM []uint8

	Header    iNESHeader
	Mapper    mapper.Mapper
	Mirroring MirroringMode
}

// iNESHeader is the 16-byte header every .nes file starts with.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // 16KB units
	CHRROMSize uint8 // 8KB units
	Flags6     uint8 // mapper low nibble, mirroring, battery, trainer
	Flags7     uint8 // mapper high nibble, VS/Playchoice, NES 2.0
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

func (h iNESHeader) mapperNumber() uint8 {
	return (h.Flags6 >> 4) | (h.Flags7 & 0xF0)
}

func (h iNESHeader) hasTrainer() bool { return h.Flags6&0x04 != 0 }
func (h iNESHeader) hasBattery() bool { return h.Flags6&0x02 != 0 }
func (h iNESHeader) fourScreen() bool { return h.Flags6&0x08 != 0 }
func (h iNESHeader) vertical() bool   { return h.Flags6&0x01 != 0 }

// MirroringMode is the cartridge's header-declared nametable mirroring;
// mappers that switch mirroring at runtime report their own mode instead
// (see Cartridge.GetMirroring).
type MirroringMode int

const (
	MirroringHorizontal MirroringMode = iota
	MirroringVertical
	MirroringFourScreen
	MirroringSingleScreenA
	MirroringSingleScreenB
)

// LoadFromReader parses an iNES (.nes) file and constructs its mapper.
func LoadFromReader(reader io.Reader) (*Cartridge, error) {
	cart := &Cartridge{}

	if err := cart.readHeader(reader); err != nil {
		return nil, fmt.Errorf("cartridge: read header: %w", err)
	}
	if string(cart.Header.Magic[:]) != "NES\x1A" {
		return nil, fmt.Errorf("cartridge: invalid iNES magic number")
	}

	if cart.Header.hasTrainer() {
		if _, err := io.CopyN(io.Discard, reader, 512); err != nil {
			return nil, fmt.Errorf("cartridge: read trainer: %w", err)
		}
	}

	prgSize := int(cart.Header.PRGROMSize) * 16384
	cart.PRGROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(reader, cart.PRGROM); err != nil {
		return nil, fmt.Errorf("cartridge: read PRG ROM: %w", err)
	}

	if chrSize := int(cart.Header.CHRROMSize) * 8192; chrSize > 0 {
		cart.CHRROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(reader, cart.CHRROM); err != nil {
			return nil, fmt.Errorf("cartridge: read CHR ROM: %w", err)
		}
	} else {
		cart.CHRRAM = make([]uint8, chrRAMSizeFor(cart.Header.mapperNumber()))
	}

	if cart.Header.hasBattery() {
		cart.PRGRAM = make([]uint8, 32768) // some battery-backed carts need the full 32KB, not just 8KB
	}

	cart.Mirroring = cart.Header.initialMirroring()

	var err error
	cart.Mapper, err = mapper.NewMapper(cart.Header.mapperNumber(), &mapper.CartridgeData{
		PRGROM: cart.PRGROM,
		CHRROM: cart.CHRROM,
		PRGRAM: cart.PRGRAM,
		CHRRAM: cart.CHRRAM,
	})
	if err != nil {
		return nil, fmt.Errorf("cartridge: create mapper: %w", err)
	}

	return cart, nil
}

// chrRAMSizeFor picks the CHR RAM size for CHR-ROM-less carts. MMC3 boards
// commonly wire up 32KB of CHR RAM rather than the usual 8KB.
func chrRAMSizeFor(mapperNumber uint8) int {
	if mapperNumber == 4 {
		return 32768
	}
	return 8192
}

func (h iNESHeader) initialMirroring() MirroringMode {
	switch {
	case h.fourScreen():
		return MirroringFourScreen
	case h.vertical():
		return MirroringVertical
	default:
		return MirroringHorizontal
	}
}

func (c *Cartridge) readHeader(reader io.Reader) error {
	raw := make([]uint8, 16)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return err
	}

	copy(c.Header.Magic[:], raw[0:4])
	c.Header.PRGROMSize = raw[4]
	c.Header.CHRROMSize = raw[5]
	c.Header.Flags6 = raw[6]
	c.Header.Flags7 = raw[7]
	c.Header.Flags8 = raw[8]
	c.Header.Flags9 = raw[9]
	c.Header.Flags10 = raw[10]
	copy(c.Header.Padding[:], raw[11:16])
	return nil
}

func (c *Cartridge) ReadPRG(addr uint16) uint8 {
	if c.Mapper == nil {
		return 0
	}
	return c.Mapper.ReadPRG(addr)
}

func (c *Cartridge) WritePRG(addr uint16, value uint8) {
	if c.Mapper != nil {
		c.Mapper.WritePRG(addr, value)
	}
}

func (c *Cartridge) ReadCHR(addr uint16) uint8 {
	if c.Mapper == nil {
		return 0
	}
	return c.Mapper.ReadCHR(addr)
}

func (c *Cartridge) WriteCHR(addr uint16, value uint8) {
	if c.Mapper != nil {
		c.Mapper.WriteCHR(addr, value)
	}
}

// Step advances the mapper's own timing state (bank-switch IRQ counters,
// for the mappers that have one).
func (c *Cartridge) Step() {
	if c.Mapper != nil {
		c.Mapper.Step()
	}
}

func (c *Cartridge) IsIRQPending() bool {
	return c.Mapper != nil && c.Mapper.IsIRQPending()
}

func (c *Cartridge) ClearIRQ() {
	if c.Mapper != nil {
		c.Mapper.ClearIRQ()
	}
}

// a12Notifiable is implemented by mappers that watch the PPU's A12 line for
// scanline IRQ timing (MMC3 and its relatives).
type a12Notifiable interface {
	NotifyA12(chrAddr uint16, renderingEnabled bool)
}

// NotifyA12 forwards PPU A12 line transitions to the mapper, for the
// mappers that use them to clock a scanline IRQ counter.
func (c *Cartridge) NotifyA12(chrAddr uint16, renderingEnabled bool) {
	if m, ok := c.Mapper.(a12Notifiable); ok {
		m.NotifyA12(chrAddr, renderingEnabled)
	}
}

// dynamicMirroring is implemented by mappers (MMC1, MMC3, AxROM, ...) that
// can switch nametable mirroring at runtime instead of it being fixed by
// the cartridge header.
type dynamicMirroring interface {
	GetMirroringMode() uint8
}

// GetMirroring reports the nametable mirroring currently in effect, in the
// PPU's own 0=horizontal/1=vertical/2=single-low/3=single-high encoding.
func (c *Cartridge) GetMirroring() int {
	if m, ok := c.Mapper.(dynamicMirroring); ok {
		return int(m.GetMirroringMode())
	}

	switch c.Mirroring {
	case MirroringVertical:
		return 1
	case MirroringSingleScreenA:
		return 2
	case MirroringSingleScreenB:
		return 3
	case MirroringFourScreen:
		return 4
	default:
		return 0
	}
}
