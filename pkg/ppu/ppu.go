package ppu

import (
	"github.com/kestrelsys/nesgo/pkg/logger"
	"github.com/kestrelsys/nesgo/pkg/memory"
)

// cartridgeBus is the slice of the Mapper interface the PPU needs: CHR
// access, per-scanline IRQ stepping, and the A12-edge/mirroring hooks MMC3
// and friends rely on.
type cartridgeBus interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	IsIRQPending() bool
	ClearIRQ()
	GetMirroring() int
	NotifyA12(chrAddr uint16, renderingEnabled bool)
}

// PPU is the 2C02 Picture Processing Unit: a 341-dot/262-scanline state
// machine producing one NES frame (256x240) per 89342 PPU cycles.
type PPU struct {
	PPUCTRL   uint8 // $2000
	PPUMASK   uint8 // $2001
	PPUSTATUS uint8 // $2002
	OAMADDR   uint8 // $2003

	v     uint16 // current VRAM address
	t     uint16 // temporary VRAM address / scroll latch
	x     uint8  // fine X scroll
	xTemp uint8  // fine X scroll latch, applied at the start of each scanline
	w     uint8  // $2005/$2006 write-toggle (0=first write, 1=second)

	VRAM [0x4000]uint8
	OAM  [256]uint8

	FrameBuffer           [256 * 240]uint32
	PersistentFrameBuffer [256 * 240]uint32 // last frame with real content, shown across rendering gaps
	renderingOccurred     bool
	lastRenderFrame       uint64

	Cycle         int
	Scanline      int
	Frame         uint64
	FrameComplete bool

	NMIRequested bool

	PaletteManager *PaletteManager
	currentSprites []SpriteInfo
	bgTileCache    tileCache

	readBuffer uint8 // $2007's one-byte read-ahead buffer

	Memory    *memory.Memory
	Cartridge cartridgeBus
}

const (
	PPUCTRLNameTable   = 0x03
	PPUCTRLIncrement   = 0x04
	PPUCTRLSpriteTable = 0x08
	PPUCTRLBGTable     = 0x10
	PPUCTRLSpriteSize  = 0x20
	PPUCTRLMasterSlave = 0x40
	PPUCTRLNMIEnable   = 0x80
)

const (
	PPUMASKGreyscale      = 0x01
	PPUMASKBGLeft         = 0x02
	PPUMASKSpriteLeft     = 0x04
	PPUMASKBGShow         = 0x08
	PPUMASKSpriteShow     = 0x10
	PPUMASKRedEmphasize   = 0x20
	PPUMASKGreenEmphasize = 0x40
	PPUMASKBlueEmphasize  = 0x80
)

const (
	PPUSTATUSSpriteOverflow = 0x20
	PPUSTATUSSprite0Hit     = 0x40
	PPUSTATUSVBlank         = 0x80
)

func New(mem *memory.Memory) *PPU {
	return &PPU{
		Memory:         mem,
		PaletteManager: NewPaletteManager(),
	}
}

func (p *PPU) Reset() {
	p.PPUCTRL = 0
	p.PPUMASK = 0
	p.PPUSTATUS = 0
	p.OAMADDR = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = 0
	p.Cycle = 0
	p.Scanline = 0
	p.FrameComplete = false
	p.renderingOccurred = false // PersistentFrameBuffer survives Reset deliberately
}

func (p *PPU) SetCartridge(cart cartridgeBus) {
	p.Cartridge = cart
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK&(PPUMASKBGShow|PPUMASKSpriteShow) != 0
}

// Step advances the PPU by one dot, rendering a pixel on visible
// scanlines, driving the mapper's A12-edge IRQ timing, and running the
// background-pipeline's t/v scroll-copy and odd-frame skip quirks.
func (p *PPU) Step() {
	p.PaletteManager.SetEmphasis(p.PPUMASK & 0xE0)
	p.PaletteManager.SetGreyscale(p.PPUMASK&PPUMASKGreyscale != 0)

	if p.Scanline >= 0 && p.Scanline < 240 {
		p.renderPixel()
		p.stepMapperA12Timing()
	}

	// The pre-render scanline's idle dot 339 is skipped on odd frames while
	// rendering is enabled, shortening that frame by one PPU cycle.
	if p.Scanline == -1 && p.Cycle == 339 && p.Frame%2 == 1 && p.renderingEnabled() {
		p.Cycle = 340
	}

	p.Cycle++
	if p.Cycle >= 341 {
		p.Cycle = 0
		p.Scanline++

		if p.Scanline == 241 {
			p.PPUSTATUS |= PPUSTATUSVBlank
			if p.PPUCTRL&PPUCTRLNMIEnable != 0 {
				logger.LogPPU("vblank NMI requested at frame %d", p.Frame)
				p.NMIRequested = true
			}
		}

		// Entering the pre-render line clears vblank, sprite-0 hit, and
		// sprite overflow for the next frame.
		if p.Scanline >= 261 {
			p.Scanline = -1
			p.FrameComplete = true
			p.handleFrameCompletion()
			p.Frame++
			p.PPUSTATUS &^= PPUSTATUSVBlank | PPUSTATUSSprite0Hit | PPUSTATUSSpriteOverflow
		}
	}

	p.updateScrollLatches()
}

// updateScrollLatches copies the t-register's scroll fields into v at the
// dots hardware specifies: the vertical component once per frame on the
// pre-render line, the horizontal component at the start of every
// rendered scanline including the pre-render line itself.
func (p *PPU) updateScrollLatches() {
	if !p.renderingEnabled() {
		return
	}

	if p.Scanline == -1 {
		if p.Cycle == 304 {
			p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
		}
		if p.Cycle == 257 {
			p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
		}
	}

	if p.Scanline >= 0 && p.Scanline < 240 && p.Cycle == 0 {
		p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
		p.x = p.xTemp
	}
}

func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002: // PPUSTATUS
		value := p.PPUSTATUS
		p.PPUSTATUS &^= PPUSTATUSVBlank
		p.w = 0
		return value
	case 0x2004: // OAMDATA
		return p.OAM[p.OAMADDR]
	case 0x2007: // PPUDATA
		var value uint8
		if p.v >= 0x3F00 {
			value = p.readVRAM(p.v) // palette reads bypass the read-ahead buffer
			p.readBuffer = p.readVRAM(p.v - 0x1000)
		} else {
			value = p.readBuffer
			p.readBuffer = p.readVRAM(p.v)
		}
		p.incrementVRAMAddress()
		return value
	}
	return 0
}

func (p *PPU) vramStep() uint16 {
	if p.PPUCTRL&PPUCTRLIncrement != 0 {
		return 32
	}
	return 1
}

// incrementVRAMAddress advances v after a $2007 access. While rendering is
// enabled on a visible or pre-render line, the access clocks the scroll
// counters (coarse X and Y together) instead of stepping linearly.
func (p *PPU) incrementVRAMAddress() {
	if p.renderingEnabled() && p.Scanline < 240 {
		p.incrementCoarseX()
		p.incrementY()
		return
	}
	p.v += p.vramStep()
}

// incrementCoarseX steps v's coarse X, wrapping into the adjacent horizontal
// nametable at tile 31.
func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY steps v's fine Y, rolling over into coarse Y at 8, toggling the
// vertical nametable at row 29, and wrapping without a toggle from the
// out-of-bounds rows 30/31.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v >> 5) & 0x1F
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2000: // PPUCTRL
		oldValue := p.PPUCTRL
		p.PPUCTRL = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		// Toggling NMI enable on while vblank is already set fires an
		// immediate NMI rather than waiting for the next vblank edge.
		if value&PPUCTRLNMIEnable != 0 && oldValue&PPUCTRLNMIEnable == 0 &&
			p.PPUSTATUS&PPUSTATUSVBlank != 0 {
			p.NMIRequested = true
		}
	case 0x2001: // PPUMASK
		p.PPUMASK = value
	case 0x2003: // OAMADDR
		p.OAMADDR = value
	case 0x2004: // OAMDATA
		p.OAM[p.OAMADDR] = value
		p.OAMADDR++
	case 0x2005: // PPUSCROLL
		if p.w == 0 {
			p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
			p.xTemp = value & 0x07
			p.w = 1
		} else {
			p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
			p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
			p.w = 0
		}
	case 0x2006: // PPUADDR
		if p.w == 0 {
			p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
			p.w = 1
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
			p.w = 0
		}
	case 0x2007: // PPUDATA
		p.writeVRAM(p.v, value)
		p.incrementVRAMAddress()
	}
}

// notifyMapperA12 forwards a CHR address to the cartridge's A12-edge
// tracker, but only while rendering is actually producing visible
// scanlines — MMC3's IRQ counter must not clock from CPU-driven CHR
// access outside rendering.
func (p *PPU) notifyMapperA12(addr uint16) {
	if p.Cartridge == nil {
		return
	}
	renderingEnabled := p.renderingEnabled()
	if renderingEnabled && p.Scanline >= 0 && p.Scanline < 240 {
		p.Cartridge.NotifyA12(addr, renderingEnabled)
	}
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr = addr % 0x4000

	switch {
	case addr < 0x2000: // pattern table (CHR)
		p.notifyMapperA12(addr)
		if p.Cartridge == nil {
			return 0
		}
		return p.Cartridge.ReadCHR(addr)
	case addr < 0x3F00:
		return p.readNameTable(addr)
	default:
		return p.PaletteManager.ReadPalette(uint8(addr & 0x1F))
	}
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	addr = addr % 0x4000

	switch {
	case addr < 0x2000: // pattern table (CHR)
		p.notifyMapperA12(addr)
		if p.Cartridge != nil {
			p.Cartridge.WriteCHR(addr, value)
		}
	case addr < 0x3F00:
		p.writeNameTable(addr, value)
	default:
		p.PaletteManager.WritePalette(uint8(addr&0x1F), value)
	}
}

// GetFramebuffer converts the 0xAARRGGBB frame buffer to packed RGBA
// bytes, the layout SDL's streaming texture and the headless PNG dumper
// both expect.
func (p *PPU) GetFramebuffer() []uint8 {
	rgba := make([]uint8, 256*240*4)
	for i, pixel := range p.FrameBuffer {
		rgba[i*4+0] = uint8((pixel >> 16) & 0xFF) // R
		rgba[i*4+1] = uint8((pixel >> 8) & 0xFF)  // G
		rgba[i*4+2] = uint8(pixel & 0xFF)         // B
		rgba[i*4+3] = uint8((pixel >> 24) & 0xFF) // A
	}
	return rgba
}

func (p *PPU) readNameTable(addr uint16) uint8 {
	return p.VRAM[p.mirrorNameTableAddress(addr)]
}

func (p *PPU) writeNameTable(addr uint16, value uint8) {
	p.VRAM[p.mirrorNameTableAddress(addr)] = value
}

// mirrorNameTableAddress maps a $2000-$2FFF CPU/PPU nametable address onto
// its physical 2KB-backed slot in VRAM, per the cartridge's current
// mirroring mode (falling back to horizontal if no cartridge is attached).
func (p *PPU) mirrorNameTableAddress(addr uint16) uint16 {
	offset := (addr - 0x2000) & 0x0FFF // $3000-$3EFF mirrors $2000-$2EFF

	mode := 0
	if p.Cartridge != nil {
		mode = p.Cartridge.GetMirroring()
	}

	switch mode {
	case 0: // horizontal: $2000=$2400, $2800=$2C00
		return ((offset>>11)&1)*0x400 + (offset & 0x3FF) + 0x2000
	case 1: // vertical: $2000=$2800, $2400=$2C00
		return (offset & 0x7FF) + 0x2000
	case 2: // single-screen, lower nametable
		return (offset & 0x3FF) + 0x2000
	case 3: // single-screen, upper nametable
		return (offset & 0x3FF) + 0x2400
	default: // four-screen: no mirroring
		return 0x2000 + offset
	}
}

func (p *PPU) IsMapperIRQPending() bool {
	return p.Cartridge != nil && p.Cartridge.IsIRQPending()
}

func (p *PPU) ClearMapperIRQ() {
	if p.Cartridge != nil {
		p.Cartridge.ClearIRQ()
	}
}

// handleFrameCompletion snapshots whether this frame actually rendered
// anything, for GetDisplayFrameBuffer to decide between the live and
// persistent buffers.
func (p *PPU) handleFrameCompletion() {
	if p.renderingOccurred {
		p.lastRenderFrame = p.Frame
	}
	p.renderingOccurred = false
}

// GetDisplayFrameBuffer returns the frame buffer to present: the live
// buffer if rendering happened recently, otherwise the last
// known-good persistent buffer, so that a game pausing rendering briefly
// (e.g. during a loading screen) doesn't flash to black.
func (p *PPU) GetDisplayFrameBuffer() []uint32 {
	framesSinceRender := p.Frame - p.lastRenderFrame
	if framesSinceRender <= 1 || p.renderingOccurred {
		return p.FrameBuffer[:]
	}
	if framesSinceRender < 3600 { // ~1 minute at 60fps
		return p.PersistentFrameBuffer[:]
	}
	return p.FrameBuffer[:]
}

// stepMapperA12Timing drives the mapper's A12-edge IRQ counter from the
// PPU's own background/sprite pattern-table fetch schedule: dots 0-255
// and 320-340 fetch from the background table, dots 256-319 fetch from
// the sprite table, and within each 8-dot tile-fetch group the address is
// sampled at the four points real PPU hardware actually drives the
// pattern-table address bus.
func (p *PPU) stepMapperA12Timing() {
	if p.Cartridge == nil || !p.renderingEnabled() {
		return
	}

	isTileFetchCycle := p.Cycle%8 == 0 || p.Cycle%8 == 2 || p.Cycle%8 == 4 || p.Cycle%8 == 6
	if !isTileFetchCycle {
		return
	}

	switch {
	case p.Cycle <= 255 || (p.Cycle >= 320 && p.Cycle <= 340):
		p.notifyA12Table(p.PPUCTRL & PPUCTRLBGTable >> 4)
	case p.Cycle >= 256 && p.Cycle <= 319:
		p.notifyA12Table(p.PPUCTRL & PPUCTRLSpriteTable >> 3)
	}
}

func (p *PPU) notifyA12Table(tableSelect uint8) {
	a12Addr := uint16(0x0000)
	if tableSelect != 0 {
		a12Addr = 0x1000
	}
	p.Cartridge.NotifyA12(a12Addr, true)
}
