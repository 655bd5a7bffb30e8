package ppu

import "github.com/kestrelsys/nesgo/pkg/logger"

// masterPalette is the NES's fixed 64-color RGB lookup table.
var masterPalette = [64][3]uint8{
	// 0x00-0x0F
	{0x80, 0x80, 0x80}, {0x00, 0x3D, 0xA6}, {0x00, 0x12, 0xB0}, {0x44, 0x00, 0x96},
	{0xA1, 0x00, 0x5E}, {0xC7, 0x00, 0x28}, {0xBA, 0x06, 0x00}, {0x8C, 0x17, 0x00},
	{0x5C, 0x2F, 0x00}, {0x10, 0x45, 0x00}, {0x05, 0x4A, 0x00}, {0x00, 0x47, 0x2E},
	{0x00, 0x41, 0x66}, {0x00, 0x00, 0x00}, {0x05, 0x05, 0x05}, {0x05, 0x05, 0x05},

	// 0x10-0x1F
	{0xC7, 0xC7, 0xC7}, {0x00, 0x77, 0xFF}, {0x21, 0x55, 0xFF}, {0x82, 0x37, 0xFA},
	{0xEB, 0x2F, 0xB5}, {0xFF, 0x29, 0x50}, {0xFF, 0x22, 0x00}, {0xD6, 0x32, 0x00},
	{0xC4, 0x62, 0x00}, {0x35, 0x80, 0x00}, {0x05, 0x8F, 0x00}, {0x00, 0x8A, 0x55},
	{0x00, 0x99, 0xCC}, {0x21, 0x21, 0x21}, {0x09, 0x09, 0x09}, {0x09, 0x09, 0x09},

	// 0x20-0x2F
	{0xFF, 0xFF, 0xFF}, {0x0F, 0xD7, 0xFF}, {0x69, 0xA2, 0xFF}, {0xD4, 0x80, 0xFF},
	{0xFF, 0x45, 0xF3}, {0xFF, 0x61, 0x8B}, {0xFF, 0x88, 0x33}, {0xFF, 0x9C, 0x12},
	{0xFA, 0xBC, 0x20}, {0x9F, 0xE3, 0x0E}, {0x2B, 0xF0, 0x35}, {0x0C, 0xF0, 0xA4},
	{0x05, 0xFB, 0xFF}, {0x5E, 0x5E, 0x5E}, {0x0D, 0x0D, 0x0D}, {0x0D, 0x0D, 0x0D},

	// 0x30-0x3F
	{0xFF, 0xFF, 0xFF}, {0xA6, 0xFC, 0xFF}, {0xB3, 0xEC, 0xFF}, {0xDA, 0xAB, 0xEB},
	{0xFF, 0xA8, 0xF9}, {0xFF, 0xAB, 0xB3}, {0xFF, 0xD2, 0xB0}, {0xFF, 0xEF, 0xA6},
	{0xFF, 0xF7, 0x9C}, {0xD7, 0xFF, 0xB3}, {0xC6, 0xFF, 0xDE}, {0xC4, 0xFF, 0xF6},
	{0xC4, 0xF0, 0xFF}, {0xCC, 0xCC, 0xCC}, {0x3C, 0x3C, 0x3C}, {0x3C, 0x3C, 0x3C},
}

// PaletteManager holds the 32-byte palette RAM and the emphasis bits that
// dim unemphasized color channels.
type PaletteManager struct {
	// $00-$0F: 4 background palettes of 4 colors each.
	// $10-$1F: 4 sprite palettes of 4 colors each; $10/$14/$18/$1C mirror
	// the background backdrop entries at $00/$04/$08/$0C.
	PaletteRAM [32]uint8

	Emphasis  uint8 // PPUMASK bits 5-7
	Greyscale bool  // PPUMASK bit 0
}

// NewPaletteManager builds a palette manager with a simple debug-visible
// default palette rather than all-zero RAM, useful when running a ROM that
// never gets around to writing its own palette.
func NewPaletteManager() *PaletteManager {
	pm := &PaletteManager{}
	for i := range pm.PaletteRAM {
		pm.PaletteRAM[i] = 0x30
	}
	pm.PaletteRAM[0] = 0x0F // black backdrop
	pm.PaletteRAM[1] = 0x30 // white
	pm.PaletteRAM[2] = 0x10 // light gray
	pm.PaletteRAM[3] = 0x00 // dark gray

	logger.LogPPU("PaletteManager initialized with debugging colors")
	return pm
}

// backdropMirror maps the four sprite-palette backdrop-mirror addresses
// ($10/$14/$18/$1C) onto their background counterparts; every other
// address passes through unchanged.
func backdropMirror(addr uint8) uint8 {
	switch addr {
	case 0x10, 0x14, 0x18, 0x1C:
		return addr - 0x10
	default:
		return addr
	}
}

func (pm *PaletteManager) ReadPalette(addr uint8) uint8 {
	return pm.PaletteRAM[backdropMirror(addr&0x1F)]
}

func (pm *PaletteManager) WritePalette(addr uint8, value uint8) {
	resolved := backdropMirror(addr & 0x1F)
	pm.PaletteRAM[resolved] = value & 0x3F
	logger.LogPPU("WritePalette: addr=$%02X resolved=$%02X value=$%02X", addr, resolved, value&0x3F)
}

// GetBackgroundColor resolves a background palette/color-index pair to an
// ARGB color. Color index 0 always reads the universal backdrop entry,
// regardless of which palette was requested.
func (pm *PaletteManager) GetBackgroundColor(palette uint8, colorIndex uint8) uint32 {
	if palette > 3 || colorIndex > 3 {
		return 0xFF000000
	}

	addr := palette*4 + colorIndex
	if colorIndex == 0 {
		addr = 0
	}

	return pm.getARGBColor(pm.ReadPalette(addr))
}

// GetSpriteColor resolves a sprite palette/color-index pair to an ARGB
// color. Color index 0 is always fully transparent.
func (pm *PaletteManager) GetSpriteColor(palette uint8, colorIndex uint8) uint32 {
	if palette > 3 || colorIndex > 3 {
		return 0x00000000
	}
	if colorIndex == 0 {
		return 0x00000000
	}

	addr := 0x10 + palette*4 + colorIndex
	return pm.getARGBColor(pm.ReadPalette(addr))
}

func (pm *PaletteManager) getARGBColor(paletteIndex uint8) uint32 {
	if paletteIndex >= 64 {
		paletteIndex = 0
	}
	if pm.Greyscale {
		paletteIndex &= 0x30 // greyscale keeps only the luminance column
	}

	rgb := masterPalette[paletteIndex]
	r, g, b := rgb[0], rgb[1], rgb[2]
	if pm.Emphasis != 0 {
		r, g, b = pm.applyEmphasis(r, g, b)
	}

	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// applyEmphasis dims the channels PPUMASK's emphasis bits did NOT select.
// Bit 5=red, bit 6=green, bit 7=blue.
func (pm *PaletteManager) applyEmphasis(r, g, b uint8) (uint8, uint8, uint8) {
	dim := func(c uint8, bit uint8) uint8 {
		if pm.Emphasis&bit != 0 {
			return c
		}
		return uint8(float32(c) * 0.75)
	}
	return dim(r, 0x20), dim(g, 0x40), dim(b, 0x80)
}

func (pm *PaletteManager) SetEmphasis(emphasis uint8) {
	pm.Emphasis = emphasis & 0xE0
}

func (pm *PaletteManager) SetGreyscale(on bool) {
	pm.Greyscale = on
}

// GetPaletteDebugInfo reports the resolved background/sprite colors and raw
// palette RAM, for tools like rom_analyzer and the in-GUI debug overlay.
func (pm *PaletteManager) GetPaletteDebugInfo() map[string]interface{} {
	bgPalettes := make([][]uint32, 4)
	spritePalettes := make([][]uint32, 4)
	for palette := 0; palette < 4; palette++ {
		bgPalettes[palette] = make([]uint32, 4)
		spritePalettes[palette] = make([]uint32, 4)
		for color := 0; color < 4; color++ {
			bgPalettes[palette][color] = pm.GetBackgroundColor(uint8(palette), uint8(color))
			spritePalettes[palette][color] = pm.GetSpriteColor(uint8(palette), uint8(color))
		}
	}

	return map[string]interface{}{
		"background_palettes": bgPalettes,
		"sprite_palettes":     spritePalettes,
		"emphasis":            pm.Emphasis,
		"palette_ram":         pm.PaletteRAM,
	}
}
