package ppu

import (
	"github.com/kestrelsys/nesgo/pkg/logger"
)

// TileData is an 8x8 pixel tile's two bit-plane bytes for a single row.
type TileData struct {
	LowByte  uint8
	HighByte uint8
}

// SpriteData is one OAM entry's four bytes.
type SpriteData struct {
	Y          uint8
	TileIndex  uint8
	Attributes uint8
	X          uint8
}

// BackgroundTile is a fetched nametable tile plus its resolved attribute
// palette and pattern-table row data.
type BackgroundTile struct {
	TileIndex  uint8
	Attributes uint8
	PatternLo  uint8
	PatternHi  uint8
}

// SpriteInfo pairs a decoded OAM entry with its original OAM slot, needed
// for sprite-0 hit detection.
type SpriteInfo struct {
	SpriteData
	OAMIndex int
}

const (
	SpriteFlipHorizontal = 0x40
	SpriteFlipVertical   = 0x80
	SpritePriority       = 0x20 // 0=in front of background, 1=behind it
	SpritePaletteMask    = 0x03
)

// tileCache memoizes the last fetched background tile so that all 8 pixels
// in a row reuse one nametable/pattern-table fetch instead of 8.
type tileCache struct {
	valid      bool
	tileIndex  uint8
	attributes uint8
	patternLo  uint8
	patternHi  uint8
	tileX      int
	tileY      int
}

// scrollCoords resolves the v-register's coarse/fine scroll state into the
// nametable and attribute-table addresses fetchBackgroundTile needs,
// handling the coarse-scroll nametable-switch wraparound.
func (p *PPU) scrollCoords(tileX, tileY, pixelY int) (nameTableAddr, attrAddr uint16, attrShift uint8, fineY int) {
	coarseX := int(p.v & 0x1F)
	coarseY := int((p.v >> 5) & 0x1F)
	fineY = int((p.v >> 12) & 0x07)

	scrolledTileX := coarseX + tileX
	effectiveTileY := tileY
	if (pixelY + fineY) >= 8 {
		effectiveTileY++ // fine Y overflow rolls into the next tile row
	}
	scrolledTileY := coarseY + effectiveTileY

	nameTableX, nameTableY := 0, 0
	if scrolledTileX >= 32 {
		nameTableX = 1
		scrolledTileX -= 32
	}
	if scrolledTileY >= 30 {
		nameTableY = 1
		scrolledTileY -= 30
	}

	baseNTX := int(p.v>>10) & 1
	baseNTY := int(p.v>>11) & 1
	finalNTX := (baseNTX + nameTableX) % 2
	finalNTY := (baseNTY + nameTableY) % 2

	nameTableIndex := finalNTY*2 + finalNTX
	nameTableBase := uint16(0x2000) + uint16(nameTableIndex)*0x400
	nameTableAddr = nameTableBase + uint16(scrolledTileY*32+scrolledTileX)
	attrAddr = nameTableBase + 0x3C0 + uint16((scrolledTileY/4)*8+(scrolledTileX/4))
	attrShift = uint8(((scrolledTileY & 2) * 2) + ((scrolledTileX&2)/2)*2)
	return nameTableAddr, attrAddr, attrShift, fineY
}

// fetchBackgroundTile fetches the nametable/attribute/pattern data for the
// tile covering screen-relative tile coordinates (tileX, tileY), applying
// the PPU's current scroll position from the v register.
func (p *PPU) fetchBackgroundTile(tileX, tileY, pixelY int) BackgroundTile {
	nameTableAddr, attrAddr, attrShift, fineY := p.scrollCoords(tileX, tileY, pixelY)

	tileIndex := p.readVRAM(nameTableAddr)
	attrByte := p.readVRAM(attrAddr)
	attributes := (attrByte >> attrShift) & 0x03

	patternTableBase := uint16(0x0000)
	if p.PPUCTRL&PPUCTRLBGTable != 0 {
		patternTableBase = 0x1000
	}
	tileAddr := patternTableBase + uint16(tileIndex)*16

	adjustedPixelY := (pixelY + fineY) % 8
	tileRow := uint16(adjustedPixelY)
	patternLo := p.readVRAM(tileAddr + tileRow)
	patternHi := p.readVRAM(tileAddr + tileRow + 8)

	if tileIndex >= 0x10 && tileIndex <= 0x7F && (patternLo != 0 || patternHi != 0) {
		logger.LogPPU("BG Tile: idx=$%02X, addr=$%04X, patternLo=$%02X, patternHi=$%02X, table=$%04X",
			tileIndex, tileAddr, patternLo, patternHi, patternTableBase)
	}

	return BackgroundTile{
		TileIndex:  tileIndex,
		Attributes: attributes,
		PatternLo:  patternLo,
		PatternHi:  patternHi,
	}
}

// getPixelColor extracts the 2-bit color index for one pixel column from a
// tile's two bit-plane bytes (MSB = leftmost pixel).
func getPixelColor(patternLo, patternHi uint8, pixelX int) uint8 {
	bitPos := 7 - pixelX
	lowBit := (patternLo >> bitPos) & 1
	highBit := (patternHi >> bitPos) & 1
	return (highBit << 1) | lowBit
}

// backgroundClipped reports whether background rendering is off, or
// clipped in the leftmost 8 pixels, at screen column x.
func (p *PPU) backgroundClipped(x int) bool {
	if p.PPUMASK&PPUMASKBGShow == 0 {
		return true
	}
	return x < 8 && p.PPUMASK&PPUMASKBGLeft == 0
}

// bgTileCoords converts a screen pixel position into the tile + in-tile
// pixel coordinates fetchBackgroundTile expects, applying fine X scroll.
func (p *PPU) bgTileCoords(x, y int) (tileX, pixelX, tileY, pixelY int) {
	adjustedX := x + int(p.x)
	return adjustedX / 8, adjustedX % 8, y / 8, y % 8
}

func (p *PPU) isBackgroundPixelOpaque(x, y int) bool {
	if p.backgroundClipped(x) {
		return false
	}
	tileX, pixelX, tileY, pixelY := p.bgTileCoords(x, y)
	tile := p.fetchBackgroundTile(tileX, tileY, pixelY)
	return getPixelColor(tile.PatternLo, tile.PatternHi, pixelX) != 0
}

// renderBackgroundPixel resolves the background color at screen position
// (x, y), caching the last fetched tile across the 8 pixels of one row so
// only the tile's column changes trigger a fresh nametable/pattern fetch.
func (p *PPU) renderBackgroundPixel(x, y int) uint32 {
	if p.backgroundClipped(x) {
		return p.PaletteManager.GetBackgroundColor(0, 0)
	}

	tileX, pixelX, tileY, pixelY := p.bgTileCoords(x, y)

	if !p.bgTileCache.valid || p.bgTileCache.tileX != tileX || p.bgTileCache.tileY != tileY {
		tile := p.fetchBackgroundTile(tileX, tileY, pixelY)
		p.bgTileCache = tileCache{
			valid:      true,
			tileIndex:  tile.TileIndex,
			attributes: tile.Attributes,
			patternLo:  tile.PatternLo,
			patternHi:  tile.PatternHi,
			tileX:      tileX,
			tileY:      tileY,
		}
	}

	colorIndex := getPixelColor(p.bgTileCache.patternLo, p.bgTileCache.patternHi, pixelX)
	return p.PaletteManager.GetBackgroundColor(p.bgTileCache.attributes, colorIndex)
}

// fetchSpriteData scans OAM for the (up to 8) sprites present on the given
// scanline, setting the sprite-overflow flag once the 9th is found.
func (p *PPU) fetchSpriteData(scanline int) []SpriteInfo {
	var sprites []SpriteInfo
	spriteHeight := 8
	if p.PPUCTRL&PPUCTRLSpriteSize != 0 {
		spriteHeight = 16
	}

	for i := 0; i < 64; i++ {
		spriteY := int(p.OAM[i*4])
		if scanline < spriteY || scanline >= spriteY+spriteHeight {
			continue
		}

		// The ninth in-range sprite doesn't render; it sets the overflow flag.
		if len(sprites) == 8 {
			p.PPUSTATUS |= PPUSTATUSSpriteOverflow
			break
		}

		sprites = append(sprites, SpriteInfo{
			SpriteData: SpriteData{
				Y:          p.OAM[i*4],
				TileIndex:  p.OAM[i*4+1],
				Attributes: p.OAM[i*4+2],
				X:          p.OAM[i*4+3],
			},
			OAMIndex: i,
		})
	}

	return sprites
}

// spriteTileAddr resolves which pattern-table row backs a sprite pixel,
// handling 8x16 mode's per-sprite pattern-table selection and its
// two-tiles-stacked addressing.
func (p *PPU) spriteTileAddr(sprite SpriteInfo, spriteHeight, pixelY int) uint16 {
	if spriteHeight != 16 {
		patternTableBase := uint16(0x0000)
		if p.PPUCTRL&PPUCTRLSpriteTable != 0 {
			patternTableBase = 0x1000
		}
		return patternTableBase + uint16(sprite.TileIndex)*16 + uint16(pixelY)
	}

	tileIndex := sprite.TileIndex & 0xFE
	if pixelY >= 8 {
		tileIndex++
		pixelY -= 8
	}
	patternTableBase := uint16(0x0000)
	if sprite.TileIndex&1 != 0 {
		patternTableBase = 0x1000
	}
	return patternTableBase + uint16(tileIndex)*16 + uint16(pixelY)
}

// renderSpritePixel returns the highest-priority opaque sprite pixel at
// screen position (x, y), in OAM order (lower index wins ties).
func (p *PPU) renderSpritePixel(x, y int, sprites []SpriteInfo) (color uint32, inFront bool, sprite0Hit bool) {
	if p.PPUMASK&PPUMASKSpriteShow == 0 {
		return 0, false, false
	}
	if x < 8 && p.PPUMASK&PPUMASKSpriteLeft == 0 {
		return 0, false, false
	}

	spriteHeight := 8
	if p.PPUCTRL&PPUCTRLSpriteSize != 0 {
		spriteHeight = 16
	}

	for _, sprite := range sprites {
		spriteX, spriteY := int(sprite.X), int(sprite.Y)
		if x < spriteX || x >= spriteX+8 || y < spriteY || y >= spriteY+spriteHeight {
			continue
		}

		pixelX, pixelY := x-spriteX, y-spriteY
		if sprite.Attributes&SpriteFlipHorizontal != 0 {
			pixelX = 7 - pixelX
		}
		if sprite.Attributes&SpriteFlipVertical != 0 {
			pixelY = (spriteHeight - 1) - pixelY
		}

		tileAddr := p.spriteTileAddr(sprite, spriteHeight, pixelY)
		patternLo := p.readVRAM(tileAddr)
		patternHi := p.readVRAM(tileAddr + 8)

		colorIndex := getPixelColor(patternLo, patternHi, pixelX)
		if colorIndex == 0 {
			continue // transparent, let a lower-priority sprite show through
		}

		palette := sprite.Attributes & SpritePaletteMask
		return p.PaletteManager.GetSpriteColor(palette, colorIndex),
			sprite.Attributes&SpritePriority == 0,
			sprite.OAMIndex == 0
	}

	return 0, false, false
}

// sprite0HitQualifies reports whether the sprite/background overlap at (x,
// y) satisfies all of the PPU's sprite-0 hit preconditions.
func (p *PPU) sprite0HitQualifies(x, y int) bool {
	if x == 255 {
		return false // hardware never reports a hit at the last dot
	}
	if !p.isBackgroundPixelOpaque(x, y) {
		return false
	}
	if p.PPUMASK&PPUMASKSpriteShow == 0 || p.PPUMASK&PPUMASKBGShow == 0 {
		return false
	}
	var bothClippedLeft uint8 = PPUMASKSpriteLeft | PPUMASKBGLeft
	if x < 8 && p.PPUMASK&bothClippedLeft != bothClippedLeft {
		return false
	}
	return true
}

// renderPixel composes the background and sprite layers for the current
// (Cycle, Scanline) into FrameBuffer, updating the sprite-0 hit flag and
// the persistent frame buffer used when a game skips rendering briefly.
func (p *PPU) renderPixel() {
	if p.Scanline < 0 || p.Scanline >= 240 || p.Cycle < 0 || p.Cycle >= 256 {
		return
	}

	x, y := p.Cycle, p.Scanline
	index := y*256 + x
	if index < 0 || index >= len(p.FrameBuffer) {
		return
	}

	renderingEnabled := (p.PPUMASK & (PPUMASKBGShow | PPUMASKSpriteShow)) != 0
	if !renderingEnabled {
		p.FrameBuffer[index] = p.PaletteManager.GetBackgroundColor(0, 0)
		return
	}

	bgColor := p.renderBackgroundPixel(x, y)

	if p.Cycle == 0 {
		p.currentSprites = p.fetchSpriteData(p.Scanline)
	}

	if len(p.currentSprites) == 0 {
		p.FrameBuffer[index] = bgColor
		p.PersistentFrameBuffer[index] = bgColor
		p.renderingOccurred = true
		return
	}

	spriteColor, spriteInFront, sprite0Hit := p.renderSpritePixel(x, y, p.currentSprites)

	finalColor := bgColor
	if spriteColor&0xFF000000 != 0 {
		backdrop := p.PaletteManager.GetBackgroundColor(0, 0) & 0x00FFFFFF
		if spriteInFront || (bgColor&0x00FFFFFF) == backdrop {
			finalColor = spriteColor
		}

		if sprite0Hit && p.PPUSTATUS&PPUSTATUSSprite0Hit == 0 && p.sprite0HitQualifies(x, y) {
			p.PPUSTATUS |= PPUSTATUSSprite0Hit
		}
	}

	p.FrameBuffer[index] = finalColor
	p.PersistentFrameBuffer[index] = finalColor
	p.renderingOccurred = true
}
