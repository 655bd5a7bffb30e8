package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kestrelsys/nesgo/pkg/cartridge"
	"github.com/kestrelsys/nesgo/pkg/cartridge/mapper"
)

// rom_analyzer parses an iNES ROM and prints the header-derived fields the
// cartridge loader extracts, surfacing the same structured load errors.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rom_analyzer <rom_file>")
		os.Exit(1)
	}
	romFile := os.Args[1]

	file, err := os.Open(romFile)
	if err != nil {
		log.Fatalf("Failed to open ROM file: %v", err)
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	h := cart.Header

	fmt.Println("=== ROM Analysis ===")
	fmt.Printf("File: %s\n", romFile)

	fmt.Println("\n=== Header Information ===")
	fmt.Printf("Magic: %s (0x%02X%02X%02X%02X)\n",
		string(h.Magic[:]), h.Magic[0], h.Magic[1], h.Magic[2], h.Magic[3])
	fmt.Printf("PRG ROM Size: %d units (%d KB)\n", h.PRGROMSize, int(h.PRGROMSize)*16)
	fmt.Printf("CHR ROM Size: %d units (%d KB)\n", h.CHRROMSize, int(h.CHRROMSize)*8)
	fmt.Printf("Flags6: 0x%02X  Flags7: 0x%02X  Flags8: 0x%02X  Flags9: 0x%02X  Flags10: 0x%02X\n",
		h.Flags6, h.Flags7, h.Flags8, h.Flags9, h.Flags10)

	mapperNumber := (h.Flags6 >> 4) | (h.Flags7 & 0xF0)
	fmt.Println("\n=== Mapper Information ===")
	fmt.Printf("Mapper Number: %d\n", mapperNumber)

	fmt.Println("\n=== ROM Configuration ===")
	fmt.Printf("Trainer Present: %v\n", h.Flags6&0x04 != 0)
	fmt.Printf("Battery Backed: %v\n", h.Flags6&0x02 != 0)
	fmt.Printf("Four Screen VRAM: %v\n", h.Flags6&0x08 != 0)
	fmt.Printf("Mirroring: %s\n", mirroringName(h.Flags6))

	fmt.Println("\n=== Memory Configuration ===")
	fmt.Printf("PRG ROM: %d bytes (0x%04X)\n", len(cart.PRGROM), len(cart.PRGROM))
	if len(cart.CHRROM) > 0 {
		fmt.Printf("CHR ROM: %d bytes (0x%04X)\n", len(cart.CHRROM), len(cart.CHRROM))
	}
	if len(cart.CHRRAM) > 0 {
		fmt.Printf("CHR RAM: %d bytes (0x%04X)\n", len(cart.CHRRAM), len(cart.CHRRAM))
	}
	if len(cart.PRGRAM) > 0 {
		fmt.Printf("PRG RAM: %d bytes (0x%04X)\n", len(cart.PRGRAM), len(cart.PRGRAM))
	}

	if mapper4, ok := cart.Mapper.(*mapper.Mapper4); ok {
		printMMC3Info(cart, mapper4)
	}

	fmt.Println("\n=== Raw Header Dump ===")
	fmt.Println("00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F")
	headerBytes := []uint8{
		h.Magic[0], h.Magic[1], h.Magic[2], h.Magic[3],
		h.PRGROMSize, h.CHRROMSize, h.Flags6, h.Flags7,
		h.Flags8, h.Flags9, h.Flags10,
		h.Padding[0], h.Padding[1], h.Padding[2], h.Padding[3], h.Padding[4],
	}
	for _, b := range headerBytes {
		fmt.Printf("%02X ", b)
	}
	fmt.Println()
}

func mirroringName(flags6 uint8) string {
	switch {
	case flags6&0x08 != 0:
		return "Four Screen"
	case flags6&0x01 != 0:
		return "Vertical"
	default:
		return "Horizontal"
	}
}

func printMMC3Info(cart *cartridge.Cartridge, mapper4 *mapper.Mapper4) {
	fmt.Println("\n=== MMC3 (Mapper 4) Specific Information ===")

	banks := mapper4.GetCurrentPRGBanks()
	fmt.Println("Initial PRG Bank Configuration:")
	fmt.Printf("  $8000-$9FFF: Bank %d\n", banks[0])
	fmt.Printf("  $A000-$BFFF: Bank %d\n", banks[1])
	fmt.Printf("  $C000-$DFFF: Bank %d (fixed)\n", banks[2])
	fmt.Printf("  $E000-$FFFF: Bank %d (fixed)\n", banks[3])

	fmt.Printf("PRG Banks (8KB each): %d\n", len(cart.PRGROM)/8192)
	if len(cart.CHRROM) > 0 {
		fmt.Printf("CHR Banks (1KB each): %d\n", len(cart.CHRROM)/1024)
	} else {
		fmt.Printf("CHR RAM Banks (1KB each): %d\n", len(cart.CHRRAM)/1024)
	}
}
