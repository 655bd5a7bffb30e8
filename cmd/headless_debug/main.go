package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kestrelsys/nesgo/pkg/cartridge"
	"github.com/kestrelsys/nesgo/pkg/cartridge/mapper"
	"github.com/kestrelsys/nesgo/pkg/logger"
	"github.com/kestrelsys/nesgo/pkg/nes"
)

// headless_debug drives NES.StepFrame without a window and logs each frame's
// timing and cycle count, PPU state and a pixel histogram after the first
// frame, and MMC3 state at start, every third frame and at the end (CPU
// registers are not dumped). Useful for reproducing conformance-ROM results
// on machines with no SDL2-capable display.
func main() {
	frames := flag.Int("frames", 10, "Number of frames to run")
	dumpLast := flag.Bool("dump-last", true, "Write the final framebuffer to a .raw file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Printf("Usage: %s [options] <rom_file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	romFile := flag.Arg(0)

	if err := logger.Initialize(logger.LogLevelDebug, ""); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	file, err := os.Open(romFile)
	if err != nil {
		log.Fatalf("Failed to open ROM file: %v", err)
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	mapperNumber := (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
	logger.LogInfo("=== Headless Debug Mode ===\n")
	logger.LogInfo("ROM: %s, mapper %d, %d frames\n", romFile, mapperNumber, *frames)

	system := nes.NewNES()
	system.LoadCartridge(cart)
	system.Reset()

	if mapperNumber == 4 {
		printMapper4State(cart.Mapper, 0)
	}

	startTime := time.Now()
	for i := 0; i < *frames; i++ {
		frameStart := time.Now()
		system.StepFrame()

		logger.LogInfo("Frame %d completed in %v (total cycles %d)\n",
			system.GetFrame(), time.Since(frameStart), system.Cycles)

		if i == 0 {
			printPPUState(system)
			printPixelHistogram(system.GetFramebuffer())
		}
		if mapperNumber == 4 && (i+1)%3 == 0 {
			printMapper4State(cart.Mapper, system.GetFrame())
		}
	}
	totalTime := time.Since(startTime)

	logger.LogInfo("=== Final Results ===\n")
	logger.LogInfo("Completed %d frames in %v (avg %v/frame, %d cycles)\n",
		system.GetFrame(), totalTime, totalTime/time.Duration(*frames), system.Cycles)

	if mapperNumber == 4 {
		printMapper4State(cart.Mapper, system.GetFrame())
	}

	if *dumpLast {
		saveFramebuffer(system.GetFramebuffer(),
			fmt.Sprintf("debug_frame_%d.raw", system.GetFrame()))
	}
}

func printMapper4State(m mapper.Mapper, frame uint64) {
	mapper4, ok := m.(*mapper.Mapper4)
	if !ok {
		return
	}

	logger.LogInfo("--- Mapper 4 State (Frame %d) ---\n", frame)
	banks := mapper4.GetCurrentPRGBanks()
	logger.LogInfo("  PRG Banks: [%d, %d, %d, %d] ($8000, $A000, $C000, $E000)\n",
		banks[0], banks[1], banks[2], banks[3])

	debugInfo := mapper4.GetDebugInfo()
	logger.LogInfo("  Bank Select: 0x%02X\n", debugInfo["bankSelect"])
	bankRegs := debugInfo["bankRegisters"].([8]uint8)
	logger.LogInfo("  Bank Registers: [R0=%d, R1=%d, R2=%d, R3=%d, R4=%d, R5=%d, R6=%d, R7=%d]\n",
		bankRegs[0], bankRegs[1], bankRegs[2], bankRegs[3],
		bankRegs[4], bankRegs[5], bankRegs[6], bankRegs[7])
	logger.LogInfo("  PRG Mode: %d, CHR Mode: %d\n", debugInfo["prgMode"], debugInfo["chrMode"])
	logger.LogInfo("  Mirroring: %d (0=Vertical, 1=Horizontal)\n", debugInfo["mirroringMode"])
	logger.LogInfo("  PRG RAM Protect: 0x%02X\n", debugInfo["prgRAMProtect"])
	logger.LogInfo("  IRQ: Counter=%d, Reload=%d, Enabled=%v, Pending=%v\n",
		debugInfo["irqCounter"], debugInfo["irqReloadValue"],
		debugInfo["irqEnabled"], debugInfo["irqPending"])
	logger.LogInfo("  Bank Counts: PRG=%d (8KB), CHR=%d (1KB)\n",
		debugInfo["prgBankCount"], debugInfo["chrBankCount"])
}

func printPPUState(system *nes.NES) {
	logger.LogInfo("  PPU State:\n")
	logger.LogInfo("    Frame: %d, Scanline: %d, Cycle: %d\n",
		system.PPU.Frame, system.PPU.Scanline, system.PPU.Cycle)
	logger.LogInfo("    PPUCTRL: 0x%02X, PPUMASK: 0x%02X, PPUSTATUS: 0x%02X\n",
		system.PPU.PPUCTRL, system.PPU.PPUMASK, system.PPU.PPUSTATUS)
	logger.LogInfo("    Rendering: BG=%v, Sprites=%v\n",
		system.PPU.PPUMASK&0x08 != 0, system.PPU.PPUMASK&0x10 != 0)
	logger.LogInfo("    NMI Enabled: %v, NMI Requested: %v\n",
		system.PPU.PPUCTRL&0x80 != 0, system.PPU.NMIRequested)
}

// printPixelHistogram logs the distribution of palette indices in the
// framebuffer, which distinguishes a blank first frame from real output.
func printPixelHistogram(framebuffer []uint8) {
	pixelStats := make(map[uint8]int)
	nonZero := 0
	for _, p := range framebuffer {
		pixelStats[p]++
		if p != 0 {
			nonZero++
		}
	}

	logger.LogInfo("  Non-zero pixels in framebuffer: %d\n", nonZero)
	logger.LogInfo("  Pixel value distribution: ")
	for value, count := range pixelStats {
		logger.LogInfo("0x%02X:%d ", value, count)
	}
	logger.LogInfo("\n")
}

func saveFramebuffer(framebuffer []uint8, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		logger.LogError("Error creating framebuffer file: %v\n", err)
		return
	}
	defer file.Close()

	if _, err := file.Write(framebuffer); err != nil {
		logger.LogError("Error writing framebuffer: %v\n", err)
		return
	}
	logger.LogInfo("Framebuffer saved to %s (%d bytes)\n", filename, len(framebuffer))
}
