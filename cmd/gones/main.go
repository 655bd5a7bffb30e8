package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kestrelsys/nesgo/pkg/cartridge"
	"github.com/kestrelsys/nesgo/pkg/gui"
	"github.com/kestrelsys/nesgo/pkg/logger"
	"github.com/kestrelsys/nesgo/pkg/nes"
)

func main() {
	var (
		logLevel   = flag.String("log-level", "info", "Log level (off, error, warn, info, debug, trace)")
		logFile    = flag.String("log-file", "", "Log file path (empty for stdout)")
		cpuLog     = flag.Bool("cpu-log", false, "Enable CPU instruction logging")
		ppuLog     = flag.Bool("ppu-log", false, "Enable PPU logging")
		apuLog     = flag.Bool("apu-log", false, "Enable APU logging")
		mapperLog  = flag.Bool("mapper-log", false, "Enable mapper logging")
		headless   = flag.Bool("headless", false, "Run without a window for testing")
		testFrames = flag.Int("test-frames", 600, "Number of frames to run in headless mode")
	)

	flag.Usage = func() {
		fmt.Printf("Usage: %s [options] <rom_file>\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println("\nControls:")
		fmt.Println("  Z - A button")
		fmt.Println("  X - B button")
		fmt.Println("  A - Select")
		fmt.Println("  S - Start")
		fmt.Println("  Arrow keys - D-pad")
		fmt.Println("  ESC - Quit")
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	romFile := flag.Arg(0)

	level := logger.GetLogLevelFromString(*logLevel)
	if err := logger.Initialize(level, *logFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.SetCPULogging(*cpuLog)
	logger.SetPPULogging(*ppuLog)
	logger.SetAPULogging(*apuLog)
	logger.SetMapperLogging(*mapperLog)

	system, err := bootSystem(romFile)
	if err != nil {
		logger.LogError("%v", err)
		log.Fatalf("%v", err)
	}

	if *headless {
		runHeadless(system, *testFrames)
		return
	}

	nesGUI, err := gui.NewNESGUI(system)
	if err != nil {
		logger.LogError("Failed to create GUI: %v", err)
		log.Fatalf("Failed to create GUI: %v", err)
	}
	defer nesGUI.Destroy()

	logger.LogInfo("Starting emulator...")
	nesGUI.Run()
	logger.LogInfo("Emulator stopped")
}

// bootSystem loads the ROM at path and returns a reset NES with it inserted.
func bootSystem(path string) (*nes.NES, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM file: %w", err)
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	logger.LogInfo("Loaded ROM: %s", filepath.Base(path))
	logger.LogInfo("Mapper: %d", (cart.Header.Flags6>>4)|(cart.Header.Flags7&0xF0))
	logger.LogInfo("PRG ROM: %d KB", len(cart.PRGROM)/1024)
	if len(cart.CHRROM) > 0 {
		logger.LogInfo("CHR ROM: %d KB", len(cart.CHRROM)/1024)
	} else {
		logger.LogInfo("CHR RAM: %d KB", len(cart.CHRRAM)/1024)
	}

	system := nes.NewNES()
	system.LoadCartridge(cart)
	system.Reset()
	return system, nil
}

func runHeadless(system *nes.NES, maxFrames int) {
	logger.LogInfo("Starting headless mode for %d frames", maxFrames)

	startTime := time.Now()
	for frame := 0; frame < maxFrames; frame++ {
		system.StepFrame()
	}
	logger.LogInfo("Headless execution completed in %v", time.Since(startTime))

	analyzeFrameBuffer(system.GetDisplayFramebufferRaw(), maxFrames-1)
}

// analyzeFrameBuffer logs a color histogram of the final frame, enough to
// tell a blank screen from actual rendering without a window.
func analyzeFrameBuffer(frameBuffer []uint32, frame int) {
	pixelCounts := make(map[uint32]int)
	for _, pixel := range frameBuffer {
		pixelCounts[pixel]++
	}
	totalPixels := len(frameBuffer)

	logger.LogInfo("Frame %d analysis:", frame)
	logger.LogInfo("  Total pixels: %d", totalPixels)
	logger.LogInfo("  Unique colors: %d", len(pixelCounts))

	backdrop := frameBuffer[0]
	nonBackdrop := 0
	for color, count := range pixelCounts {
		percentage := float64(count) / float64(totalPixels) * 100
		if percentage > 1.0 {
			logger.LogInfo("  Color 0x%08X: %d pixels (%.1f%%)", color, count, percentage)
		}
		if color != backdrop {
			nonBackdrop += count
		}
	}

	if nonBackdrop > 0 {
		logger.LogInfo("  Non-backdrop pixels: %d (%.1f%%)",
			nonBackdrop, float64(nonBackdrop)/float64(totalPixels)*100)
	} else {
		logger.LogInfo("  All pixels are the backdrop color")
	}
}
