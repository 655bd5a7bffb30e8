package gui

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"
	"unsafe"

	"github.com/kestrelsys/nesgo/pkg/logger"
	"github.com/kestrelsys/nesgo/pkg/nes"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	WindowWidth  = 256 * 3 // NES resolution 256x240 scaled 3x
	WindowHeight = 240 * 3
	WindowTitle  = "GoNES - Nintendo Entertainment System Emulator"

	AudioSampleRate = 44100
	AudioBufferSize = 1024
	AudioChannels   = 1
	AudioFormat     = sdl.AUDIO_F32LSB

	TargetFPS = 60.0988 // NTSC NES frame rate: 1789773 / 29780.5 Hz
)

// FrameTime is the NTSC frame period, 1e9/TargetFPS nanoseconds.
var FrameTime = time.Duration(16639267) * time.Nanosecond

// NESGUI drives an SDL2 window, renderer, and audio device against a
// running emulator instance.
type NESGUI struct {
	window        *sdl.Window
	renderer      *sdl.Renderer
	texture       *sdl.Texture
	nes           *nes.NES
	running       bool
	screenshotNum int

	audioDevice sdl.AudioDeviceID
	audioSpec   *sdl.AudioSpec

	lastFrameTime time.Time
	nextFrameTime time.Time

	fpsCounter int
	fpsTimer   time.Time
	currentFPS float64
	showFPS    bool
}

// NewNESGUI opens an SDL window/renderer/texture sized for the NES's
// 256x240 framebuffer and attaches it to nesSystem.
func NewNESGUI(nesSystem *nes.NES) (*NESGUI, error) {
	runtime.LockOSThread() // SDL's event/render calls must stay on one OS thread

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	window, err := sdl.CreateWindow(
		WindowTitle,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		WindowWidth,
		WindowHeight,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	renderer.SetDrawBlendMode(sdl.BLENDMODE_NONE)

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		256,
		240,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	texture.SetBlendMode(sdl.BLENDMODE_NONE)

	gui := &NESGUI{
		window:        window,
		renderer:      renderer,
		texture:       texture,
		nes:           nesSystem,
		running:       true,
		lastFrameTime: time.Now(),
		nextFrameTime: time.Now().Add(FrameTime),
		fpsTimer:      time.Now(),
		showFPS:       true,
	}

	if err := gui.initAudio(); err != nil {
		logger.LogError("audio init failed, continuing without sound: %v", err)
	} else {
		logger.LogInfo("audio initialized")
	}

	return gui, nil
}

// Destroy releases every SDL resource the GUI opened.
func (g *NESGUI) Destroy() {
	if g.audioDevice != 0 {
		sdl.CloseAudioDevice(g.audioDevice)
	}
	if g.texture != nil {
		g.texture.Destroy()
	}
	if g.renderer != nil {
		g.renderer.Destroy()
	}
	if g.window != nil {
		g.window.Destroy()
	}
	sdl.Quit()
}

// Run drives the emulator and presents a frame once per NTSC frame period,
// pacing against wall-clock elapsed time (rather than a fixed per-frame
// sleep) so that Sleep's scheduling jitter cannot accumulate drift.
func (g *NESGUI) Run() {
	startTime := time.Now()
	frameCount := 0

	for g.running {
		g.handleEvents()
		g.update()
		g.render()

		frameCount++
		targetEndTime := startTime.Add(time.Duration(frameCount) * FrameTime)
		if now := time.Now(); now.Before(targetEndTime) {
			time.Sleep(targetEndTime.Sub(now))
		}

		g.lastFrameTime = time.Now()
	}
}

func (g *NESGUI) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			g.running = false
		case *sdl.KeyboardEvent:
			g.handleKeyboard(e)
		}
	}
}

// controllerButton maps a key symbol to its standard-controller button
// index, or (-1, false) if the key isn't bound to a controller button.
func controllerButton(sym sdl.Keycode) (int, bool) {
	switch sym {
	case sdl.K_z:
		return 0, true // A
	case sdl.K_x:
		return 1, true // B
	case sdl.K_a:
		return 2, true // Select
	case sdl.K_s:
		return 3, true // Start
	case sdl.K_UP:
		return 4, true
	case sdl.K_DOWN:
		return 5, true
	case sdl.K_LEFT:
		return 6, true
	case sdl.K_RIGHT:
		return 7, true
	default:
		return 0, false
	}
}

func (g *NESGUI) handleKeyboard(event *sdl.KeyboardEvent) {
	pressed := event.State == sdl.PRESSED

	if button, ok := controllerButton(event.Keysym.Sym); ok {
		g.nes.GetInput().SetButton(0, button, pressed)
		return
	}

	switch event.Keysym.Sym {
	case sdl.K_ESCAPE:
		g.running = false
	case sdl.K_F12:
		if pressed {
			g.saveScreenshot()
		}
	case sdl.K_F3:
		if pressed {
			g.showFPS = !g.showFPS
		}
	}
}

// update runs the emulator for one frame and forwards its audio output to
// the SDL audio device.
func (g *NESGUI) update() {
	g.nes.StepFrame()
	g.queueAudio()
	g.updateFPS()
}

// testPattern renders four vertical color bars used to verify the
// texture's byte order independently of the emulator's own output.
func testPattern() []uint8 {
	data := make([]uint8, 256*240*4)
	bars := [4][4]uint8{
		{5, 5, 5, 255},     // matches the NES's own dark background
		{0, 0, 255, 255},   // blue
		{0, 255, 0, 255},   // green
		{255, 0, 0, 255},   // red
	}
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			idx := (y*256 + x) * 4
			copy(data[idx:idx+4], bars[x/64][:])
		}
	}
	return data
}

// render composes one frame: either the F1 byte-order test pattern or the
// emulator's own framebuffer, scaled up to the window's size.
func (g *NESGUI) render() {
	keys := sdl.GetKeyboardState()
	if keys[sdl.SCANCODE_F1] != 0 {
		data := testPattern()
		g.texture.Update(nil, unsafe.Pointer(&data[0]), 256*4)
	} else {
		framebuffer := g.nes.GetDisplayFramebuffer()
		g.texture.Update(nil, unsafe.Pointer(&framebuffer[0]), 256*4)
	}

	g.renderer.SetDrawColor(0, 0, 0, 255)
	g.renderer.Clear()
	g.renderer.Copy(g.texture, nil, nil)

	if g.showFPS {
		g.updateWindowTitle()
	}

	g.renderer.Present()
}

func (g *NESGUI) saveScreenshot() {
	filename := fmt.Sprintf("screenshot_%03d.png", g.screenshotNum)
	g.screenshotNum++
	g.saveScreenshotWithName(filename)
}

func (g *NESGUI) saveFramebufferAsRaw(filename string, data []uint8) {
	file, err := os.Create(filename)
	if err != nil {
		logger.LogError("failed to create %s: %v", filename, err)
		return
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		logger.LogError("failed to write %s: %v", filename, err)
		return
	}
	logger.LogInfo("saved raw framebuffer: %s (%d bytes)", filename, len(data))
}

// saveScreenshotWithName reads back the renderer's current pixels and
// writes them out as a raw RGBA file (not a real PNG, despite the
// caller's .png-suffixed filename).
func (g *NESGUI) saveScreenshotWithName(filename string) {
	w, h, _ := g.renderer.GetOutputSize()
	pixels := make([]byte, w*h*4)
	if err := g.renderer.ReadPixels(nil, sdl.PIXELFORMAT_RGBA8888, unsafe.Pointer(&pixels[0]), int(w*4)); err != nil {
		logger.LogError("failed to read pixels: %v", err)
		return
	}
	g.saveFramebufferAsRaw(filename, pixels)
}

// initAudio opens an SDL audio device, preferring 32-bit float samples and
// falling back to 16-bit signed integer for hosts whose driver rejects
// float formats.
func (g *NESGUI) initAudio() error {
	want := &sdl.AudioSpec{
		Freq:     AudioSampleRate,
		Format:   AudioFormat,
		Channels: AudioChannels,
		Samples:  AudioBufferSize,
	}

	var have sdl.AudioSpec
	device, err := sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
	if err != nil {
		want.Format = sdl.AUDIO_S16LSB
		device, err = sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
		if err != nil {
			return fmt.Errorf("open audio device: %w", err)
		}
	}

	g.audioDevice = device
	g.audioSpec = &have
	logger.LogInfo("audio device: %dHz %dch format=0x%x buffer=%d", have.Freq, have.Channels, have.Format, have.Samples)
	if have.Freq != AudioSampleRate {
		logger.LogInfo("audio device granted %dHz instead of requested %dHz, pitch will drift", have.Freq, AudioSampleRate)
	}

	sdl.PauseAudioDevice(device, false)
	return nil
}

// encodeFloat32Samples packs APU samples into little-endian 32-bit float
// PCM, the format SDL's AUDIO_F32LSB expects.
func encodeFloat32Samples(samples []float32, gain float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, sample := range samples {
		bits := math.Float32bits(sample * gain)
		data[i*4+0] = byte(bits)
		data[i*4+1] = byte(bits >> 8)
		data[i*4+2] = byte(bits >> 16)
		data[i*4+3] = byte(bits >> 24)
	}
	return data
}

// encodeInt16Samples packs APU samples into little-endian 16-bit signed
// PCM, clamping to the valid range first.
func encodeInt16Samples(samples []float32, gain float32) []byte {
	data := make([]byte, len(samples)*2)
	for i, sample := range samples {
		sample *= gain
		switch {
		case sample > 1.0:
			sample = 1.0
		case sample < -1.0:
			sample = -1.0
		}
		intSample := int16(sample * 32767)
		data[i*2+0] = byte(intSample)
		data[i*2+1] = byte(intSample >> 8)
	}
	return data
}

// queueAudio pushes the APU's accumulated output to SDL, capping the
// queued backlog at two buffers so a slow consumer doesn't build up
// unbounded audio latency.
func (g *NESGUI) queueAudio() {
	if g.audioDevice == 0 {
		return
	}

	apuOutput := g.nes.APU.Output
	if len(apuOutput) == 0 {
		return
	}

	maxBytes := uint32(AudioBufferSize * 4 * 2)
	if sdl.GetQueuedAudioSize(g.audioDevice) < maxBytes {
		const gain = 0.5 // headroom so full-scale APU output doesn't clip
		var audioData []byte
		switch g.audioSpec.Format {
		case sdl.AUDIO_F32LSB:
			audioData = encodeFloat32Samples(apuOutput, gain)
		case sdl.AUDIO_S16LSB:
			audioData = encodeInt16Samples(apuOutput, gain)
		}
		if len(audioData) > 0 {
			sdl.QueueAudio(g.audioDevice, audioData)
		}
	}

	g.nes.APU.Output = g.nes.APU.Output[:0]
}

func (g *NESGUI) updateFPS() {
	g.fpsCounter++

	elapsed := time.Since(g.fpsTimer)
	if elapsed >= 500*time.Millisecond {
		g.currentFPS = float64(g.fpsCounter) / elapsed.Seconds()
		g.fpsCounter = 0
		g.fpsTimer = time.Now()
	}
}

func (g *NESGUI) updateWindowTitle() {
	g.window.SetTitle(fmt.Sprintf("%s - FPS: %.1f", WindowTitle, g.currentFPS))
}
