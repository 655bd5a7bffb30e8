package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel is a verbosity threshold; a message is emitted only when the
// logger's configured level is at or above the message's own level.
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// subsystem names one of the emulator's independently-toggleable logging
// sources. Each gets its own enable flag because CPU/PPU tracing in
// particular is hot-path and needs to be switched off without recompiling.
type subsystem string

const (
	subsystemCPU    subsystem = "CPU"
	subsystemPPU    subsystem = "PPU"
	subsystemAPU    subsystem = "APU"
	subsystemMapper subsystem = "MAPPER"
)

// Logger writes leveled, subsystem-tagged lines to a single io.Writer. All
// methods are safe for concurrent use: the GUI's render loop and the
// emulation loop can both log from separate goroutines.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	writer  io.Writer
	enabled map[subsystem]bool
}

var global *Logger

// Initialize replaces the package-level logger. Passing an empty filename
// logs to stdout; otherwise a new file is created (truncating any existing
// one), matching os.Create's semantics.
func Initialize(level LogLevel, filename string) error {
	writer := io.Writer(os.Stdout)
	if filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("logger: create %q: %w", filename, err)
		}
		writer = file
	}

	global = &Logger{
		level:  level,
		writer: writer,
		enabled: map[subsystem]bool{
			subsystemCPU:    true,
			subsystemPPU:    false,
			subsystemAPU:    false,
			subsystemMapper: false,
		},
	}
	return nil
}

func setEnabled(s subsystem, on bool) {
	if global == nil {
		return
	}
	global.mu.Lock()
	global.enabled[s] = on
	global.mu.Unlock()
}

func SetCPULogging(enabled bool)    { setEnabled(subsystemCPU, enabled) }
func SetPPULogging(enabled bool)    { setEnabled(subsystemPPU, enabled) }
func SetAPULogging(enabled bool)    { setEnabled(subsystemAPU, enabled) }
func SetMapperLogging(enabled bool) { setEnabled(subsystemMapper, enabled) }

// emit is the one place that formats and writes a line; every Log* helper
// below is a thin, level-gated call into it.
func (l *Logger) emit(minLevel LogLevel, s subsystem, gatedBySubsystem bool, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level < minLevel {
		return
	}
	if gatedBySubsystem && !l.enabled[s] {
		return
	}

	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.writer, "[%s] %s: %s\n", ts, s, fmt.Sprintf(format, args...))
}

// LogCPU traces individual instruction execution; off by default in release
// use since it runs at CPU-cycle frequency.
func LogCPU(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelDebug, subsystemCPU, true, format, args...)
	}
}

// LogPPU traces per-dot PPU register activity.
func LogPPU(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelTrace, subsystemPPU, true, format, args...)
	}
}

// LogAPU traces channel and frame-sequencer activity.
func LogAPU(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelDebug, subsystemAPU, true, format, args...)
	}
}

// LogMapper traces bank-switch and IRQ activity from cartridge mappers.
func LogMapper(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelDebug, subsystemMapper, true, format, args...)
	}
}

// LogInfo, LogError, and LogDebug are ungated by subsystem - they're used
// for emulator-wide lifecycle messages (ROM load, reset, shutdown), not a
// per-component trace.
func LogInfo(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelInfo, "INFO", false, format, args...)
	}
}

func LogError(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelError, "ERROR", false, format, args...)
	}
}

func LogDebug(format string, args ...interface{}) {
	if global != nil {
		global.emit(LogLevelDebug, "DEBUG", false, format, args...)
	}
}

// GetLogLevelFromString parses a command-line/config log-level name,
// defaulting to LogLevelInfo for anything unrecognized.
func GetLogLevelFromString(level string) LogLevel {
	switch level {
	case "off":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	case "trace":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// Close releases the log file, if the logger was writing to one rather than
// to stdout/stderr.
func Close() {
	if global == nil {
		return
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	if file, ok := global.writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		file.Close()
	}
}
