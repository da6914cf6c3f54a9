package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	diagFileName  = "diagnostics_log.txt"
	crashFileName = "crash_log.txt"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	debugOn  bool
	pid      int
	session  string
	dir      string
)

// ResolveDir picks the log directory: an explicit path (from the
// WEATHERWALL_LOG_PATH config key) wins, otherwise the OS default is used.
func ResolveDir(configured string) (string, error) {
	if configured != "" {
		if !filepath.IsAbs(configured) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, configured), nil
		}
		return configured, nil
	}
	return defaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// SetDebug enables Debugf output.
func SetDebug(on bool) {
	logMu.Lock()
	debugOn = on
	logMu.Unlock()
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()
	session = uuid.NewString()

	var err error
	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Str("session", session).Logger()

	logReady = true
	return nil
}

// SetCrashOutput routes fatal runtime errors to crash_log.txt in the log dir.
func SetCrashOutput() {
	f, err := os.OpenFile(filepath.Join(dir, crashFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

// Session returns the id stamped on every line of this run.
func Session() string {
	return session
}

func ready() bool {
	logMu.Lock()
	defer logMu.Unlock()
	return logReady
}

func Info(msg string) {
	if ready() {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if ready() {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...any) {
	logMu.Lock()
	on := logReady && debugOn
	logMu.Unlock()
	if on {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if ready() {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if ready() {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if ready() {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if ready() {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(version, contentURL string) {
	if !ready() {
		return
	}
	diagLog.Info().
		Str("version", version).
		Str("content", contentURL).
		Msg("session_start")
}

func SessionEnd(reason string) {
	if !ready() {
		return
	}
	diagLog.Info().
		Str("reason", reason).
		Msg("session_end")
}

// StateChange records a surface lifecycle transition.
func StateChange(from, to string) {
	if !ready() {
		return
	}
	diagLog.Info().
		Str("from", from).
		Str("to", to).
		Msg("surface_state")
}

// Embedded records the outcome of a desktop embedding attempt.
func Embedded(hwnd, layer uintptr, width, height int32, err error) {
	if !ready() {
		return
	}
	ev := diagLog.Info()
	if err != nil {
		ev = diagLog.Warn().Err(err)
	}
	ev.Uint64("hwnd", uint64(hwnd)).
		Uint64("layer", uint64(layer)).
		Int32("width", width).
		Int32("height", height).
		Msg("desktop_embed")
}

// Command records a bridge command that was delivered or dropped.
func Command(kind string, delivered bool) {
	logMu.Lock()
	on := logReady && debugOn
	logMu.Unlock()
	if !on {
		return
	}
	diagLog.Debug().
		Str("kind", kind).
		Bool("delivered", delivered).
		Msg("bridge_command")
}

// Location records a location acquisition attempt.
func Location(source string, lat, lon float64, ok bool) {
	if !ready() {
		return
	}
	ev := diagLog.Info().Str("source", source).Bool("ok", ok)
	if ok {
		ev = ev.Float64("lat", lat).Float64("lon", lon)
	}
	ev.Msg("location")
}
