// Package logger provides leveled logging for the stridecal service.
// Log lines go to stderr by default; the threshold is configured once at
// startup from the config file or the --log-level flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a log severity threshold.
type Level int

const (
	// LevelDebug logs everything, including per-request provider calls.
	LevelDebug Level = iota
	// LevelInfo logs flow outcomes and lifecycle events.
	LevelInfo
	// LevelWarn logs recoverable problems (e.g. token persistence failures).
	LevelWarn
	// LevelError logs flow aborts.
	LevelError
)

var (
	mu     sync.RWMutex
	level  Level     = LevelInfo
	output io.Writer = os.Stderr
)

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the minimum severity that will be written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a debug message if the threshold allows it.
func Debug(format string, args ...any) {
	write(LevelDebug, "[DEBUG] ", format, args...)
}

// Info prints an informational message if the threshold allows it.
func Info(format string, args ...any) {
	write(LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a warning message if the threshold allows it.
func Warn(format string, args ...any) {
	write(LevelWarn, "[WARN] ", format, args...)
}

// Error prints an error message if the threshold allows it.
func Error(format string, args ...any) {
	write(LevelError, "[ERROR] ", format, args...)
}

func write(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l >= level {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
