// Package logger provides levelled logging for the rfqx CLI.
// Warnings and errors are always printed. When verbose mode is enabled via
// the --verbose flag, debug and info messages are printed too, so users can
// follow a document through the extraction cascade.
//
// Messages are constant strings followed by key-value pairs:
//
//	logger.Info("attempt scored", "strategy", "docx", "confidence", 0.91)
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonFmt bool
	output  io.Writer = os.Stderr
	backend           = newBackend()
)

// newBackend builds the charm logger for the current settings (caller must hold lock).
func newBackend() *charmlog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	l := charmlog.NewWithOptions(output, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	if jsonFmt {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	backend = newBackend()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between text and JSON log lines.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonFmt = v
	backend = newBackend()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	backend = newBackend()
}

// Debug logs a message if verbose mode is enabled.
func Debug(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Debug(msg, keyvals...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Info(msg, keyvals...)
}

// Warn logs a warning.
func Warn(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Warn(msg, keyvals...)
}

// Error logs an error.
func Error(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Error(msg, keyvals...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && !jsonFmt {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
