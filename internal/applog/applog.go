// Package applog provides file-based logging for trustee processes. The TUI
// and the resume flow own the terminal, so diagnostics go to a log file
// instead of stdout/stderr; server and CLI code share the same logger so one
// file tells the whole story of a run.
package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes timestamped key-value lines to a file. The zero value and a
// nil *Logger are valid no-op loggers, so components can hold one
// unconditionally and callers opt in by wiring a real file.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	enabled bool
}

// Log is the process-wide logger. Enable it with Init; until then every
// method is a no-op.
var (
	Log     = &Logger{}
	logOnce sync.Once
)

// Init points the process-wide logger at path, creating parent directories
// as needed. An empty path leaves logging disabled. Safe to call more than
// once; only the first call with a non-empty path takes effect.
func Init(path string) error {
	if path == "" {
		return nil
	}

	var initErr error
	logOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			initErr = err
			return
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			initErr = err
			return
		}
		Log.file = f
		Log.enabled = true
		Log.Info("log opened", "path", path, "pid", os.Getpid())
	})
	return initErr
}

// New returns an independent logger appending to path. Used by tests and by
// components that want a file of their own; most code shares Log.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logger{file: f, enabled: true}, nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Enabled reports whether lines are actually written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Writer exposes the log file as an io.Writer for libraries that take one.
// Returns io.Discard while disabled.
func (l *Logger) Writer() io.Writer {
	if !l.Enabled() || l.file == nil {
		return io.Discard
	}
	return l.file
}

func (l *Logger) log(level string, msg string, keyvals ...any) {
	if !l.Enabled() || l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05.000"), level, msg)
	for i := 0; i < len(keyvals)-1; i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}

	fmt.Fprintln(l.file, line)
	l.file.Sync() // diagnostics must survive a crash
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) { l.log("DEBUG", msg, keyvals...) }

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) { l.log("INFO", msg, keyvals...) }

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) { l.log("WARN", msg, keyvals...) }

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) { l.log("ERROR", msg, keyvals...) }

// Timed logs the duration of an operation. Usage:
//
//	defer applog.Log.Timed("list projects")()
func (l *Logger) Timed(operation string) func() {
	if !l.Enabled() {
		return func() {}
	}
	start := time.Now()
	l.Debug(operation, "status", "started")
	return func() {
		l.Debug(operation, "status", "completed", "duration", time.Since(start))
	}
}
