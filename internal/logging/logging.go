// Package logging configures structured logging for the host shell.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/config"
)

// Setup builds the root logger. Interactive runs get a console writer on
// stderr; the host also appends JSON lines to ~/.deskmate/logs/host.log so
// crashes that never reach a terminal are still diagnosable.
func Setup(verbose bool) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	writers := []io.Writer{console}
	if f, err := openLogFile(); err == nil {
		writers = append(writers, f)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, nil
}

// ForComponent returns a child logger tagged with the component name.
func ForComponent(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// openLogFile opens the host log file for appending, rotating it out of the
// way once it grows past 10 MB.
func openLogFile() (*os.File, error) {
	if err := config.EnsureGlobalLogsDir(); err != nil {
		return nil, err
	}
	dir, err := config.GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "host.log")
	if fi, err := os.Stat(path); err == nil && fi.Size() > 10*1024*1024 {
		rotated := filepath.Join(dir, fmt.Sprintf("host-%s.log", time.Now().UTC().Format("20060102-150405")))
		_ = os.Rename(path, rotated)
	}

	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
