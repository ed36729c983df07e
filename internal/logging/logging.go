// Package logging configures the process-wide slog logger for the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and sinks of the logger.
type Options struct {
	Level string
	// File, when set, receives logs through a rotating writer instead of
	// Stderr.
	File string
	// Stderr overrides os.Stderr.
	Stderr io.Writer
}

// ParseLevel maps a config string onto a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init builds a JSON logger, installs it as the slog default and returns it
// with a close function for the file sink.
func Init(opts Options) (*slog.Logger, func() error) {
	var (
		out     io.Writer = opts.Stderr
		closeFn           = func() error { return nil }
	)
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = rotating
		closeFn = rotating.Close
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)}))
	slog.SetDefault(logger)
	return logger, closeFn
}
