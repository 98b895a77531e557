// Package logging builds the service's zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamilpajak/wordfreq/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to the outputs selected by cfg.Mode.
// Unknown modes fall back to the console.
func New(cfg config.LogConfig) zerolog.Logger {
	return newWithConsole(cfg, os.Stdout)
}

func newWithConsole(cfg config.LogConfig, console io.Writer) zerolog.Logger {
	var writers []io.Writer
	switch strings.ToLower(cfg.Mode) {
	case "file":
		writers = append(writers, fileWriter(cfg, console))
	case "both":
		writers = append(writers, consoleWriter(cfg.JSON, console), fileWriter(cfg, console))
	default:
		writers = append(writers, consoleWriter(cfg.JSON, console))
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Name != "" {
		ctx = ctx.Str("app", cfg.Name)
	}
	return ctx.Logger()
}

func consoleWriter(useJSON bool, out io.Writer) io.Writer {
	if useJSON {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
}

// fileWriter returns a rotating file writer, or the console if the log
// directory cannot be created.
func fileWriter(cfg config.LogConfig, fallback io.Writer) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return fallback
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
