// Package logging builds the *slog.Logger every Handle carries: level/
// format configuration and colorized text output when the destination
// is a terminal. It returns an instance rather than mutating
// process-global state — a library embedded in someone else's process
// must not silently repoint their stdout/stderr logging configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the minimum severity a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts "DEBUG"/"INFO"/"WARN"/"ERROR" case-insensitively,
// defaulting to LevelInfo for anything else.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config controls New's output.
type Config struct {
	Level  Level
	Format string // "text" (default) or "json"
	Output io.Writer
}

// New builds a *slog.Logger per cfg, defaulting to a text logger at
// LevelInfo writing to stderr (SPEC_FULL.md §A.1: "defaulting to a text
// logger at INFO level writing to stderr so it never pollutes a caller's
// stdout protocol stream"). Color is enabled only for a text format whose
// Output is a terminal.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(cfg.Level.slogLevel())
	opts := &slog.HandlerOptions{Level: levelVar}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return slog.New(NewColorTextHandler(out, opts, useColor))
}

// Default returns the SDK's out-of-the-box logger: text format, INFO
// level, stderr.
func Default() *slog.Logger {
	return New(Config{Level: LevelInfo})
}
