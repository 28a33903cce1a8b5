// Package logging builds the zerolog logger shared by the protocol clients
// and the CLI.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"bare/internal/config"
)

// New returns a logger writing to w. Format "json" emits one JSON object per
// line; anything else uses the human readable console writer. An unknown
// level falls back to info.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// SetLevel returns l with the level named by name, keeping l's level when
// name is not a level.
func SetLevel(l zerolog.Logger, name string) zerolog.Logger {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return l
	}
	return l.Level(level)
}
