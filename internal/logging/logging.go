// Package logging builds the zerolog loggers the mee command uses.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to w at the named level. An empty level means
// warn.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if level != "" {
		l, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}
	logger := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return logger, nil
}

// NewConsole creates a human-readable logger writing to w, for terminals.
func NewConsole(w io.Writer, level string) (zerolog.Logger, error) {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return New(cw, level)
}
