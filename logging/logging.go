// ABOUTME: Structured logger construction from config
// ABOUTME: JSON for unattended runs, console output for interactive use
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harperreed/tend/config"
)

// New returns a logger writing to w. A nil writer means stderr.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup builds the logger and installs it as the package-level default.
func Setup(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	logger := New(cfg, w)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}
