// Package logging configures the process-wide zerolog logger and hands out
// component loggers.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger fields shared across components.
const (
	Component = "component"
	RequestID = "request_id"
	UserID    = "user_id"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Setup replaces the global logger. Development gets a console writer,
// every other environment writes JSON to stdout.
func Setup(env, level string) {
	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// For returns a logger tagged with component=name.
func For(name string) zerolog.Logger {
	return log.With().Str(Component, name).Logger()
}
