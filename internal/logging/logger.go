// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger. Development gets a human
// readable console writer; every other env logs JSON.
func Init(serviceName, env, level string) {
	InitWriter(os.Stdout, serviceName, env, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(out io.Writer, serviceName, env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
