// Package logger provides the process-wide structured logger.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config for logger
type Config struct {
	Level   string
	Service string
	Pretty  bool
}

var (
	base zerolog.Logger
	once sync.Once
)

// Init initializes the default logger. Safe to call more than once; only
// the first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		service := cfg.Service
		if service == "" {
			service = "nutri"
		}

		var out = os.Stdout
		zerolog.TimeFieldFormat = time.RFC3339Nano

		logger := zerolog.New(out)
		if cfg.Pretty {
			logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
		}
		base = logger.Level(level).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// Default returns the default logger.
func Default() zerolog.Logger {
	Init(Config{Level: "info"})
	return base
}

// Component returns a logger scoped to one component.
func Component(name string) zerolog.Logger {
	return Default().With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
