package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/config"
)

// NewLogger creates a structured zerolog.Logger tagged with the service name
// from the config, writing to stdout.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return New(os.Stdout, cfg.ServiceName, cfg.LogLevel)
}

// New builds a logger for an explicit writer. Unknown levels fall back to info.
func New(w io.Writer, service, levelName string) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}

	return ctx.Logger().Level(level)
}
