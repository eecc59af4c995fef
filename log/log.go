// Package log configures the process-wide zerolog logger.
package log

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Setup configures the global logger. Invalid levels fall back to info;
// pretty enables the human console writer for local development.
func Setup(level string, pretty bool) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if pretty {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err != nil {
		zlog.Warn().
			Str("configured_log_level", level).
			Str("fallback_log_level", parsed.String()).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
}
