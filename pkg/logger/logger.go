// Package logger holds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = newLogger(consoleWriter(os.Stdout), zerolog.InfoLevel)
	log.Logger = Log
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Str("service", "spivot").
		Logger()
}

// SetLevel sets the log level. Unknown levels fall back to info.
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil || levelStr == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}

// SetFormat switches between "console" and "json" output on stdout.
func SetFormat(format string) {
	SetOutput(os.Stdout, format)
}

// SetOutput redirects the global logger; "json" writes raw JSON lines.
func SetOutput(out io.Writer, format string) {
	w := consoleWriter(out)
	if strings.EqualFold(format, "json") {
		w = out
	}
	Log = newLogger(w, Log.GetLevel())
	log.Logger = Log
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
