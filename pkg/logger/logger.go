package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger.
var Log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Log = New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// New builds a logger in the service format writing to out.
func New(out io.Writer) zerolog.Logger {
	return zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the log level. Unknown levels fall back to info.
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		if levelStr != "" {
			Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		}
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}

// UseJSON switches the global logger to plain JSON lines, used outside a terminal.
func UseJSON(out io.Writer) {
	level := Log.GetLevel()
	Log = New(out).Level(level)
}
