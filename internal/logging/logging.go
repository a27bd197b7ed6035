package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a console logger tagged with app and installs it as the global logger.
// Output goes to w (stderr when nil) so stdout stays free for JSON and MCP frames.
func New(app, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).
		Level(ParseLevel(level)).
		With().Timestamp().Str("app", app).
		Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Notifier logs user-facing notifications. It never blocks the caller on delivery.
type Notifier struct {
	Logger zerolog.Logger
}

// Notify logs msg at info level.
func (n Notifier) Notify(msg string) {
	n.Logger.Info().Str("kind", "notification").Msg(msg)
}
