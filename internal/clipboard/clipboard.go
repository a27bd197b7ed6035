// Package clipboard writes text to the system clipboard, falling back to an
// OSC 52 escape sequence when no native clipboard is reachable (e.g. over SSH).
package clipboard

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// System is the default clipboard.
type System struct {
	native   func(string) error
	terminal io.Writer
	isTTY    bool
	logger   zerolog.Logger
}

// NewSystem uses the native clipboard and stderr as the OSC 52 terminal.
func NewSystem(logger zerolog.Logger) *System {
	return &System{
		native:   clipboard.WriteAll,
		terminal: os.Stderr,
		isTTY:    isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		logger:   logger,
	}
}

// Write copies text and reports whether any strategy succeeded.
func (s *System) Write(text string) bool {
	if s.native != nil && !clipboard.Unsupported {
		err := s.native(text)
		if err == nil {
			return true
		}
		s.logger.Debug().Err(err).Msg("native clipboard failed, trying OSC 52")
	}

	// OSC 52 only reaches a clipboard when a terminal emulator reads it.
	if !s.isTTY || s.terminal == nil {
		return false
	}
	if _, err := osc52.New(text).WriteTo(s.terminal); err != nil {
		s.logger.Debug().Err(err).Msg("OSC 52 write failed")
		return false
	}
	return true
}
