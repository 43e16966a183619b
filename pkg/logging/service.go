// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Level maps the -v count onto a slog level. Quiet only lets warnings through.
func Level(verbosity int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbosity > 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a tint logger on w. Colours are only used on terminals.
func NewLogger(w io.Writer, verbosity int, quiet bool) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      Level(verbosity, quiet),
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	}))
}
