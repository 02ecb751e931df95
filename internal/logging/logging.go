// Package logging configures the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Setup installs the default slog handler: colorized text when out is a
// terminal, JSON otherwise.
func Setup(out io.Writer) {
	var handler slog.Handler
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
