// Package logging sets up the diagnostic log. The TUI owns the terminal, so
// everything log-worthy (normalizer skips, swallowed auto-join failures,
// enrichment fallbacks) goes to a file instead of stderr.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Open returns a logger appending to studyhall.log under dir, plus a close
// func. Logging is best-effort: if the file cannot be opened the returned
// logger discards everything and the client runs without diagnostics.
func Open(dir string) (zerolog.Logger, func() error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), func() error { return nil }
	}
	f, err := os.OpenFile(filepath.Join(dir, "studyhall.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }
	}
	log := zerolog.New(f).Level(level()).With().Timestamp().Logger()
	return log, f.Close
}

func level() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(os.Getenv("STUDYHALL_LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}
