package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var L zerolog.Logger

// Init sets up the global logger. The console owns the terminal, so when a
// path is configured everything goes to that file; an empty path falls back
// to stderr (useful for non-TUI runs and tests).
func Init(path string) error {
	var w io.Writer = os.Stderr
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = file
	}
	L = log.Output(zerolog.ConsoleWriter{Out: w})
	return nil
}

func Infof(f string, v ...interface{})  { L.Info().Msgf(f, v...) }
func Errorf(f string, v ...interface{}) { L.Error().Msgf(f, v...) }
