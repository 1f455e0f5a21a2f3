package main

import (
	"io"

	"github.com/rs/zerolog"
)

// newLogger writes human-friendly lines in debug mode and JSON otherwise.
func newLogger(w io.Writer, mode string) zerolog.Logger {
	if mode == "debug" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func logLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
