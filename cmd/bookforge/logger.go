package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: warnings by default, everything with
// verbose, errors only with quiet. Verbose wins when both are set.
func newLogger(w io.Writer, quiet, verbose bool) *log.Logger {
	level := log.WarnLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05",
	})
}
