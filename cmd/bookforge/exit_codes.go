package main

import (
	"errors"

	"github.com/alnah/bookforge"
	"github.com/alnah/bookforge/internal/config"
)

// Exit codes for the bookforge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage.
const (
	ExitSuccess = 0 // Output written
	ExitGeneral = 1 // Generation failed
	ExitUsage   = 2 // Invalid arguments, flags or configuration
)

// ErrUsage marks command-line mistakes: unknown arguments and bad flags.
var ErrUsage = errors.New("invalid usage")

// exitCodeFor returns the exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, bookforge.ErrEmptyInput) ||
		errors.Is(err, bookforge.ErrEmptyOutput) ||
		errors.Is(err, bookforge.ErrInvalidFormat) ||
		errors.Is(err, bookforge.ErrUnknownEncoding) ||
		errors.Is(err, bookforge.ErrInvalidWorkers) ||
		errors.Is(err, bookforge.ErrUnknownStyle) ||
		errors.Is(err, bookforge.ErrInvalidPDFOptions) ||
		errors.Is(err, bookforge.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
