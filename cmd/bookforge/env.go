package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/alnah/bookforge"
	"github.com/alnah/bookforge/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now        func() time.Time
	Stdout     io.Writer
	Stderr     io.Writer
	FS         afero.Fs             // Documents, outputs and config files
	Getenv     func(string) string  // BOOKFORGE_* lookups
	Environ    func() []string      // Unknown-variable detection
	ConfigDirs []string             // Searched for config names
	Rasterizer bookforge.Rasterizer // nil = headless Chrome
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		FS:         afero.NewOsFs(),
		Getenv:     os.Getenv,
		Environ:    os.Environ,
		ConfigDirs: config.SearchDirs(),
	}
}
