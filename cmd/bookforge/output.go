package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// printer writes user-facing status lines. Progress goes to out and is
// suppressed in quiet mode; failures always go to errw. Safe for
// concurrent use.
type printer struct {
	mu    sync.Mutex
	out   io.Writer
	errw  io.Writer
	quiet bool
}

func newPrinter(env *Environment, quiet bool) *printer {
	return &printer{out: env.Stdout, errw: env.Stderr, quiet: quiet}
}

// started announces a build.
func (p *printer) started(kind, input string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", titleStyle.Render("Building "+kind), dimStyle.Render("from "+input))
}

// done reports where the output was written.
func (p *printer) done(kind, path string, elapsed time.Duration) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s %s\n",
		successStyle.Render("✓ "+kind+" written to"),
		path,
		dimStyle.Render(fmt.Sprintf("(%s)", elapsed.Round(time.Millisecond))))
}

// failed prints an error followed by any hint.
func (p *printer) failed(err error, hint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.errw, "%s %v%s\n", errorStyle.Render("✗ error:"), err, hint)
}
