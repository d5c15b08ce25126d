// Package generator turns a finished document tree into output files.
//
// Two variants implement Generator: HTML writes a static site with one page
// per document, PDF writes a single book through a Rasterizer. Both read the
// tree without modifying it and share the helpers in this file.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/alnah/bookforge/internal/anchor"
	"github.com/alnah/bookforge/internal/assets"
	"github.com/alnah/bookforge/internal/fileutil"
	"github.com/alnah/bookforge/internal/markdown"
	"github.com/alnah/bookforge/internal/tpl"
	"github.com/alnah/bookforge/internal/tree"
)

// Sentinel errors for output generation.
var (
	ErrWriteOutput    = errors.New("writing output")
	ErrRender         = errors.New("rendering output")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	ErrInvalidPDFOptions = errors.New("invalid PDF options")
)

// Generator renders a document tree into its output directory.
type Generator interface {
	// RenderAssets writes every output file for root and returns the path
	// of the primary output (index.html or the PDF file).
	RenderAssets(ctx context.Context, root *tree.Node, title string) (string, error)
}

// Compile-time interface checks.
var (
	_ Generator = (*HTML)(nil)
	_ Generator = (*PDF)(nil)
)

// Deps are the collaborators shared by both generators.
type Deps struct {
	FS        afero.Fs
	Renderer  *markdown.Renderer
	Templates *tpl.Service
	Assets    assets.Loader
	Logger    *log.Logger
	Workers   int // Concurrent document renders; zero means GOMAXPROCS
}

// withDefaults fills unset fields.
func (d Deps) withDefaults() Deps {
	if d.FS == nil {
		d.FS = afero.NewOsFs()
	}
	if d.Assets == nil {
		d.Assets = assets.NewEmbeddedLoader()
	}
	if d.Templates == nil {
		d.Templates = tpl.New(d.Assets)
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Renderer == nil {
		d.Renderer = markdown.NewRenderer(d.FS, markdown.WithLogger(d.Logger))
	}
	if d.Workers <= 0 {
		d.Workers = runtime.GOMAXPROCS(0)
	}
	return d
}

// Generate creates outDir, including parents, and runs g.
func Generate(ctx context.Context, g Generator, fsys afero.Fs, outDir string, root *tree.Node, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := fileutil.EnsureDir(fsys, outDir); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return g.RenderAssets(ctx, root, title)
}

// documentTitles returns the titles of docs in order.
func documentTitles(docs []*tree.Node) []string {
	titles := make([]string, len(docs))
	for i, d := range docs {
		titles[i] = d.Title
	}
	return titles
}

// pageNames returns one unique slug per document. reserved names are never
// handed out.
func pageNames(docs []*tree.Node, reserved ...string) []string {
	return anchor.Filenames(documentTitles(docs), reserved...)
}

// writeFile writes data to path, wrapping failures in ErrWriteOutput.
func writeFile(fsys afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	return nil
}

// renderError classifies a markdown rendering failure. Image write failures
// are output errors; the rest are rendering errors.
func renderError(path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, markdown.ErrImageCopy) {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrRender, path, err)
}

// stylesheet joins a named stylesheet with the code highlighting rules.
func stylesheet(d Deps, name string) (string, error) {
	css, err := d.Assets.LoadStyle(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	highlight, err := d.Renderer.HighlightCSS()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return css + "\n/* Code highlighting */\n" + highlight, nil
}
