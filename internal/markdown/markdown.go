// Package markdown renders Markdown documents to HTML fragments.
//
// Rendering uses goldmark with GFM, footnotes and chroma highlighting.
// Headings carry the same anchor ids as the document outline, and images
// referenced by relative paths are copied next to the rendered output.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "github"

// Sentinel errors for rendering.
var (
	ErrConversion   = errors.New("markdown conversion failed")
	ErrImageCopy    = errors.New("copying image")
	ErrUnknownStyle = errors.New("unknown highlight style")
)

// RenderOptions locates a document on disk. ContentPath is the source
// file; images are resolved against its directory and copied into DestDir.
// Image copying is skipped when either field is empty.
type RenderOptions struct {
	ContentPath string
	DestDir     string
}

// Renderer converts Markdown to HTML fragments.
// A Renderer is safe for concurrent use.
type Renderer struct {
	fs        afero.Fs
	logger    *log.Logger
	style     string
	unsafe    bool
	hardWraps bool
	md        goldmark.Markdown

	mu     sync.Mutex
	copied map[string]bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger receiving image warnings. Default: discard.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHighlightStyle selects the chroma style for HighlightCSS.
func WithHighlightStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.style = name
		}
	}
}

// WithUnsafeHTML passes raw HTML in the Markdown through to the output.
func WithUnsafeHTML(enabled bool) Option {
	return func(r *Renderer) {
		r.unsafe = enabled
	}
}

// WithHardWraps renders single newlines inside paragraphs as <br>.
func WithHardWraps(enabled bool) Option {
	return func(r *Renderer) {
		r.hardWraps = enabled
	}
}

// NewRenderer returns a Renderer reading sources from and writing images to
// fsys.
func NewRenderer(fsys afero.Fs, opts ...Option) *Renderer {
	r := &Renderer{
		fs:     fsys,
		logger: log.New(io.Discard),
		style:  DefaultHighlightStyle,
		copied: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}

	rendererOpts := []renderer.Option{
		html.WithXHTML(),
		renderer.WithNodeRenderers(util.Prioritized(newHeadingRenderer(), 100)),
	}
	if r.hardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if r.unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(r.style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // Colors come from HighlightCSS
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(headingIDs{}, 100)),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return r
}

// Render converts text to an HTML fragment and copies local images from
// beside opts.ContentPath into opts.DestDir, keeping their relative paths.
//
// A missing source image is logged and skipped. Failing to write an image
// is an error wrapping ErrImageCopy.
//
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (r *Renderer) Render(ctx context.Context, text string, opts RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(preprocess(text)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrConversion, err)}
			return
		}
		done <- result{html: convertMarkPlaceholders(buf.String())}
	}()

	var out string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		out = res.html
	}

	if opts.ContentPath == "" || opts.DestDir == "" {
		return out, nil
	}

	srcs, err := imageSources(out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if err := r.copyImages(ctx, filepath.Dir(opts.ContentPath), opts.DestDir, srcs); err != nil {
		return "", err
	}
	return out, nil
}

// HighlightCSS returns the stylesheet for highlighted code blocks.
func (r *Renderer) HighlightCSS() (string, error) {
	style, ok := styles.Registry[r.style]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, r.style)
	}

	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("writing highlight css: %w", err)
	}
	return buf.String(), nil
}

// ValidStyle reports whether name is a registered chroma style.
func ValidStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Styles returns the registered highlight style names, sorted.
func Styles() []string {
	return styles.Names()
}
