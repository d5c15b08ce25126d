package bookforge

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/alnah/bookforge/internal/assets"
	"github.com/alnah/bookforge/internal/generator"
	"github.com/alnah/bookforge/internal/markdown"
	"github.com/alnah/bookforge/internal/tpl"
	"github.com/alnah/bookforge/internal/tree"
)

// Service builds document trees and renders them.
// A Service is safe for concurrent use; concurrent PDF requests share one
// browser and are printed one at a time.
type Service struct {
	cfg       serviceConfig
	builder   *tree.Builder
	assets    assets.Loader
	templates *tpl.Service

	mu         sync.Mutex
	rasterizer Rasterizer
}

// New creates a Service. Invalid options (unknown encoding or highlight
// style, negative workers, bad page geometry, unusable asset path) are
// reported here rather than on first use.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			fs:             afero.NewOsFs(),
			logger:         log.New(io.Discard),
			encoding:       tree.DefaultOptions().Encoding,
			ignorePatterns: tree.DefaultOptions().IgnorePatterns,
			highlightStyle: markdown.DefaultHighlightStyle,
			timeout:        generator.DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if !markdown.ValidStyle(s.cfg.highlightStyle) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, s.cfg.highlightStyle)
	}
	if err := s.cfg.pdf.Validate(); err != nil {
		return nil, err
	}

	builder, err := tree.NewBuilder(tree.Options{
		Encoding:       s.cfg.encoding,
		IgnorePatterns: s.cfg.ignorePatterns,
		Workers:        s.cfg.workers,
	}, tree.WithFS(s.cfg.fs), tree.WithLogger(s.cfg.logger))
	if err != nil {
		return nil, err
	}
	s.builder = builder

	resolver, err := assets.NewResolver(s.cfg.assetPath)
	if err != nil {
		return nil, err
	}
	s.assets = resolver
	s.templates = tpl.New(resolver)
	s.rasterizer = s.cfg.rasterizer

	return s, nil
}

// Build discovers, loads and orders the documents under input.
// The returned tree is complete and is not modified afterwards.
func (s *Service) Build(ctx context.Context, input string) (*Node, error) {
	if input == "" {
		return nil, ErrEmptyInput
	}
	return s.builder.Build(ctx, input)
}

// Generate builds the tree for req.Input and renders it into req.Output.
// It returns the path of index.html or of the PDF file.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	root, err := s.Build(ctx, req.Input)
	if err != nil {
		return "", err
	}

	docs := len(root.Documents())
	if docs == 0 {
		s.cfg.logger.Warn("no documents found", "input", req.Input)
	}
	s.cfg.logger.Info("generating", "format", req.Format, "documents", docs, "output", req.Output)

	g, err := s.generator(req)
	if err != nil {
		return "", err
	}
	return generator.Generate(ctx, g, s.cfg.fs, req.Output, root, req.title())
}

// generator builds the variant for req. Each run gets its own Markdown
// renderer so image copies are tracked per output directory.
func (s *Service) generator(req Request) (generator.Generator, error) {
	deps := generator.Deps{
		FS:        s.cfg.fs,
		Renderer:  s.renderer(),
		Templates: s.templates,
		Assets:    s.assets,
		Logger:    s.cfg.logger,
		Workers:   s.cfg.workers,
	}

	switch req.Format {
	case FormatHTML:
		return generator.NewHTML(deps, req.Output), nil
	case FormatPDF:
		return generator.NewPDF(deps, req.Output, s.pdfRasterizer(), s.cfg.pdf), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, req.Format)
	}
}

func (s *Service) renderer() *markdown.Renderer {
	return markdown.NewRenderer(s.cfg.fs,
		markdown.WithLogger(s.cfg.logger),
		markdown.WithHighlightStyle(s.cfg.highlightStyle),
		markdown.WithUnsafeHTML(s.cfg.unsafeHTML),
		markdown.WithHardWraps(s.cfg.hardWraps),
	)
}

// pdfRasterizer returns the shared rasterizer, creating the Chrome one on
// first use.
func (s *Service) pdfRasterizer() Rasterizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rasterizer == nil {
		s.rasterizer = generator.NewRodRasterizer(s.cfg.timeout)
	}
	return s.rasterizer
}

// Close releases the browser, if one was started.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rasterizer == nil {
		return nil
	}
	err := s.rasterizer.Close()
	s.rasterizer = nil
	return err
}
