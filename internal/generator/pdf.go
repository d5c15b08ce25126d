package generator

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/bookforge/internal/anchor"
	"github.com/alnah/bookforge/internal/assets"
	"github.com/alnah/bookforge/internal/markdown"
	"github.com/alnah/bookforge/internal/tree"
)

// PDF writes every document of the tree into a single book, one chapter per
// document, and prints it through a Rasterizer.
type PDF struct {
	deps       Deps
	outDir     string
	rasterizer Rasterizer
	opts       PDFOptions
}

// NewPDF returns a PDF generator writing into outDir. The caller owns r and
// closes it.
func NewPDF(deps Deps, outDir string, r Rasterizer, opts PDFOptions) *PDF {
	return &PDF{
		deps:       deps.withDefaults(),
		outDir:     outDir,
		rasterizer: r,
		opts:       opts.withDefaults(),
	}
}

type chapterData struct {
	ID      string
	Title   string
	Content template.HTML
}

type bookTOCData struct {
	Chapters []chapterData
}

type bookData struct {
	Title    string
	CSS      template.CSS
	TOC      template.HTML
	Chapters template.HTML
}

// OutputPath returns where the book for title is written.
func (p *PDF) OutputPath(title string) string {
	return filepath.Join(p.outDir, anchor.Filename(title)+".pdf")
}

// RenderAssets renders every chapter, assembles the book and writes
// <slug(title)>.pdf. Images are copied into the output directory first so
// the browser can resolve them next to the intermediate HTML.
func (p *PDF) RenderAssets(ctx context.Context, root *tree.Node, title string) (string, error) {
	if err := p.opts.Validate(); err != nil {
		return "", err
	}

	html, err := p.Book(ctx, root, title)
	if err != nil {
		return "", err
	}

	data, err := p.rasterizer.Rasterize(ctx, html, p.outDir, p.opts)
	if err != nil {
		return "", err
	}

	out := p.OutputPath(title)
	if err := writeFile(p.deps.FS, out, data); err != nil {
		return "", err
	}
	p.deps.Logger.Debug("pdf book written", "path", out, "chapters", len(root.Documents()), "bytes", len(data))
	return out, nil
}

// Book returns the complete HTML handed to the rasterizer.
func (p *PDF) Book(ctx context.Context, root *tree.Node, title string) (string, error) {
	docs := root.Documents()
	ids := pageNames(docs)
	chapters := make([]chapterData, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.deps.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			body, err := p.deps.Renderer.Render(gctx, doc.Content(), markdown.RenderOptions{
				ContentPath: doc.Path(),
				DestDir:     p.outDir,
			})
			if err != nil {
				return renderError(doc.Path(), err)
			}
			chapters[i] = chapterData{
				ID:      ids[i],
				Title:   doc.Title,
				Content: template.HTML(body), // #nosec G203 -- produced by goldmark
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var body strings.Builder
	for _, ch := range chapters {
		out, err := p.deps.Templates.Render(assets.SetPDF, "chapter", ch)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrRender, err)
		}
		body.WriteString(out)
	}

	toc, err := p.deps.Templates.Render(assets.SetPDF, "toc", bookTOCData{Chapters: chapters})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	css, err := stylesheet(p.deps, assets.StyleBook)
	if err != nil {
		return "", err
	}

	book, err := p.deps.Templates.Render(assets.SetPDF, "book", bookData{
		Title:    title,
		CSS:      template.CSS(css),            // #nosec G203 -- embedded or user-supplied stylesheet
		TOC:      template.HTML(toc),           // #nosec G203 -- produced by html/template
		Chapters: template.HTML(body.String()), // #nosec G203 -- produced by html/template
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return book, nil
}
