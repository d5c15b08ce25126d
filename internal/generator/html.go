package generator

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/bookforge/internal/assets"
	"github.com/alnah/bookforge/internal/markdown"
	"github.com/alnah/bookforge/internal/outline"
	"github.com/alnah/bookforge/internal/tree"
)

// Static file names written next to the pages.
const (
	IndexFile  = "index.html"
	StylesFile = "styles.css"
	ScriptFile = "script.js"
)

// indexName is reserved so no document page overwrites index.html.
const indexName = "index"

// HTML writes a static site: index.html, one page per document, styles.css
// and script.js.
type HTML struct {
	deps   Deps
	outDir string
}

// NewHTML returns an HTML generator writing into outDir.
func NewHTML(deps Deps, outDir string) *HTML {
	return &HTML{deps: deps.withDefaults(), outDir: outDir}
}

type sidebarItem struct {
	Title  string
	Href   string
	Active bool
}

type sidebarData struct {
	Title string
	Items []sidebarItem
}

type tocData struct {
	Headings []outline.Heading
}

type pageData struct {
	Title     string
	PageTitle string
	Sidebar   template.HTML
	TOC       template.HTML
	Content   template.HTML
}

// RenderAssets writes the site and returns the path of index.html.
//
// index.html shows the first document. Every document also gets its own
// page, named by its slugged title, even when its content is empty.
func (h *HTML) RenderAssets(ctx context.Context, root *tree.Node, title string) (string, error) {
	docs := root.Documents()
	names := pageNames(docs, indexName)
	nav := make([]sidebarItem, len(docs))
	for i, doc := range docs {
		nav[i] = sidebarItem{Title: doc.Title, Href: names[i] + ".html"}
	}

	if err := h.writeStatic(); err != nil {
		return "", err
	}

	pages := make([]pageData, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.deps.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			page, err := h.renderPage(gctx, doc, i, nav, title)
			if err != nil {
				return err
			}
			pages[i] = page
			return h.writePage(names[i]+".html", page)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	index := pageData{Title: title}
	if len(pages) > 0 {
		index = pages[0]
	} else {
		sidebar, err := h.sidebar(title, nav, -1)
		if err != nil {
			return "", err
		}
		index.Sidebar = sidebar
	}
	if err := h.writePage(IndexFile, index); err != nil {
		return "", err
	}

	h.deps.Logger.Debug("html site written", "dir", h.outDir, "pages", len(docs))
	return filepath.Join(h.outDir, IndexFile), nil
}

func (h *HTML) writeStatic() error {
	css, err := stylesheet(h.deps, assets.StyleSite)
	if err != nil {
		return err
	}
	script, err := h.deps.Assets.LoadScript(assets.ScriptSite)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	if err := writeFile(h.deps.FS, filepath.Join(h.outDir, StylesFile), []byte(css)); err != nil {
		return err
	}
	return writeFile(h.deps.FS, filepath.Join(h.outDir, ScriptFile), []byte(script))
}

func (h *HTML) renderPage(ctx context.Context, doc *tree.Node, active int, nav []sidebarItem, title string) (pageData, error) {
	body, err := h.deps.Renderer.Render(ctx, doc.Content(), markdown.RenderOptions{
		ContentPath: doc.Path(),
		DestDir:     h.outDir,
	})
	if err != nil {
		return pageData{}, renderError(doc.Path(), err)
	}

	sidebar, err := h.sidebar(title, nav, active)
	if err != nil {
		return pageData{}, err
	}

	var toc template.HTML
	if len(doc.Headings()) > 0 {
		out, err := h.deps.Templates.Render(assets.SetHTML, "toc", tocData{Headings: doc.Headings()})
		if err != nil {
			return pageData{}, fmt.Errorf("%w: %w", ErrRender, err)
		}
		toc = template.HTML(out) // #nosec G203 -- produced by html/template
	}

	return pageData{
		Title:     title,
		PageTitle: doc.Title,
		Sidebar:   sidebar,
		TOC:       toc,
		Content:   template.HTML(body), // #nosec G203 -- produced by goldmark
	}, nil
}

// sidebar renders the navigation with the item at index active marked.
func (h *HTML) sidebar(title string, nav []sidebarItem, active int) (template.HTML, error) {
	items := make([]sidebarItem, len(nav))
	copy(items, nav)
	if active >= 0 && active < len(items) {
		items[active].Active = true
	}

	out, err := h.deps.Templates.Render(assets.SetHTML, "sidebar", sidebarData{Title: title, Items: items})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return template.HTML(out), nil // #nosec G203 -- produced by html/template
}

func (h *HTML) writePage(name string, page pageData) error {
	out, err := h.deps.Templates.Render(assets.SetHTML, "page", page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return writeFile(h.deps.FS, filepath.Join(h.outDir, name), []byte(out))
}
