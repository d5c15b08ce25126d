package markdown

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/bookforge/internal/fileutil"
)

// imageSources returns the src of every <img> in an HTML fragment, in
// document order.
func imageSources(fragment string) ([]string, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, err
	}

	var srcs []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			for _, a := range n.Attr {
				if a.Key == "src" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return srcs, nil
}

// localImagePath converts an img src to a relative filesystem path.
// Remote, inline, absolute and fragment-only sources are rejected.
func localImagePath(src string) (string, bool) {
	if src == "" || fileutil.IsExternalImage(src) || strings.HasPrefix(src, "#") {
		return "", false
	}
	if strings.Contains(src, ":") {
		if u, err := url.Parse(src); err == nil && u.Scheme != "" {
			return "", false
		}
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	if decoded, err := url.PathUnescape(src); err == nil {
		src = decoded
	}
	if src == "" || strings.HasPrefix(src, "/") || filepath.IsAbs(src) {
		return "", false
	}
	return filepath.FromSlash(path.Clean(src)), true
}

// copyImages copies each local image from srcDir to the same relative path
// under destDir. Each destination is written at most once per Renderer.
func (r *Renderer) copyImages(ctx context.Context, srcDir, destDir string, srcs []string) error {
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, ok := localImagePath(src)
		if !ok {
			continue
		}
		from := filepath.Join(srcDir, rel)
		to := filepath.Join(destDir, rel)
		if !fileutil.IsPathUnderDir(to, destDir) {
			r.logger.Warn("image outside output directory", "src", src)
			continue
		}

		if err := r.copyOnce(from, to, src); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) copyOnce(from, to, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.copied[to] {
		return nil
	}

	data, err := afero.ReadFile(r.fs, from)
	if err != nil {
		r.logger.Warn("image not found", "src", src, "path", from, "err", err)
		return nil
	}
	if err := fileutil.EnsureDir(r.fs, filepath.Dir(to)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrImageCopy, to, err)
	}
	if err := afero.WriteFile(r.fs, to, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrImageCopy, to, err)
	}

	r.copied[to] = true
	return nil
}
