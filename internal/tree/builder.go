package tree

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/bookforge/internal/document"
	"github.com/alnah/bookforge/internal/fileutil"
)

// EntryFiles are the recognised entry file names in probe order.
// Matching is exact and case-sensitive.
var EntryFiles = []string{"README.md", "SUMMARY.md", "index.md"}

// DefaultIgnorePatterns are pruned from directory scans.
var DefaultIgnorePatterns = []string{"node_modules", ".git", "dist", "build"}

// Sentinel errors for tree building.
var (
	ErrEntryFile      = errors.New("reading entry file")
	ErrInvalidWorkers = errors.New("workers must not be negative")
)

// entryLink matches "[title](target)" anywhere on an entry-file line.
var entryLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Options configures document discovery and loading.
type Options struct {
	// Encoding is the WHATWG label used to decode source files.
	Encoding string
	// IgnorePatterns prune any directory whose name contains one of them.
	IgnorePatterns []string
	// Workers bounds concurrent document loads. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns UTF-8 decoding, the default ignore patterns and
// automatic worker sizing.
func DefaultOptions() Options {
	return Options{
		Encoding:       document.DefaultEncoding,
		IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
	}
}

// Builder discovers and loads the documents under a root directory.
// A Builder holds no per-run state and may be reused.
type Builder struct {
	fs      afero.Fs
	logger  *log.Logger
	loader  *document.Loader
	ignore  []string
	workers int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFS sets the filesystem documents are read from. Default: the OS.
func WithFS(fsys afero.Fs) BuilderOption {
	return func(b *Builder) {
		if fsys != nil {
			b.fs = fsys
		}
	}
}

// WithLogger sets the logger receiving skip warnings. Default: discard.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder validates opts and returns a Builder.
func NewBuilder(opts Options, options ...BuilderOption) (*Builder, error) {
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, opts.Workers)
	}

	b := &Builder{
		fs:      afero.NewOsFs(),
		logger:  log.New(io.Discard),
		workers: opts.Workers,
	}
	for _, opt := range options {
		opt(b)
	}

	if b.workers == 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	for _, p := range opts.IgnorePatterns {
		if p != "" {
			b.ignore = append(b.ignore, p)
		}
	}

	loader, err := document.NewLoader(b.fs, opts.Encoding)
	if err != nil {
		return nil, err
	}
	b.loader = loader

	return b, nil
}

// Build returns the Root node for the project at root.
//
// Per-document read failures are logged and skipped. An unreadable root
// directory yields an empty Root. Build fails only when an entry file exists
// but cannot be read, or when ctx is canceled.
func (b *Builder) Build(ctx context.Context, root string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root = filepath.Clean(root)

	entries, err := afero.ReadDir(b.fs, root)
	if err != nil {
		b.logger.Warn("cannot read input directory", "path", root, "err", err)
		return newRoot(), nil
	}

	var paths []string
	if entry := probeEntry(entries); entry != "" {
		entryPath := filepath.Join(root, entry)
		b.logger.Debug("using entry file", "path", entryPath)
		paths, err = b.entryPaths(entryPath)
		if err != nil {
			return nil, err
		}
	} else {
		b.logger.Debug("scanning directory", "path", root)
		paths, err = b.scan(ctx, root, entries)
		if err != nil {
			return nil, err
		}
	}
	b.logger.Debug("documents discovered", "count", len(paths))

	docs, err := b.loadAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	node := newRoot()
	for _, doc := range docs {
		if doc != nil {
			node.Children = append(node.Children, newDocumentNode(doc))
		}
	}
	return node, nil
}

// probeEntry returns the first entry file name present in entries.
func probeEntry(entries []os.FileInfo) string {
	for _, name := range EntryFiles {
		for _, e := range entries {
			if e.Name() == name && !e.IsDir() {
				return name
			}
		}
	}
	return ""
}

// entryPaths reads the entry file as plain text and resolves each list-item
// link against the entry file's directory, in line order.
func (b *Builder) entryPaths(entryPath string) ([]string, error) {
	f, err := b.fs.Open(entryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryFile, entryPath, err)
	}
	defer func() { _ = f.Close() }()

	dir := filepath.Dir(entryPath)
	var paths []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "-") {
			continue
		}
		m := entryLink.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		target, ok := cleanLinkTarget(m[2])
		if !ok {
			b.logger.Debug("skipping entry link", "title", m[1], "target", m[2])
			continue
		}
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(target)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryFile, entryPath, err)
	}
	return paths, nil
}

// cleanLinkTarget turns a Markdown link target into a relative file path.
// It drops an optional link title, angle brackets, fragment and query, and
// decodes percent-escapes. Remote and fragment-only targets are rejected.
func cleanLinkTarget(raw string) (string, bool) {
	target := strings.TrimSpace(raw)
	if i := strings.IndexAny(target, " \t"); i >= 0 && !strings.HasPrefix(target, "<") {
		target = target[:i]
	}
	target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")

	if fileutil.IsRemoteLink(target) {
		return "", false
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	if target == "" {
		return "", false
	}
	return target, true
}

// scan walks root depth-first and returns Markdown files in discovery order.
// The root listing is passed in because Build has already read it.
func (b *Builder) scan(ctx context.Context, root string, entries []os.FileInfo) ([]string, error) {
	var paths []string
	if err := b.walk(ctx, root, entries, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (b *Builder) walk(ctx context.Context, dir string, entries []os.FileInfo, paths *[]string) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, e.Name())
		isDir := e.IsDir()

		// Symlinked directories are never followed; symlinked files are.
		if e.Mode()&os.ModeSymlink != 0 {
			target, err := b.fs.Stat(path)
			if err != nil || target.IsDir() {
				continue
			}
			isDir = false
		}

		if isDir {
			if b.ignored(e.Name()) {
				continue
			}
			children, err := afero.ReadDir(b.fs, path)
			if err != nil {
				b.logger.Warn("skipping directory", "path", path, "err", err)
				continue
			}
			if err := b.walk(ctx, path, children, paths); err != nil {
				return err
			}
			continue
		}

		if fileutil.IsMarkdownFile(e.Name()) {
			*paths = append(*paths, path)
		}
	}
	return nil
}

// ignored reports whether a directory name contains an ignore pattern.
func (b *Builder) ignored(name string) bool {
	for _, p := range b.ignore {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// loadAll loads paths concurrently. Results keep the order of paths; a slot
// is nil when its document failed to load.
func (b *Builder) loadAll(ctx context.Context, paths []string) ([]*document.Document, error) {
	docs := make([]*document.Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := b.loader.Load(path)
			if err != nil {
				b.logger.Warn("skipping document", "path", path, "err", err)
				return nil
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
