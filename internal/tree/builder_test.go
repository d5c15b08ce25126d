package tree_test

// Notes:
// - Builds run on afero.NewMemMapFs(). afero.ReadDir returns entries sorted by
//   name, so discovery order in these tests is alphabetical per directory.
// - Read failures are injected with failingFs, whose Open fails for chosen
//   paths. afero.ReadFile and afero.ReadDir both go through Open.
// - TestBuild_Symlinks uses the OS filesystem because MemMapFs has no symlinks.
//   It is skipped on Windows and where symlinks cannot be created.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/alnah/bookforge/internal/document"
	"github.com/alnah/bookforge/internal/tree"
)

// failingFs fails Open for the configured paths.
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func (f failingFs) Open(name string) (afero.File, error) {
	if f.fail[filepath.Clean(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

// syncBuffer guards a buffer shared by concurrent loaders.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return fsys
}

func build(t *testing.T, fsys afero.Fs, root string, opts ...tree.BuilderOption) *tree.Node {
	t.Helper()
	b, err := tree.NewBuilder(tree.DefaultOptions(), append([]tree.BuilderOption{tree.WithFS(fsys)}, opts...)...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	node, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return node
}

func titles(n *tree.Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Title)
	}
	return out
}

func assertTitles(t *testing.T, n *tree.Node, want []string) {
	t.Helper()
	got := titles(n)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("children = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestNewBuilder - Option validation
// ---------------------------------------------------------------------------

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    tree.Options
		wantErr error
	}{
		{name: "defaults", opts: tree.DefaultOptions(), wantErr: nil},
		{name: "zero value", opts: tree.Options{}, wantErr: nil},
		{name: "negative workers", opts: tree.Options{Workers: -1}, wantErr: tree.ErrInvalidWorkers},
		{name: "unknown encoding", opts: tree.Options{Encoding: "nope-42"}, wantErr: document.ErrUnknownEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tree.NewBuilder(tt.opts, tree.WithFS(afero.NewMemMapFs()))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBuilder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := tree.DefaultOptions()
	if opts.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", opts.Encoding)
	}
	want := []string{"node_modules", ".git", "dist", "build"}
	if strings.Join(opts.IgnorePatterns, ",") != strings.Join(want, ",") {
		t.Errorf("IgnorePatterns = %v, want %v", opts.IgnorePatterns, want)
	}

	// Callers may mutate the returned slice without touching the defaults.
	opts.IgnorePatterns[0] = "changed"
	if tree.DefaultOptions().IgnorePatterns[0] != "node_modules" {
		t.Error("DefaultOptions() shares its IgnorePatterns slice")
	}
}

// ---------------------------------------------------------------------------
// TestBuild_EntryFile - Entry-file mode
// ---------------------------------------------------------------------------

func TestBuild_EntryFile(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/book/README.md": "# Contents\n\n* [A](./a.md)\nSome plain text line\n- [B](./b.md)\n",
		"/book/a.md":      "# Alpha\n\n## Details",
		"/book/b.md":      "### Beta deep\n",
		"/book/c.md":      "# Not listed",
	})

	root := build(t, fsys, "/book")

	if root.Title != tree.RootTitle || !root.IsRoot() {
		t.Errorf("root = %+v, want synthetic Root", root)
	}
	assertTitles(t, root, []string{"Alpha", "Beta deep"})

	if got := root.Children[0].Path(); got != filepath.Join("/book", "a.md") {
		t.Errorf("Path() = %q, want /book/a.md", got)
	}
	if len(root.Children[0].Headings()) != 1 {
		t.Errorf("Headings() = %+v, want one root heading", root.Children[0].Headings())
	}
	for _, c := range root.Children {
		if len(c.Children) != 0 {
			t.Errorf("%s has children, entry mode must stay flat", c.Title)
		}
	}
}

func TestBuild_EntryFilePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name: "README wins over SUMMARY and index",
			files: map[string]string{
				"/p/README.md":  "* [R](r.md)",
				"/p/SUMMARY.md": "* [S](s.md)",
				"/p/index.md":   "* [I](i.md)",
				"/p/r.md":       "# R",
				"/p/s.md":       "# S",
				"/p/i.md":       "# I",
			},
			want: []string{"R"},
		},
		{
			name: "SUMMARY wins over index",
			files: map[string]string{
				"/p/SUMMARY.md": "* [S](s.md)",
				"/p/index.md":   "* [I](i.md)",
				"/p/s.md":       "# S",
				"/p/i.md":       "# I",
			},
			want: []string{"S"},
		},
		{
			name: "index alone",
			files: map[string]string{
				"/p/index.md": "- [I](i.md)",
				"/p/i.md":     "# I",
			},
			want: []string{"I"},
		},
		{
			name: "lower-case readme is not an entry file",
			files: map[string]string{
				"/p/readme.md": "# Lower\n* [X](x.md)",
				"/p/x.md":      "# X",
			},
			want: []string{"Lower", "X"},
		},
		{
			name: "entry file name on a directory is ignored",
			files: map[string]string{
				"/p/README.md/inner.md": "# Inner",
				"/p/top.md":             "# Top",
			},
			want: []string{"Inner", "Top"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assertTitles(t, build(t, newFs(t, tt.files), "/p"), tt.want)
		})
	}
}

func TestBuild_EntryFileLines(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/p/SUMMARY.md": strings.Join([]string{
			"# Summary",
			"* [Intro](intro.md#overview)",
			"  * [Nested](guide/nested.md)",
			"- [Spaced](my%20file.md)",
			"* [Titled](titled.md \"Link title\")",
			"* [Angle](<angle.md>)",
			"* [Remote](https://example.com/x.md)",
			"* [Mail](mailto:me@example.com)",
			"* [Anchor only](#top)",
			"* No link here",
			"+ [Plus bullet](plus.md)",
			"1. [Ordered](ordered.md)",
			"Text with [inline](inline.md) link",
		}, "\n"),
		"/p/intro.md":        "# Intro",
		"/p/guide/nested.md": "# Nested",
		"/p/my file.md":      "# Spaced",
		"/p/titled.md":       "# Titled",
		"/p/angle.md":        "# Angle",
		"/p/plus.md":         "# Plus",
		"/p/ordered.md":      "# Ordered",
		"/p/inline.md":       "# Inline",
	})

	assertTitles(t, build(t, fsys, "/p"), []string{"Intro", "Nested", "Spaced", "Titled", "Angle"})
}

func TestBuild_EntryFileKeepsLineOrder(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	var entry strings.Builder
	var want []string
	for i := 40; i > 0; i-- {
		name := fmt.Sprintf("doc%02d", i)
		files["/p/"+name+".md"] = "# " + name
		fmt.Fprintf(&entry, "* [%s](%s.md)\n", name, name)
		want = append(want, name)
	}
	files["/p/README.md"] = entry.String()

	b, err := tree.NewBuilder(tree.Options{Workers: 8}, tree.WithFS(newFs(t, files)))
	if err != nil {
		t.Fatal(err)
	}
	root, err := b.Build(context.Background(), "/p")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	assertTitles(t, root, want)
}

func TestBuild_EntryFileMissingTarget(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	fsys := newFs(t, map[string]string{
		"/p/README.md": "* [A](a.md)\n* [Gone](gone.md)\n* [B](b.md)",
		"/p/a.md":      "# A",
		"/p/b.md":      "# B",
	})

	root := build(t, fsys, "/p", tree.WithLogger(log.New(logs)))

	assertTitles(t, root, []string{"A", "B"})
	if !strings.Contains(logs.String(), "gone.md") {
		t.Errorf("warning log %q does not mention gone.md", logs.String())
	}
}

func TestBuild_EntryFileUnreadable(t *testing.T) {
	t.Parallel()

	fsys := failingFs{
		Fs:   newFs(t, map[string]string{"/p/README.md": "* [A](a.md)", "/p/a.md": "# A"}),
		fail: map[string]bool{filepath.Join("/p", "README.md"): true},
	}

	b, err := tree.NewBuilder(tree.DefaultOptions(), tree.WithFS(fsys))
	if err != nil {
		t.Fatal(err)
	}
	root, err := b.Build(context.Background(), "/p")
	if !errors.Is(err, tree.ErrEntryFile) {
		t.Errorf("Build() error = %v, want ErrEntryFile", err)
	}
	if root != nil {
		t.Errorf("Build() root = %+v, want nil on error", root)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_Scan - Directory-scan mode
// ---------------------------------------------------------------------------

func TestBuild_ScanIgnoresNodeModules(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/p/x.md":                 "# x",
		"/p/node_modules/skip.md": "# skip",
		"/p/y.md":                 "# y",
	})

	root := build(t, fsys, "/p")

	assertTitles(t, root, []string{"x", "y"})
	for _, c := range root.Children {
		if c.Title == "skip" {
			t.Error("tree contains skip.md from node_modules")
		}
	}
}

func TestBuild_ScanRecursive(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/p/a.md":                "# a",
		"/p/mybuild/d.md":        "# ignored by substring",
		"/p/.git/HEAD.md":        "# ignored",
		"/p/sub/b.md":            "# b",
		"/p/sub/deep/c.markdown": "# c",
		"/p/sub/deep/notes.txt":  "# not markdown",
		"/p/sub/dist/out.md":     "# ignored nested",
		"/p/z.MD":                "# z",
	})

	root := build(t, fsys, "/p")

	assertTitles(t, root, []string{"a", "b", "c", "z"})
	for _, c := range root.Children {
		if len(c.Children) != 0 {
			t.Errorf("%s has children, scan mode must stay flat", c.Title)
		}
	}
}

func TestBuild_CustomIgnorePatterns(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/p/drafts/a.md":       "# draft",
		"/p/node_modules/b.md": "# module",
		"/p/c.md":              "# c",
	})

	b, err := tree.NewBuilder(tree.Options{IgnorePatterns: []string{"draft", ""}}, tree.WithFS(fsys))
	if err != nil {
		t.Fatal(err)
	}
	root, err := b.Build(context.Background(), "/p")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	assertTitles(t, root, []string{"c", "module"})
}

func TestBuild_ScanSkipsFailedDocument(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	fsys := failingFs{
		Fs: newFs(t, map[string]string{
			"/p/one.md":   "# one",
			"/p/two.md":   "# two",
			"/p/three.md": "# three",
		}),
		fail: map[string]bool{filepath.Join("/p", "two.md"): true},
	}

	root := build(t, fsys, "/p", tree.WithLogger(log.New(logs)))

	if len(root.Children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(root.Children))
	}
	assertTitles(t, root, []string{"one", "three"})
	if !strings.Contains(logs.String(), "skipping document") {
		t.Errorf("log %q does not contain the skip warning", logs.String())
	}
}

func TestBuild_ScanSkipsUnreadableSubdirectory(t *testing.T) {
	t.Parallel()

	fsys := failingFs{
		Fs: newFs(t, map[string]string{
			"/p/a.md":        "# a",
			"/p/locked/b.md": "# b",
		}),
		fail: map[string]bool{filepath.Join("/p", "locked"): true},
	}

	assertTitles(t, build(t, fsys, "/p"), []string{"a"})
}

func TestBuild_ScanSkipsInvalidEncoding(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{
		"/p/good.md": "# good",
		"/p/bad.md":  "# caf\xe9",
	})

	assertTitles(t, build(t, fsys, "/p"), []string{"good"})
}

// ---------------------------------------------------------------------------
// TestBuild_Root - Degenerate roots and cancellation
// ---------------------------------------------------------------------------

func TestBuild_EmptyRoots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fsys afero.Fs
		root string
	}{
		{name: "missing directory", fsys: afero.NewMemMapFs(), root: "/nowhere"},
		{name: "empty directory", fsys: newFs(t, map[string]string{"/p/notes.txt": "x"}), root: "/p"},
		{
			name: "unreadable directory",
			fsys: failingFs{Fs: newFs(t, map[string]string{"/p/a.md": "# a"}), fail: map[string]bool{"/p": true}},
			root: "/p",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := build(t, tt.fsys, tt.root)
			if root.Title != tree.RootTitle {
				t.Errorf("Title = %q, want %q", root.Title, tree.RootTitle)
			}
			if len(root.Children) != 0 {
				t.Errorf("children = %q, want none", titles(root))
			}
			if root.Path() != "" || root.Content() != "" || root.Headings() != nil {
				t.Error("root must not carry path, content or headings")
			}
		})
	}
}

func TestBuild_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := tree.NewBuilder(tree.DefaultOptions(), tree.WithFS(newFs(t, map[string]string{"/p/a.md": "# a"})))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(ctx, "/p"); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuild_Reusable(t *testing.T) {
	t.Parallel()

	fsys := newFs(t, map[string]string{"/p/a.md": "# a", "/q/b.md": "# b"})
	b, err := tree.NewBuilder(tree.DefaultOptions(), tree.WithFS(fsys))
	if err != nil {
		t.Fatal(err)
	}

	first, err := b.Build(context.Background(), "/p")
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background(), "/q")
	if err != nil {
		t.Fatal(err)
	}

	assertTitles(t, first, []string{"a"})
	assertTitles(t, second, []string{"b"})
}

// ---------------------------------------------------------------------------
// TestBuild_Symlinks - Symlinked directories are not followed
// ---------------------------------------------------------------------------

func TestBuild_Symlinks(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}

	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	other := filepath.Join(base, "other")
	for _, dir := range []string{docs, other} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite := func(path, content string) {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite(filepath.Join(docs, "a.md"), "# a")
	mustWrite(filepath.Join(other, "b.md"), "# b")
	mustWrite(filepath.Join(base, "outside.md"), "# linked file")

	if err := os.Symlink(other, filepath.Join(docs, "linkdir")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(base, "outside.md"), filepath.Join(docs, "linkfile.md")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	// A cycle would hang a walker that follows directory links.
	if err := os.Symlink(docs, filepath.Join(docs, "loop")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	root := build(t, afero.NewOsFs(), docs)
	assertTitles(t, root, []string{"a", "linked file"})
}

// ---------------------------------------------------------------------------
// TestNode - Accessors and traversal
// ---------------------------------------------------------------------------

func TestNode_Documents(t *testing.T) {
	t.Parallel()

	doc := func(title string) *document.Document { return &document.Document{Title: title} }
	root := &tree.Node{Title: tree.RootTitle, Children: []*tree.Node{
		{Title: "a", Document: doc("a")},
		{Title: "b", Document: doc("b"), Children: []*tree.Node{
			{Title: "b1", Document: doc("b1")},
		}},
	}}

	var got []string
	for _, n := range root.Documents() {
		got = append(got, n.Title)
	}
	if strings.Join(got, ",") != "a,b,b1" {
		t.Errorf("Documents() = %v, want [a b b1]", got)
	}
	if len((&tree.Node{Title: tree.RootTitle}).Documents()) != 0 {
		t.Error("Documents() of an empty root should be empty")
	}
}
