// Package document loads Markdown source files into read-only records
// carrying their title, raw content and heading outline.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/alnah/bookforge/internal/outline"
)

// Untitled is the title of a document without any non-empty heading.
const Untitled = "Untitled"

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// Sentinel errors for document loading.
var (
	ErrRead            = errors.New("reading document")
	ErrDecode          = errors.New("invalid text encoding")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is one parsed source file. It is not modified after Load returns.
type Document struct {
	Path     string
	Title    string
	Content  string
	Headings []outline.Heading
}

// Title picks a document title from its heading forest: the first level-1
// heading, then the first heading of any level, then Untitled. Headings with
// empty text are passed over so the result is never empty.
func Title(headings []outline.Heading) string {
	var first, firstH1 string
	outline.Walk(headings, func(h outline.Heading, _ int) bool {
		if h.Text == "" {
			return true
		}
		if first == "" {
			first = h.Text
		}
		if firstH1 == "" && h.Level == 1 {
			firstH1 = h.Text
		}
		return firstH1 == ""
	})

	switch {
	case firstH1 != "":
		return firstH1
	case first != "":
		return first
	default:
		return Untitled
	}
}

// Loader reads documents from a filesystem using one text encoding.
// A Loader is safe for concurrent use.
type Loader struct {
	fs  afero.Fs
	enc encoding.Encoding // nil means UTF-8
}

// NewLoader returns a Loader decoding files with the named encoding. Names
// follow the WHATWG encoding labels ("utf-8", "latin1", "gbk", "shift_jis").
// An empty name selects UTF-8.
func NewLoader(fsys afero.Fs, name string) (*Loader, error) {
	l := &Loader{fs: fsys}

	if strings.TrimSpace(name) == "" {
		return l, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical != DefaultEncoding {
		l.enc = enc
	}
	return l, nil
}

// Load reads the file at path, extracts its headings and derives its title.
// Every failure wraps ErrRead together with the underlying cause, so callers
// can test for both ErrRead and, for example, fs.ErrNotExist.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	text, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	headings := outline.Extract(text)
	return &Document{
		Path:     path,
		Title:    Title(headings),
		Content:  text,
		Headings: headings,
	}, nil
}

func (l *Loader) decode(data []byte) (string, error) {
	if l.enc == nil {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", ErrDecode
		}
		return string(data), nil
	}

	out, err := l.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), nil
}
