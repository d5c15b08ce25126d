package bookforge

import (
	"fmt"
	"strings"

	"github.com/alnah/bookforge/internal/document"
	"github.com/alnah/bookforge/internal/generator"
	"github.com/alnah/bookforge/internal/outline"
	"github.com/alnah/bookforge/internal/tree"
)

// Tree model. A Node is either the root, holding document nodes in
// reading order, or a document node.
type (
	Node     = tree.Node
	Document = document.Document
	Heading  = outline.Heading
)

// PDFOptions control page geometry of generated books.
type PDFOptions = generator.PDFOptions

// Rasterizer prints HTML to PDF. The default uses headless Chrome.
type Rasterizer = generator.Rasterizer

// Format selects the generator.
type Format string

// Output formats.
const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// DefaultTitle is used when a request has no title.
const DefaultTitle = "GitBook"

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be html or pdf)", ErrInvalidFormat, s)
	}
}

// Request describes one generation run.
type Request struct {
	Format Format
	Input  string // Source directory
	Output string // Output directory, created with parents
	Title  string // Book title; empty means DefaultTitle
}

// Validate checks that required fields are present.
func (r Request) Validate() error {
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Input) == "" {
		return ErrEmptyInput
	}
	if strings.TrimSpace(r.Output) == "" {
		return ErrEmptyOutput
	}
	return nil
}

func (r Request) title() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}
