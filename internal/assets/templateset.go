package assets

import "fmt"

// Built-in asset names.
const (
	SetHTML = "html" // Template set for the HTML site
	SetPDF  = "pdf"  // Template set for the PDF book

	StyleSite  = "site" // Stylesheet copied next to the HTML site
	StyleBook  = "book" // Stylesheet inlined into the PDF book
	ScriptSite = "site" // Script copied next to the HTML site
)

// requiredTemplates lists, per set, the template files (without .html).
var requiredTemplates = map[string][]string{
	SetHTML: {"page", "sidebar", "toc"},
	SetPDF:  {"book", "toc", "chapter"},
}

// TemplateSet holds the templates rendering one output format.
// Templates maps a template name (file name without .html) to its source.
type TemplateSet struct {
	Name      string
	Templates map[string]string
}

// RequiredTemplates returns the template names a set must provide.
func RequiredTemplates(set string) ([]string, error) {
	names, ok := requiredTemplates[set]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, set)
	}
	return append([]string(nil), names...), nil
}
