package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed styles scripts templates
var files embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS stylesheet from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load("styles/"+name+".css", name, ErrStyleNotFound)
}

// LoadScript loads a JavaScript file from embedded assets by name.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	return e.load("scripts/"+name+".js", name, ErrScriptNotFound)
}

func (e *EmbeddedLoader) load(path, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := files.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads a template set from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	required, err := RequiredTemplates(name)
	if err != nil {
		return nil, err
	}

	ts := &TemplateSet{Name: name, Templates: make(map[string]string, len(required))}
	for _, tmpl := range required {
		content, err := files.ReadFile("templates/" + name + "/" + tmpl + ".html")
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q missing %s.html", ErrIncompleteTemplateSet, name, tmpl)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		ts.Templates[tmpl] = string(content)
	}
	return ts, nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
