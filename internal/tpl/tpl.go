// Package tpl renders the HTML templates of an asset template set.
//
// A Service is created once per generation run and handed to each output
// generator; nothing in this package is process-wide.
package tpl

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/alnah/bookforge/internal/assets"
)

// Sentinel errors for template rendering.
var (
	ErrParse   = errors.New("parsing template")
	ErrExecute = errors.New("executing template")
	ErrUnknown = errors.New("unknown template")
)

// Service loads template sets on first use and executes their templates.
// A Service is safe for concurrent use.
type Service struct {
	loader assets.Loader

	mu   sync.Mutex
	sets map[string]*template.Template
}

// New returns a Service reading template sets from loader.
func New(loader assets.Loader) *Service {
	return &Service{
		loader: loader,
		sets:   make(map[string]*template.Template),
	}
}

// Render executes template name of set with data and returns the markup.
// All templates of a set share one namespace, so they may reference each
// other's {{define}} blocks.
func (s *Service) Render(set, name string, data any) (string, error) {
	root, err := s.load(set)
	if err != nil {
		return "", err
	}

	t := root.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknown, set, name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s/%s: %w", ErrExecute, set, name, err)
	}
	return buf.String(), nil
}

func (s *Service) load(set string) (*template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.sets[set]; ok {
		return t, nil
	}

	ts, err := s.loader.LoadTemplateSet(set)
	if err != nil {
		return nil, err
	}

	// Parse in a stable order so {{define}} conflicts resolve the same way.
	names := make([]string, 0, len(ts.Templates))
	for name := range ts.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	root := template.New(set)
	for _, name := range names {
		if _, err := root.New(name).Parse(ts.Templates[name]); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrParse, set, name, err)
		}
	}

	s.sets[set] = root
	return root, nil
}
