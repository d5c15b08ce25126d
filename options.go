package bookforge

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds everything options can set.
type serviceConfig struct {
	fs             afero.Fs
	logger         *log.Logger
	encoding       string
	ignorePatterns []string
	workers        int
	unsafeHTML     bool
	hardWraps      bool
	highlightStyle string
	assetPath      string
	pdf            PDFOptions
	timeout        time.Duration
	rasterizer     Rasterizer
}

// WithFS sets the filesystem documents are read from and outputs written to.
// Defaults to the OS filesystem. The PDF rasterizer always uses the OS
// filesystem for its intermediate file.
func WithFS(fsys afero.Fs) Option {
	return func(s *Service) {
		if fsys != nil {
			s.cfg.fs = fsys
		}
	}
}

// WithLogger sets the logger for skipped documents, missing images and
// progress. Defaults to a logger that discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.cfg.logger = l
		}
	}
}

// WithEncoding sets the source text encoding by WHATWG label
// (e.g. "utf-8", "latin1", "shift_jis").
func WithEncoding(name string) Option {
	return func(s *Service) {
		s.cfg.encoding = name
	}
}

// WithIgnorePatterns replaces the directory-name patterns skipped during
// scans.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *Service) {
		s.cfg.ignorePatterns = append([]string(nil), patterns...)
	}
}

// WithWorkers bounds concurrent document loads and renders.
// Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.cfg.workers = n
	}
}

// WithUnsafeHTML passes raw HTML in Markdown through to the output.
func WithUnsafeHTML(enabled bool) Option {
	return func(s *Service) {
		s.cfg.unsafeHTML = enabled
	}
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps(enabled bool) Option {
	return func(s *Service) {
		s.cfg.hardWraps = enabled
	}
}

// WithHighlightStyle sets the chroma style for code blocks.
func WithHighlightStyle(name string) Option {
	return func(s *Service) {
		s.cfg.highlightStyle = name
	}
}

// WithAssetPath sets a directory whose templates, styles and scripts
// override the embedded ones.
func WithAssetPath(path string) Option {
	return func(s *Service) {
		s.cfg.assetPath = path
	}
}

// WithPDFOptions sets page geometry for PDF output.
func WithPDFOptions(opts PDFOptions) Option {
	return func(s *Service) {
		s.cfg.pdf = opts
	}
}

// WithTimeout bounds a single page load in the browser.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("bookforge: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithRasterizer replaces the headless Chrome rasterizer. The Service
// closes it on Close.
func WithRasterizer(r Rasterizer) Option {
	return func(s *Service) {
		s.cfg.rasterizer = r
	}
}
