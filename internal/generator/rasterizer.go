package generator

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/bookforge/internal/fileutil"
	"github.com/alnah/bookforge/internal/process"
)

// Page sizes and orientations accepted in PDFOptions.
const (
	PageLetter = "letter"
	PageA4     = "a4"
	PageLegal  = "legal"

	Portrait  = "portrait"
	Landscape = "landscape"
)

// Margin bounds in inches.
const (
	DefaultMargin = 0.8
	MinMargin     = 0.25
	MaxMargin     = 3.0
)

// DefaultTimeout bounds a single page load in the browser.
const DefaultTimeout = 60 * time.Second

// paperSizes in inches, portrait orientation.
var paperSizes = map[string][2]float64{
	PageLetter: {8.5, 11},
	PageA4:     {8.27, 11.69},
	PageLegal:  {8.5, 14},
}

// PDFOptions control page geometry of the rasterized book.
type PDFOptions struct {
	PageSize      string  // letter, a4 or legal; empty means a4
	Orientation   string  // portrait or landscape; empty means portrait
	Margin        float64 // inches on every side; zero means DefaultMargin
	NoPageNumbers bool    // omit the "page / total" footer, shown by default
}

// withDefaults fills zero fields.
func (o PDFOptions) withDefaults() PDFOptions {
	if o.PageSize == "" {
		o.PageSize = PageA4
	}
	if o.Orientation == "" {
		o.Orientation = Portrait
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	return o
}

// Validate reports the first invalid field, after defaults are applied.
func (o PDFOptions) Validate() error {
	o = o.withDefaults()
	if _, ok := paperSizes[strings.ToLower(o.PageSize)]; !ok {
		return fmt.Errorf("%w: page size %q (must be letter, a4 or legal)", ErrInvalidPDFOptions, o.PageSize)
	}
	switch strings.ToLower(o.Orientation) {
	case Portrait, Landscape:
	default:
		return fmt.Errorf("%w: orientation %q (must be portrait or landscape)", ErrInvalidPDFOptions, o.Orientation)
	}
	if o.Margin < MinMargin || o.Margin > MaxMargin {
		return fmt.Errorf("%w: margin %.2f (must be between %.2f and %.2f inches)", ErrInvalidPDFOptions, o.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// dimensions returns paper width and height in inches.
func (o PDFOptions) dimensions() (width, height float64) {
	size, ok := paperSizes[strings.ToLower(o.PageSize)]
	if !ok {
		size = paperSizes[PageA4]
	}
	width, height = size[0], size[1]
	if strings.EqualFold(o.Orientation, Landscape) {
		width, height = height, width
	}
	return width, height
}

// Rasterizer turns a complete HTML document into PDF bytes.
// Relative references in html resolve against baseDir.
type Rasterizer interface {
	Rasterize(ctx context.Context, html, baseDir string, opts PDFOptions) ([]byte, error)
	Close() error
}

var _ Rasterizer = (*RodRasterizer)(nil)

// RodRasterizer prints pages with headless Chrome through go-rod.
// The browser starts on first use and is reused until Close.
// Rod downloads Chromium on first run if none is found.
type RodRasterizer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// NewRodRasterizer returns a rasterizer whose page loads are bounded by
// timeout. A non-positive timeout means DefaultTimeout.
func NewRodRasterizer(timeout time.Duration) *RodRasterizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RodRasterizer{timeout: timeout}
}

// ensureBrowser starts and connects the browser once. Caller holds r.mu.
func (r *RodRasterizer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (containers, CI images).
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}

	// Chrome's sandbox is unavailable in most containers.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") != "" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return fmt.Errorf("%w: %w", ErrBrowserConnect, err)
	}

	r.browser = browser
	r.launcher = l
	return nil
}

// Rasterize writes html to a temporary file inside baseDir so relative image
// paths resolve, prints it, and removes the file.
func (r *RodRasterizer) Rasterize(ctx context.Context, html, baseDir string, opts PDFOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(baseDir, html, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	defer cleanup()

	abs, err := filepath.Abs(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageCreate, err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)
	if err := page.Timeout(r.timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, err)
	}

	reader, err := page.PDF(printOptions(opts.withDefaults()))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %w", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close shuts the browser down and kills its process group so no renderer
// helper outlives the run. Safe to call more than once.
func (r *RodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	process.KillProcessGroup(r.launcher.PID())
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

// footerTemplate uses Chrome's pageNumber and totalPages placeholders.
const footerTemplate = `<div style="font-size: 9px; color: #888; width: 100%; text-align: center;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// printOptions maps PDFOptions to Chrome's print parameters.
func printOptions(opts PDFOptions) *proto.PagePrintToPDF {
	width, height := opts.dimensions()
	p := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(width),
		PaperHeight:       floatPtr(height),
		MarginTop:         floatPtr(opts.Margin),
		MarginBottom:      floatPtr(opts.Margin),
		MarginLeft:        floatPtr(opts.Margin),
		MarginRight:       floatPtr(opts.Margin),
		PrintBackground:   true,
		PreferCSSPageSize: false,
	}
	if !opts.NoPageNumbers {
		p.DisplayHeaderFooter = true
		p.HeaderTemplate = "<span></span>"
		p.FooterTemplate = footerTemplate
	}
	return p
}

func floatPtr(v float64) *float64 {
	return &v
}
