package main

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/bookforge/internal/config"
)

// Flag groups, each registered into its own FlagSet so help can print
// them under separate headings.

// globalFlags are persistent across subcommands.
type globalFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags select what to read.
type sourceFlags struct {
	input    string
	encoding string
	ignore   []string
	workers  int
}

// outputFlags select where to write and the book title.
type outputFlags struct {
	output string
	title  string
}

// markdownFlags control rendering.
type markdownFlags struct {
	style      string
	unsafeHTML bool
	hardWraps  bool
	assetPath  string
}

// pdfFlags control the printed book.
type pdfFlags struct {
	pageSize      string
	orientation   string
	margin        float64
	noPageNumbers bool
	timeout       time.Duration
}

// flagGroup is a titled FlagSet shown as one help section.
type flagGroup struct {
	title string
	set   *flag.FlagSet
}

func (f *globalFlags) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("global", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "config name or path (default: bookforge.yaml if present)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug logs")
	return fs
}

func (f *sourceFlags) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("source", flag.ContinueOnError)
	fs.StringVarP(&f.input, "input", "i", config.DefaultInput, "source directory")
	fs.StringVar(&f.encoding, "encoding", config.DefaultEncoding, "source text encoding")
	fs.StringSliceVar(&f.ignore, "ignore", config.DefaultIgnorePatterns, "directory name patterns to skip")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent document loads (0 = GOMAXPROCS)")
	return fs
}

func (f *outputFlags) flagSet(defaultOutput string) *flag.FlagSet {
	fs := flag.NewFlagSet("output", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", defaultOutput, "output directory")
	fs.StringVarP(&f.title, "title", "t", config.DefaultTitle, "book title")
	return fs
}

func (f *markdownFlags) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("markdown", flag.ContinueOnError)
	fs.StringVar(&f.style, "style", config.DefaultHighlightStyle, "code highlight style")
	fs.BoolVar(&f.unsafeHTML, "unsafe-html", false, "pass raw HTML through")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render newlines as line breaks")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding templates, styles and scripts")
	return fs
}

func (f *pdfFlags) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	fs.StringVar(&f.pageSize, "page-size", config.DefaultPageSize, "letter, a4 or legal")
	fs.StringVar(&f.orientation, "orientation", config.DefaultOrientation, "portrait or landscape")
	fs.Float64Var(&f.margin, "margin", config.DefaultMargin, "page margin in inches")
	fs.BoolVar(&f.noPageNumbers, "no-page-numbers", false, "omit the page number footer")
	fs.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "page load timeout")
	return fs
}

// apply copies every flag the user set onto cfg.
func (f *sourceFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("input") {
		cfg.Input = f.input
	}
	if fs.Changed("encoding") {
		cfg.Parser.Encoding = f.encoding
	}
	if fs.Changed("ignore") {
		cfg.Parser.IgnorePatterns = f.ignore
	}
	if fs.Changed("workers") {
		cfg.Parser.Workers = f.workers
	}
}

func (f *outputFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("title") {
		cfg.Title = f.title
	}
}

func (f *markdownFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("style") {
		cfg.Markdown.HighlightStyle = f.style
	}
	if fs.Changed("unsafe-html") {
		cfg.Markdown.UnsafeHTML = f.unsafeHTML
	}
	if fs.Changed("hard-wraps") {
		cfg.Markdown.HardWraps = f.hardWraps
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
}

func (f *pdfFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("page-size") {
		cfg.PDF.PageSize = f.pageSize
	}
	if fs.Changed("orientation") {
		cfg.PDF.Orientation = f.orientation
	}
	if fs.Changed("margin") {
		cfg.PDF.Margin = f.margin
	}
	if fs.Changed("no-page-numbers") {
		cfg.PDF.PageNumbers = !f.noPageNumbers
	}
	if fs.Changed("timeout") {
		cfg.PDF.Timeout = f.timeout
	}
}
