package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/bookforge"
	"github.com/alnah/bookforge/internal/config"
)

// Default output directories per command.
const (
	defaultHTMLOutput = "./dist/html"
	defaultPDFOutput  = "./dist/pdf"
	defaultAllOutput  = "./dist"
)

// buildFlags is the union of flag groups a build command registers.
// pdf is nil for the html command.
type buildFlags struct {
	source   sourceFlags
	output   outputFlags
	markdown markdownFlags
	pdf      *pdfFlags
}

// apply layers the flags the user set over cfg.
func (f *buildFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	f.source.apply(fs, cfg)
	f.output.apply(fs, cfg)
	f.markdown.apply(fs, cfg)
	if f.pdf != nil {
		f.pdf.apply(fs, cfg)
	}
}

// register adds the flag groups to cmd and installs the grouped help.
func (f *buildFlags) register(cmd *cobra.Command, defaultOutput string) {
	groups := []flagGroup{
		{title: "Input Flags", set: f.source.flagSet()},
		{title: "Output Flags", set: f.output.flagSet(defaultOutput)},
		{title: "Markdown Flags", set: f.markdown.flagSet()},
	}
	if f.pdf != nil {
		groups = append(groups, flagGroup{title: "PDF Flags", set: f.pdf.flagSet()})
	}
	for _, g := range groups {
		cmd.Flags().AddFlagSet(g.set)
	}
	cmd.SetUsageFunc(groupedUsage(groups...))
}

func (a *app) buildCommand(format bookforge.Format) *cobra.Command {
	flags := &buildFlags{}
	defaultOutput := defaultHTMLOutput
	short := "Build a static HTML site"
	if format == bookforge.FormatPDF {
		flags.pdf = &pdfFlags{}
		defaultOutput = defaultPDFOutput
		short = "Build a single PDF book"
	}

	cmd := &cobra.Command{
		Use:   string(format),
		Short: short,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, flags, defaultOutput, format)
		},
	}
	flags.register(cmd, defaultOutput)
	return cmd
}

func (a *app) allCommand() *cobra.Command {
	flags := &buildFlags{pdf: &pdfFlags{}}

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Build the HTML site and the PDF book concurrently",
		Long: `Build the HTML site into <output>/html and the PDF book into <output>/pdf.
Both builds read the input independently and run at the same time; the
first failure cancels the other.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, flags, defaultAllOutput, bookforge.FormatHTML, bookforge.FormatPDF)
		},
	}
	flags.register(cmd, defaultAllOutput)
	return cmd
}

// runBuild resolves settings, then generates every format. With more than
// one format, each gets a subdirectory of the output named after it.
func (a *app) runBuild(cmd *cobra.Command, flags *buildFlags, defaultOutput string, formats ...bookforge.Format) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := bookforge.New(a.serviceOptions(cfg)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			a.logger.Debug("closing service", "err", err)
		}
	}()

	output := cfg.Output
	if output == "" {
		output = defaultOutput
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, format := range formats {
		req := bookforge.Request{
			Format: format,
			Input:  cfg.Input,
			Output: output,
			Title:  cfg.Title,
		}
		if len(formats) > 1 {
			req.Output = filepath.Join(output, string(format))
		}
		g.Go(func() error {
			return a.generate(ctx, svc, req)
		})
	}
	return g.Wait()
}

// generate runs one request and reports it.
func (a *app) generate(ctx context.Context, svc *bookforge.Service, req bookforge.Request) error {
	kind := strings.ToUpper(string(req.Format))
	start := a.env.Now()
	a.out.started(kind, req.Input)

	path, err := svc.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("building %s: %w", kind, err)
	}

	a.out.done(kind, path, a.env.Now().Sub(start))
	return nil
}
