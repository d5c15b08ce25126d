package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/alnah/bookforge"
	"github.com/alnah/bookforge/internal/config"
	"github.com/alnah/bookforge/internal/hints"
	"github.com/alnah/bookforge/internal/markdown"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	env    *Environment
	global globalFlags
	logger *log.Logger
	out    *printer
}

func newApp(env *Environment) *app {
	return &app{env: env}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Build an HTML site or a PDF book from a Markdown directory",
		Long: `bookforge reads a directory of Markdown files, ordered by an entry file
(README.md, SUMMARY.md or index.md) listing links, or by a recursive scan,
and renders them as a static HTML site with sidebar navigation or as a
single PDF book with a table of contents.

Settings are layered: flags, then BOOKFORGE_* environment variables, then
the config file (bookforge.yaml), then built-in defaults.`,
		Version:       Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.logger = newLogger(a.env.Stderr, a.global.quiet, a.global.verbose)
			a.out = newPrinter(a.env, a.global.quiet)
			warnUnknownEnvVars(a.env, a.logger)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.SetOut(a.env.Stdout)
	root.SetErr(a.env.Stderr)
	root.SetVersionTemplate(appName + " {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	root.PersistentFlags().AddFlagSet(a.global.flagSet())

	root.AddCommand(
		a.buildCommand(bookforge.FormatHTML),
		a.buildCommand(bookforge.FormatPDF),
		a.allCommand(),
		a.treeCommand(),
		a.configCommand(),
		a.doctorCommand(),
		a.versionCommand(),
	)

	return root
}

// printer returns the status printer, falling back to a non-quiet one when
// the command failed before flags were applied.
func (a *app) printer() *printer {
	if a.out == nil {
		return newPrinter(a.env, false)
	}
	return a.out
}

// noArgs rejects positional arguments; every input is a flag.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q for %q", ErrUsage, args[0], cmd.CommandPath())
	}
	return nil
}

// loadConfig resolves the config file and applies environment overrides.
// An explicit --config or BOOKFORGE_CONFIG must exist; the default
// bookforge.yaml is optional.
func (a *app) loadConfig() (*config.Config, error) {
	name, explicit := a.configName()
	cfg, err := config.Load(a.env.FS, name, a.env.ConfigDirs)
	switch {
	case err == nil:
		a.logger.Debug("loaded config", "name", name)
	case !explicit && errors.Is(err, config.ErrConfigNotFound):
		cfg = config.DefaultConfig()
	default:
		return nil, err
	}

	applyEnvConfig(a.env, cfg, a.logger)
	return cfg, nil
}

// configName returns the config to load and whether the user asked for
// it, in which case it must exist.
func (a *app) configName() (name string, explicit bool) {
	if a.global.config != "" {
		return a.global.config, true
	}
	if name := a.env.Getenv(envConfig); name != "" {
		return name, true
	}
	return config.DefaultName, false
}

// serviceOptions maps a validated config onto library options.
func (a *app) serviceOptions(cfg *config.Config) []bookforge.Option {
	opts := []bookforge.Option{
		bookforge.WithFS(a.env.FS),
		bookforge.WithLogger(a.logger),
		bookforge.WithEncoding(cfg.Parser.Encoding),
		bookforge.WithIgnorePatterns(cfg.Parser.IgnorePatterns),
		bookforge.WithWorkers(cfg.Parser.Workers),
		bookforge.WithUnsafeHTML(cfg.Markdown.UnsafeHTML),
		bookforge.WithHardWraps(cfg.Markdown.HardWraps),
		bookforge.WithHighlightStyle(cfg.Markdown.HighlightStyle),
		bookforge.WithAssetPath(cfg.Assets.BasePath),
		bookforge.WithPDFOptions(bookforge.PDFOptions{
			PageSize:      cfg.PDF.PageSize,
			Orientation:   cfg.PDF.Orientation,
			Margin:        cfg.PDF.Margin,
			NoPageNumbers: !cfg.PDF.PageNumbers,
		}),
	}
	if cfg.PDF.Timeout > 0 {
		opts = append(opts, bookforge.WithTimeout(cfg.PDF.Timeout))
	}
	if a.env.Rasterizer != nil {
		opts = append(opts, bookforge.WithRasterizer(a.env.Rasterizer))
	}
	return opts
}

// hintFor returns an actionable suffix for err, or "".
func hintFor(err error) string {
	var notFound *config.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, bookforge.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, bookforge.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, bookforge.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, bookforge.ErrUnknownEncoding):
		return hints.ForEncoding()
	case errors.Is(err, bookforge.ErrUnknownStyle):
		return hints.ForHighlightStyle(markdown.Styles())
	default:
		return ""
	}
}

// groupedUsage prints each flag group under its own heading.
func groupedUsage(groups ...flagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		w := cmd.OutOrStderr()
		fmt.Fprintf(w, "Usage:\n  %s\n", cmd.UseLine())

		grouped := make(map[string]bool)
		for _, g := range groups {
			fmt.Fprintf(w, "\n%s:\n%s", g.title, g.set.FlagUsages())
			g.set.VisitAll(func(f *flag.Flag) { grouped[f.Name] = true })
		}

		other := flag.NewFlagSet("other", flag.ContinueOnError)
		cmd.LocalFlags().VisitAll(func(f *flag.Flag) {
			if !grouped[f.Name] {
				other.AddFlag(f)
			}
		})
		if other.HasFlags() {
			fmt.Fprintf(w, "\nFlags:\n%s", other.FlagUsages())
		}
		if cmd.HasAvailableInheritedFlags() {
			fmt.Fprintf(w, "\nGlobal Flags:\n%s", cmd.InheritedFlags().FlagUsages())
		}
		return nil
	}
}
