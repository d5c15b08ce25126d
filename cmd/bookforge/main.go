// Command bookforge turns a directory of Markdown files into a static HTML
// site or a single PDF book.
package main

import (
	"context"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

const appName = "bookforge"

func main() {
	// GOMAXPROCS drives the default worker count; respect container CPU quotas.
	_, _ = maxprocs.Set()

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to an exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	a := newApp(env)
	root := a.rootCommand()
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		a.printer().failed(err, hintFor(err))
	}
	return exitCodeFor(err)
}
