package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/bookforge"
	"github.com/alnah/bookforge/internal/hints"
	"github.com/alnah/bookforge/internal/outline"
)

func (a *app) treeCommand() *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the documents and headings a build would use",
		Long: `Print every document in reading order with its heading outline and the
anchor id of each heading. Nothing is written to disk.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			source.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			svc, err := bookforge.New(a.serviceOptions(cfg)...)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			root, err := svc.Build(cmd.Context(), cfg.Input)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), root)
			if len(root.Documents()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(strings.TrimPrefix(hints.ForNoDocuments(cfg.Input), "\n")))
			}
			return nil
		},
	}
	cmd.Flags().AddFlagSet(source.flagSet())
	return cmd
}

// printTree writes one numbered line per document, then its headings
// indented by depth.
func printTree(w io.Writer, root *bookforge.Node) {
	for i, doc := range root.Documents() {
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d. %s", i+1, doc.Title)), dimStyle.Render(doc.Path()))
		outline.Walk(doc.Headings(), func(h outline.Heading, depth int) bool {
			fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth+1), h.Text, dimStyle.Render("#"+h.ID))
			return true
		})
	}
}
