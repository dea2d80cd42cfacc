package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deusflow/headlines/internal/news"
)

func newSourcesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources [category]",
		Short: "List configured categories and their feeds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, a, err := root.newApp()
			if err != nil {
				return err
			}

			cats := a.Categories()
			if len(args) == 1 {
				cat, ok := a.Category(args[0])
				if !ok {
					return fmt.Errorf("unknown category %q", args[0])
				}
				cats = []news.Category{cat}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range cats {
				keywords := "no"
				if c.Keywords {
					keywords = "yes"
				}
				fmt.Fprintf(w, "%s\tper source: %d\tdefault limit: %d\tkeywords: %s\n", c.Name, c.PerSource, c.DefaultLimit, keywords)
				for _, s := range c.Sources {
					fmt.Fprintf(w, "  %s\t%s\t\t\n", s.Name, s.URL)
				}
			}
			return w.Flush()
		},
	}
}
