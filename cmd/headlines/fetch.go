package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deusflow/headlines/internal/news"
)

func newFetchCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		source string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "fetch <category>",
		Short: "Aggregate one category and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, a, err := root.newApp()
			if err != nil {
				return err
			}

			cat, ok := a.Category(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}

			rawLimit := ""
			if cmd.Flags().Changed("limit") {
				rawLimit = strconv.Itoa(limit)
			}
			f := news.ParseFilter(cat, rawLimit, source, query)

			env, err := a.Fetch(cmd.Context(), cat.Name, f)
			if err != nil {
				return fmt.Errorf("%s: %w", cat.ErrorMessage, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items (1-200, default per category)")
	cmd.Flags().StringVar(&source, "source", "", "comma-separated source names to keep")
	cmd.Flags().StringVar(&query, "q", "", "comma-separated keywords (categories with keyword support only)")
	return cmd
}
