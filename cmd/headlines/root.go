package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deusflow/headlines/internal/app"
	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/logger"
)

type rootOptions struct {
	sources string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "headlines",
		Short:        "RSS headline aggregator",
		Long:         "headlines fetches news, tech, crypto and business feeds, merges them by recency and serves them over HTTP.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.sources, "sources", "", "path to a YAML category file (overrides SOURCES_FILE)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newFetchCmd(opts))
	root.AddCommand(newSourcesCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the environment and applies command-line overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.sources != "" {
		cfg.SourcesFile = o.sources
	}
	if o.debug {
		cfg.Debug = true
	}
	logger.Init(cfg.Debug, cfg.LogFormat)
	return cfg, nil
}

func (o *rootOptions) newApp() (*config.Config, *app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "headlines %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
