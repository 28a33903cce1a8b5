package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bare/internal/browser"
	"bare/internal/config"
	"bare/internal/gemini"
	"bare/internal/gopher"
	"bare/internal/logging"
)

// app holds what every subcommand shares. It is filled in by setup before
// any subcommand runs.
type app struct {
	loader  *config.Loader
	log     zerolog.Logger
	store   *gemini.TrustStore
	browser *browser.Browser
}

func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loader, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Config()

	log := logging.New(cfg.Log, cmd.ErrOrStderr())
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		log = logging.SetLevel(log, level)
	}

	store, err := gemini.LoadTrustStore(cfg.KnownHosts, log)
	if err != nil {
		return fmt.Errorf("load known hosts: %w", err)
	}

	a.loader = loader
	a.log = log
	a.store = store
	a.browser = browser.New(
		gemini.NewClient(store, gemini.WithTimeout(cfg.Timeout), gemini.WithLogger(log)),
		gopher.NewClient(gopher.WithTimeout(cfg.Gopher.Timeout), gopher.WithLogger(log)),
		browser.NewHTTPFetcher(cfg.Timeout, cfg.HTTP.UserAgent, log),
		browser.NewCache(cfg.Cache, log),
		log,
	)
	log.Debug().Str("config", loader.Path()).Bool("from_file", loader.FromFile()).Msg("configuration loaded")
	return nil
}

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bare",
		Short:         "Terminal browser for Gemini, Gopher and the web",
		Long:          `Fetch and browse gemini://, gopher:// and http(s):// documents, pinning Gemini server certificates on first use.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd, a)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().String("log-level", "", "Override the configured log level (trace|debug|info|warn|error)")
}

func addSubcommands(root *cobra.Command, a *app) {
	b := func() *browser.Browser { return a.browser }
	store := func() *gemini.TrustStore { return a.store }
	loader := func() *config.Loader { return a.loader }

	root.AddCommand(
		NewFetchCmd(b),
		NewSearchCmd(b),
		NewBrowseCmd(b, loader),
		NewTrustCmd(store),
		NewConfigCmd(loader),
	)
}
