package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukemcguire/docscrape/config"
	"github.com/lukemcguire/docscrape/crawler"
	"github.com/lukemcguire/docscrape/logger"
)

var version = "dev"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscrape",
		Short: "Crawl a documentation site into Markdown",
		Long: `docscrape crawls a documentation website from a start URL, staying on
the same host and below the start path, extracts the main content of every
page and converts it to Markdown.

Results can be exported as one Markdown document, a JSON mapping of URL to
Markdown, or a zip archive of Markdown files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: ./config.yaml if present)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewWatchCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// crawlerConfig maps the crawler settings onto the crawler package.
func crawlerConfig(cfg config.CrawlerConfig) crawler.Config {
	return crawler.Config{
		BatchSize:      cfg.BatchSize,
		RequestTimeout: cfg.RequestTimeout,
		UserAgent:      cfg.UserAgent,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}
}
