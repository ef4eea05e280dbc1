package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lukemcguire/docscrape/config"
	"github.com/lukemcguire/docscrape/crawler"
	"github.com/lukemcguire/docscrape/export"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/output"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/task"
	"github.com/lukemcguire/docscrape/tui"
)

// ErrNoContent is returned when a crawl finished without extracting a page.
var ErrNoContent = errors.New("no content was extracted")

// crawlOptions holds the flags of the crawl command.
type crawlOptions struct {
	URL          string
	Format       string
	Out          string
	Filename     string
	FailuresPath string
	NoTUI        bool
}

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a documentation site and write the export",
		Long: `Crawl runs a single crawl in this process and writes the export to a file.

Only pages on the start URL's host whose path starts with the start URL's
path are followed. Pages are fetched in batches; a failing page is recorded
and skipped.

Examples:
  docscrape crawl https://docs.example.com/guide
  docscrape crawl --format zip_files --out guide.zip https://docs.example.com/guide
  docscrape crawl --no-tui --failures failed.csv https://docs.example.com/guide`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("format", "f", string(export.FormatSingle),
		"Export format: single_file, json, zip_files or zip_flat")
	cmd.Flags().StringP("out", "o", "", "Output file (default: <host>_<date> with the format's extension)")
	cmd.Flags().String("filename", "", "Base name for the output mirror (default: last path segment of the URL)")
	cmd.Flags().IntP("batch-size", "b", 0, "Pages fetched concurrently per batch (overrides crawler.batch_size)")
	cmd.Flags().DurationP("timeout", "t", 0, "Per-page fetch timeout (overrides crawler.request_timeout)")
	cmd.Flags().String("failures", "", "Write failed pages as CSV to this file")
	cmd.Flags().Bool("no-tui", false, "Log progress instead of showing the terminal UI")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		cfg.Crawler.BatchSize = n
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		cfg.Crawler.RequestTimeout = d
	}

	opts := crawlOptions{URL: args[0]}
	opts.Format, _ = cmd.Flags().GetString("format")
	opts.Out, _ = cmd.Flags().GetString("out")
	opts.Filename, _ = cmd.Flags().GetString("filename")
	opts.FailuresPath, _ = cmd.Flags().GetString("failures")
	opts.NoTUI, _ = cmd.Flags().GetBool("no-tui")

	// Log lines would tear the terminal UI, so they are dropped while it runs.
	log := logger.NewNop()
	if opts.NoTUI {
		if log, err = newLogger(cfg); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, stop, cfg, opts, afero.NewOsFs(), log, cmd.OutOrStdout())
}

// runCrawl performs one crawl through a task runner, then writes the export
// and the optional failure report to fs and a summary to w.
func runCrawl(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, opts crawlOptions,
	fs afero.Fs, log logger.Logger, w io.Writer) error {
	var runnerOpts []task.RunnerOption
	runnerOpts = append(runnerOpts, task.WithLogger(log))
	if cfg.Output.Enabled {
		runnerOpts = append(runnerOpts, task.WithMirror(output.New(fs, cfg.Output.Dir, log)))
	}
	c := crawler.New(crawlerConfig(cfg.Crawler), crawler.WithLogger(log))
	runner := task.NewRunner(task.NewStore(), c, runnerOpts...)
	store := runner.Store()

	id, err := runner.Submit(ctx, task.Request{URL: opts.URL, Format: opts.Format, Filename: opts.Filename})
	if err != nil {
		return err
	}

	if !opts.NoTUI {
		poller := func(context.Context) (task.Snapshot, error) { return store.Status(id), nil }
		model := tui.NewModel(ctx, cancel, poller, tui.DefaultInterval)
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			cancel()
			runner.Wait()
			return fmt.Errorf("terminal UI: %w", err)
		}
	}
	runner.Wait()

	res, err := store.Result(id)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", opts.URL, err)
	}

	if opts.FailuresPath != "" {
		if err := writeFailures(fs, opts.FailuresPath, res.Failures); err != nil {
			return err
		}
	}
	if res.Empty() {
		return fmt.Errorf("crawl %s: %w", opts.URL, ErrNoContent)
	}

	out := opts.Out
	if out == "" {
		out = export.DownloadName(opts.URL, res.Format, time.Now())
	}
	if err := afero.WriteFile(fs, out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if opts.NoTUI {
		result.PrintSummary(w, res.CrawlResult())
		fmt.Fprintf(w, "Wrote %s\n", out)
		return nil
	}
	fmt.Fprint(w, tui.RenderSummary(tui.Summary{
		Pages:    len(res.Mapping),
		Failures: res.Failures,
		Duration: res.Stats.Duration,
		Output:   out,
	}))
	return nil
}

func writeFailures(fs afero.Fs, path string, failures []result.Failure) error {
	var buf bytes.Buffer
	if err := result.WriteCSV(&buf, failures); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
