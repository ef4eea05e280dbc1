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

	"github.com/lukemcguire/docscrape/client"
	"github.com/lukemcguire/docscrape/task"
	"github.com/lukemcguire/docscrape/tui"
)

const defaultServer = "http://localhost:8000"

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	TaskID   string
	Download bool
	Out      string
	Interval time.Duration
	NoTUI    bool
}

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Follow a crawl running on a docscrape server",
		Long: `Watch polls the progress of a task on a running server until it finishes,
then prints a summary and optionally downloads the export.

Examples:
  docscrape watch 3f0c9a52-0b8e-4d1e-9a57-8f5b8e0c3c11
  docscrape watch --server http://docs-box:8000 --download <task-id>`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().StringP("server", "s", defaultServer, "Base URL of the docscrape server")
	cmd.Flags().BoolP("download", "d", false, "Download the export once the task completes")
	cmd.Flags().StringP("out", "o", "", "Download target (default: name suggested by the server)")
	cmd.Flags().Duration("interval", tui.DefaultInterval, "Polling interval")
	cmd.Flags().Bool("no-tui", false, "Print progress lines instead of showing the terminal UI")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	opts := watchOptions{TaskID: args[0]}
	opts.Download, _ = cmd.Flags().GetBool("download")
	opts.Out, _ = cmd.Flags().GetString("out")
	opts.Interval, _ = cmd.Flags().GetDuration("interval")
	opts.NoTUI, _ = cmd.Flags().GetBool("no-tui")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runWatch(ctx, stop, client.New(server, nil), opts, afero.NewOsFs(), cmd.OutOrStdout())
}

// runWatch follows opts.TaskID on the server behind c until it finishes.
func runWatch(ctx context.Context, cancel context.CancelFunc, c *client.Client, opts watchOptions,
	fs afero.Fs, w io.Writer) error {
	poller := func(ctx context.Context) (task.Snapshot, error) {
		return c.Progress(ctx, opts.TaskID)
	}

	var snap task.Snapshot
	if opts.NoTUI {
		var err error
		if snap, err = pollUntilDone(ctx, poller, opts.Interval, w); err != nil {
			return err
		}
	} else {
		final, err := tea.NewProgram(tui.NewModel(ctx, cancel, poller, opts.Interval), tea.WithContext(ctx)).Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI: %w", err)
		}
		m, ok := final.(tui.Model)
		if !ok {
			return fmt.Errorf("terminal UI returned %T", final)
		}
		if m.Err() != nil {
			return m.Err()
		}
		snap = m.Snapshot()
	}

	if snap.Status == task.StatusError {
		return fmt.Errorf("task %s failed: %s", opts.TaskID, snap.Error)
	}

	res, err := c.Result(ctx, opts.TaskID)
	if err != nil {
		return err
	}

	summary := tui.Summary{Pages: res.PageCount, Failures: res.FailedPages}
	if snap.StartTime != nil && snap.EndTime != nil {
		summary.Duration = snap.EndTime.Sub(*snap.StartTime)
	}

	if opts.Download {
		var buf bytes.Buffer
		name, err := c.Download(ctx, opts.TaskID, &buf)
		if err != nil {
			return err
		}
		out := opts.Out
		if out == "" {
			out = name
		}
		if out == "" {
			out = opts.TaskID
		}
		if err := afero.WriteFile(fs, out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		summary.Output = out
	}

	fmt.Fprint(w, tui.RenderSummary(summary))
	return nil
}

// pollUntilDone prints one line per progress change until the task reaches
// a terminal state.
func pollUntilDone(ctx context.Context, poll tui.Poller, interval time.Duration, w io.Writer) (task.Snapshot, error) {
	if interval <= 0 {
		interval = tui.DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		snap, err := poll(ctx)
		if err != nil {
			return snap, err
		}
		if snap.ProcessedPages != last {
			fmt.Fprintf(w, "%3d%% %d/%d pages\n", snap.Progress, snap.ProcessedPages, snap.TotalPages)
			last = snap.ProcessedPages
		}
		if snap.Status.Terminal() {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}
