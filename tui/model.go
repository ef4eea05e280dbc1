// Package tui provides the Bubble Tea terminal UI for docscrape, showing
// live crawl progress and a styled summary once the crawl finishes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/docscrape/task"
)

const (
	// DefaultInterval is the default delay between two polls.
	DefaultInterval = 250 * time.Millisecond
	maxPollErrors   = 3
	maxBarWidth     = 60
)

// ErrInterrupted is reported when the user quits before the task finishes.
var ErrInterrupted = errors.New("interrupted")

// Model is the Bubble Tea model that follows one crawl task.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	poller   Poller
	interval time.Duration
	spinner  spinner.Model
	bar      progress.Model

	snap       task.Snapshot
	pollErrors int
	quitting   bool
	done       bool
	err        error
	width      int
}

// NewModel returns a model polling p every interval. cancel is called when
// the user quits and may be nil.
func NewModel(ctx context.Context, cancel context.CancelFunc, p Poller, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if cancel == nil {
		cancel = func() {}
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		ctx:      ctx,
		cancel:   cancel,
		poller:   p,
		interval: interval,
		spinner:  spin,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init starts the spinner and the first poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, poll(m.ctx, m.poller))
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.err = ErrInterrupted
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-10, 10), maxBarWidth)

	case pollMsg:
		return m, poll(m.ctx, m.poller)

	case SnapshotMsg:
		m.pollErrors = 0
		// Progress shown to the user never moves backwards.
		if msg.Snapshot.Progress < m.snap.Progress && msg.Snapshot.Status == task.StatusRunning {
			msg.Snapshot.Progress = m.snap.Progress
		}
		m.snap = msg.Snapshot
		switch m.snap.Status {
		case task.StatusCompleted:
			m.done = true
			return m, tea.Quit
		case task.StatusError:
			m.done = true
			m.err = errors.New(m.snap.Error)
			return m, tea.Quit
		case task.StatusNotFound:
			m.done = true
			m.err = task.ErrNotFound
			return m, tea.Quit
		}
		return m, schedulePoll(m.interval)

	case PollErrorMsg:
		m.pollErrors++
		if m.pollErrors >= maxPollErrors || errors.Is(msg.Err, context.Canceled) {
			m.done = true
			m.err = msg.Err
			return m, tea.Quit
		}
		return m, schedulePoll(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return successStyle.Render(fmt.Sprintf("Crawl completed: %d pages processed", m.snap.ProcessedPages)) + "\n"
	}
	if m.quitting {
		return dimStyle.Render("Stopped.") + "\n"
	}
	return fmt.Sprintf("%s Crawling %s\n  %s %d/%d pages\n",
		m.spinner.View(),
		dimStyle.Render(m.snap.URL),
		m.bar.ViewAs(float64(m.snap.Progress)/100),
		m.snap.ProcessedPages, m.snap.TotalPages)
}

// Snapshot returns the last polled snapshot.
func (m Model) Snapshot() task.Snapshot {
	return m.snap
}

// Err returns why the model stopped, or nil when the task completed.
func (m Model) Err() error {
	return m.err
}

// Completed reports whether the task reached StatusCompleted.
func (m Model) Completed() bool {
	return m.done && m.err == nil && m.snap.Status == task.StatusCompleted
}
