package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/docscrape/task"
)

// Poller returns the latest snapshot of the watched task.
type Poller func(ctx context.Context) (task.Snapshot, error)

// SnapshotMsg carries a freshly polled snapshot.
type SnapshotMsg struct {
	Snapshot task.Snapshot
}

// PollErrorMsg reports a failed poll.
type PollErrorMsg struct {
	Err error
}

// pollMsg asks the model to poll again.
type pollMsg struct{}

// poll returns a tea.Cmd that calls p once.
func poll(ctx context.Context, p Poller) tea.Cmd {
	return func() tea.Msg {
		snap, err := p(ctx)
		if err != nil {
			return PollErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// schedulePoll returns a tea.Cmd that fires a pollMsg after d.
func schedulePoll(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}
