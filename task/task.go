// Package task tracks asynchronous crawl jobs: their lifecycle state,
// progress counters and, once finished, their export payloads.
package task

import (
	"errors"
	"sync"
	"time"

	"github.com/lukemcguire/docscrape/export"
	"github.com/lukemcguire/docscrape/result"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	// StatusNotFound is reported for ids the store has never issued.
	StatusNotFound Status = "not_found"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

var (
	// ErrNotFound is returned for unknown task ids.
	ErrNotFound = errors.New("task not found")
	// ErrNotReady is returned when a task has no result yet, either because
	// it is still running or because it failed.
	ErrNotReady = errors.New("task not completed")
)

// Snapshot is a point-in-time copy of a task's observable state.
type Snapshot struct {
	ID             string     `json:"task_id"`
	Status         Status     `json:"status"`
	URL            string     `json:"url,omitempty"`
	Format         string     `json:"format,omitempty"`
	Filename       string     `json:"filename,omitempty"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Progress       int        `json:"progress"`
	ProcessedPages int        `json:"processed_pages"`
	TotalPages     int        `json:"total_pages"`
	Error          string     `json:"error,omitempty"`
}

// Result is the payload of a completed task. It is immutable once stored.
type Result struct {
	Format   export.Format
	Markdown string            // Pages joined in discovery order
	Mapping  map[string]string // Page URL to Markdown
	Order    []string          // Mapping keys in discovery order
	Data     []byte            // Download body in Format
	Failures []result.Failure
	Stats    result.CrawlStats
	Finished time.Time
}

// Empty reports whether the crawl produced no content at all.
func (r *Result) Empty() bool {
	return len(r.Mapping) == 0
}

// CrawlResult rebuilds the crawl outcome behind r, with pages in discovery
// order. Page titles are not retained.
func (r *Result) CrawlResult() *result.Result {
	pages := make([]result.Page, len(r.Order))
	for i, u := range r.Order {
		pages[i] = result.Page{URL: u, Markdown: r.Mapping[u]}
	}
	return &result.Result{Pages: pages, Failures: r.Failures, Stats: r.Stats}
}

// NewResult builds the payload of a completed task from a crawl result and
// its assembled artifact.
func NewResult(res *result.Result, art *export.Artifact, finished time.Time) *Result {
	order := make([]string, len(res.Pages))
	for i, p := range res.Pages {
		order[i] = p.URL
	}
	return &Result{
		Format:   art.Format,
		Markdown: art.Markdown,
		Mapping:  art.Mapping,
		Order:    order,
		Data:     art.Data,
		Failures: res.Failures,
		Stats:    res.Stats,
		Finished: finished,
	}
}

// record is the mutable state of one task, guarded by its own mutex.
type record struct {
	mu sync.Mutex

	id       string
	seq      uint64
	url      string
	format   string
	filename string

	status    Status
	startTime time.Time
	endTime   time.Time
	processed int
	total     int
	progress  int
	err       string
	result    *Result
}

func (r *record) snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		ID:             r.id,
		Status:         r.status,
		URL:            r.url,
		Format:         r.format,
		Filename:       r.filename,
		Progress:       r.progress,
		ProcessedPages: r.processed,
		TotalPages:     r.total,
		Error:          r.err,
	}
	if !r.startTime.IsZero() {
		t := r.startTime
		s.StartTime = &t
	}
	if !r.endTime.IsZero() {
		t := r.endTime
		s.EndTime = &t
	}
	return s
}

// recomputeProgress keeps progress within [previous, 100].
func (r *record) recomputeProgress() {
	if r.total < 1 {
		return
	}
	p := min(100, r.processed*100/r.total)
	r.progress = max(r.progress, p)
}
