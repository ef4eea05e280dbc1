package task

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every task of the process. Tasks are never evicted.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*record
	seq   uint64
	now   func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*record),
		now:   time.Now,
	}
}

func (s *Store) get(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.tasks[id]
	return r, ok
}

func (s *Store) mutate(id string, fn func(r *record)) error {
	r, ok := s.get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
	return nil
}

// Create registers a running task for seedURL and returns its id.
func (s *Store) Create(seedURL, format, filename string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks[id] = &record{
		id:       id,
		seq:      s.seq,
		url:      seedURL,
		format:   format,
		filename: filename,
		status:   StatusRunning,
	}
	return id
}

// Status returns a snapshot of id, or a StatusNotFound snapshot.
func (s *Store) Status(id string) Snapshot {
	r, ok := s.get(id)
	if !ok {
		return Snapshot{ID: id, Status: StatusNotFound}
	}
	return r.snapshot()
}

// Result returns the payload of a completed task. It fails with
// ErrNotFound for unknown ids and ErrNotReady for running or failed tasks.
func (s *Store) Result(id string) (*Result, error) {
	r, ok := s.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.status {
	case StatusCompleted:
		return r.result, nil
	case StatusError:
		return nil, fmt.Errorf("%w: task failed: %s", ErrNotReady, r.err)
	default:
		return nil, fmt.Errorf("%w: status %s", ErrNotReady, r.status)
	}
}

// Begin marks the start of the crawl: one page known, none processed.
func (s *Store) Begin(id string) error {
	return s.mutate(id, func(r *record) {
		r.startTime = s.now()
		r.processed = 0
		r.total = 1
		r.progress = 0
	})
}

// Advance counts one processed page and raises the discovered total to
// total. The total never shrinks and never drops below the processed count.
func (s *Store) Advance(id string, total int) error {
	return s.mutate(id, func(r *record) {
		if r.status.Terminal() {
			return
		}
		r.processed++
		r.total = max(r.total, total, r.processed)
		r.recomputeProgress()
	})
}

// Complete stores res and moves the task to StatusCompleted.
func (s *Store) Complete(id string, res *Result) error {
	return s.mutate(id, func(r *record) {
		r.status = StatusCompleted
		r.progress = 100
		r.endTime = s.now()
		r.result = res
		r.err = ""
	})
}

// Fail moves the task to StatusError with err's message.
func (s *Store) Fail(id string, err error) error {
	return s.mutate(id, func(r *record) {
		r.status = StatusError
		r.endTime = s.now()
		if err != nil {
			r.err = err.Error()
		}
	})
}

// List returns snapshots of all tasks, newest first.
func (s *Store) List() []Snapshot {
	s.mu.RLock()
	records := make([]*record, 0, len(s.tasks))
	for _, r := range s.tasks {
		records = append(records, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b *record) int {
		switch {
		case a.seq > b.seq:
			return -1
		case a.seq < b.seq:
			return 1
		default:
			return 0
		}
	})

	out := make([]Snapshot, len(records))
	for i, r := range records {
		out[i] = r.snapshot()
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
