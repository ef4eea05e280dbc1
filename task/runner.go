package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lukemcguire/docscrape/crawler"
	"github.com/lukemcguire/docscrape/export"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/metrics"
	"github.com/lukemcguire/docscrape/output"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/urlutil"
)

// ErrInvalidRequest is returned by Submit for requests that cannot start.
var ErrInvalidRequest = errors.New("invalid crawl request")

// Crawler runs one crawl. *crawler.Crawler satisfies it.
type Crawler interface {
	Run(ctx context.Context, seedURL string, onProgress crawler.ProgressFunc) (*result.Result, error)
}

// Request describes a crawl to start.
type Request struct {
	URL      string
	Format   string // Export format name; empty selects single_file
	Filename string // Base name for the on-disk mirror; derived from URL when empty
}

// Runner starts crawls in the background and records their outcome in a
// Store.
type Runner struct {
	store   *Store
	crawler Crawler
	mirror  *output.Mirror
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMirror writes every completed export through m.
func WithMirror(m *output.Mirror) RunnerOption {
	return func(r *Runner) { r.mirror = m }
}

// WithMetrics records task and page metrics on m.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithClock overrides the time source used for export timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner returns a Runner that stores tasks in store and crawls with c.
func NewRunner(store *Store, c Crawler, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:   store,
		crawler: c,
		log:     logger.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the store the runner writes to.
func (r *Runner) Store() *Store {
	return r.store
}

// Submit validates req, registers a task and starts the crawl without
// waiting for it. ctx bounds the lifetime of the crawl, so it should outlive
// the call that submits it.
func (r *Runner) Submit(ctx context.Context, req Request) (string, error) {
	if _, err := urlutil.NewScope(req.URL); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	filename := export.DefaultFilename(req.URL)
	if req.Filename != "" {
		filename = export.SafeName(req.Filename)
	}

	id := r.store.Create(req.URL, string(format), filename)
	r.log.Info("Task submitted",
		logger.String("task_id", id),
		logger.String("url", req.URL),
		logger.String("format", string(format)))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, id, req.URL, format, filename)
	}()
	return id, nil
}

// Wait blocks until every submitted crawl has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id, seedURL string, format export.Format, filename string) {
	log := r.log.With(logger.String("task_id", id))
	start := time.Now()

	if err := r.store.Begin(id); err != nil {
		log.Error("Task vanished before start", logger.Error(err))
		return
	}
	if r.metrics != nil {
		r.metrics.TaskStarted()
	}

	defer func() {
		if p := recover(); p != nil {
			r.fail(log, id, fmt.Errorf("crawl panicked: %v", p), start)
		}
	}()

	res, err := r.crawler.Run(ctx, seedURL, func(evt crawler.CrawlEvent) {
		if err := r.store.Advance(id, evt.Discovered); err != nil {
			log.Warn("Progress update dropped", logger.Error(err))
		}
		if evt.Failed() {
			log.Debug("Page skipped",
				logger.String("page", evt.URL),
				logger.Int("status", evt.StatusCode),
				logger.String("category", string(evt.ErrorCategory)))
		}
		if r.metrics != nil {
			r.metrics.PageProcessed(string(evt.ErrorCategory), evt.Duration)
		}
	})
	if err != nil {
		r.fail(log, id, err, start)
		return
	}

	art, err := export.Assemble(res.Pages, format, export.Context{
		SeedURL:  res.SeedURL,
		BasePath: res.BasePath,
		Time:     r.now(),
	})
	if err != nil {
		r.fail(log, id, err, start)
		return
	}
	if r.metrics != nil {
		r.metrics.ExportAssembled(string(format), len(art.Data))
	}

	if r.mirror != nil {
		if _, err := r.mirror.Write(filename, art); err != nil {
			log.Warn("Export mirror failed", logger.Error(err))
		}
	}

	if err := r.store.Complete(id, NewResult(res, art, r.now())); err != nil {
		log.Error("Task vanished before completion", logger.Error(err))
		return
	}
	if r.metrics != nil {
		r.metrics.TaskFinished(metrics.StatusCompleted, time.Since(start))
	}
	log.Info("Task completed",
		logger.Int("pages", len(res.Pages)),
		logger.Int("failed", len(res.Failures)),
		logger.Duration("duration", time.Since(start)))
}

func (r *Runner) fail(log logger.Logger, id string, err error, start time.Time) {
	if storeErr := r.store.Fail(id, err); storeErr != nil {
		log.Error("Task vanished before failure", logger.Error(storeErr))
	}
	if r.metrics != nil {
		r.metrics.TaskFinished(metrics.StatusError, time.Since(start))
	}
	log.Error("Task failed", logger.Error(err))
}
