// Package crawler walks a documentation site breadth first, one bounded
// batch of concurrent fetches at a time, and extracts every in-scope page
// to Markdown.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/docscrape/content"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/urlutil"
)

// Crawler fetches and extracts documentation pages. A Crawler holds no
// per-crawl state, so one instance can serve many concurrent Run calls.
type Crawler struct {
	cfg       Config
	client    *http.Client
	extractor *content.Extractor
	log       logger.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) { c.client = client }
}

// WithExtractor replaces the default content extractor.
func WithExtractor(extractor *content.Extractor) Option {
	return func(c *Crawler) { c.extractor = extractor }
}

// WithLogger sets the logger used for per-page diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(c *Crawler) { c.log = log }
}

// New creates a Crawler with the given configuration. Zero config fields
// fall back to DefaultConfig values.
func New(cfg Config, opts ...Option) *Crawler {
	defaults := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}

	c := &Crawler{
		cfg:       cfg,
		client:    &http.Client{CheckRedirect: checkRedirect},
		extractor: content.NewExtractor(),
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Crawler) Config() Config {
	return c.cfg
}

// Run crawls every page reachable from seedURL inside its host and path
// scope. Page failures are recorded in the result and never fail the run;
// an error is returned only when seedURL cannot be scoped or ctx ends
// before the frontier is exhausted. onProgress may be nil.
func (c *Crawler) Run(ctx context.Context, seedURL string, onProgress ProgressFunc) (*result.Result, error) {
	start := time.Now()

	scope, err := urlutil.NewScope(seedURL)
	if err != nil {
		return nil, err
	}
	seed, err := urlutil.Normalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("normalize start URL: %w", err)
	}

	log := c.log.With(logger.String("seed", seed))
	log.Info("Crawl started",
		logger.String("host", scope.Host),
		logger.String("base_path", scope.PathPrefix),
		logger.Int("batch_size", c.cfg.BatchSize))

	f := newFrontier(seed)
	pages := make(map[string]result.Page)
	var failures []result.Failure
	processed := 0

	for !f.empty() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("crawl %s interrupted: %w", seed, err)
		}

		batch := f.nextBatch(c.cfg.BatchSize)
		for res := range c.fetchBatch(ctx, scope, batch) {
			processed++
			evt := CrawlEvent{
				URL:        res.URL,
				StatusCode: res.StatusCode,
				Duration:   res.Duration,
			}

			if res.Err != nil {
				category := result.ClassifyError(res.Err, res.StatusCode)
				failures = append(failures, result.Failure{
					URL:           res.URL,
					StatusCode:    res.StatusCode,
					Error:         res.Err.Error(),
					ErrorCategory: category,
				})
				evt.Error = res.Err.Error()
				evt.ErrorCategory = category
				log.Warn("Page skipped",
					logger.String("url", res.URL),
					logger.Int("status", res.StatusCode),
					logger.String("category", string(category)),
					logger.Error(res.Err))
			} else {
				pages[res.URL] = result.Page{
					URL:      res.URL,
					Title:    res.Page.Title,
					Markdown: res.Page.Markdown,
				}
				queued := 0
				for _, link := range res.Page.Links {
					if scope.Contains(link) && f.push(link) {
						queued++
					}
				}
				log.Debug("Page extracted",
					logger.String("url", res.URL),
					logger.String("region", res.Page.Region),
					logger.Int("new_links", queued),
					logger.Duration("duration", res.Duration))
			}

			evt.Processed = processed
			evt.Discovered = f.discovered()
			evt.Extracted = len(pages)
			if onProgress != nil {
				onProgress(evt)
			}
		}
	}

	ordered := make([]result.Page, 0, len(pages))
	for _, u := range f.discoveryOrder() {
		if p, ok := pages[u]; ok {
			ordered = append(ordered, p)
		}
	}

	stats := result.CrawlStats{
		Processed:  processed,
		Discovered: f.discovered(),
		Failed:     len(failures),
		Duration:   time.Since(start),
	}
	log.Info("Crawl finished",
		logger.Int("pages", len(ordered)),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))

	return &result.Result{
		SeedURL:  seed,
		BasePath: scope.PathPrefix,
		Pages:    ordered,
		Failures: failures,
		Stats:    stats,
	}, nil
}

// fetchBatch fetches every URL of batch concurrently and streams the results
// in completion order. The channel is closed once the whole batch is done.
func (c *Crawler) fetchBatch(ctx context.Context, scope urlutil.Scope, batch []string) <-chan pageResult {
	out := make(chan pageResult, len(batch))

	var g errgroup.Group
	g.SetLimit(c.cfg.BatchSize)
	for _, u := range batch {
		g.Go(func() error {
			out <- c.isolatedFetch(ctx, scope, u)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}

// isolatedFetch turns a panic while processing one page into that page's
// failure.
func (c *Crawler) isolatedFetch(ctx context.Context, scope urlutil.Scope, pageURL string) (res pageResult) {
	defer func() {
		if r := recover(); r != nil {
			res = pageResult{URL: pageURL, Err: fmt.Errorf("%w: panic: %v", result.ErrParse, r)}
		}
	}()
	return c.fetchPage(ctx, scope, pageURL)
}
