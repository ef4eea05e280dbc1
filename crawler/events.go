package crawler

import (
	"time"

	"github.com/lukemcguire/docscrape/result"
)

// CrawlEvent reports the outcome of one processed page together with the
// running totals of the crawl at that moment.
type CrawlEvent struct {
	URL           string
	StatusCode    int
	Duration      time.Duration
	Error         string
	ErrorCategory result.ErrorCategory
	Processed     int // Pages processed so far, this one included
	Discovered    int // Distinct in-scope URLs discovered so far
	Extracted     int // Pages that produced content so far
}

// Failed reports whether the page contributed no content.
func (e CrawlEvent) Failed() bool {
	return e.Error != ""
}

// ProgressFunc receives one event per processed page. It is called from the
// crawl's driving goroutine, never concurrently for the same crawl.
type ProgressFunc func(CrawlEvent)
