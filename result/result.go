// Package result holds the output of one documentation crawl and the
// writers that serialize it.
package result

import "time"

// Page is one successfully extracted documentation page.
type Page struct {
	URL      string `json:"url"`      // Normalized page URL
	Title    string `json:"title"`    // Text of the page's <title>
	Markdown string `json:"markdown"` // Extracted main-region Markdown
}

// Failure records a page that contributed no content.
type Failure struct {
	URL           string        `json:"url"`                   // The URL that was fetched
	StatusCode    int           `json:"status_code,omitempty"` // HTTP status code (0 if unreachable)
	Error         string        `json:"error"`                 // Why the page was skipped
	ErrorCategory ErrorCategory `json:"error_type"`            // Category classification of the error
}

// CrawlStats contains aggregate statistics for a crawl.
type CrawlStats struct {
	Processed  int           `json:"processed"`  // Pages fetched, successfully or not
	Discovered int           `json:"discovered"` // Distinct in-scope URLs seen
	Failed     int           `json:"failed"`     // Pages that contributed no content
	Duration   time.Duration `json:"duration"`   // Total time taken for the crawl
}

// Result represents the complete output of one crawl.
type Result struct {
	SeedURL  string     // Normalized start URL
	BasePath string     // Path prefix bounding the crawl
	Pages    []Page     // Extracted pages in discovery order
	Failures []Failure  // Pages that failed, in completion order
	Stats    CrawlStats // Aggregate statistics
}

