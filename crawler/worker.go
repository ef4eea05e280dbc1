package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/lukemcguire/docscrape/content"
	"github.com/lukemcguire/docscrape/result"
	"github.com/lukemcguire/docscrape/urlutil"
	"golang.org/x/net/html/charset"
)

// Config holds the fetch policy of a crawl.
type Config struct {
	BatchSize      int           // URLs fetched concurrently per batch (default 10)
	RequestTimeout time.Duration // Per-request timeout (default 30s)
	UserAgent      string        // User-Agent header sent with every request
	MaxBodyBytes   int64         // Larger response bodies fail the page
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:      10,
		RequestTimeout: 30 * time.Second,
		UserAgent:      "docscrape/1.0 (+https://github.com/lukemcguire/docscrape)",
		MaxBodyBytes:   10 << 20,
	}
}

// maxRedirects bounds redirect chains before a page counts as a redirect loop.
const maxRedirects = 10

// pageResult is what one worker hands back to the driving loop.
type pageResult struct {
	URL        string        // The URL that was dequeued
	Page       *content.Page // Extraction result, nil on failure
	StatusCode int           // HTTP status code (0 if unreachable)
	Duration   time.Duration // Time spent fetching and extracting
	Err        error         // Why the page contributed nothing
}

// fetchPage downloads pageURL and extracts its content. Every failure is
// captured in the returned result; fetchPage never panics on bad input.
// A page whose redirects end outside scope is a failure.
func (c *Crawler) fetchPage(ctx context.Context, scope urlutil.Scope, pageURL string) (res pageResult) {
	res.URL = pageURL
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("build request: %w", err)
		return
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("get %s: %w", pageURL, err)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
		_ = resp.Body.Close()
	}()

	res.StatusCode = resp.StatusCode
	if final := resp.Request.URL.String(); final != pageURL && !scope.Contains(final) {
		res.Err = fmt.Errorf("%w: redirected to %s", result.ErrOutOfScope, final)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if isBinaryContentType(contentType) {
		res.Err = fmt.Errorf("%w: %s", result.ErrUnsupportedContent, contentType)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		res.Err = fmt.Errorf("read body: %w", err)
		return
	}
	if int64(len(raw)) > c.cfg.MaxBodyBytes {
		res.Err = fmt.Errorf("%w: more than %d bytes", result.ErrBodyTooLarge, c.cfg.MaxBodyBytes)
		return
	}

	body, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		res.Err = fmt.Errorf("%w: decode body: %w", result.ErrParse, err)
		return
	}

	page, err := c.extractor.Extract(body, resp.Request.URL)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", result.ErrParse, err)
		return
	}
	res.Page = page
	return
}

// isBinaryContentType reports whether a Content-Type can never hold a
// documentation page. An empty type is not binary.
func isBinaryContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch {
	case strings.HasPrefix(mediaType, "image/"),
		strings.HasPrefix(mediaType, "audio/"),
		strings.HasPrefix(mediaType, "video/"),
		strings.HasPrefix(mediaType, "font/"):
		return true
	}

	switch mediaType {
	case "application/pdf",
		"application/zip",
		"application/x-zip-compressed",
		"application/gzip",
		"application/x-gzip",
		"application/x-tar",
		"application/vnd.rar",
		"application/x-7z-compressed",
		"application/octet-stream",
		"application/wasm":
		return true
	}
	return false
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d redirects at %s", result.ErrRedirectLoop, len(via), req.URL)
	}
	return nil
}
