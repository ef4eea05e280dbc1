package crawler

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"testing"
	"time"
)

func TestIsBinaryContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"PDF", "application/pdf", true},
		{"PDF with charset", "application/pdf; charset=utf-8", true},
		{"PNG", "image/png", true},
		{"SVG", "image/svg+xml", true},
		{"ZIP", "application/zip", true},
		{"GZIP", "application/gzip", true},
		{"Octet stream", "application/octet-stream", true},
		{"MP4", "video/mp4", true},
		{"MP3", "audio/mpeg", true},
		{"WOFF2", "font/woff2", true},
		{"Upper case", "IMAGE/PNG", true},
		{"HTML", "text/html", false},
		{"HTML with charset", "text/html; charset=utf-8", false},
		{"XHTML", "application/xhtml+xml", false},
		{"Plain text", "text/plain", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBinaryContentType(tt.contentType); got != tt.want {
				t.Errorf("isBinaryContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.BatchSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.UserAgent == "" || cfg.MaxBodyBytes <= 0 {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestNewFillsZeroConfig(t *testing.T) {
	c := New(Config{BatchSize: 4})
	cfg := c.Config()
	if cfg.BatchSize != 4 {
		t.Errorf("BatchSize = %d, want 4", cfg.BatchSize)
	}
	if cfg.RequestTimeout != DefaultConfig().RequestTimeout {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
}

func TestCheckRedirect(t *testing.T) {
	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "example.com", Path: "/loop"}}
	if err := checkRedirect(req, make([]*http.Request, maxRedirects-1)); err != nil {
		t.Errorf("checkRedirect() under limit = %v, want nil", err)
	}
	if err := checkRedirect(req, make([]*http.Request, maxRedirects)); err == nil {
		t.Error("checkRedirect() at limit = nil, want error")
	}
}

func TestURLSet(t *testing.T) {
	s := newURLSet(100)

	if s.Contains("https://example.com/a") {
		t.Error("Contains() true for empty set")
	}
	if !s.Add("https://example.com/a") {
		t.Error("Add() returned false for first insert")
	}
	if s.Add("https://example.com/a") {
		t.Error("Add() returned true for duplicate")
	}
	if !s.Contains("https://example.com/a") {
		t.Error("Contains() false after Add()")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestURLSetManyEntries(t *testing.T) {
	// Far past the filter's estimate so false positives occur.
	s := newURLSet(10)
	for i := range 2000 {
		if !s.Add("https://example.com/p" + strconv.Itoa(i)) {
			t.Fatalf("Add() reported duplicate for distinct entry %d", i)
		}
	}
	if s.Len() != 2000 {
		t.Errorf("Len() = %d, want 2000", s.Len())
	}
}

func TestFrontier(t *testing.T) {
	f := newFrontier("https://example.com/docs")

	if f.discovered() != 1 {
		t.Fatalf("discovered() = %d, want 1", f.discovered())
	}

	batch := f.nextBatch(10)
	if !slices.Equal(batch, []string{"https://example.com/docs"}) {
		t.Fatalf("nextBatch() = %v", batch)
	}
	if !f.empty() {
		t.Error("empty() = false after draining seed")
	}

	// Visited URLs and already queued URLs are not re-queued.
	if f.push("https://example.com/docs") {
		t.Error("push() accepted a visited URL")
	}
	if !f.push("https://example.com/docs/a") || f.push("https://example.com/docs/a") {
		t.Error("push() did not dedupe queued URL")
	}
	f.push("https://example.com/docs/b")
	f.push("https://example.com/docs/c")

	if got := f.nextBatch(2); !slices.Equal(got, []string{"https://example.com/docs/a", "https://example.com/docs/b"}) {
		t.Errorf("nextBatch(2) = %v", got)
	}
	if got := f.nextBatch(2); !slices.Equal(got, []string{"https://example.com/docs/c"}) {
		t.Errorf("nextBatch(2) = %v", got)
	}
	if f.discovered() != 4 {
		t.Errorf("discovered() = %d, want 4", f.discovered())
	}
	want := []string{
		"https://example.com/docs",
		"https://example.com/docs/a",
		"https://example.com/docs/b",
		"https://example.com/docs/c",
	}
	if !slices.Equal(f.discoveryOrder(), want) {
		t.Errorf("discoveryOrder() = %v, want %v", f.discoveryOrder(), want)
	}
}
