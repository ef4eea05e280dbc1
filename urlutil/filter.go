package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope is the host and path-prefix boundary of one crawl.
type Scope struct {
	Host       string // lowercased host, including any port
	PathPrefix string // path of the normalized seed URL
}

// NewScope derives the crawl scope from a seed URL.
func NewScope(seedURL string) (Scope, error) {
	normalized, err := Normalize(seedURL)
	if err != nil {
		return Scope{}, fmt.Errorf("derive scope: %w", err)
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return Scope{}, fmt.Errorf("derive scope: %w", err)
	}
	if !IsHTTPScheme(normalized) {
		return Scope{}, fmt.Errorf("derive scope from %q: unsupported scheme %q", seedURL, parsed.Scheme)
	}
	return Scope{Host: parsed.Host, PathPrefix: parsed.Path}, nil
}

// Contains reports whether candidate has exactly the scope's host and a path
// starting with the scope's prefix. Unparseable candidates are out of scope.
func (s Scope) Contains(candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return false
	}
	if !strings.EqualFold(parsed.Host, s.Host) {
		return false
	}
	return strings.HasPrefix(parsed.Path, s.PathPrefix)
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// Resolve resolves a possibly-relative href against the page it was found
// on. ok is false for malformed or non-HTTP links.
func Resolve(href string, pageURL *url.URL) (abs string, ok bool) {
	href = strings.TrimSpace(href)
	if href == "" || pageURL == nil {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs = pageURL.ResolveReference(ref).String()
	if !IsHTTPScheme(abs) {
		return "", false
	}
	return abs, true
}
