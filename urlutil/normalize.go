package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrEmptyURL is returned when normalizing an empty string.
	ErrEmptyURL = errors.New("cannot normalize empty URL")
	// ErrNotAbsolute is returned when a URL lacks a scheme or host.
	ErrNotAbsolute = errors.New("URL must have both scheme and host")
)

// Normalize takes a raw URL string and returns its canonical form:
// - scheme and host lowercased
// - fragment (#section) stripped
// - trailing slash stripped, root path included
// - query parameters preserved
//
// Normalize is idempotent.
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", ErrEmptyURL
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, ErrNotAbsolute)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	// A run of trailing slashes counts as one separator so that a second
	// pass never finds another one to strip.
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = strings.TrimRight(parsed.RawPath, "/")

	return parsed.String(), nil
}
