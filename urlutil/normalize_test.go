package urlutil

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "fragment and trailing slash stripping",
			input:    "https://x.com/a/#frag",
			expected: "https://x.com/a",
		},
		{
			name:     "fragment stripping",
			input:    "https://example.com/page#section",
			expected: "https://example.com/page",
		},
		{
			name:     "trailing slash stripping",
			input:    "https://example.com/about/",
			expected: "https://example.com/about",
		},
		{
			name:     "root path slash stripped",
			input:    "https://example.com/",
			expected: "https://example.com",
		},
		{
			name:     "repeated trailing slashes",
			input:    "https://example.com/docs//",
			expected: "https://example.com/docs",
		},
		{
			name:     "query params preserved",
			input:    "https://example.com/search?q=foo",
			expected: "https://example.com/search?q=foo",
		},
		{
			name:     "scheme and host lowercased",
			input:    "HTTPS://Example.Com/Page",
			expected: "https://example.com/Page",
		},
		{
			name:     "port preserved",
			input:    "http://127.0.0.1:8080/docs/",
			expected: "http://127.0.0.1:8080/docs",
		},
		{
			name:     "already normalized URL passes through",
			input:    "https://example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:    "empty string returns error",
			input:   "",
			wantErr: true,
		},
		{
			name:    "invalid URL returns error",
			input:   "://invalid",
			wantErr: true,
		},
		{
			name:    "relative URL returns error",
			input:   "/docs/intro",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://x.com/a/#frag",
		"https://example.com/",
		"https://example.com/docs//",
		"HTTP://Example.com/A/B/?q=1#x",
		"https://example.com/a%2Fb/",
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	if _, err := Normalize(""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("Normalize(\"\") error = %v, want ErrEmptyURL", err)
	}
	if _, err := Normalize("example.com/page"); !errors.Is(err, ErrNotAbsolute) {
		t.Errorf("Normalize(no scheme) error = %v, want ErrNotAbsolute", err)
	}
}
