package result

import (
	"context"
	"fmt"
	"net"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		want       ErrorCategory
	}{
		{"redirect loop", fmt.Errorf("get: %w", ErrRedirectLoop), 0, CategoryRedirectLoop},
		{"redirect out of scope", fmt.Errorf("%w: redirected to https://other.org", ErrOutOfScope), 200, CategoryOutOfScope},
		{"body too large", fmt.Errorf("%w: more than 10 bytes", ErrBodyTooLarge), 200, CategoryTooLarge},
		{"4xx status", nil, 404, Category4xx},
		{"5xx status", nil, 503, Category5xx},
		{"timeout error", fmt.Errorf("fetch: %w", context.DeadlineExceeded), 0, CategoryTimeout},
		{"unsupported content", fmt.Errorf("%w: image/png", ErrUnsupportedContent), 200, CategoryUnsupported},
		{"parse error", fmt.Errorf("%w: bad", ErrParse), 200, CategoryParse},
		{"no error no status", nil, 0, CategoryUnknown},
		{"3xx status is unknown", nil, 301, CategoryUnknown},
		{"plain error", fmt.Errorf("boom"), 0, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, tt.statusCode)
			if got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError_DNSFailure(t *testing.T) {
	dnsErr := &net.DNSError{
		Err:  "no such host",
		Name: "example.invalid",
	}

	got := ClassifyError(fmt.Errorf("get: %w", dnsErr), 0)
	if got != CategoryDNSFailure {
		t.Errorf("ClassifyError(DNSError) = %v, want %v", got, CategoryDNSFailure)
	}
}

func TestFormatCategory(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{CategoryTimeout, "Timeouts"},
		{CategoryDNSFailure, "DNS Failures"},
		{CategoryConnectionRefused, "Connection Refused"},
		{Category4xx, "Client Errors (4xx)"},
		{Category5xx, "Server Errors (5xx)"},
		{CategoryRedirectLoop, "Redirect Loops"},
		{CategoryOutOfScope, "Redirected Out of Scope"},
		{CategoryTooLarge, "Oversized Pages"},
		{CategoryUnsupported, "Unsupported Content"},
		{CategoryParse, "Parse Errors"},
		{CategoryUnknown, "Other Errors"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got := FormatCategory(tt.cat)
			if got != tt.want {
				t.Errorf("FormatCategory(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}
