package result

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorCategory represents the classification of a page failure.
type ErrorCategory string

const (
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryDNSFailure        ErrorCategory = "dns_failure"
	CategoryConnectionRefused ErrorCategory = "connection_refused"
	Category4xx               ErrorCategory = "4xx"
	Category5xx               ErrorCategory = "5xx"
	CategoryRedirectLoop      ErrorCategory = "redirect_loop"
	CategoryOutOfScope        ErrorCategory = "out_of_scope"
	CategoryTooLarge          ErrorCategory = "too_large"
	CategoryUnsupported       ErrorCategory = "unsupported_content"
	CategoryParse             ErrorCategory = "parse_error"
	CategoryUnknown           ErrorCategory = "unknown"
)

// Sentinel errors raised while fetching a page. Wrap them with %w so that
// ClassifyError can recognize them.
var (
	ErrRedirectLoop       = errors.New("too many redirects")
	ErrOutOfScope         = errors.New("redirect left the crawl scope")
	ErrBodyTooLarge       = errors.New("response body too large")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrParse              = errors.New("extract page content")
)

// ClassifyError determines the failure category of a page from the fetch
// error and the HTTP status code, if any.
func ClassifyError(err error, statusCode int) ErrorCategory {
	// Redirect problems win over the status of the last response
	switch {
	case errors.Is(err, ErrRedirectLoop):
		return CategoryRedirectLoop
	case errors.Is(err, ErrOutOfScope):
		return CategoryOutOfScope
	}

	// Check HTTP status codes
	switch {
	case statusCode >= 400 && statusCode <= 499:
		return Category4xx
	case statusCode >= 500:
		return Category5xx
	}

	// If no error, return unknown
	if err == nil {
		return CategoryUnknown
	}

	// Errors raised by the fetcher itself
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, ErrUnsupportedContent):
		return CategoryUnsupported
	case errors.Is(err, ErrBodyTooLarge):
		return CategoryTooLarge
	case errors.Is(err, ErrParse):
		return CategoryParse
	}

	// Check for DNS failure
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNSFailure
	}

	// Check for connection refused or other net operation errors
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" && strings.Contains(opErr.Error(), "connection refused") {
			return CategoryConnectionRefused
		}
		// Check if it's a timeout via OpError
		if opErr.Timeout() {
			return CategoryTimeout
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	// Fallback to unknown
	return CategoryUnknown
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	switch cat {
	case CategoryTimeout:
		return "Timeouts"
	case CategoryDNSFailure:
		return "DNS Failures"
	case CategoryConnectionRefused:
		return "Connection Refused"
	case Category4xx:
		return "Client Errors (4xx)"
	case Category5xx:
		return "Server Errors (5xx)"
	case CategoryRedirectLoop:
		return "Redirect Loops"
	case CategoryOutOfScope:
		return "Redirected Out of Scope"
	case CategoryTooLarge:
		return "Oversized Pages"
	case CategoryUnsupported:
		return "Unsupported Content"
	case CategoryParse:
		return "Parse Errors"
	default:
		return "Other Errors"
	}
}
