package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteMapping writes the pages as an indented JSON object mapping each URL
// to its Markdown. Keys are sorted, so output is stable for a given crawl.
func WriteMapping(w io.Writer, pages []Page) error {
	mapping := make(map[string]string, len(pages))
	for _, p := range pages {
		mapping[p.URL] = p.Markdown
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return fmt.Errorf("write json mapping: %w", err)
	}
	return nil
}

// WriteCSV writes the failed pages as CSV to the writer.
// Always includes a header row, even if nothing failed.
// Column order: url, status_code, error_type, error
func WriteCSV(w io.Writer, failures []Failure) error {
	cw := csv.NewWriter(w)

	header := []string{"url", "status_code", "error_type", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, f := range failures {
		record := []string{
			f.URL,
			statusCodeStr(f.StatusCode),
			string(f.ErrorCategory),
			f.Error,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", f.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
