package result

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteMapping(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/docs/b", Markdown: "# B\n<b>bold</b>"},
		{URL: "https://example.com/docs/a", Markdown: "# A"},
	}

	var buf bytes.Buffer
	if err := WriteMapping(&buf, pages); err != nil {
		t.Fatalf("WriteMapping returned error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(decoded))
	}
	if decoded["https://example.com/docs/a"] != "# A" {
		t.Errorf("entry for /docs/a = %q", decoded["https://example.com/docs/a"])
	}

	// HTML in Markdown must not be escaped
	if !strings.Contains(buf.String(), "<b>bold</b>") {
		t.Error("Markdown should not be HTML-escaped")
	}
}

func TestWriteMapping_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMapping(&buf, nil); err != nil {
		t.Fatalf("WriteMapping returned error: %v", err)
	}
	if buf.String() != "{}\n" {
		t.Errorf("Expected '{}\\n', got %q", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	failures := []Failure{
		{
			URL:           "https://example.com/broken",
			StatusCode:    404,
			Error:         "unexpected status 404",
			ErrorCategory: Category4xx,
		},
		{
			URL:           "https://example.com/slow",
			Error:         "context deadline exceeded",
			ErrorCategory: CategoryTimeout,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, failures); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 rows (header + 2), got %d", len(records))
	}

	wantHeader := []string{"url", "status_code", "error_type", "error"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][1] != "404" || records[1][2] != "4xx" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][1] != "" || records[2][2] != "timeout" {
		t.Errorf("row 2 = %v", records[2])
	}
}

func TestWriteCSV_EmptyWithHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	if got := buf.String(); got != "url,status_code,error_type,error\n" {
		t.Errorf("got %q", got)
	}
}

func TestStatusCodeStr(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, ""},
		{200, "200"},
		{404, "404"},
	}
	for _, tt := range tests {
		if got := statusCodeStr(tt.code); got != tt.want {
			t.Errorf("statusCodeStr(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
