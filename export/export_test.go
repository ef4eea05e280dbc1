package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lukemcguire/docscrape/result"
)

var exportTime = time.Date(2025, 1, 31, 12, 30, 0, 0, time.UTC)

func samplePages() []result.Page {
	return []result.Page{
		{URL: "https://example.com/docs", Title: "Docs", Markdown: "# Docs\n\nWelcome."},
		{URL: "https://example.com/docs/guide/intro", Title: "Intro", Markdown: "# Intro\n\nStart here."},
		{URL: "https://example.com/docs/api/intro", Title: "API", Markdown: "# API\n\nReference."},
	}
}

func sampleContext() Context {
	return Context{SeedURL: "https://example.com/docs", BasePath: "/docs", Time: exportTime}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = string(body)
	}
	return files
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"empty defaults to single", "", FormatSingle, false},
		{"single", "single_file", FormatSingle, false},
		{"json", "json", FormatJSON, false},
		{"tree", "zip_files", FormatZipTree, false},
		{"flat", "zip_flat", FormatZipFlat, false},
		{"unknown", "pdf", "", true},
		{"case sensitive", "JSON", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		format      Format
		ext         string
		contentType string
	}{
		{FormatSingle, ".md", "text/markdown; charset=utf-8"},
		{FormatJSON, ".json", "application/json"},
		{FormatZipTree, ".zip", "application/zip"},
		{FormatZipFlat, ".zip", "application/zip"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Extension(); got != tt.ext {
				t.Errorf("Extension() = %q, want %q", got, tt.ext)
			}
			if got := tt.format.ContentType(); got != tt.contentType {
				t.Errorf("ContentType() = %q, want %q", got, tt.contentType)
			}
		})
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		seed   string
		format Format
		want   string
	}{
		{"https://docs.example.com/guide", FormatSingle, "docs_example_com_20250131.md"},
		{"https://docs.example.com/guide", FormatJSON, "docs_example_com_20250131.json"},
		{"https://example.com:8080/docs", FormatZipFlat, "example_com_20250131.zip"},
		{"::bad", FormatZipTree, "documentation_20250131.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DownloadName(tt.seed, tt.format, exportTime); got != tt.want {
				t.Errorf("DownloadName(%q) = %q, want %q", tt.seed, got, tt.want)
			}
		})
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		seed string
		want string
	}{
		{"https://example.com/docs/guide", "guide"},
		{"https://example.com/docs/", "docs"},
		{"https://example.com", "documentation"},
		{"https://example.com/v1.2%20notes", "v1.2-notes"},
	}

	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			if got := DefaultFilename(tt.seed); got != tt.want {
				t.Errorf("DefaultFilename(%q) = %q, want %q", tt.seed, got, tt.want)
			}
		})
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"manual", "manual"},
		{"x/../../../etc/cron.d/evil", "evil"},
		{"/etc/passwd", "passwd"},
		{`..\windows\win.ini`, "win.ini"},
		{"..", "documentation"},
		{"", "documentation"},
		{"my docs v2", "my-docs-v2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeName(tt.in); got != tt.want {
				t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		name     string
		pageURL  string
		basePath string
		want     string
	}{
		{"nested", "https://example.com/docs/guide/intro", "/docs", "guide/intro.md"},
		{"base itself", "https://example.com/docs", "/docs", "index.md"},
		{"root base", "https://example.com/a/b", "", "a/b.md"},
		{"root page", "https://example.com", "", "index.md"},
		{"unsafe characters", "https://example.com/docs/a%20b/c.html", "/docs", "a-b/c-html.md"},
		{"dash runs collapse", "https://example.com/docs/a%20%20b", "/docs", "a-b.md"},
		{"dot segments neutralized", "https://example.com/docs/../etc", "/docs", "-/etc.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilePath(tt.pageURL, tt.basePath); got != tt.want {
				t.Errorf("FilePath(%q, %q) = %q, want %q", tt.pageURL, tt.basePath, got, tt.want)
			}
		})
	}
}

func TestFlatName(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		pageURL string
		want    string
	}{
		{"last segment", 0, "https://example.com/docs/intro", "001_intro.md"},
		{"existing extension", 4, "https://example.com/docs/intro.md", "005_intro.md"},
		{"html extension kept as text", 1, "https://example.com/docs/intro.html", "002_intro.html.md"},
		{"root page", 9, "https://example.com", "010_page_9.md"},
		{"unsafe characters", 2, "https://example.com/docs/a%20b", "003_a-b.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlatName(tt.index, tt.pageURL); got != tt.want {
				t.Errorf("FlatName(%d, %q) = %q, want %q", tt.index, tt.pageURL, got, tt.want)
			}
		})
	}
}

func TestAssembleSingle(t *testing.T) {
	pages := samplePages()
	art, err := Assemble(pages, FormatSingle, sampleContext())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if got := strings.Count(art.Markdown, Separator); got != len(pages)-1 {
		t.Errorf("separator count = %d, want %d", got, len(pages)-1)
	}
	if !strings.HasPrefix(art.Markdown, "# Docs") || !strings.HasSuffix(art.Markdown, "Reference.") {
		t.Errorf("Markdown = %q", art.Markdown)
	}
	if string(art.Data) != art.Markdown {
		t.Error("Data differs from Markdown for single format")
	}

	// Discovery order is preserved.
	intro := strings.Index(art.Markdown, "# Intro")
	api := strings.Index(art.Markdown, "# API")
	if intro < 0 || api < 0 || intro > api {
		t.Errorf("pages out of order in %q", art.Markdown)
	}
}

func TestAssembleJSON(t *testing.T) {
	pages := samplePages()
	art, err := Assemble(pages, FormatJSON, sampleContext())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(art.Data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != len(pages) {
		t.Fatalf("mapping has %d entries, want %d", len(got), len(pages))
	}
	for _, p := range pages {
		if got[p.URL] != p.Markdown {
			t.Errorf("mapping[%q] = %q, want %q", p.URL, got[p.URL], p.Markdown)
		}
		if art.Mapping[p.URL] != p.Markdown {
			t.Errorf("Artifact.Mapping[%q] = %q", p.URL, art.Mapping[p.URL])
		}
	}
}

func TestAssembleZipTree(t *testing.T) {
	art, err := Assemble(samplePages(), FormatZipTree, sampleContext())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	files := readZip(t, art.Data)
	want := map[string]string{
		"index.md":       "# Docs\n\nWelcome.",
		"guide/intro.md": "# Intro\n\nStart here.",
		"api/intro.md":   "# API\n\nReference.",
	}
	if len(files) != len(want) {
		t.Errorf("archive entries = %v, want %d entries", files, len(want))
	}
	for name, body := range want {
		if files[name] != body {
			t.Errorf("entry %q = %q, want %q", name, files[name], body)
		}
	}
}

func TestAssembleZipTreeCollision(t *testing.T) {
	pages := []result.Page{
		{URL: "https://example.com/docs/a?v=1", Markdown: "one"},
		{URL: "https://example.com/docs/a?v=2", Markdown: "two"},
	}
	art, err := Assemble(pages, FormatZipTree, sampleContext())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	files := readZip(t, art.Data)
	if files["a.md"] != "one" || files["a-2.md"] != "two" {
		t.Errorf("archive entries = %v", files)
	}
}

func TestAssembleZipFlat(t *testing.T) {
	pages := samplePages()
	art, err := Assemble(pages, FormatZipFlat, sampleContext())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	files := readZip(t, art.Data)
	if len(files) != len(pages)+1 {
		t.Fatalf("archive has %d entries, want %d", len(files), len(pages)+1)
	}

	// Two pages share the last segment "intro" but get distinct names.
	names := []string{"001_docs.md", "002_intro.md", "003_intro.md"}
	for i, name := range names {
		if files[name] != pages[i].Markdown {
			t.Errorf("entry %q = %q, want %q", name, files[name], pages[i].Markdown)
		}
	}

	readme, ok := files[ReadmeName]
	if !ok {
		t.Fatal("README.md missing from flat archive")
	}
	for _, want := range []string{
		"Documentation scraped from https://example.com/docs",
		"2025-01-31",
		"| Pages",
		"002_intro.md",
	} {
		if !strings.Contains(readme, want) {
			t.Errorf("README missing %q:\n%s", want, readme)
		}
	}
}

func TestAssembleZeroPages(t *testing.T) {
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			art, err := Assemble(nil, format, sampleContext())
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if art.Markdown != "" {
				t.Errorf("Markdown = %q, want empty", art.Markdown)
			}
			if format.IsArchive() {
				files := readZip(t, art.Data)
				wantEntries := 0
				if format == FormatZipFlat {
					wantEntries = 1
				}
				if len(files) != wantEntries {
					t.Errorf("archive entries = %d, want %d", len(files), wantEntries)
				}
			}
		})
	}
}

func TestAssembleUnknownFormat(t *testing.T) {
	_, err := Assemble(samplePages(), Format("pdf"), sampleContext())
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Assemble() error = %v, want ErrUnknownFormat", err)
	}
}

func TestConcatenate(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{"none", nil, ""},
		{"one", []string{"a"}, "a"},
		{"three", []string{"a", "b", "c"}, "a" + Separator + "b" + Separator + "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := make([]result.Page, len(tt.pages))
			for i, md := range tt.pages {
				pages[i] = result.Page{Markdown: md}
			}
			if got := Concatenate(pages); got != tt.want {
				t.Errorf("Concatenate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniqueName(t *testing.T) {
	aw := newArchiveWriter()
	got := []string{aw.uniqueName("a.md"), aw.uniqueName("a.md"), aw.uniqueName("a.md"), aw.uniqueName("b.md")}
	want := []string{"a.md", "a-2.md", "a-3.md", "b.md"}
	if !slices.Equal(got, want) {
		t.Errorf("uniqueName() sequence = %v, want %v", got, want)
	}
}
