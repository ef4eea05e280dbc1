package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/lukemcguire/docscrape/result"
	"github.com/nao1215/markdown"
)

// ReadmeName is the index entry of a flat archive.
const ReadmeName = "README.md"

// archiveWriter adds Markdown entries to an in-memory zip, renaming entries
// whose path is already taken.
type archiveWriter struct {
	buf   bytes.Buffer
	zw    *zip.Writer
	names map[string]bool
}

func newArchiveWriter() *archiveWriter {
	aw := &archiveWriter{names: make(map[string]bool)}
	aw.zw = zip.NewWriter(&aw.buf)
	return aw
}

func (aw *archiveWriter) add(name, body string, ctx Context) error {
	name = aw.uniqueName(name)
	w, err := aw.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: ctx.Time,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (aw *archiveWriter) uniqueName(name string) string {
	candidate := name
	stem := strings.TrimSuffix(name, ".md")
	for n := 2; aw.names[candidate]; n++ {
		candidate = stem + "-" + strconv.Itoa(n) + ".md"
	}
	aw.names[candidate] = true
	return candidate
}

func (aw *archiveWriter) bytes() ([]byte, error) {
	if err := aw.zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return aw.buf.Bytes(), nil
}

// treeArchive writes each page under its FilePath.
func treeArchive(pages []result.Page, ctx Context) ([]byte, error) {
	aw := newArchiveWriter()
	for _, p := range pages {
		if err := aw.add(FilePath(p.URL, ctx.BasePath), p.Markdown, ctx); err != nil {
			return nil, err
		}
	}
	return aw.bytes()
}

// flatArchive writes a README followed by each page under its FlatName.
func flatArchive(pages []result.Page, ctx Context) ([]byte, error) {
	aw := newArchiveWriter()

	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = FlatName(i, p.URL)
	}

	readme, err := Readme(pages, names, ctx)
	if err != nil {
		return nil, err
	}
	if err := aw.add(ReadmeName, readme, ctx); err != nil {
		return nil, err
	}

	for i, p := range pages {
		if err := aw.add(names[i], p.Markdown, ctx); err != nil {
			return nil, err
		}
	}
	return aw.bytes()
}

// Readme renders the index of a flat archive: source URL, export time, page
// count and a link to every entry.
func Readme(pages []result.Page, names []string, ctx Context) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Documentation scraped from " + ctx.SeedURL)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", ctx.SeedURL},
			{"Date", ctx.Time.Format("2006-01-02 15:04:05")},
			{"Pages", strconv.Itoa(len(pages))},
		},
	})
	md.PlainText("")
	md.H2("Pages included")
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No pages were extracted.")
	} else {
		items := make([]string, len(pages))
		for i, p := range pages {
			items[i] = markdown.Link(names[i], names[i]) + " (" + p.URL + ")"
		}
		md.BulletList(items...)
	}

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("render readme: %w", err)
	}
	return buf.String(), nil
}
