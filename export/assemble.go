package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/lukemcguire/docscrape/result"
)

// Separator joins pages in a single-document export.
const Separator = "\n\n---\n\n"

// Context carries the crawl metadata an export needs besides the pages.
type Context struct {
	SeedURL  string    // Start URL of the crawl
	BasePath string    // Path prefix stripped from hierarchical file paths
	Time     time.Time // Export timestamp, shown in the flat archive README
}

// Artifact is the materialized output of one export.
type Artifact struct {
	Format   Format
	Markdown string            // All pages joined with Separator
	Mapping  map[string]string // Page URL to Markdown
	Data     []byte            // Download body in Format
}

// Assemble builds the artifact for pages, which must be in discovery order.
// Every format tolerates an empty page list.
func Assemble(pages []result.Page, format Format, ctx Context) (*Artifact, error) {
	if ctx.Time.IsZero() {
		ctx.Time = time.Now()
	}

	art := &Artifact{
		Format:   format,
		Markdown: Concatenate(pages),
		Mapping:  make(map[string]string, len(pages)),
	}
	for _, p := range pages {
		art.Mapping[p.URL] = p.Markdown
	}

	var err error
	switch format {
	case FormatSingle:
		art.Data = []byte(art.Markdown)
	case FormatJSON:
		var buf bytes.Buffer
		err = result.WriteMapping(&buf, pages)
		art.Data = buf.Bytes()
	case FormatZipTree:
		art.Data, err = treeArchive(pages, ctx)
	case FormatZipFlat:
		art.Data, err = flatArchive(pages, ctx)
	default:
		return nil, fmt.Errorf("assemble: %w %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("assemble %s export: %w", format, err)
	}
	return art, nil
}

// Concatenate joins the Markdown of pages in order with Separator.
func Concatenate(pages []result.Page) string {
	bodies := make([]string, len(pages))
	for i, p := range pages {
		bodies[i] = p.Markdown
	}
	return strings.Join(bodies, Separator)
}
