package export

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	unsafeTreeChars = regexp.MustCompile(`[^a-zA-Z0-9/_-]`)
	unsafeFlatChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	dashRuns        = regexp.MustCompile(`-+`)
	slashRuns       = regexp.MustCompile(`/+`)
)

func collapseDashes(s string) string {
	return dashRuns.ReplaceAllString(s, "-")
}

// FilePath maps pageURL to a relative archive path below basePath:
// "/docs/guide/intro" under "/docs" becomes "guide/intro.md" and the base
// path itself becomes "index.md".
func FilePath(pageURL, basePath string) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		p = u.Path
	}

	p = strings.TrimPrefix(p, basePath)
	p = unsafeTreeChars.ReplaceAllString(p, "-")
	p = collapseDashes(p)
	p = slashRuns.ReplaceAllString(p, "/")
	p = strings.Trim(p, "/")
	if p == "" {
		p = "index"
	}
	if !strings.HasSuffix(p, ".md") {
		p += ".md"
	}
	return p
}

// FlatName returns the archive entry name of the i-th page (zero based) in
// a flat export. The numeric prefix keeps names unique even when two URLs
// share a last path segment.
func FlatName(i int, pageURL string) string {
	name := ""
	if u, err := url.Parse(pageURL); err == nil {
		name = path.Base(strings.TrimRight(u.Path, "/"))
	}
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("page_%d", i)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	name = collapseDashes(unsafeFlatChars.ReplaceAllString(name, "-"))
	return fmt.Sprintf("%03d_%s", i+1, name)
}
