// Package export turns the pages of a finished crawl into the artifact a
// caller asked for: one Markdown document, a JSON mapping, or a zip archive.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Format is one of the closed set of export shapes.
type Format string

const (
	// FormatSingle concatenates every page into one Markdown document.
	FormatSingle Format = "single_file"
	// FormatJSON is a JSON object mapping page URL to Markdown.
	FormatJSON Format = "json"
	// FormatZipTree is a zip archive mirroring the site's path hierarchy.
	FormatZipTree Format = "zip_files"
	// FormatZipFlat is a zip archive of sequentially numbered files plus a README.
	FormatZipFlat Format = "zip_flat"
)

// Formats lists every supported format.
var Formats = []Format{FormatSingle, FormatJSON, FormatZipTree, FormatZipFlat}

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a user-supplied format name. An empty name selects
// FormatSingle.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatSingle, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// IsArchive reports whether the format produces a zip archive.
func (f Format) IsArchive() bool {
	return f == FormatZipTree || f == FormatZipFlat
}

// Extension returns the file extension of a download in this format.
func (f Format) Extension() string {
	switch {
	case f.IsArchive():
		return ".zip"
	case f == FormatJSON:
		return ".json"
	default:
		return ".md"
	}
}

// ContentType returns the MIME type of a download in this format.
func (f Format) ContentType() string {
	switch {
	case f.IsArchive():
		return "application/zip"
	case f == FormatJSON:
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// DownloadName returns the attachment name for an export of seedURL made at
// now, for example "docs_example_com_20250131.md".
func DownloadName(seedURL string, format Format, now time.Time) string {
	host := "documentation"
	if u, err := url.Parse(seedURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return strings.ReplaceAll(host, ".", "_") + "_" + now.Format("20060102") + format.Extension()
}

// DefaultFilename derives a base name for on-disk output from the last path
// segment of seedURL, or "documentation" when the path is empty.
func DefaultFilename(seedURL string) string {
	u, err := url.Parse(seedURL)
	if err != nil {
		return "documentation"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return SafeName(segments[len(segments)-1])
}

// SafeName reduces a caller supplied name to a single file name segment.
// Directory parts are dropped and characters outside [a-zA-Z0-9._-] become
// "-". Names that end up empty become "documentation".
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = collapseDashes(unsafeFlatChars.ReplaceAllString(name, "-"))
	name = strings.Trim(name, "-.")
	if name == "" {
		return "documentation"
	}
	return name
}
