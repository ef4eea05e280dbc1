// Package content turns a documentation page's HTML into Markdown and the
// list of links found in its main content region.
package content

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/lukemcguire/docscrape/urlutil"
	"golang.org/x/net/html"
)

// Page is the extraction result for one HTML document.
type Page struct {
	Title    string   // Text of the <title> element
	Region   string   // Name of the selector that matched
	Markdown string   // Converted and trimmed main region
	Links    []string // Normalized absolute links found in the region, in document order
}

// Extractor converts HTML pages. It is safe for concurrent use.
type Extractor struct {
	selectors []RegionSelector
	converter *md.Converter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelectors replaces the default region selector chain.
func WithSelectors(selectors ...RegionSelector) Option {
	return func(e *Extractor) {
		e.selectors = selectors
	}
}

// NewExtractor returns an Extractor using DefaultSelectors unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		selectors: DefaultSelectors,
		converter: md.NewConverter("", true, &md.Options{
			HeadingStyle:     "atx",
			CodeBlockStyle:   "fenced",
			BulletListMarker: "-",
			LinkStyle:        "inlined",
		}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// noiseSelector matches elements never rendered as documentation text.
const noiseSelector = "script, style, noscript, template"

// Extract parses an HTML document fetched from pageURL. body must already
// be decoded to UTF-8.
func (e *Extractor) Extract(body io.Reader, pageURL *url.URL) (*Page, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	region, name := SelectRegion(doc, e.selectors)
	region.Find(noiseSelector).Remove()

	links := absolutizeLinks(region, pageURL)

	return &Page{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Region:   name,
		Markdown: TrimBoilerplate(e.converter.Convert(region)),
		Links:    links,
	}, nil
}

// absolutizeLinks rewrites every anchor href in region to an absolute URL
// and returns the distinct normalized targets in document order. Anchors
// whose href cannot be resolved are left untouched and not returned.
func absolutizeLinks(region *goquery.Selection, pageURL *url.URL) []string {
	seen := make(map[string]bool)
	links := []string{}

	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := urlutil.Resolve(href, pageURL)
		if !ok {
			return
		}
		a.SetAttr("href", abs)

		normalized, err := urlutil.Normalize(abs)
		if err != nil || seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})

	return links
}
