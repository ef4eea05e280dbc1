package content

import "github.com/PuerkitoBio/goquery"

// RegionSelector locates the main documentation region of a page.
type RegionSelector interface {
	// Name identifies the selector in logs and extraction results.
	Name() string
	// Select returns the region and true if the selector matches doc.
	Select(doc *goquery.Document) (*goquery.Selection, bool)
}

// CSSSelector matches the first element for a CSS selector.
type CSSSelector string

// Name returns the CSS selector text.
func (c CSSSelector) Name() string { return string(c) }

// Select returns the first element matching c.
func (c CSSSelector) Select(doc *goquery.Document) (*goquery.Selection, bool) {
	sel := doc.Find(string(c)).First()
	return sel, sel.Length() > 0
}

// WholeDocument always matches and returns the entire document.
type WholeDocument struct{}

// Name returns "document".
func (WholeDocument) Name() string { return "document" }

// Select returns the document root selection.
func (WholeDocument) Select(doc *goquery.Document) (*goquery.Selection, bool) {
	return doc.Selection, true
}

// DefaultSelectors is the priority order tried for every page. The first
// selector that matches wins.
var DefaultSelectors = []RegionSelector{
	CSSSelector("main#article-contents"),
	CSSSelector(".markdown-body"),
	CSSSelector("main"),
	CSSSelector("article"),
	CSSSelector("body"),
	WholeDocument{},
}

// SelectRegion walks selectors in order and returns the first match along
// with the name of the selector that produced it.
func SelectRegion(doc *goquery.Document, selectors []RegionSelector) (*goquery.Selection, string) {
	for _, s := range selectors {
		if sel, ok := s.Select(doc); ok {
			return sel, s.Name()
		}
	}
	return doc.Selection, WholeDocument{}.Name()
}
