// Package document turns raw response bytes into a queryable HTML tree.
//
// Lookups never fail: a missing element is an empty Element whose accessors
// report absence instead of returning an error.
package document

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Element is a single node, or nothing when a lookup found no match.
type Element struct {
	sel *goquery.Selection
}

// Parse decodes body using the charset declared in contentType or in the
// document itself, then builds the tree. Undecodable or malformed input
// degrades to whatever the HTML5 parser can recover, and at worst to an
// empty document.
func Parse(body []byte, contentType string) *Document {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		slog.Debug("document: charset detection failed, assuming utf-8",
			"contentType", contentType, "error", err,
		)
		r = bytes.NewReader(body)
	}

	root, err := html.Parse(r)
	if err != nil {
		slog.Debug("document: parse failed, using empty document", "error", err)
		root, _ = html.Parse(strings.NewReader(""))
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}
}

// Empty returns a document with no content.
func Empty() *Document {
	return Parse(nil, "text/html; charset=utf-8")
}

// First returns the first element with the given tag name.
func (d *Document) First(tag string) Element {
	m, ok := compile(tag)
	if !ok {
		return Element{}
	}
	return d.FirstMatching(m)
}

// FirstWithAttr returns the first tag element whose attr equals value.
func (d *Document) FirstWithAttr(tag, attr, value string) Element {
	m, ok := compile(fmt.Sprintf("%s[%s=%q]", tag, attr, value))
	if !ok {
		return Element{}
	}
	return d.FirstMatching(m)
}

// All returns every element with the given tag name, in document order.
func (d *Document) All(tag string) []Element {
	m, ok := compile(tag)
	if !ok {
		return nil
	}
	return d.AllMatching(m)
}

// FirstMatching returns the first element matched by m.
func (d *Document) FirstMatching(m goquery.Matcher) Element {
	sel := d.doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return Element{}
	}
	return Element{sel: sel}
}

// AllMatching returns every element matched by m, in document order.
func (d *Document) AllMatching(m goquery.Matcher) []Element {
	sel := d.doc.FindMatcher(m)
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out
}

// CountMatching returns how many elements m matches.
func (d *Document) CountMatching(m goquery.Matcher) int {
	return d.doc.FindMatcher(m).Length()
}

// Exists reports whether the element was found.
func (e Element) Exists() bool {
	return e.sel != nil && e.sel.Length() > 0
}

// Attr returns the attribute value and whether it is present.
func (e Element) Attr(name string) (string, bool) {
	if !e.Exists() {
		return "", false
	}
	return e.sel.Attr(name)
}

// Text returns the combined text of the element and its descendants.
func (e Element) Text() (string, bool) {
	if !e.Exists() {
		return "", false
	}
	return e.sel.Text(), true
}

// selectors caches compiled ad-hoc selectors by source string.
var selectors sync.Map // string -> cascadia.Selector

func compile(src string) (cascadia.Selector, bool) {
	if v, ok := selectors.Load(src); ok {
		return v.(cascadia.Selector), true
	}
	sel, err := cascadia.Compile(src)
	if err != nil {
		slog.Debug("document: invalid selector", "selector", src, "error", err)
		return nil, false
	}
	selectors.Store(src, sel)
	return sel, true
}
