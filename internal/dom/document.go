package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Annotation attributes stamped onto the live page by the capture script.
// A snapshot parsed from a plain HTML file carries none of them except
// possibly AttrUID, and falls back to static heuristics.
const (
	AttrUID        = "data-af-uid"
	AttrScope      = "data-af-scope"
	AttrDisplay    = "data-af-display"
	AttrVisibility = "data-af-visibility"
	AttrOpacity    = "data-af-opacity"
	AttrRendered   = "data-af-rendered"
	AttrValue      = "data-af-value"
	AttrChecked    = "data-af-checked"
	AttrSelected   = "data-af-selected"
	AttrDisabled   = "data-af-disabled"
	AttrReadOnly   = "data-af-readonly"
	AttrRect       = "data-af-rect"
)

// Document is a parsed DOM snapshot.
type Document struct {
	doc  *goquery.Document
	root *html.Node
}

// Parse reads an HTML snapshot.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return FromNode(root), nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FromNode wraps an already parsed tree.
func FromNode(root *html.Node) *Document {
	return &Document{
		doc:  goquery.NewDocumentFromNode(root),
		root: root,
	}
}

// Selection exposes the goquery view of the whole document.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Wrap returns the Element view of n.
func (d *Document) Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: d, node: n}
}

// FindAll returns every element under the document matching selector, in
// document order. An invalid selector matches nothing.
func (d *Document) FindAll(selector string) []*Element {
	return d.wrapAll(d.doc.Find(selector))
}

// QueryFirst mirrors document.querySelector: the first element in document
// order matching selector, or nil. Unlike FindAll it reports a selector that
// does not compile.
func (d *Document) QueryFirst(selector string) (*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return d.Wrap(sel.MatchFirst(d.root)), nil
}

// ElementByID mirrors document.getElementById.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.Wrap(found)
}

// ByRef finds the element stamped with the given ownership reference.
func (d *Document) ByRef(ref string) *Element {
	if ref == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, AttrUID) == ref {
			found = n
			return false
		}
		return true
	})
	return d.Wrap(found)
}

// Annotated reports whether the snapshot came from the live capture script.
func (d *Document) Annotated() bool {
	return d.doc.Find("[" + AttrRendered + "]").Length() > 0
}

// Body returns the body element, or nil for fragments without one.
func (d *Document) Body() *Element {
	return d.first(d.doc.Find("body"))
}

// HTML renders the current state of the snapshot.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Document) wrapAll(sel *goquery.Selection) []*Element {
	out := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		if el := d.Wrap(n); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (d *Document) first(sel *goquery.Selection) *Element {
	if sel.Length() == 0 {
		return nil
	}
	return d.Wrap(sel.Nodes[0])
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
