package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Element is a view of one element node inside a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Option is one <option> of a select, as the page sees it.
type Option struct {
	Index int
	Value string
	Text  string
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Document returns the snapshot the element belongs to.
func (e *Element) Document() *Document { return e.doc }

// Is reports whether both views point at the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Tag is the lowercase tag name.
func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

func (e *Element) ID() string           { return attr(e.node, "id") }
func (e *Element) Name() string         { return attr(e.node, "name") }
func (e *Element) Placeholder() string  { return attr(e.node, "placeholder") }
func (e *Element) Pattern() string      { return attr(e.node, "pattern") }
func (e *Element) Autocomplete() string { return attr(e.node, "autocomplete") }
func (e *Element) ClassName() string    { return attr(e.node, "class") }
func (e *Element) Ref() string          { return attr(e.node, AttrUID) }
func (e *Element) Required() bool       { return hasAttr(e.node, "required") }

// Classes splits the class attribute on whitespace.
func (e *Element) Classes() []string {
	return strings.Fields(e.ClassName())
}

// Type mirrors the DOM .type property for form controls: inputs default to
// "text", textareas report "textarea" and selects "select-one" or
// "select-multiple".
func (e *Element) Type() string {
	switch e.Tag() {
	case "input":
		t := strings.ToLower(strings.TrimSpace(attr(e.node, "type")))
		if t == "" {
			return "text"
		}
		return t
	case "textarea":
		return "textarea"
	case "select":
		if hasAttr(e.node, "multiple") {
			return "select-multiple"
		}
		return "select-one"
	default:
		return e.Tag()
	}
}

// MaxLength returns the maxlength attribute when it is a positive integer.
func (e *Element) MaxLength() *int {
	raw, ok := e.Attr("maxlength")
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// Disabled mirrors the .disabled property.
func (e *Element) Disabled() bool {
	if v, ok := e.Attr(AttrDisabled); ok {
		return v == "true"
	}
	return hasAttr(e.node, "disabled")
}

// ReadOnly mirrors the .readOnly property, which selects do not have.
func (e *Element) ReadOnly() bool {
	if v, ok := e.Attr(AttrReadOnly); ok {
		return v == "true"
	}
	switch e.Tag() {
	case "input", "textarea":
		return hasAttr(e.node, "readonly")
	}
	return false
}

// Text mirrors textContent.
func (e *Element) Text() string {
	return e.selection().Text()
}

// Value mirrors the .value property.
func (e *Element) Value() string {
	if v, ok := e.Attr(AttrValue); ok {
		return v
	}
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		opts := e.Options()
		if i := e.SelectedIndex(); i >= 0 && i < len(opts) {
			return opts[i].Value
		}
		return ""
	case "option":
		return optionValue(e.node)
	case "input":
		if v, ok := e.Attr("value"); ok {
			return v
		}
		if t := e.Type(); t == "checkbox" || t == "radio" {
			return "on"
		}
		return ""
	}
	return attr(e.node, "value")
}

// Checked mirrors the .checked property.
func (e *Element) Checked() bool {
	if v, ok := e.Attr(AttrChecked); ok {
		return v == "true"
	}
	return hasAttr(e.node, "checked")
}

// Options lists the select's options in document order, optgroups included.
func (e *Element) Options() []Option {
	var opts []Option
	e.selection().Find("option").Each(func(i int, s *goquery.Selection) {
		n := s.Nodes[0]
		opts = append(opts, Option{Index: i, Value: optionValue(n), Text: s.Text()})
	})
	return opts
}

// SelectedIndex mirrors .selectedIndex.
func (e *Element) SelectedIndex() int {
	if v, ok := e.Attr(AttrSelected); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	idx := -1
	opts := e.selection().Find("option")
	opts.Each(func(i int, s *goquery.Selection) {
		if _, ok := s.Attr("selected"); ok {
			idx = i
		}
	})
	if idx == -1 && opts.Length() > 0 && e.Type() == "select-one" {
		idx = 0
	}
	return idx
}

// Parent returns the parent element, or nil at the root.
func (e *Element) Parent() *Element {
	return e.doc.Wrap(e.node.Parent)
}

// Closest mirrors element.closest(selector), including the element itself.
func (e *Element) Closest(selector string) *Element {
	return e.doc.first(e.selection().Closest(selector))
}

// PrevSiblings returns the preceding element siblings, nearest first.
func (e *Element) PrevSiblings() []*Element {
	var out []*Element
	for n := e.node.PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type == html.ElementNode {
			out = append(out, e.doc.Wrap(n))
		}
	}
	return out
}

// Find returns descendants matching selector.
func (e *Element) Find(selector string) []*Element {
	return e.doc.wrapAll(e.selection().Find(selector))
}

// QueryFirst returns the first element matching selector among e and its
// descendants, in document order, or nil. e itself is a candidate so a
// scope root that is a field resolves to itself.
func (e *Element) QueryFirst(selector string) (*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return e.doc.Wrap(sel.MatchFirst(e.node)), nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if e == nil || other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// ChildText joins the trimmed, non-empty text nodes directly under e.
func (e *Element) ChildText() string {
	var parts []string
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if t := strings.TrimSpace(c.Data); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// SetValue assigns the .value property.
func (e *Element) SetValue(v string) {
	setAttr(e.node, AttrValue, v)
	switch e.Tag() {
	case "textarea":
		for c := e.node.FirstChild; c != nil; {
			next := c.NextSibling
			e.node.RemoveChild(c)
			c = next
		}
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	case "input":
		setAttr(e.node, "value", v)
	}
}

// SetChecked assigns the .checked property.
func (e *Element) SetChecked(checked bool) {
	setAttr(e.node, AttrChecked, strconv.FormatBool(checked))
	if checked {
		setAttr(e.node, "checked", "")
	} else {
		removeAttr(e.node, "checked")
	}
}

// SelectIndex assigns .selectedIndex on a select.
func (e *Element) SelectIndex(index int) {
	var value string
	e.selection().Find("option").Each(func(i int, s *goquery.Selection) {
		n := s.Nodes[0]
		if i == index {
			setAttr(n, "selected", "")
			value = optionValue(n)
		} else {
			removeAttr(n, "selected")
		}
	})
	setAttr(e.node, AttrSelected, strconv.Itoa(index))
	setAttr(e.node, AttrValue, value)
}

func (e *Element) selection() *goquery.Selection {
	return e.doc.doc.FindNodes(e.node)
}

// optionValue mirrors HTMLOptionElement.value: the value attribute, or the
// text with whitespace stripped and collapsed.
func optionValue(n *html.Node) string {
	if v, ok := attrOK(n, "value"); ok {
		return v
	}
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
