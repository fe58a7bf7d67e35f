package fields

import (
	"strings"
	"unicode/utf8"

	"github.com/v0xg/autofill/internal/dom"
)

// ResolveLabel finds the best human-readable label for el. The first
// strategy that finds a candidate wins:
//
//  1. a label associated by the platform (for/id or wrapping)
//  2. label[for=id] anywhere in the document
//  3. the nearest ancestor label, minus the field's own value
//  4. a preceding sibling label, or a short span/div/p
//  5. aria-label
//  6. title
//
// An empty string means no label was found.
func ResolveLabel(el *dom.Element) string {
	doc := el.Document()
	labels := doc.FindAll("label")

	for _, l := range labels {
		if el.Is(labeledControl(doc, l)) {
			return strings.TrimSpace(l.Text())
		}
	}

	if id := el.ID(); id != "" {
		for _, l := range labels {
			if v, ok := l.Attr("for"); ok && v == id {
				return strings.TrimSpace(l.Text())
			}
		}
	}

	if parent := el.Closest("label"); parent != nil {
		text := parent.Text()
		if v := el.Value(); v != "" {
			text = strings.Replace(text, v, "", 1)
		}
		return strings.TrimSpace(text)
	}

	for _, prev := range el.PrevSiblings() {
		switch prev.Tag() {
		case "label":
			return strings.TrimSpace(prev.Text())
		case "span", "div", "p":
			text := strings.TrimSpace(prev.Text())
			if n := utf8.RuneCountInString(text); n > 0 && n < 100 {
				return text
			}
		}
	}

	if v := strings.TrimSpace(el.AttrOr("aria-label", "")); v != "" {
		return v
	}
	return strings.TrimSpace(el.AttrOr("title", ""))
}

// labeledControl mirrors HTMLLabelElement.control.
func labeledControl(doc *dom.Document, label *dom.Element) *dom.Element {
	if target, ok := label.Attr("for"); ok {
		el := doc.ElementByID(target)
		if el != nil && labelable(el) {
			return el
		}
		return nil
	}
	for _, d := range label.Find("*") {
		if labelable(d) {
			return d
		}
	}
	return nil
}

func labelable(el *dom.Element) bool {
	switch el.Tag() {
	case "button", "meter", "output", "progress", "select", "textarea":
		return true
	case "input":
		return el.Type() != "hidden"
	}
	return false
}

// fieldContext joins the direct text nodes of el's parent.
func fieldContext(el *dom.Element) string {
	parent := el.Parent()
	if parent == nil {
		return ""
	}
	return parent.ChildText()
}
