package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Layout holds the rendering facts used by the hidden-field policy.
type Layout struct {
	Display    string
	Visibility string
	Opacity    float64
	Rendered   bool
}

// Hidden applies the strict hidden-field policy: display none, visibility
// hidden, zero opacity or no layout boxes.
func (l Layout) Hidden() bool {
	return l.Display == "none" || l.Visibility == "hidden" || l.Opacity == 0 || !l.Rendered
}

// Rect is an element's bounding box in CSS pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// notRendered lists tags the user agent stylesheet never lays out.
var notRendered = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"noscript": true, "title": true, "meta": true, "link": true,
}

// Layout reports the element's rendering facts. Live snapshots carry
// computed values in annotation attributes; static snapshots derive them
// from inline styles, the hidden attribute and the ancestor chain.
func (e *Element) Layout() Layout {
	if rendered, ok := e.Attr(AttrRendered); ok {
		l := Layout{
			Display:    e.AttrOr(AttrDisplay, ""),
			Visibility: e.AttrOr(AttrVisibility, "visible"),
			Opacity:    1,
			Rendered:   rendered == "true",
		}
		if op, err := strconv.ParseFloat(e.AttrOr(AttrOpacity, "1"), 64); err == nil {
			l.Opacity = op
		}
		return l
	}
	return staticLayout(e.node)
}

// Hidden is shorthand for Layout().Hidden().
func (e *Element) Hidden() bool { return e.Layout().Hidden() }

// Rect parses the captured bounding box. ok is false for static snapshots.
func (e *Element) Rect() (Rect, bool) {
	raw, ok := e.Attr(AttrRect)
	if !ok {
		return Rect{}, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Rect{}, false
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, false
		}
		vals[i] = v
	}
	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, true
}

func staticLayout(n *html.Node) Layout {
	l := Layout{Display: ownDisplay(n), Visibility: "visible", Opacity: 1, Rendered: true}

	style := inlineStyle(n)
	if op, ok := style["opacity"]; ok {
		if v, err := strconv.ParseFloat(op, 64); err == nil {
			l.Opacity = v
		}
	}

	visSet := false
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			break
		}
		if p.Type != html.ElementNode {
			continue
		}
		if ownDisplay(p) == "none" {
			l.Rendered = false
		}
		if !visSet {
			if v, ok := inlineStyle(p)["visibility"]; ok && v != "inherit" {
				l.Visibility = v
				visSet = true
			}
		}
	}
	return l
}

// ownDisplay approximates the computed display of n from its own markup.
func ownDisplay(n *html.Node) string {
	if d, ok := inlineStyle(n)["display"]; ok {
		return d
	}
	if hasAttr(n, "hidden") || notRendered[strings.ToLower(n.Data)] {
		return "none"
	}
	if strings.EqualFold(n.Data, "input") && strings.EqualFold(strings.TrimSpace(attr(n, "type")), "hidden") {
		return "none"
	}
	return ""
}

// inlineStyle parses the style attribute into lowercase property/value pairs.
func inlineStyle(n *html.Node) map[string]string {
	out := map[string]string{}
	raw, ok := attrOK(n, "style")
	if !ok {
		return out
	}
	for _, decl := range strings.Split(raw, ";") {
		prop, val, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		if prop == "" || val == "" {
			continue
		}
		out[prop] = val
	}
	return out
}
