package fields

import (
	"fmt"
	"strings"

	"github.com/v0xg/autofill/internal/dom"
)

// GenerateSelector returns a selector that re-locates el with a document
// query: #id, then tag[name="..."], then tag with up to two classes.
func GenerateSelector(el *dom.Element) string {
	return SelectorFor(el.Tag(), el.ID(), el.Name(), el.Classes())
}

// SelectorFor builds the selector from raw element facts.
func SelectorFor(tag, id, name string, classes []string) string {
	if id != "" {
		return "#" + CSSEscape(id)
	}
	if name != "" {
		return fmt.Sprintf(`%s[name="%s"]`, tag, escapeAttrValue(name))
	}

	sel := tag
	n := 0
	for _, c := range classes {
		if c == "" {
			continue
		}
		sel += "." + CSSEscape(c)
		n++
		if n == 2 {
			break
		}
	}
	return sel
}

// CSSEscape escapes s for use as a CSS identifier, following the CSSOM
// serialize-an-identifier rules. Characters that need no escaping are left
// untouched.
func CSSEscape(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case (r >= 0x1 && r <= 0x1f) || r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, `\%x `, r)
		case i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			fmt.Fprintf(&b, `\%x `, r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
