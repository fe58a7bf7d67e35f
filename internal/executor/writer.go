package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/v0xg/autofill/internal/dom"
)

// FieldEvents are dispatched, bubbling and cancelable, after every write so
// that page frameworks observe the change.
var FieldEvents = []string{"input", "change", "blur", "keyup", "keydown"}

// Mutator applies writes to a page. The snapshot mutator edits the parsed
// document in memory; the crawler's live mutator writes through CDP.
type Mutator interface {
	SetValue(ctx context.Context, el *dom.Element, value string) error
	SetChecked(ctx context.Context, el *dom.Element, checked bool) error
	SelectIndex(ctx context.Context, el *dom.Element, index int) error
	Dispatch(ctx context.Context, el *dom.Element, events []string) error
}

// Writer commits values to form elements.
type Writer struct {
	m Mutator
}

// NewWriter creates a writer backed by m.
func NewWriter(m Mutator) *Writer {
	return &Writer{m: m}
}

// Apply writes value into el according to the element kind:
//   - select: the option whose value or text matches exactly, else the first
//     with a case-insensitive substring relation, else unchanged
//   - checkbox: checked when value is truthy
//   - radio: checked only when value equals the radio's own value
//   - anything else: the value verbatim
func (w *Writer) Apply(ctx context.Context, el *dom.Element, value string) error {
	var err error
	switch {
	case el.Tag() == "select":
		if idx, ok := MatchOption(el.Options(), value); ok {
			err = w.m.SelectIndex(ctx, el, idx)
		}
	case el.Type() == "checkbox":
		err = w.m.SetChecked(ctx, el, Truthy(value))
	case el.Type() == "radio":
		if el.Value() == value {
			err = w.m.SetChecked(ctx, el, true)
		}
	default:
		err = w.m.SetValue(ctx, el, value)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", describe(el), err)
	}
	return w.dispatch(ctx, el)
}

// Clear resets el: selects go to their first option, checkboxes and radios
// are unchecked and everything else is emptied.
func (w *Writer) Clear(ctx context.Context, el *dom.Element) error {
	var err error
	switch {
	case el.Tag() == "select":
		if len(el.Options()) > 0 {
			err = w.m.SelectIndex(ctx, el, 0)
		}
	case el.Type() == "checkbox" || el.Type() == "radio":
		err = w.m.SetChecked(ctx, el, false)
	default:
		err = w.m.SetValue(ctx, el, "")
	}
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", describe(el), err)
	}
	return w.dispatch(ctx, el)
}

func (w *Writer) dispatch(ctx context.Context, el *dom.Element) error {
	if err := w.m.Dispatch(ctx, el, FieldEvents); err != nil {
		return fmt.Errorf("failed to dispatch events on %s: %w", describe(el), err)
	}
	return nil
}

// MatchOption resolves value against a select's options.
func MatchOption(opts []dom.Option, value string) (int, bool) {
	for _, o := range opts {
		if o.Value == value || strings.TrimSpace(o.Text) == value {
			return o.Index, true
		}
	}

	lv := strings.ToLower(value)
	if lv == "" {
		return -1, false
	}
	for _, o := range opts {
		ov := strings.ToLower(o.Value)
		ot := strings.ToLower(strings.TrimSpace(o.Text))
		if related(ov, lv) || related(ot, lv) {
			return o.Index, true
		}
	}
	return -1, false
}

// related reports a substring relation in either direction between two
// non-empty strings.
func related(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Truthy reports whether a generated value should check a checkbox. Empty,
// "false" and "0" are how JSON false and 0 arrive in a data map.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0":
		return false
	}
	return true
}

func describe(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return el.Tag() + "#" + id
	}
	if name := el.Name(); name != "" {
		return fmt.Sprintf("%s[name=%q]", el.Tag(), name)
	}
	return el.Tag()
}
