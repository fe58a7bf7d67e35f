package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/v0xg/autofill/internal/dom"
)

// ErrNoRef is returned when an element carries no data-af-uid and so
// cannot be found on the live page.
var ErrNoRef = errors.New("element has no page reference")

// findByRef is shared by the page-side scripts.
const findByRef = `const el = document.querySelector('[data-af-uid="' + ref + '"]');
	if (!el) throw new Error('element ' + ref + ' is no longer on the page');`

// LiveMutator writes into the live page through CDP, addressing elements by
// their data-af-uid, and mirrors each write into the snapshot so later
// reads agree with the page.
type LiveMutator struct {
	page *rod.Page
}

// Mutator returns a live mutator for the browser's page.
func (b *Browser) Mutator() *LiveMutator {
	return &LiveMutator{page: b.page}
}

// SetValue uses the native value setter and rewinds React's value tracker
// so controlled inputs see the change.
func (m *LiveMutator) SetValue(ctx context.Context, el *dom.Element, value string) error {
	err := m.eval(ctx, el, `(ref, value) => {
	`+findByRef+`
	const last = el.value;
	const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
		: el instanceof HTMLSelectElement ? HTMLSelectElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) desc.set.call(el, value); else el.value = value;
	if (el._valueTracker) el._valueTracker.setValue(last);
}`, value)
	if err != nil {
		return err
	}
	el.SetValue(value)
	return nil
}

func (m *LiveMutator) SetChecked(ctx context.Context, el *dom.Element, checked bool) error {
	err := m.eval(ctx, el, `(ref, checked) => {
	`+findByRef+`
	const last = el.checked;
	el.checked = checked;
	if (el._valueTracker) el._valueTracker.setValue(String(last));
}`, checked)
	if err != nil {
		return err
	}
	el.SetChecked(checked)
	return nil
}

func (m *LiveMutator) SelectIndex(ctx context.Context, el *dom.Element, index int) error {
	err := m.eval(ctx, el, `(ref, index) => {
	`+findByRef+`
	const last = el.value;
	el.selectedIndex = index;
	if (el._valueTracker) el._valueTracker.setValue(last);
}`, index)
	if err != nil {
		return err
	}
	el.SelectIndex(index)
	return nil
}

func (m *LiveMutator) Dispatch(ctx context.Context, el *dom.Element, events []string) error {
	return m.eval(ctx, el, `(ref, events) => {
	`+findByRef+`
	for (const type of events) {
		el.dispatchEvent(new Event(type, { bubbles: true, cancelable: true }));
	}
}`, events)
}

func (m *LiveMutator) eval(ctx context.Context, el *dom.Element, js string, arg any) error {
	ref := el.Ref()
	if ref == "" {
		return ErrNoRef
	}
	if _, err := m.page.Context(ctx).Eval(js, ref, arg); err != nil {
		return fmt.Errorf("page script failed: %w", err)
	}
	return nil
}
