package crawler

import (
	"context"
	"fmt"

	"github.com/v0xg/autofill/internal/dom"
)

// captureScript stamps every element with a stable data-af-uid, annotates
// form controls with the live facts the extractor needs, serializes the
// document and removes the transient annotations again.
const captureScript = `() => {
	let next = window.__afNextUid || 1;
	const transient = ['data-af-display', 'data-af-visibility', 'data-af-opacity', 'data-af-rendered',
		'data-af-value', 'data-af-checked', 'data-af-selected', 'data-af-disabled', 'data-af-readonly', 'data-af-rect'];

	for (const el of document.querySelectorAll('*')) {
		if (!el.hasAttribute('data-af-uid')) el.setAttribute('data-af-uid', String(next++));
	}
	window.__afNextUid = next;

	const controls = document.querySelectorAll('input, textarea, select');
	controls.forEach(el => {
		const cs = window.getComputedStyle(el);
		const r = el.getBoundingClientRect();
		el.setAttribute('data-af-display', cs.display);
		el.setAttribute('data-af-visibility', cs.visibility);
		el.setAttribute('data-af-opacity', cs.opacity);
		el.setAttribute('data-af-rendered', String(el.getClientRects().length > 0));
		el.setAttribute('data-af-value', el.value == null ? '' : String(el.value));
		el.setAttribute('data-af-checked', String(!!el.checked));
		el.setAttribute('data-af-disabled', String(!!el.disabled));
		el.setAttribute('data-af-readonly', String(!!el.readOnly));
		el.setAttribute('data-af-rect', [r.x, r.y, r.width, r.height].join(','));
		if (el.tagName === 'SELECT') el.setAttribute('data-af-selected', String(el.selectedIndex));
	});

	const html = '<!DOCTYPE html>' + document.documentElement.outerHTML;

	controls.forEach(el => transient.forEach(a => el.removeAttribute(a)));
	return html;
}`

// Snapshot captures the annotated DOM of the current page.
func (b *Browser) Snapshot(ctx context.Context) (*dom.Document, error) {
	res, err := b.page.Context(ctx).Eval(captureScript)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page snapshot: %w", err)
	}
	doc, err := dom.ParseString(res.Value.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}
	return doc, nil
}
