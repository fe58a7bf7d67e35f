package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/dom"
	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/picker"
)

// pickerBinding is the page-to-Go function the picker listeners call.
const pickerBinding = "__afPickerEvent"

// Surface renders the element picker on the live page and forwards the
// page's pointer and key events to a picker.Picker.
type Surface struct {
	page   *rod.Page
	logger *zap.Logger

	hovers  chan gson.JSON
	actions chan gson.JSON
	once    sync.Once
	stop    func() error
	done    chan struct{}
}

// PickerSurface returns the picker surface for the browser's page.
func (b *Browser) PickerSurface() *Surface {
	return newSurface(b.page, b.logger.Named("surface"), 64)
}

func newSurface(page *rod.Page, logger *zap.Logger, queue int) *Surface {
	return &Surface{
		page:    page,
		logger:  logger,
		hovers:  make(chan gson.JSON, queue),
		actions: make(chan gson.JSON, queue),
		done:    make(chan struct{}),
	}
}

// Bind exposes the event binding on the page and starts delivering events
// to p until ctx ends or Close is called.
func (s *Surface) Bind(ctx context.Context, p *picker.Picker) error {
	stop, err := s.page.Expose(pickerBinding, func(j gson.JSON) (interface{}, error) {
		s.enqueue(ctx, j)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to expose picker binding: %w", err)
	}
	s.stop = stop
	go s.pump(ctx, p)
	return nil
}

// Close stops event delivery and removes the binding.
func (s *Surface) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			err = s.stop()
		}
	})
	return err
}

// enqueue queues a page event. Hovers are dropped when their queue is
// full; clicks and escapes wait for room so a selection is never lost.
func (s *Surface) enqueue(ctx context.Context, j gson.JSON) {
	if j.Get("type").Str() == "hover" {
		select {
		case s.hovers <- j:
		default:
			s.logger.Debug("dropping hover event, queue full")
		}
		return
	}
	select {
	case s.actions <- j:
	case <-ctx.Done():
	case <-s.done:
	}
}

func (s *Surface) pump(ctx context.Context, p *picker.Picker) {
	for {
		// clicks and escapes go first
		select {
		case raw := <-s.actions:
			s.deliver(ctx, p, raw)
			continue
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case raw := <-s.actions:
			s.deliver(ctx, p, raw)
		case raw := <-s.hovers:
			s.deliver(ctx, p, raw)
		}
	}
}

func (s *Surface) deliver(ctx context.Context, p *picker.Picker, raw gson.JSON) {
	kind, target := decodePickerEvent(raw)
	var err error
	switch kind {
	case "hover":
		err = p.Hover(ctx, target)
	case "click":
		_, err = p.Click(ctx, target)
	case "escape":
		err = p.Escape(ctx)
	default:
		s.logger.Debug("unknown picker event", zap.String("type", kind))
		return
	}
	if err != nil && err != picker.ErrNotSelecting {
		s.logger.Warn("picker event failed", zap.String("type", kind), zap.Error(err))
	}
}

// decodePickerEvent turns the payload sent by the page listeners into a
// picker target.
func decodePickerEvent(j gson.JSON) (string, picker.Target) {
	kind := j.Get("type").Str()
	el := j.Get("target")
	if el.Nil() {
		return kind, picker.Target{}
	}

	var classes []string
	for _, c := range el.Get("classes").Arr() {
		classes = append(classes, c.Str())
	}
	tag := el.Get("tag").Str()
	r := el.Get("rect")

	return kind, picker.Target{
		Ref:      el.Get("ref").Str(),
		Selector: fields.SelectorFor(tag, el.Get("id").Str(), el.Get("name").Str(), classes),
		Tag:      tag,
		Rect: dom.Rect{
			X:      r.Get("x").Num(),
			Y:      r.Get("y").Num(),
			Width:  r.Get("width").Num(),
			Height: r.Get("height").Num(),
		},
		Fillable: el.Get("fillable").Int(),
	}
}

const attachScript = `(binding, color) => {
	if (window.__afPicker) return;

	const describe = (el) => {
		if (!el || el.nodeType !== 1) return null;
		if (!el.hasAttribute('data-af-uid')) {
			const next = window.__afNextUid || 1;
			el.setAttribute('data-af-uid', String(next));
			window.__afNextUid = next + 1;
		}
		const r = el.getBoundingClientRect();
		return {
			ref: el.getAttribute('data-af-uid'),
			tag: el.tagName.toLowerCase(),
			id: el.id || '',
			name: el.getAttribute('name') || '',
			classes: typeof el.className === 'string' ? el.className.split(/\s+/).filter(Boolean) : [],
			rect: { x: r.x, y: r.y, width: r.width, height: r.height },
			fillable: el.querySelectorAll('input, select, textarea').length
		};
	};
	const send = (type, el) => { window[binding]({ type, target: describe(el) }); };

	const overlay = document.createElement('div');
	overlay.id = '__af-picker-overlay';
	overlay.style.cssText = 'position:fixed;inset:0;border:3px dashed ' + color +
		';background:rgba(79,70,229,0.04);pointer-events:none;z-index:2147483646;';
	const box = document.createElement('div');
	box.id = '__af-picker-hover';
	box.style.cssText = 'position:fixed;display:none;border:2px solid ' + color +
		';background:rgba(79,70,229,0.12);pointer-events:none;z-index:2147483647;';
	document.body.appendChild(overlay);
	document.body.appendChild(box);

	const state = { overlay, box, cursor: document.body.style.cursor };
	document.body.style.cursor = 'crosshair';

	state.onOver = (e) => send('hover', e.target);
	state.onClick = (e) => {
		e.preventDefault();
		e.stopPropagation();
		e.stopImmediatePropagation();
		send('click', e.target);
	};
	state.onKey = (e) => {
		if (e.key !== 'Escape') return;
		e.preventDefault();
		e.stopPropagation();
		send('escape', null);
	};
	document.addEventListener('mouseover', state.onOver, true);
	document.addEventListener('click', state.onClick, true);
	document.addEventListener('keydown', state.onKey, true);
	window.__afPicker = state;
}`

const detachScript = `() => {
	const s = window.__afPicker;
	if (!s) return;
	document.removeEventListener('mouseover', s.onOver, true);
	document.removeEventListener('click', s.onClick, true);
	document.removeEventListener('keydown', s.onKey, true);
	s.overlay.remove();
	s.box.remove();
	document.body.style.cursor = s.cursor;
	delete window.__afPicker;
}`

func (s *Surface) Attach(ctx context.Context) error {
	return s.eval(ctx, attachScript, pickerBinding, DetectedColor)
}

func (s *Surface) Detach(ctx context.Context) error {
	return s.eval(ctx, detachScript)
}

func (s *Surface) Highlight(ctx context.Context, r dom.Rect) error {
	return s.eval(ctx, `(x, y, w, h) => {
		const s = window.__afPicker;
		if (!s) return;
		Object.assign(s.box.style, { display: 'block', left: x + 'px', top: y + 'px', width: w + 'px', height: h + 'px' });
	}`, r.X, r.Y, r.Width, r.Height)
}

func (s *Surface) ClearHighlight(ctx context.Context) error {
	return s.eval(ctx, `() => {
		const s = window.__afPicker;
		if (s) s.box.style.display = 'none';
	}`)
}

// MarkSelected draws a persistent box and label over the chosen element.
func (s *Surface) MarkSelected(ctx context.Context, t picker.Target) error {
	return s.eval(ctx, `(ref, color) => {
		if (window.__afSelected) window.__afSelected.forEach(n => n.remove());
		const el = document.querySelector('[data-af-uid="' + ref + '"]');
		if (!el) return;
		const r = el.getBoundingClientRect();
		const top = r.top + window.scrollY, left = r.left + window.scrollX;
		const box = document.createElement('div');
		box.style.cssText = 'position:absolute;pointer-events:none;z-index:2147483645;border:3px solid ' + color +
			';left:' + left + 'px;top:' + top + 'px;width:' + r.width + 'px;height:' + r.height + 'px;';
		const label = document.createElement('div');
		label.textContent = 'Selected: ' + el.tagName.toLowerCase();
		label.style.cssText = 'position:absolute;pointer-events:none;z-index:2147483645;background:' + color +
			';color:#fff;font:600 12px sans-serif;padding:2px 6px;border-radius:4px;left:' + left + 'px;top:' + Math.max(0, top - 22) + 'px;';
		document.body.appendChild(box);
		document.body.appendChild(label);
		window.__afSelected = [box, label];
	}`, t.Ref, FilledColor)
}

func (s *Surface) Unmark(ctx context.Context) error {
	return s.eval(ctx, `() => {
		if (window.__afSelected) window.__afSelected.forEach(n => n.remove());
		delete window.__afSelected;
	}`)
}

func (s *Surface) eval(ctx context.Context, js string, args ...interface{}) error {
	if _, err := s.page.Context(ctx).Eval(js, args...); err != nil {
		return fmt.Errorf("picker script failed: %w", err)
	}
	return nil
}
