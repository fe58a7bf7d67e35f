package picker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/dom"
)

// ErrNotSelecting is returned for pointer events received while idle.
var ErrNotSelecting = errors.New("element selection is not active")

// State of the picker.
type State int

const (
	Idle State = iota
	Selecting
)

func (s State) String() string {
	if s == Selecting {
		return "selecting"
	}
	return "idle"
}

// Target is the element under the pointer, as reported by the page.
type Target struct {
	Ref      string   `json:"ref"`
	Selector string   `json:"selector"`
	Tag      string   `json:"tag"`
	Rect     dom.Rect `json:"rect"`
	// Fillable counts input, select and textarea descendants.
	Fillable int `json:"fillable"`
}

// Selection is the confirmed scope element.
type Selection struct {
	Ref      string   `json:"ref"`
	Selector string   `json:"selector"`
	Tag      string   `json:"tag"`
	Rect     dom.Rect `json:"rect"`
}

// EventKind names a picker notification.
type EventKind string

const (
	EventStarted   EventKind = "selectionStarted"
	EventSelected  EventKind = "elementSelected"
	EventCancelled EventKind = "selectionCancelled"
	EventCleared   EventKind = "selectionCleared"
)

// Event is delivered to subscribers on every transition.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Selection *Selection `json:"selection,omitempty"`
}

// Surface renders the picker on a page. Attach installs the crosshair
// cursor, the capture-phase listeners and the viewport overlay; Detach
// removes all of them.
type Surface interface {
	Attach(ctx context.Context) error
	Detach(ctx context.Context) error
	Highlight(ctx context.Context, r dom.Rect) error
	ClearHighlight(ctx context.Context) error
	MarkSelected(ctx context.Context, t Target) error
	Unmark(ctx context.Context) error
}

// IsCandidate reports whether t can become the scope: a form control, a
// form, or an element containing at least one form control.
func IsCandidate(t Target) bool {
	switch t.Tag {
	case "input", "select", "textarea", "form":
		return true
	}
	return t.Fillable > 0
}

// Picker is the Idle/Selecting state machine. Page listeners exist only
// while Selecting.
type Picker struct {
	mu        sync.Mutex
	surface   Surface
	state     State
	selection *Selection
	subs      map[int]chan Event
	nextSub   int
	logger    *zap.Logger
}

// New creates an idle picker drawing on surface.
func New(surface Surface, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Picker{
		surface: surface,
		subs:    map[int]chan Event{},
		logger:  logger.Named("picker"),
	}
}

// State returns the current state.
func (p *Picker) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Selection returns the active selection, if any.
func (p *Picker) Selection() (Selection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection == nil {
		return Selection{}, false
	}
	return *p.selection, true
}

// Start enters Selecting. Starting while already selecting is a no-op.
func (p *Picker) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Selecting {
		return nil
	}
	if err := p.surface.Attach(ctx); err != nil {
		return fmt.Errorf("failed to start element selection: %w", err)
	}
	p.state = Selecting
	p.logger.Debug("selection started")
	p.publish(Event{Kind: EventStarted})
	return nil
}

// Hover tracks the element under the pointer.
func (p *Picker) Hover(ctx context.Context, t Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Selecting {
		return ErrNotSelecting
	}
	if IsCandidate(t) {
		return p.surface.Highlight(ctx, t.Rect)
	}
	return p.surface.ClearHighlight(ctx)
}

// Click confirms t when it is a candidate. It reports whether a selection
// was made; clicks on other elements leave the picker selecting.
func (p *Picker) Click(ctx context.Context, t Target) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Selecting {
		return false, ErrNotSelecting
	}
	if !IsCandidate(t) {
		return false, nil
	}

	if err := p.surface.Detach(ctx); err != nil {
		return false, fmt.Errorf("failed to detach selection listeners: %w", err)
	}
	p.state = Idle
	sel := &Selection{Ref: t.Ref, Selector: t.Selector, Tag: t.Tag, Rect: t.Rect}
	p.selection = sel

	if err := p.surface.MarkSelected(ctx, t); err != nil {
		p.logger.Warn("failed to mark selected element", zap.Error(err))
	}
	p.logger.Info("element selected", zap.String("selector", t.Selector), zap.String("tag", t.Tag))
	cp := *sel
	p.publish(Event{Kind: EventSelected, Selection: &cp})
	return true, nil
}

// Escape cancels selecting without recording anything.
func (p *Picker) Escape(ctx context.Context) error {
	return p.cancel(ctx)
}

// Stop is Escape for an explicit stop request.
func (p *Picker) Stop(ctx context.Context) error {
	return p.cancel(ctx)
}

func (p *Picker) cancel(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Selecting {
		return nil
	}
	if err := p.surface.Detach(ctx); err != nil {
		return fmt.Errorf("failed to detach selection listeners: %w", err)
	}
	p.state = Idle
	p.logger.Debug("selection cancelled")
	p.publish(Event{Kind: EventCancelled})
	return nil
}

// ClearSelection drops the active selection and its on-page marker.
func (p *Picker) ClearSelection(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	had := p.selection != nil
	p.selection = nil
	if err := p.surface.Unmark(ctx); err != nil {
		return fmt.Errorf("failed to clear selected element: %w", err)
	}
	if had {
		p.publish(Event{Kind: EventCleared})
	}
	return nil
}

// Subscribe returns a channel of picker events and a function that ends
// the subscription. Slow subscribers miss events rather than block.
func (p *Picker) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	ch := make(chan Event, 16)
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

// publish must be called with p.mu held.
func (p *Picker) publish(ev Event) {
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.logger.Debug("dropping picker event for slow subscriber", zap.String("kind", string(ev.Kind)))
		}
	}
}
