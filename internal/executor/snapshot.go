package executor

import (
	"context"
	"sync"

	"github.com/v0xg/autofill/internal/dom"
)

// DispatchedEvent records one synthetic event sent by the snapshot mutator.
type DispatchedEvent struct {
	Target string
	Type   string
}

// SnapshotMutator writes into a parsed snapshot. It is used for offline
// pages and in tests, and records every dispatched event.
type SnapshotMutator struct {
	mu     sync.Mutex
	events []DispatchedEvent
}

// NewSnapshotMutator creates an in-memory mutator.
func NewSnapshotMutator() *SnapshotMutator {
	return &SnapshotMutator{}
}

func (s *SnapshotMutator) SetValue(_ context.Context, el *dom.Element, value string) error {
	el.SetValue(value)
	return nil
}

func (s *SnapshotMutator) SetChecked(_ context.Context, el *dom.Element, checked bool) error {
	el.SetChecked(checked)
	return nil
}

func (s *SnapshotMutator) SelectIndex(_ context.Context, el *dom.Element, index int) error {
	el.SelectIndex(index)
	return nil
}

func (s *SnapshotMutator) Dispatch(_ context.Context, el *dom.Element, events []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.events = append(s.events, DispatchedEvent{Target: describe(el), Type: ev})
	}
	return nil
}

// Events returns the events dispatched so far.
func (s *SnapshotMutator) Events() []DispatchedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DispatchedEvent(nil), s.events...)
}
