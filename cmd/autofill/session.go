package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/v0xg/autofill/internal/crawler"
	"github.com/v0xg/autofill/internal/executor"
	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/messaging"
	"github.com/v0xg/autofill/internal/picker"
)

// session is one live page with the picker bound and a dispatcher over it.
type session struct {
	browser    *crawler.Browser
	surface    *crawler.Surface
	picker     *picker.Picker
	dispatcher *messaging.Dispatcher
}

func openSession(ctx context.Context, url string, deps messaging.Deps) (*session, error) {
	browser, err := openBrowser(ctx, url)
	if err != nil {
		return nil, err
	}
	return newSession(ctx, browser, deps)
}

// newSession takes ownership of browser.
func newSession(ctx context.Context, browser *crawler.Browser, deps messaging.Deps) (*session, error) {
	surface := browser.PickerSurface()
	p := picker.New(surface, logger)
	if err := surface.Bind(ctx, p); err != nil {
		browser.Close()
		return nil, err
	}

	effects := browser.Effects()
	deps.Page = browser
	deps.Mutator = browser.Mutator()
	deps.Picker = p
	deps.Highlighter = effects
	deps.Observers = append([]executor.Observer{effects}, deps.Observers...)
	deps.Verbose = verbose

	return &session{
		browser:    browser,
		surface:    surface,
		picker:     p,
		dispatcher: messaging.NewDispatcher(deps, logger),
	}, nil
}

func (s *session) Close() {
	s.surface.Close()
	s.browser.Close()
}

func (s *session) do(ctx context.Context, req messaging.Request) (messaging.Response, error) {
	resp := s.dispatcher.Handle(ctx, req)
	if !resp.Success {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

// pick lets the user click the element to scope to. It returns the scope
// to use: selected, or the whole document when selection was cancelled.
func (s *session) pick(ctx context.Context) (string, error) {
	fmt.Print("→ Click an element to scope to (Esc for the whole page)... ")

	events, unsubscribe := s.picker.Subscribe()
	defer unsubscribe()

	if _, err := s.do(ctx, messaging.Request{Action: messaging.ActionStartSelection}); err != nil {
		fmt.Println("failed")
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			s.picker.Stop(context.Background())
			fmt.Println("interrupted")
			return "", ctx.Err()
		case ev := <-events:
			switch ev.Kind {
			case picker.EventSelected:
				fmt.Printf("done (%s)\n", ev.Selection.Selector)
				return messaging.ScopeSelected, nil
			case picker.EventCancelled:
				fmt.Println("cancelled, using the whole page")
				return messaging.ScopeDocument, nil
			}
		}
	}
}

func (s *session) detect(ctx context.Context, scope string) ([]fields.Descriptor, error) {
	fmt.Print("→ Detecting fields... ")
	resp, err := s.do(ctx, messaging.Request{Action: messaging.ActionAnalyze, Scope: scope})
	if err != nil {
		fmt.Println("failed")
		return nil, err
	}
	fmt.Printf("done (%d fillable)\n", len(resp.Fields))
	return resp.Fields, nil
}

// printFields lists descriptors.
func printFields(descs []fields.Descriptor) {
	for i, d := range descs {
		label := d.Label
		if label == "" {
			label = firstNonEmpty(d.Placeholder, d.Name, d.ID)
		}
		required := ""
		if d.Required {
			required = " [required]"
		}
		fmt.Printf("  [%d] %s → %s (%s, %q)%s\n", i+1, d.Selector, d.FieldType, d.Type, label, required)
	}
}

func printData(data *fields.DataMap) {
	for _, k := range data.Keys() {
		v, _ := data.Get(k)
		fmt.Printf("  %s: %s\n", k, v)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
