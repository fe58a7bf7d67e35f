package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/v0xg/autofill/internal/ai"
	"github.com/v0xg/autofill/internal/dom"
	"github.com/v0xg/autofill/internal/executor"
	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/history"
	"github.com/v0xg/autofill/internal/picker"
)

const signupPage = `<html><head><title>Signup</title></head><body>
<form id="signup" data-af-uid="10">
	<label for="email">Email</label><input id="email" name="email" type="email">
	<label for="city">City</label><input id="city" name="city">
</form>
<div id="other"><input name="note" placeholder="Note"></div>
<input name="locked" disabled>
</body></html>`

type staticPage struct{ doc *dom.Document }

func (p staticPage) Snapshot(context.Context) (*dom.Document, error) { return p.doc, nil }

type nopSurface struct{}

func (nopSurface) Attach(context.Context) error { return nil }
func (nopSurface) Detach(context.Context) error { return nil }
func (nopSurface) Highlight(context.Context, dom.Rect) error { return nil }
func (nopSurface) ClearHighlight(context.Context) error { return nil }
func (nopSurface) MarkSelected(context.Context, picker.Target) error { return nil }
func (nopSurface) Unmark(context.Context) error { return nil }

type fakeProvider struct {
	data    *fields.DataMap
	err     error
	hints   ai.Hints
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeProvider) GenerateValues(_ context.Context, _ []fields.Descriptor, hints ai.Hints) (*fields.DataMap, error) {
	f.calls++
	f.hints = hints
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.data, f.err
}

type recordingHighlighter struct{ got []fields.Descriptor }

func (h *recordingHighlighter) OutlineDetected(_ context.Context, ds []fields.Descriptor) {
	h.got = ds
}

type fixture struct {
	doc        *dom.Document
	picker     *picker.Picker
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, deps Deps) *fixture {
	t.Helper()
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	if deps.Picker == nil {
		deps.Picker = picker.New(nopSurface{}, logger)
	}
	deps.Page = staticPage{doc}
	deps.Mutator = executor.NewSnapshotMutator()
	return &fixture{doc: doc, picker: deps.Picker, dispatcher: NewDispatcher(deps, logger)}
}

func names(ds []fields.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

func TestAnalyzeForm(t *testing.T) {
	hl := &recordingHighlighter{}
	f := newFixture(t, Deps{Highlighter: hl})

	resp := f.dispatcher.Handle(context.Background(), Request{ID: "r1", Action: ActionAnalyze})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, []string{"email", "city", "note"}, names(resp.Fields))
	assert.Len(t, hl.got, 3)
}

func TestHandleAssignsRequestID(t *testing.T) {
	f := newFixture(t, Deps{})
	resp := f.dispatcher.Handle(context.Background(), Request{Action: ActionGetSelection})
	assert.True(t, resp.Success)
	assert.Len(t, resp.ID, 36)
}

func TestFillAndClearForm(t *testing.T) {
	f := newFixture(t, Deps{})
	ctx := context.Background()

	resp := f.dispatcher.Handle(ctx, Request{
		Action: ActionFill,
		Data:   fields.DataMapOf("email", "sari@gmail.com", "city", "Bandung"),
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, 2, resp.FilledCount)
	assert.Equal(t, 1, resp.SkippedCount)
	assert.Equal(t, "sari@gmail.com", f.doc.ElementByID("email").Value())
	assert.Equal(t, "Bandung", f.doc.ElementByID("city").Value())

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionClear})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, 3, resp.ClearedCount)
	assert.Equal(t, "", f.doc.ElementByID("email").Value())
}

func TestFillRequiresData(t *testing.T) {
	f := newFixture(t, Deps{})
	resp := f.dispatcher.Handle(context.Background(), Request{Action: ActionFill})
	assert.False(t, resp.Success)
	assert.Equal(t, "fillForm requires data", resp.Error)
}

func TestSelectedScope(t *testing.T) {
	f := newFixture(t, Deps{})
	ctx := context.Background()

	resp := f.dispatcher.Handle(ctx, Request{Action: ActionAnalyze, Scope: ScopeSelected})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrNoSelection.Error(), resp.Error)

	require.NoError(t, f.picker.Start(ctx))
	ok, err := f.picker.Click(ctx, picker.Target{Ref: "10", Selector: "#signup", Tag: "form"})
	require.NoError(t, err)
	require.True(t, ok)

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionAnalyze, Scope: ScopeSelected})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, []string{"email", "city"}, names(resp.Fields))

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionGetSelection})
	require.NotNil(t, resp.Selected)
	assert.Equal(t, "#signup", resp.Selected.Selector)

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionClearSelection})
	require.True(t, resp.Success)
	resp = f.dispatcher.Handle(ctx, Request{Action: ActionGetSelection})
	assert.Nil(t, resp.Selected)
}

func TestStaleSelectionAndUnknownScope(t *testing.T) {
	f := newFixture(t, Deps{})
	ctx := context.Background()

	require.NoError(t, f.picker.Start(ctx))
	_, err := f.picker.Click(ctx, picker.Target{Ref: "999", Tag: "form"})
	require.NoError(t, err)

	resp := f.dispatcher.Handle(ctx, Request{Action: ActionClear, Scope: ScopeSelected})
	assert.Equal(t, ErrStaleSelection.Error(), resp.Error)

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionAnalyze, Scope: "window"})
	assert.Equal(t, "unknown scope: window", resp.Error)
}

func TestPickerActions(t *testing.T) {
	f := newFixture(t, Deps{})
	ctx := context.Background()

	resp := f.dispatcher.Handle(ctx, Request{Action: ActionStartSelection})
	require.True(t, resp.Success)
	assert.Equal(t, picker.Selecting, f.picker.State())

	resp = f.dispatcher.Handle(ctx, Request{Action: ActionStopSelection})
	require.True(t, resp.Success)
	assert.Equal(t, picker.Idle, f.picker.State())
}

func TestPickerActionsWithoutPicker(t *testing.T) {
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	d := NewDispatcher(Deps{Page: staticPage{doc}, Mutator: executor.NewSnapshotMutator()}, nil)

	resp := d.Handle(context.Background(), Request{Action: ActionStartSelection})
	assert.Equal(t, ErrNoPicker.Error(), resp.Error)
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t, Deps{})
	resp := f.dispatcher.Handle(context.Background(), Request{Action: "explode"})
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown action: explode", resp.Error)
}

func TestGenerateFormData(t *testing.T) {
	store, err := history.Open("", 0, 0)
	require.NoError(t, err)
	store.Record("old value")

	prov := &fakeProvider{data: fields.DataMapOf("email", "Sari@Gmail.com", "age", "30")}
	f := newFixture(t, Deps{Provider: prov, History: store})

	resp := f.dispatcher.Handle(context.Background(), Request{Action: ActionGenerate})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, []string{"email", "age"}, resp.Data.Keys())
	assert.Len(t, resp.Fields, 3)
	assert.Equal(t, []string{"old value"}, prov.hints.Used)
	assert.Equal(t, []string{"old value", "sari@gmail.com"}, store.All())
}

func TestGenerateUsesRequestFields(t *testing.T) {
	prov := &fakeProvider{data: fields.DataMapOf("x", "y")}
	f := newFixture(t, Deps{Provider: prov})

	resp := f.dispatcher.Handle(context.Background(), Request{
		Action: ActionGenerate,
		Fields: []fields.Descriptor{{Name: "only"}},
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, []string{"only"}, names(resp.Fields))
}

func TestGenerateFailures(t *testing.T) {
	f := newFixture(t, Deps{})
	resp := f.dispatcher.Handle(context.Background(), Request{Action: ActionGenerate})
	assert.Equal(t, ErrNoProvider.Error(), resp.Error)

	prov := &fakeProvider{err: ai.ErrNoJSONObject}
	f = newFixture(t, Deps{Provider: prov})
	resp = f.dispatcher.Handle(context.Background(), Request{Action: ActionGenerate})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, ai.ErrNoJSONObject.Error())
}

func TestBusyAction(t *testing.T) {
	prov := &fakeProvider{
		data:    fields.DataMapOf("email", "a@b.co"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFixture(t, Deps{Provider: prov})
	ctx := context.Background()

	var wg sync.WaitGroup
	var first Response
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.dispatcher.Handle(ctx, Request{Action: ActionGenerate})
	}()
	<-prov.started

	second := f.dispatcher.Handle(ctx, Request{Action: ActionGenerate})
	assert.False(t, second.Success)
	assert.Equal(t, "generateFormData already in progress", second.Error)

	// other actions are not blocked
	assert.True(t, f.dispatcher.Handle(ctx, Request{Action: ActionAnalyze}).Success)

	close(prov.release)
	wg.Wait()
	assert.True(t, first.Success, first.Error)
	assert.Equal(t, 1, prov.calls)
}

func TestDebugForm(t *testing.T) {
	f := newFixture(t, Deps{})
	resp := f.dispatcher.Handle(context.Background(), Request{Action: ActionDebug})
	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.Debug)

	assert.Equal(t, "Signup", resp.Debug.Title)
	assert.Equal(t, 4, resp.Debug.Inputs)
	assert.Equal(t, 1, resp.Debug.Disabled)
	assert.Equal(t, 1, resp.Debug.Analysis.Disabled)
	assert.Equal(t, 4, resp.Debug.Total())
}

type failingPage struct{}

func (failingPage) Snapshot(context.Context) (*dom.Document, error) {
	return nil, errors.New("target closed")
}

func TestSnapshotFailure(t *testing.T) {
	d := NewDispatcher(Deps{Page: failingPage{}, Mutator: executor.NewSnapshotMutator()}, zaptest.NewLogger(t))
	resp := d.Handle(context.Background(), Request{Action: ActionAnalyze})
	assert.Equal(t, "failed to read page: target closed", resp.Error)
}
