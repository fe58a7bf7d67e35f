package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/ai"
	"github.com/v0xg/autofill/internal/dom"
	"github.com/v0xg/autofill/internal/executor"
	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/history"
	"github.com/v0xg/autofill/internal/picker"
)

var (
	ErrBusy           = errors.New("already in progress")
	ErrNoSelection    = errors.New("no element selected")
	ErrStaleSelection = errors.New("selected element is no longer on the page")
	ErrUnknownAction  = errors.New("unknown action")
	ErrNoProvider     = errors.New("no AI provider configured")
	ErrNoPicker       = errors.New("element selection is not available")
)

// Snapshotter captures the current page.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*dom.Document, error)
}

// Highlighter shows which fields were detected.
type Highlighter interface {
	OutlineDetected(ctx context.Context, descriptors []fields.Descriptor)
}

// Deps are the collaborators of a Dispatcher. Picker, Provider, History
// and Highlighter are optional.
type Deps struct {
	Page        Snapshotter
	Mutator     executor.Mutator
	Picker      *picker.Picker
	Provider    ai.Provider
	History     *history.Store
	Highlighter Highlighter
	Observers   []executor.Observer
	Verbose     bool
}

// Dispatcher runs requests against one page. Requests of the same action
// never overlap; a second one fails with ErrBusy.
type Dispatcher struct {
	deps      Deps
	extractor *fields.Extractor
	logger    *zap.Logger

	mu   sync.Mutex
	busy map[Action]bool
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		deps:      deps,
		extractor: fields.NewExtractor(logger),
		logger:    logger.Named("dispatcher"),
		busy:      map[Action]bool{},
	}
}

// Handle runs req and always returns an envelope.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	resp := Response{ID: req.ID}

	if !d.acquire(req.Action) {
		resp.Error = fmt.Sprintf("%s %v", req.Action, ErrBusy)
		return resp
	}
	defer d.release(req.Action)

	logger := d.logger.With(zap.String("id", req.ID), zap.String("action", string(req.Action)))
	if err := d.run(ctx, req, &resp); err != nil {
		logger.Warn("request failed", zap.Error(err))
		resp.Error = err.Error()
		return resp
	}
	logger.Debug("request done")
	resp.Success = true
	return resp
}

func (d *Dispatcher) acquire(a Action) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[a] {
		return false
	}
	d.busy[a] = true
	return true
}

func (d *Dispatcher) release(a Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, a)
}

func (d *Dispatcher) run(ctx context.Context, req Request, resp *Response) error {
	switch req.Action {
	case ActionAnalyze:
		descs, _, err := d.extract(ctx, req.Scope)
		if err != nil {
			return err
		}
		if d.deps.Highlighter != nil {
			d.deps.Highlighter.OutlineDetected(ctx, descs)
		}
		resp.Fields = descs
		return nil

	case ActionFill:
		if req.Data == nil {
			return errors.New("fillForm requires data")
		}
		descs, _, err := d.extract(ctx, req.Scope)
		if err != nil {
			return err
		}
		res := d.executor().Fill(ctx, descs, req.Data)
		resp.FilledCount, resp.SkippedCount, resp.FailedCount = res.Filled, res.Skipped, res.Failed
		return nil

	case ActionClear:
		descs, _, err := d.extract(ctx, req.Scope)
		if err != nil {
			return err
		}
		resp.ClearedCount = d.executor().Clear(ctx, descs)
		return nil

	case ActionGenerate:
		data, descs, err := d.generate(ctx, req)
		if err != nil {
			return err
		}
		resp.Data, resp.Fields = data, descs
		return nil

	case ActionDebug:
		doc, err := d.snapshot(ctx)
		if err != nil {
			return err
		}
		scope, err := d.scope(doc, req.Scope)
		if err != nil {
			return err
		}
		report := fields.Debug(doc)
		_, report.Analysis = d.extractor.Extract(doc, scope)
		resp.Debug = &report
		return nil

	case ActionStartSelection, ActionStopSelection, ActionClearSelection, ActionGetSelection:
		return d.selection(ctx, req.Action, resp)
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, req.Action)
}

func (d *Dispatcher) selection(ctx context.Context, a Action, resp *Response) error {
	p := d.deps.Picker
	if p == nil {
		return ErrNoPicker
	}
	switch a {
	case ActionStartSelection:
		return p.Start(ctx)
	case ActionStopSelection:
		return p.Stop(ctx)
	case ActionClearSelection:
		return p.ClearSelection(ctx)
	default:
		if sel, ok := p.Selection(); ok {
			resp.Selected = &sel
		}
		return nil
	}
}

func (d *Dispatcher) executor() *executor.Executor {
	return executor.New(d.deps.Mutator, d.logger, executor.Options{Verbose: d.deps.Verbose}, d.deps.Observers...)
}

func (d *Dispatcher) snapshot(ctx context.Context) (*dom.Document, error) {
	doc, err := d.deps.Page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return doc, nil
}

// scope resolves the scope root. Nil means the whole document.
func (d *Dispatcher) scope(doc *dom.Document, scope string) (*dom.Element, error) {
	switch scope {
	case "", ScopeDocument:
		return nil, nil
	case ScopeSelected:
		if d.deps.Picker == nil {
			return nil, ErrNoSelection
		}
		sel, ok := d.deps.Picker.Selection()
		if !ok {
			return nil, ErrNoSelection
		}
		el := doc.ByRef(sel.Ref)
		if el == nil {
			return nil, ErrStaleSelection
		}
		return el, nil
	}
	return nil, fmt.Errorf("unknown scope: %s", scope)
}

func (d *Dispatcher) extract(ctx context.Context, scope string) ([]fields.Descriptor, fields.Analysis, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return nil, fields.Analysis{}, err
	}
	root, err := d.scope(doc, scope)
	if err != nil {
		return nil, fields.Analysis{}, err
	}
	descs, analysis := d.extractor.Extract(doc, root)
	return descs, analysis, nil
}

// generate asks the provider for values. Fields sent with the request are
// used as-is; otherwise the scope is extracted.
func (d *Dispatcher) generate(ctx context.Context, req Request) (*fields.DataMap, []fields.Descriptor, error) {
	if d.deps.Provider == nil {
		return nil, nil, ErrNoProvider
	}
	descs := req.Fields
	if len(descs) == 0 {
		var err error
		if descs, _, err = d.extract(ctx, req.Scope); err != nil {
			return nil, nil, err
		}
	}
	if len(descs) == 0 {
		return fields.NewDataMap(), nil, nil
	}

	var used []string
	if d.deps.History != nil {
		used = d.deps.History.Recent()
	}
	data, err := d.deps.Provider.GenerateValues(ctx, descs, ai.NewHints(used))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate form data: %w", err)
	}

	if d.deps.History != nil {
		d.deps.History.Record(data.Values()...)
		if err := d.deps.History.Save(); err != nil {
			d.logger.Warn("failed to save history", zap.Error(err))
		}
	}
	return data, descs, nil
}
