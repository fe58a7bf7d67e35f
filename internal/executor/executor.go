package executor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
)

// ErrNoElement is returned for descriptors that carry no element reference.
var ErrNoElement = errors.New("descriptor has no element")

// Options configures execution behavior
type Options struct {
	Verbose bool
}

// Observer is notified after each successful write. The crawler's fill
// flash and the GIF recorder implement it.
type Observer interface {
	Written(ctx context.Context, d fields.Descriptor, value string)
}

// FillResult counts the outcome of one fill pass.
type FillResult struct {
	Filled  int `json:"filledCount"`
	Skipped int `json:"skippedCount"`
	Failed  int `json:"failedCount"`
}

// Executor pairs descriptors with generated values and writes them.
type Executor struct {
	writer    *Writer
	opts      Options
	logger    *zap.Logger
	observers []Observer
}

// New creates an executor writing through m.
func New(m Mutator, logger *zap.Logger, opts Options, observers ...Observer) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		writer:    NewWriter(m),
		opts:      opts,
		logger:    logger.Named("executor"),
		observers: observers,
	}
}

// Fill writes the matching value from data into every descriptor's element.
// Fields without a match are skipped; write errors are counted and do not
// abort the batch.
func (e *Executor) Fill(ctx context.Context, descriptors []fields.Descriptor, data *fields.DataMap) FillResult {
	var res FillResult
	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			res.Failed += len(descriptors) - i
			e.logger.Warn("fill interrupted", zap.Error(err))
			break
		}

		if e.opts.Verbose {
			fmt.Printf("  [%d/%d] fill %s", i+1, len(descriptors), d.Selector)
		}

		value, ok := fields.Match(d, data)
		if !ok {
			res.Skipped++
			if e.opts.Verbose {
				fmt.Println(" - (no value)")
			}
			continue
		}

		if err := e.apply(ctx, d, value); err != nil {
			res.Failed++
			e.logger.Warn("failed to fill field", zap.String("selector", d.Selector), zap.Error(err))
			if e.opts.Verbose {
				fmt.Printf(" ✗ (%v)\n", err)
			}
			continue
		}

		res.Filled++
		if e.opts.Verbose {
			fmt.Println(" ✓")
		}
		for _, o := range e.observers {
			o.Written(ctx, d, value)
		}
	}

	e.logger.Info("fill finished",
		zap.Int("filled", res.Filled),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res
}

// Clear resets every descriptor's element and returns how many were cleared.
func (e *Executor) Clear(ctx context.Context, descriptors []fields.Descriptor) int {
	cleared := 0
	for _, d := range descriptors {
		if ctx.Err() != nil {
			break
		}
		el := d.Element()
		if el == nil {
			e.logger.Warn("cannot clear field", zap.String("selector", d.Selector), zap.Error(ErrNoElement))
			continue
		}
		if err := e.writer.Clear(ctx, el); err != nil {
			e.logger.Warn("failed to clear field", zap.String("selector", d.Selector), zap.Error(err))
			continue
		}
		cleared++
	}
	e.logger.Info("clear finished", zap.Int("cleared", cleared))
	return cleared
}

func (e *Executor) apply(ctx context.Context, d fields.Descriptor, value string) error {
	el := d.Element()
	if el == nil {
		return ErrNoElement
	}
	return e.writer.Apply(ctx, el, value)
}
