package crawler

import (
	"context"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
)

const (
	DetectedColor = "#4f46e5"
	FilledColor   = "#10b981"
)

// Effects shows transient on-page feedback. The page restores each style
// itself on a timer, so nothing here waits.
type Effects struct {
	page   *rod.Page
	logger *zap.Logger
}

// Effects returns the feedback helper for the browser's page.
func (b *Browser) Effects() *Effects {
	return &Effects{page: b.page, logger: b.logger}
}

// OutlineDetected draws a 2s dashed outline around every detected field.
func (e *Effects) OutlineDetected(ctx context.Context, descriptors []fields.Descriptor) {
	refs := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Ref != "" {
			refs = append(refs, d.Ref)
		}
	}
	if len(refs) == 0 {
		return
	}
	_, err := e.page.Context(ctx).Eval(`(refs, color) => {
		for (const ref of refs) {
			const el = document.querySelector('[data-af-uid="' + ref + '"]');
			if (!el) continue;
			const outline = el.style.outline;
			el.style.outline = '2px dashed ' + color;
			el.style.outlineOffset = '2px';
			setTimeout(() => { el.style.outline = outline; }, 2000);
		}
	}`, refs, DetectedColor)
	if err != nil {
		e.logger.Debug("failed to outline detected fields", zap.Error(err))
	}
}

// Written flashes a filled field green for half a second.
func (e *Effects) Written(ctx context.Context, d fields.Descriptor, _ string) {
	if d.Ref == "" {
		return
	}
	_, err := e.page.Context(ctx).Eval(`(ref, color) => {
		const el = document.querySelector('[data-af-uid="' + ref + '"]');
		if (!el) return;
		const background = el.style.backgroundColor;
		el.style.backgroundColor = color;
		el.style.transition = 'background-color 0.3s ease';
		setTimeout(() => { el.style.backgroundColor = background; }, 500);
	}`, d.Ref, FilledColor)
	if err != nil {
		e.logger.Debug("failed to flash filled field", zap.String("selector", d.Selector), zap.Error(err))
	}
}
