package gifgen

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/overlay"
)

// Screenshotter captures the current viewport.
type Screenshotter interface {
	Screenshot(ctx context.Context) (image.Image, error)
}

// Recorder collects one frame per step of a fill: the page before, the
// detected fields, then one frame after each write with every field
// written so far marked.
type Recorder struct {
	shots  Screenshotter
	logger *zap.Logger

	mu     sync.Mutex
	frames []image.Image
	filled []overlay.Mark
}

// NewRecorder creates a recorder taking screenshots from shots.
func NewRecorder(shots Screenshotter, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{shots: shots, logger: logger.Named("recorder")}
}

// Capture adds a plain frame.
func (r *Recorder) Capture(ctx context.Context) {
	r.capture(ctx, nil)
}

// Detected adds a frame outlining every descriptor.
func (r *Recorder) Detected(ctx context.Context, descriptors []fields.Descriptor) {
	var marks []overlay.Mark
	for _, d := range descriptors {
		if rect, ok := fieldRect(d); ok {
			marks = append(marks, overlay.Mark{Rect: rect, Kind: overlay.Detected})
		}
	}
	r.capture(ctx, marks)
}

// Written implements executor.Observer.
func (r *Recorder) Written(ctx context.Context, d fields.Descriptor, _ string) {
	r.mu.Lock()
	if rect, ok := fieldRect(d); ok {
		r.filled = append(r.filled, overlay.Mark{Rect: rect, Kind: overlay.Filled})
	}
	marks := append([]overlay.Mark(nil), r.filled...)
	r.mu.Unlock()

	r.capture(ctx, marks)
}

// Frames returns the captured frames.
func (r *Recorder) Frames() []image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]image.Image(nil), r.frames...)
}

// Save encodes the frames to path and returns the file size.
func (r *Recorder) Save(path string, opts Options) (int64, error) {
	return Generate(r.Frames(), path, opts)
}

func (r *Recorder) capture(ctx context.Context, marks []overlay.Mark) {
	frame, err := r.shots.Screenshot(ctx)
	if err != nil {
		r.logger.Warn("failed to capture frame", zap.Error(err))
		return
	}
	if len(marks) > 0 {
		frame = overlay.Apply(frame, marks)
	}

	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
}

// fieldRect is the viewport rectangle recorded in the snapshot.
func fieldRect(d fields.Descriptor) (image.Rectangle, bool) {
	el := d.Element()
	if el == nil {
		return image.Rectangle{}, false
	}
	rect, ok := el.Rect()
	if !ok || rect.Width <= 0 || rect.Height <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.Width), int(rect.Y+rect.Height)), true
}
