package crawler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"

	"github.com/go-rod/rod/lib/proto"
)

// Screenshot captures the visible viewport.
func (b *Browser) Screenshot(ctx context.Context) (image.Image, error) {
	quality := 90
	data, err := b.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatPng,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}
