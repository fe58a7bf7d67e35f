package gifgen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sort"

	"github.com/nfnt/resize"
)

// ErrNoFrames is returned when there is nothing to encode.
var ErrNoFrames = errors.New("no frames to encode")

// Options configures GIF generation
type Options struct {
	// FrameDelay is how long each frame shows, in 100ths of a second.
	FrameDelay int
	// FinalDelay holds the last frame longer; zero uses FrameDelay.
	FinalDelay int
	MaxWidth   uint
}

// Generate writes frames to a GIF file and returns its size.
func Generate(frames []image.Image, outputPath string, opts Options) (int64, error) {
	if len(frames) == 0 {
		return 0, ErrNoFrames
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := Encode(f, frames, opts); err != nil {
		return 0, err
	}

	// Get file size
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Encode writes frames as a looping GIF to w.
func Encode(w io.Writer, frames []image.Image, opts Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if opts.FrameDelay <= 0 {
		opts.FrameDelay = 60
	}
	if opts.FinalDelay <= 0 {
		opts.FinalDelay = opts.FrameDelay
	}

	bounds := frames[0].Bounds()
	outputWidth := opts.MaxWidth
	if outputWidth == 0 {
		outputWidth = 800
	}
	if int(outputWidth) > bounds.Dx() {
		outputWidth = uint(bounds.Dx())
	}
	// Calculate height maintaining aspect ratio
	outputHeight := uint(float64(outputWidth) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if outputHeight == 0 {
		outputHeight = 1
	}

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0, // Infinite loop
	}

	// Highlight colors appear only on later frames, so sample all of them.
	palette := generatePalette(frames)

	for i, frame := range frames {
		resized := resize.Resize(outputWidth, outputHeight, frame, resize.Lanczos3)

		paletted := image.NewPaletted(resized.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, resized.Bounds(), resized, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = opts.FrameDelay
	}
	g.Delay[len(frames)-1] = opts.FinalDelay

	if err := gif.EncodeAll(w, g); err != nil {
		return fmt.Errorf("failed to encode GIF: %w", err)
	}
	return nil
}

// generatePalette picks the 255 most frequent colors across frames, plus
// transparent, padding with grays.
func generatePalette(frames []image.Image) color.Palette {
	counts := make(map[color.RGBA]int)

	// Sample every 4th pixel for performance
	const step = 4
	for _, img := range frames {
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
			for x := bounds.Min.X; x < bounds.Max.X; x += step {
				r, g, b, a := img.At(x, y).RGBA()
				counts[color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}]++
			}
		}
	}

	type colorCount struct {
		c     color.RGBA
		count int
	}
	colors := make([]colorCount, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, colorCount{c, n})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].count != colors[j].count {
			return colors[i].count > colors[j].count
		}
		a, b := colors[i].c, colors[j].c
		return uint32(a.R)<<24|uint32(a.G)<<16|uint32(a.B)<<8|uint32(a.A) <
			uint32(b.R)<<24|uint32(b.G)<<16|uint32(b.B)<<8|uint32(b.A)
	})

	palette := make(color.Palette, 0, 256)
	palette = append(palette, color.RGBA{0, 0, 0, 0})
	for i := 0; i < len(colors) && len(palette) < 256; i++ {
		palette = append(palette, colors[i].c)
	}
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
