package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

// Kind selects how a mark is drawn.
type Kind int

const (
	// Detected is a dashed indigo outline around a detected field.
	Detected Kind = iota
	// Filled is a green tint with a solid border over a written field.
	Filled
)

var (
	DetectedColor = color.RGBA{0x4f, 0x46, 0xe5, 255}
	FilledColor   = color.RGBA{0x10, 0xb9, 0x81, 255}
)

const (
	dashLength = 6
	outlinePad = 2
	fillAlpha  = 90
)

// Mark is one highlighted field on a frame, in frame pixels.
type Mark struct {
	Rect image.Rectangle
	Kind Kind
}

// Apply draws marks on a copy of frame.
func Apply(frame image.Image, marks []Mark) image.Image {
	bounds := frame.Bounds()
	result := image.NewRGBA(bounds)

	// Copy original frame
	draw.Draw(result, bounds, frame, bounds.Min, draw.Src)

	for _, m := range marks {
		if m.Rect.Empty() {
			continue
		}
		switch m.Kind {
		case Filled:
			tint(result, m.Rect, FilledColor)
			drawRect(result, m.Rect, FilledColor, false)
		default:
			drawRect(result, m.Rect.Inset(-outlinePad), DetectedColor, true)
		}
	}
	return result
}

// tint blends c over r.
func tint(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	over := image.NewUniform(color.NRGBA{c.R, c.G, c.B, fillAlpha})
	draw.Draw(img, r.Intersect(img.Bounds()), over, image.Point{}, draw.Over)
}

// drawRect draws a two pixel outline, optionally dashed.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, dashed bool) {
	for i := 0; i < 2; i++ {
		x0, y0, x1, y1 := r.Min.X+i, r.Min.Y+i, r.Max.X-1-i, r.Max.Y-1-i
		drawLine(img, x0, y0, x1, y0, c, dashed)
		drawLine(img, x1, y0, x1, y1, c, dashed)
		drawLine(img, x1, y1, x0, y1, c, dashed)
		drawLine(img, x0, y1, x0, y0, c, dashed)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
// Dashed lines alternate dashLength pixels on and off.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, dashed bool) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for step := 0; ; step++ {
		if !dashed || (step/dashLength)%2 == 0 {
			setPixelSafe(img, x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
