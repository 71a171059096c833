package caption

import (
	"image"
	"math"
	"strings"

	"github.com/ds124wfegd/captioner/internal/entity"
	"golang.org/x/image/font"
)

// Line is one laid out line of a caption. Origin is the top-left corner of the
// line box; the glyphs sit on Baseline.
type Line struct {
	Text     string
	Origin   image.Point
	Baseline int
	Width    int
	Height   int
}

// Bounds returns the line box.
func (l Line) Bounds() image.Rectangle {
	return image.Rect(l.Origin.X, l.Origin.Y, l.Origin.X+l.Width, l.Origin.Y+l.Height)
}

// SplitLines splits text on \n, \r\n and \r. Empty text yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Measure returns the rendered width and height of a single line. The height is
// the face ascent plus however far the line's ink reaches below the baseline.
func Measure(face font.Face, line string) (width, height int) {
	ascent := face.Metrics().Ascent.Ceil()
	if line == "" {
		return 0, ascent
	}
	width = font.MeasureString(face, line).Ceil()
	bounds, _ := font.BoundString(face, line)
	depth := bounds.Max.Y.Ceil()
	if depth < 0 {
		depth = 0
	}
	return width, ascent + depth
}

// Layout places every line of text. Lines stack top to bottom, each advancing
// by its own measured height.
func Layout(face font.Face, text string, mode entity.Mode, pos entity.Position, imageWidth int) []Line {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil
	}

	ascent := face.Metrics().Ascent.Ceil()
	out := make([]Line, 0, len(lines))
	y := pos.Y
	for _, s := range lines {
		w, h := Measure(face, s)
		x := pos.X
		if mode == entity.ModeCentered {
			x = centerX(imageWidth, w)
		}
		out = append(out, Line{
			Text:     s,
			Origin:   image.Pt(x, y),
			Baseline: y + ascent,
			Width:    w,
			Height:   h,
		})
		y += h
	}
	return out
}

func centerX(imageWidth, lineWidth int) int {
	return int(math.Round(float64(imageWidth-lineWidth) / 2))
}
