// Package caption draws text captions onto images.
package caption

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var ErrNilImage = errors.New("base image is nil")

const (
	StepResolve = "resolve font"
	StepMeasure = "measure"
	StepDraw    = "draw"
)

// Error reports a caption that could not be rendered.
type Error struct {
	Index int
	Step  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("caption %d: %s: %v", e.Index+1, e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fallback records a caption whose font was replaced by the default face.
type Fallback struct {
	Index  int
	Font   string
	Reason string
}

func (f Fallback) String() string {
	return fmt.Sprintf("caption %d: font %q unavailable, default face used: %s", f.Index+1, f.Font, f.Reason)
}

type Result struct {
	Image     *image.NRGBA
	HasAlpha  bool
	Fallbacks []Fallback
}

type FaceResolver interface {
	Resolve(ref string, size int) Resolution
}

type Compositor interface {
	Compose(base image.Image, specs []entity.CaptionSpec) (*Result, error)
}

type compositor struct {
	fonts FaceResolver
	log   logrus.FieldLogger
}

func NewCompositor(fonts FaceResolver, log logrus.FieldLogger) Compositor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &compositor{fonts: fonts, log: log}
}

// Compose draws specs onto a copy of base in list order. base is not modified.
func (c *compositor) Compose(base image.Image, specs []entity.CaptionSpec) (*Result, error) {
	if base == nil {
		return nil, ErrNilImage
	}

	res := &Result{
		Image:    imaging.Clone(base),
		HasAlpha: !isOpaque(base),
	}
	for i, spec := range specs {
		if !spec.Opaque() {
			res.HasAlpha = true
		}
		if err := c.drawCaption(res, i, spec); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *compositor) drawCaption(res *Result, index int, spec entity.CaptionSpec) error {
	var r Resolution
	if err := guard(index, StepResolve, func() { r = c.fonts.Resolve(spec.Font, spec.Size) }); err != nil {
		return err
	}
	if r.Face == nil {
		return &Error{Index: index, Step: StepResolve, Err: errors.New("resolver returned no face")}
	}
	defer r.Face.Close()

	if r.Fallback {
		fb := Fallback{Index: index, Font: spec.Font, Reason: r.Reason.Error()}
		res.Fallbacks = append(res.Fallbacks, fb)
		c.log.WithFields(logrus.Fields{
			"caption": index + 1,
			"font":    spec.Font,
			"reason":  fb.Reason,
		}).Warn("font unavailable, using default face")
	}

	var lines []Line
	width := res.Image.Bounds().Dx()
	if err := guard(index, StepMeasure, func() {
		lines = Layout(r.Face, spec.Text, spec.Mode, spec.Position, width)
	}); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	s := strategyFor(spec.RGBA())
	return guard(index, StepDraw, func() { s.draw(res.Image, r.Face, lines) })
}

type drawStrategy interface {
	draw(dst *image.NRGBA, face font.Face, lines []Line)
}

func strategyFor(c color.NRGBA) drawStrategy {
	if c.A == 0xff {
		return directDraw{color: c}
	}
	return layeredDraw{color: c}
}

// directDraw paints opaque glyphs straight onto the result.
type directDraw struct {
	color color.NRGBA
}

func (s directDraw) draw(dst *image.NRGBA, face font.Face, lines []Line) {
	drawLines(dst, face, lines, s.color)
}

// layeredDraw paints the caption opaque onto a transparent layer and blends the
// layer over the result with the caption alpha, so overlapping glyphs of one
// caption never darken each other.
type layeredDraw struct {
	color color.NRGBA
}

func (s layeredDraw) draw(dst *image.NRGBA, face font.Face, lines []Line) {
	if s.color.A == 0 {
		return
	}
	b := dst.Bounds()
	layer := image.NewNRGBA(b)
	opaque := s.color
	opaque.A = 0xff
	drawLines(layer, face, lines, opaque)

	mask := image.NewUniform(color.Alpha{A: s.color.A})
	draw.DrawMask(dst, b, layer, b.Min, mask, image.Point{}, draw.Over)
}

func drawLines(dst draw.Image, face font.Face, lines []Line, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for _, l := range lines {
		if l.Text == "" {
			continue
		}
		d.Dot = fixed.P(l.Origin.X, l.Baseline)
		d.DrawString(l.Text)
	}
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func guard(index int, step string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Index: index, Step: step, Err: fmt.Errorf("%v", r)}
		}
	}()
	fn()
	return nil
}
