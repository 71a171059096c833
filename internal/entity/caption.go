package entity

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeAbsolute Mode = "absolute"
	ModeCentered Mode = "centered"
)

const (
	MinFontSize = 1
	MaxFontSize = 400
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CaptionSpec describes one piece of text to draw onto an image.
type CaptionSpec struct {
	Text     string   `json:"text"`
	Font     string   `json:"font"`
	Size     int      `json:"size"`
	Color    Color    `json:"color"`
	Alpha    *int     `json:"alpha,omitempty"`
	Position Position `json:"position"`
	Mode     Mode     `json:"mode,omitempty"`
}

// UnmarshalJSON defaults an omitted color to opaque black.
func (s *CaptionSpec) UnmarshalJSON(data []byte) error {
	type plain CaptionSpec
	p := plain{Color: Black}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = CaptionSpec(p)
	return nil
}

// RGBA returns the caption color with the explicit alpha applied, if any.
func (s CaptionSpec) RGBA() color.NRGBA {
	c := color.NRGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: s.Color.A}
	if s.Alpha != nil {
		c.A = uint8(clamp(*s.Alpha, 0, 255))
	}
	return c
}

func (s CaptionSpec) Opaque() bool {
	return s.RGBA().A == 0xff
}

func (s CaptionSpec) Validate() error {
	if s.Size < MinFontSize || s.Size > MaxFontSize {
		return fmt.Errorf("%w: font size %d out of range [%d, %d]", ErrInvalidCaption, s.Size, MinFontSize, MaxFontSize)
	}
	switch s.Mode {
	case "", ModeAbsolute, ModeCentered:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidCaption, s.Mode)
	}
	if s.Alpha != nil && (*s.Alpha < 0 || *s.Alpha > 255) {
		return fmt.Errorf("%w: alpha %d out of range [0, 255]", ErrInvalidCaption, *s.Alpha)
	}
	return nil
}

// ValidateCaptions checks basic range sanity of a caption list.
func ValidateCaptions(specs []CaptionSpec, max int) error {
	if max > 0 && len(specs) > max {
		return fmt.Errorf("%w: %d captions, at most %d allowed", ErrTooManyCaptions, len(specs), max)
	}
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("caption %d: %w", i+1, err)
		}
	}
	return nil
}

// Color is an RGBA color encoded in JSON as a hex string.
type Color struct {
	R, G, B, A uint8
}

var Black = Color{A: 0xff}

// ParseColor accepts #RGB, #RRGGBB and #RRGGBBAA. The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected hex string", ErrInvalidColor)
	}
	if s == "" {
		*c = Black
		return nil
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
