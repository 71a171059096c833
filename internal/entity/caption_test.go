package entity

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{name: "short", input: "#f80", want: Color{R: 0xff, G: 0x88, B: 0x00, A: 0xff}},
		{name: "long", input: "#102030", want: Color{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{name: "with alpha", input: "#10203080", want: Color{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
		{name: "single digit alpha keeps padding", input: "#ffffff05", want: Color{R: 0xff, G: 0xff, B: 0xff, A: 0x05}},
		{name: "no hash", input: "ABCDEF", want: Color{R: 0xab, G: 0xcd, B: 0xef, A: 0xff}},
		{name: "empty", input: "", wantErr: true},
		{name: "bad length", input: "#12345", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#000000", Black.String())
	assert.Equal(t, "#ff000005", Color{R: 0xff, A: 0x05}.String())
}

func TestCaptionSpecJSON(t *testing.T) {
	var spec CaptionSpec
	require.NoError(t, json.Unmarshal([]byte(`{"text":"Hi","size":12}`), &spec))
	assert.Equal(t, Black, spec.Color)
	assert.True(t, spec.Opaque())
	assert.Equal(t, Mode(""), spec.Mode)

	raw := `{"text":"Hi","font":"GoMono","size":12,"color":"#336699","alpha":128,"position":{"x":-4,"y":9},"mode":"centered"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))
	assert.Equal(t, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 128}, spec.RGBA())
	assert.Equal(t, Position{X: -4, Y: 9}, spec.Position)
	assert.Equal(t, ModeCentered, spec.Mode)
	assert.False(t, spec.Opaque())

	err := json.Unmarshal([]byte(`{"text":"Hi","color":12}`), &spec)
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestValidateCaptions(t *testing.T) {
	alpha := func(v int) *int { return &v }

	tests := []struct {
		name  string
		specs []CaptionSpec
		max   int
		err   error
	}{
		{name: "empty list", specs: nil, max: 5},
		{name: "valid", specs: []CaptionSpec{{Size: 1}, {Size: 400, Mode: ModeCentered, Alpha: alpha(0)}}, max: 5},
		{name: "too many", specs: make([]CaptionSpec, 3), max: 2, err: ErrTooManyCaptions},
		{name: "no limit", specs: []CaptionSpec{{Size: 10}, {Size: 10}, {Size: 10}}, max: 0},
		{name: "size too small", specs: []CaptionSpec{{Size: 0}}, max: 5, err: ErrInvalidCaption},
		{name: "size too big", specs: []CaptionSpec{{Size: 401}}, max: 5, err: ErrInvalidCaption},
		{name: "unknown mode", specs: []CaptionSpec{{Size: 10, Mode: "diagonal"}}, max: 5, err: ErrInvalidCaption},
		{name: "alpha out of range", specs: []CaptionSpec{{Size: 10, Alpha: alpha(256)}}, max: 5, err: ErrInvalidCaption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCaptions(tt.specs, tt.max)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
