package caption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

func TestResolveBuiltins(t *testing.T) {
	r := NewFontResolver(t.TempDir(), nil)

	for _, name := range []string{"GoRegular", "GoBold", "GoItalic", "GoMono"} {
		t.Run(name, func(t *testing.T) {
			res := r.Resolve(name, 24)
			defer res.Face.Close()

			assert.False(t, res.Fallback)
			assert.NoError(t, res.Reason)
			assert.Equal(t, name, res.Name)
			assert.NotEqual(t, basicfont.Face7x13, res.Face)
		})
	}
}

func TestResolveDefault(t *testing.T) {
	r := NewFontResolver(t.TempDir(), nil)

	for _, ref := range []string{"", DefaultFont} {
		res := r.Resolve(ref, 40)
		assert.False(t, res.Fallback)
		assert.Equal(t, basicfont.Face7x13, res.Face)
	}
}

func TestResolveCandidateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Lumanosimo-Regular.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ArchitectsDaughter-Regular.ttf"), []byte("not a font"), 0o644))

	r := NewFontResolver(dir, nil)

	tests := []struct {
		name     string
		ref      string
		size     int
		fallback bool
		reason   error
	}{
		{name: "valid file", ref: "Lumanosimo-Regular.ttf", size: 30},
		{name: "corrupt file", ref: "ArchitectsDaughter-Regular.ttf", size: 30, fallback: true},
		{name: "missing file", ref: "PermanentMarker-Regular.ttf", size: 30, fallback: true, reason: os.ErrNotExist},
		{name: "unknown name", ref: "Arial.ttf", size: 30, fallback: true, reason: ErrUnknownFont},
		{name: "zero size", ref: "Lumanosimo-Regular.ttf", size: 0, fallback: true, reason: ErrFontSize},
		{name: "builtin zero size", ref: "GoBold", size: -3, fallback: true, reason: ErrFontSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.ref, tt.size)
			require.NotNil(t, res.Face)
			assert.Equal(t, tt.fallback, res.Fallback)
			if !tt.fallback {
				assert.NoError(t, res.Reason)
				assert.Equal(t, tt.ref, res.Name)
				return
			}
			assert.Error(t, res.Reason)
			assert.Equal(t, basicfont.Face7x13, res.Face)
			assert.Equal(t, DefaultFont, res.Name)
			if tt.reason != nil {
				assert.ErrorIs(t, res.Reason, tt.reason)
			}
		})
	}
}

func TestFontsListing(t *testing.T) {
	r := NewFontResolver("", []string{"B.ttf", "A.ttf", "B.ttf"})

	var names []string
	for _, f := range r.Fonts() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{DefaultFont, "GoRegular", "GoBold", "GoItalic", "GoMono", "B.ttf", "A.ttf"}, names)
}
