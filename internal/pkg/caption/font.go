package caption

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ds124wfegd/captioner/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFont names the built-in fallback face.
const DefaultFont = "default"

// DefaultCandidates is the fixed list of font files looked up in the fonts directory.
var DefaultCandidates = []string{
	"PermanentMarker-Regular.ttf",
	"ArchitectsDaughter-Regular.ttf",
	"Lumanosimo-Regular.ttf",
}

var (
	ErrUnknownFont = errors.New("font is not in the candidate list")
	ErrFontSize    = errors.New("font size must be positive")
)

type builtinFont struct {
	ttf    []byte
	once   sync.Once
	parsed *opentype.Font
	err    error
}

func (b *builtinFont) load() (*opentype.Font, error) {
	b.once.Do(func() {
		b.parsed, b.err = opentype.Parse(b.ttf)
	})
	return b.parsed, b.err
}

var builtins = map[string]*builtinFont{
	"GoRegular": {ttf: goregular.TTF},
	"GoBold":    {ttf: gobold.TTF},
	"GoItalic":  {ttf: goitalic.TTF},
	"GoMono":    {ttf: gomono.TTF},
}

var builtinOrder = []string{"GoRegular", "GoBold", "GoItalic", "GoMono"}

// Resolution is the outcome of resolving a font reference. Face is always usable.
type Resolution struct {
	Face     font.Face
	Name     string
	Fallback bool
	Reason   error
}

// FontResolver maps font references to faces. Unresolvable references fall back
// to basicfont.Face7x13.
type FontResolver struct {
	dir        string
	candidates map[string]bool
	order      []string
}

func NewFontResolver(dir string, candidates []string) *FontResolver {
	if candidates == nil {
		candidates = DefaultCandidates
	}
	r := &FontResolver{dir: dir, candidates: make(map[string]bool, len(candidates))}
	for _, c := range candidates {
		if !r.candidates[c] {
			r.candidates[c] = true
			r.order = append(r.order, c)
		}
	}
	return r
}

func (r *FontResolver) Resolve(ref string, size int) Resolution {
	if ref == "" || ref == DefaultFont {
		return Resolution{Face: fallbackFace(), Name: DefaultFont}
	}
	face, err := r.load(ref, size)
	if err != nil {
		return Resolution{Face: fallbackFace(), Name: DefaultFont, Fallback: true, Reason: err}
	}
	return Resolution{Face: face, Name: ref}
}

// Fonts lists the references Resolve understands, in display order.
func (r *FontResolver) Fonts() []entity.FontInfo {
	out := []entity.FontInfo{{Name: DefaultFont, BuiltIn: true}}
	for _, name := range builtinOrder {
		out = append(out, entity.FontInfo{Name: name, BuiltIn: true})
	}
	for _, name := range r.order {
		out = append(out, entity.FontInfo{Name: name})
	}
	return out
}

func (r *FontResolver) load(ref string, size int) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrFontSize, size)
	}

	var parsed *opentype.Font
	if b, ok := builtins[ref]; ok {
		f, err := b.load()
		if err != nil {
			return nil, fmt.Errorf("parse built-in font %s: %w", ref, err)
		}
		parsed = f
	} else {
		if !r.candidates[ref] || filepath.Base(ref) != ref {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFont, ref)
		}
		data, err := os.ReadFile(filepath.Join(r.dir, ref))
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", ref, err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", ref, err)
		}
		parsed = f
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face %s at %dpt: %w", ref, size, err)
	}
	return face, nil
}

func fallbackFace() font.Face {
	return basicfont.Face7x13
}
