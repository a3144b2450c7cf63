package font

import (
	"bytes"
	"image"
	"sync"

	tsfont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/go-weft/weft/pkg/assets"
	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
)

// defaultFontSize is used when a descriptor does not specify a size.
const defaultFontSize = 16

// rasterDPI is the dot density used for rasterization. Descriptor sizes are
// pixel sizes, so rasterization always runs at 72 DPI.
const rasterDPI = 72

// OutlineBackend rasterizes a vector (TTF/OTF) font at arbitrary size.
// This is the most flexible and the most expensive backend: building a face
// for a new size dominates the cost, so faces are cached per (size, style)
// and rasterized glyph bitmaps belong in the glyph cache.
type OutlineBackend struct {
	data []byte
	sf   *sfnt.Font
	meta *tsfont.Font
	id   uint64

	mu    sync.Mutex
	faces map[faceKey]xfont.Face
}

type faceKey struct {
	size  float64
	style Style
}

// NewOutlineBackend parses TTF/OTF bytes into an outline backend.
// The data slice must not be mutated after the call.
func NewOutlineBackend(data []byte) (*OutlineBackend, error) {
	meta, err := tsfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.NewOutlineBackend", Kind: wefterrors.KindFont, Err: err}
	}
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.NewOutlineBackend", Kind: wefterrors.KindFont, Err: err}
	}
	return &OutlineBackend{
		data:  data,
		sf:    sf,
		meta:  meta.Font,
		id:    newBackendID(),
		faces: make(map[faceKey]xfont.Face),
	}, nil
}

// LoadOutlineBackend reads font bytes through the asset provider.
func LoadOutlineBackend(p assets.Provider, path string) (*OutlineBackend, error) {
	data, err := p.Bytes(path)
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.LoadOutlineBackend", Kind: wefterrors.KindFont, Err: err}
	}
	return NewOutlineBackend(data)
}

// Kind implements Backend.
func (b *OutlineBackend) Kind() BackendKind { return BackendOutline }

// ID implements Backend.
func (b *OutlineBackend) ID() uint64 { return b.id }

// Family returns the font family name declared by the font.
func (b *OutlineBackend) Family() string {
	return b.meta.Describe().Family
}

// HasGlyph reports whether the font's cmap covers ch.
func (b *OutlineBackend) HasGlyph(ch rune) bool {
	_, ok := b.meta.NominalGlyph(ch)
	return ok
}

// face returns a cached rasterization face for the descriptor size.
// Style flags are accepted but not synthesized: a single-face outline font
// renders its one design regardless of bold/italic requests.
func (b *OutlineBackend) face(d Descriptor) (xfont.Face, error) {
	size := d.Size
	if size <= 0 {
		size = defaultFontSize
	}
	key := faceKey{size: size, style: d.Style}

	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.faces[key]; ok {
		return f, nil
	}

	f, err := opentype.NewFace(b.sf, &opentype.FaceOptions{
		Size:    size,
		DPI:     rasterDPI,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.OutlineBackend.face", Kind: wefterrors.KindFont, Err: err}
	}
	b.faces[key] = f
	return f, nil
}

// LineHeight implements Backend.
func (b *OutlineBackend) LineHeight(d Descriptor) float64 {
	f, err := b.face(d)
	if err != nil {
		return 0
	}
	return fixedToFloat(f.Metrics().Height)
}

// Metrics implements Backend.
func (b *OutlineBackend) Metrics(ch rune, d Descriptor) (CharMetrics, error) {
	if !b.HasGlyph(ch) {
		return CharMetrics{}, b.notFound(ch)
	}
	f, err := b.face(d)
	if err != nil {
		return CharMetrics{}, err
	}
	bounds, advance, ok := f.GlyphBounds(ch)
	if !ok {
		return CharMetrics{}, b.notFound(ch)
	}
	return CharMetrics{
		Char:    ch,
		Advance: fixedToFloat(advance),
		Bounds: graphics.Rect{
			Left:   fixedToFloat(bounds.Min.X),
			Top:    fixedToFloat(bounds.Min.Y),
			Right:  fixedToFloat(bounds.Max.X),
			Bottom: fixedToFloat(bounds.Max.Y),
		},
	}, nil
}

// Rasterize implements Backend. The glyph is drawn into an alpha mask whose
// bounds are relative to the baseline origin.
func (b *OutlineBackend) Rasterize(ch rune, d Descriptor) (*graphics.AlphaBitmap, error) {
	if !b.HasGlyph(ch) {
		return nil, b.notFound(ch)
	}
	f, err := b.face(d)
	if err != nil {
		return nil, err
	}

	bounds, advance, ok := f.GlyphBounds(ch)
	if !ok {
		return nil, b.notFound(ch)
	}

	// Round 26.6 fixed-point bounds outward to whole pixels.
	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6

	rect := image.Rect(minX, minY, maxX, maxY)
	mask := image.NewAlpha(rect)

	// The mask rectangle is expressed relative to the glyph origin, so
	// drawing with the pen at (0,0) lands the coverage inside the mask.
	drawer := &xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: f,
	}
	drawer.DrawString(string(ch))

	return &graphics.AlphaBitmap{
		Mask:    mask,
		Bounds:  rect,
		Advance: fixedToFloat(advance),
	}, nil
}

func (b *OutlineBackend) notFound(ch rune) error {
	return &wefterrors.GlyphNotFoundError{Char: ch, Source: "font " + b.Family()}
}

// fixedToFloat converts a 26.6 fixed-point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
