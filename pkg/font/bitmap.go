package font

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/go-weft/weft/pkg/assets"
	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
)

// BitmapBackend renders characters by cutting pre-rendered cells out of an
// atlas page. The character set is exactly what the atlas definition
// declares: any other character fails with GlyphNotFound. The size is fixed
// by the atlas; descriptor sizes are ignored and re-sizing means loading a
// different atlas (the backend has no CapRescale).
type BitmapBackend struct {
	def  *AtlasDefinition
	page *image.NRGBA
	id   uint64
}

// NewBitmapBackend builds a bitmap backend from a parsed atlas definition
// and its decoded page image.
func NewBitmapBackend(def *AtlasDefinition, page image.Image) *BitmapBackend {
	// Normalize the page to NRGBA once so glyph extraction is a plain
	// pixel walk regardless of the decoded image type.
	bounds := page.Bounds()
	normalized := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(normalized, image.Point{}, page, bounds, xdraw.Src, nil)

	return &BitmapBackend{
		def:  def,
		page: normalized,
		id:   newBackendID(),
	}
}

// LoadBitmapBackend reads an atlas definition and its page through the
// asset provider. defPath is resolved by the provider; the page path inside
// the definition is resolved the same way.
func LoadBitmapBackend(p assets.Provider, defPath string) (*BitmapBackend, error) {
	data, err := p.Bytes(defPath)
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.LoadBitmapBackend", Kind: wefterrors.KindFont, Err: err}
	}
	def, err := ParseAtlas(data)
	if err != nil {
		return nil, err
	}
	page, err := p.Image(def.Page)
	if err != nil {
		return nil, &wefterrors.WeftError{Op: "font.LoadBitmapBackend", Kind: wefterrors.KindFont, Err: err}
	}
	return NewBitmapBackend(def, page), nil
}

// Kind implements Backend.
func (b *BitmapBackend) Kind() BackendKind { return BackendBitmap }

// ID implements Backend.
func (b *BitmapBackend) ID() uint64 { return b.id }

// Definition returns the atlas definition backing this backend.
func (b *BitmapBackend) Definition() *AtlasDefinition { return b.def }

// LineHeight implements Backend. The descriptor size is ignored: atlas line
// height is baked into the page.
func (b *BitmapBackend) LineHeight(Descriptor) float64 {
	return b.def.LineHeight
}

// Metrics implements Backend.
func (b *BitmapBackend) Metrics(ch rune, _ Descriptor) (CharMetrics, error) {
	g, ok := b.def.Glyph(ch)
	if !ok {
		return CharMetrics{}, b.notFound(ch)
	}
	return CharMetrics{
		Char:    ch,
		Advance: g.XAdvance,
		Bounds: graphics.RectFromLTWH(
			g.XOffset,
			g.YOffset-b.def.Base,
			float64(g.Width),
			float64(g.Height),
		),
	}, nil
}

// Rasterize implements Backend. The alpha channel of the atlas cell becomes
// the coverage mask.
func (b *BitmapBackend) Rasterize(ch rune, _ Descriptor) (*graphics.AlphaBitmap, error) {
	g, ok := b.def.Glyph(ch)
	if !ok {
		return nil, b.notFound(ch)
	}

	bounds := image.Rect(
		int(g.XOffset),
		int(g.YOffset-b.def.Base),
		int(g.XOffset)+g.Width,
		int(g.YOffset-b.def.Base)+g.Height,
	)
	mask := image.NewAlpha(bounds)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := b.page.PixOffset(g.X+x, g.Y+y)
			mask.SetAlpha(bounds.Min.X+x, bounds.Min.Y+y, color.Alpha{A: b.page.Pix[i+3]})
		}
	}

	return &graphics.AlphaBitmap{
		Mask:    mask,
		Bounds:  bounds,
		Advance: g.XAdvance,
	}, nil
}

func (b *BitmapBackend) notFound(ch rune) error {
	return &wefterrors.GlyphNotFoundError{Char: ch, Source: "atlas " + b.def.Page}
}
