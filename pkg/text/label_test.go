package text

import (
	stderrors "errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-weft/weft/pkg/effects"
	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/font"
	"github.com/go-weft/weft/pkg/graphics"
)

// testBackend builds a bitmap backend declaring 'A', 'B' and '?', each a 4x4
// cell with advance 5.
func testBackend(t *testing.T) *font.BitmapBackend {
	t.Helper()

	def, err := font.ParseAtlas([]byte(`
formatVersion: "1.0.0"
page: "test.png"
lineHeight: 8
base: 6
glyphs:
  - {char: "A", x: 0, y: 0, width: 4, height: 4, yoffset: 2, xadvance: 5}
  - {char: "B", x: 4, y: 0, width: 4, height: 4, yoffset: 2, xadvance: 5}
  - {char: "?", x: 8, y: 0, width: 4, height: 4, yoffset: 2, xadvance: 5}
`))
	if err != nil {
		t.Fatalf("ParseAtlas failed: %v", err)
	}

	page := image.NewNRGBA(image.Rect(0, 0, 12, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 12; x++ {
			page.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return font.NewBitmapBackend(def, page)
}

func testDescriptor() font.Descriptor {
	return font.Descriptor{Backend: font.BackendBitmap, Source: "test.png"}
}

func TestLabel_Layout(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(), WithText("AB"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(result.Quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(result.Quads))
	}
	if result.Advance != 10 {
		t.Errorf("expected advance 10, got %g", result.Advance)
	}
	if len(result.Missing) != 0 {
		t.Errorf("unexpected missing glyphs: %v", result.Missing)
	}

	// The second quad sits one advance to the right of the first.
	dx := result.Quads[1].Rect.Left - result.Quads[0].Rect.Left
	if dx != 5 {
		t.Errorf("expected quad spacing 5, got %g", dx)
	}
}

// TestLabel_LayoutIdempotent verifies that repeated layouts without changes
// return the cached result and identical geometry after a change cycle.
func TestLabel_LayoutIdempotent(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(), WithText("AB"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	second, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if first != second {
		t.Error("unchanged label should return the cached result")
	}

	// Changing the text and changing it back reproduces the same geometry.
	label.SetText("A")
	label.SetText("AB")
	third, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	for i := range first.Quads {
		if first.Quads[i].Rect != third.Quads[i].Rect {
			t.Errorf("quad %d moved: %+v vs %+v", i, first.Quads[i].Rect, third.Quads[i].Rect)
		}
	}
}

// TestLabel_MissingOmit verifies the default policy: the undeclared
// character yields no quad but is reported.
func TestLabel_MissingOmit(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(), WithText("ABC"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(result.Quads) != 2 {
		t.Errorf("expected 2 quads, got %d", len(result.Quads))
	}
	if len(result.Missing) != 1 || result.Missing[0].Index != 2 || result.Missing[0].Char != 'C' {
		t.Errorf("expected missing {2 'C'}, got %v", result.Missing)
	}
}

func TestLabel_MissingPlaceholder(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(),
		WithText("AC"),
		WithMissingPolicy(MissingPlaceholder, '?'))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(result.Quads) != 2 {
		t.Errorf("expected the placeholder to be drawn, got %d quads", len(result.Quads))
	}
	if len(result.Missing) != 1 || result.Missing[0].Char != 'C' {
		t.Errorf("placeholder substitution must still be reported, got %v", result.Missing)
	}
}

func TestLabel_MissingFail(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(),
		WithText("AC"),
		WithMissingPolicy(MissingFail, 0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := label.Layout(); !font.IsGlyphNotFound(err) {
		t.Errorf("expected GlyphNotFound, got %v", err)
	}
}

func TestLabel_MultiLine(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(), WithText("AB\nA"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(result.Quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(result.Quads))
	}
	// Advance is the widest line.
	if result.Advance != 10 {
		t.Errorf("expected advance 10, got %g", result.Advance)
	}
	// The second line's quad starts back at x=0, one line height down.
	if result.Quads[2].Rect.Left != result.Quads[0].Rect.Left {
		t.Error("second line should restart at the left edge")
	}
	if dy := result.Quads[2].Rect.Top - result.Quads[0].Rect.Top; dy != 8 {
		t.Errorf("expected line height 8 between lines, got %g", dy)
	}
}

// TestLabel_EffectRejectedAtConfigTime verifies that an illegal effect fails
// label construction and that SetEffects keeps the previous stack on error.
func TestLabel_EffectRejectedAtConfigTime(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	glowLayer := effects.Layer{Kind: effects.Glow, Color: graphics.RGB(255, 200, 0), Thickness: 2}
	_, err := New(backend, cache, testDescriptor(), WithText("A"), WithEffects(glowLayer))
	var unsupported *wefterrors.UnsupportedEffectError
	if !stderrors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedEffectError, got %v", err)
	}

	shadowLayer := effects.Layer{Kind: effects.Shadow, Color: graphics.RGB(0, 0, 0), Offset: graphics.Offset{X: 1, Y: 1}}
	label, err := New(backend, cache, testDescriptor(), WithText("A"), WithEffects(shadowLayer))
	if err != nil {
		t.Fatalf("shadow should be legal on bitmap: %v", err)
	}
	if err := label.SetEffects(glowLayer); !stderrors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedEffectError, got %v", err)
	}
	// The shadow stack survives the rejected replacement.
	if _, err := label.Layout(); err != nil {
		t.Errorf("Layout after rejected SetEffects failed: %v", err)
	}
}

func TestLabel_CharTransform(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, testDescriptor(), WithText("AB"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	wobble := graphics.QuadTransform{Rotation: 0.3, ScaleX: 1, ScaleY: 1}
	if err := label.SetCharTransform(1, wobble); err != nil {
		t.Fatalf("SetCharTransform failed: %v", err)
	}

	result, err := label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if result.Quads[0].Transform != nil {
		t.Error("untouched quad should have no transform")
	}
	if result.Quads[1].Transform == nil || result.Quads[1].Transform.Rotation != 0.3 {
		t.Error("override should reach the quad")
	}

	label.ClearCharTransforms()
	result, err = label.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if result.Quads[1].Transform != nil {
		t.Error("cleared override should not reach the quad")
	}
}

// TestLabel_CharTransformRequiresBitmap verifies rejection on a backend
// without independently addressable characters.
func TestLabel_CharTransformRequiresBitmap(t *testing.T) {
	backend := &stubBackend{kind: font.BackendSystem}
	cache := font.NewGlyphCache()

	label, err := New(backend, cache, font.Descriptor{Backend: font.BackendSystem, Size: 16}, WithText("A"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = label.SetCharTransform(0, graphics.QuadTransform{Rotation: 0.5})
	var werr *wefterrors.WeftError
	if !stderrors.As(err, &werr) || werr.Kind != wefterrors.KindConfig {
		t.Errorf("expected KindConfig WeftError, got %v", err)
	}
}

// TestLabel_ColorSeparatesCacheEntries verifies that two labels with
// different colors never share composited pixels.
func TestLabel_ColorSeparatesCacheEntries(t *testing.T) {
	backend := testBackend(t)
	cache := font.NewGlyphCache()

	red, err := New(backend, cache, testDescriptor(), WithText("A"), WithColor(graphics.RGB(255, 0, 0)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	blue, err := New(backend, cache, testDescriptor(), WithText("A"), WithColor(graphics.RGB(0, 0, 255)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := red.Layout(); err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if _, err := blue.Layout(); err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 cache entries, got %d", cache.Len())
	}
}

// stubBackend is a minimal backend for exercising capability rejections.
type stubBackend struct {
	kind font.BackendKind
}

func (s *stubBackend) Kind() font.BackendKind             { return s.kind }
func (s *stubBackend) ID() uint64                         { return 999 }
func (s *stubBackend) LineHeight(font.Descriptor) float64 { return 16 }

func (s *stubBackend) Metrics(ch rune, _ font.Descriptor) (font.CharMetrics, error) {
	return font.CharMetrics{Char: ch, Advance: 8, Bounds: graphics.RectFromLTWH(0, -8, 8, 8)}, nil
}

func (s *stubBackend) Rasterize(rune, font.Descriptor) (*graphics.AlphaBitmap, error) {
	bounds := image.Rect(0, -8, 8, 0)
	return &graphics.AlphaBitmap{Mask: image.NewAlpha(bounds), Bounds: bounds, Advance: 8}, nil
}
