package effects

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/go-weft/weft/pkg/graphics"
)

// squareGlyph returns a fully opaque 4x4 mask whose bounds sit 4 pixels
// above the baseline, like a small glyph box.
func squareGlyph() *graphics.AlphaBitmap {
	bounds := image.Rect(0, -4, 4, 0)
	mask := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return &graphics.AlphaBitmap{Mask: mask, Bounds: bounds, Advance: 5}
}

func TestApply_NoLayers(t *testing.T) {
	glyph := squareGlyph()
	out := Apply(glyph, nil, graphics.RGB(255, 0, 0))

	if got := out.Image.Rect.Size(); got != image.Pt(4, 4) {
		t.Errorf("expected 4x4 canvas, got %v", got)
	}
	// Origin maps the glyph-space origin onto the canvas: the glyph box
	// starts at (0,-4), so the baseline origin lies at canvas (0,4).
	if out.Origin != image.Pt(0, 4) {
		t.Errorf("unexpected origin %v", out.Origin)
	}

	px := out.Image.NRGBAAt(1, 1)
	if px.R != 255 || px.G != 0 || px.B != 0 || px.A != 255 {
		t.Errorf("expected opaque red, got %+v", px)
	}
}

// TestApply_ShadowExpandsCanvas verifies that an offset shadow is not
// clipped: the canvas grows in the shadow's direction.
func TestApply_ShadowExpandsCanvas(t *testing.T) {
	glyph := squareGlyph()
	layers := []Layer{{Kind: Shadow, Color: graphics.RGB(0, 0, 255), Offset: graphics.Offset{X: 2, Y: 2}}}

	out := Apply(glyph, layers, graphics.RGB(255, 255, 255))

	if got := out.Image.Rect.Size(); got != image.Pt(6, 6) {
		t.Errorf("expected 6x6 canvas, got %v", got)
	}
	// Bottom-right corner is shadow only.
	px := out.Image.NRGBAAt(5, 5)
	if px.B != 255 || px.R != 0 {
		t.Errorf("expected shadow pixel, got %+v", px)
	}
	// The base glyph draws over the shadow where they overlap.
	px = out.Image.NRGBAAt(1, 1)
	if px.R != 255 || px.G != 255 || px.B != 255 {
		t.Errorf("expected base pixel over shadow, got %+v", px)
	}
}

// TestApply_OutlineSurroundsGlyph verifies that the dilated stroke reaches
// outside the glyph box on all sides.
func TestApply_OutlineSurroundsGlyph(t *testing.T) {
	glyph := squareGlyph()
	layers := []Layer{{Kind: Outline, Color: graphics.RGB(0, 255, 0), Thickness: 1}}

	out := Apply(glyph, layers, graphics.RGB(255, 255, 255))

	if got := out.Image.Rect.Size(); got != image.Pt(6, 6) {
		t.Errorf("expected 6x6 canvas, got %v", got)
	}
	corners := []image.Point{{0, 0}, {5, 0}, {0, 5}, {5, 5}}
	for _, p := range corners {
		px := out.Image.NRGBAAt(p.X, p.Y)
		if px.G != 255 || px.R != 0 {
			t.Errorf("expected stroke at %v, got %+v", p, px)
		}
	}
}

func TestApply_GlowFades(t *testing.T) {
	glyph := squareGlyph()
	layers := []Layer{{Kind: Glow, Color: graphics.RGB(255, 200, 0), Thickness: 2}}

	out := Apply(glyph, layers, graphics.RGB(255, 255, 255))

	if got := out.Image.Rect.Size(); got != image.Pt(8, 8) {
		t.Errorf("expected 8x8 canvas, got %v", got)
	}
	corner := out.Image.NRGBAAt(0, 0).A
	center := out.Image.NRGBAAt(4, 4).A
	if corner >= center {
		t.Errorf("halo should fade outward: corner %d, center %d", corner, center)
	}
}

// TestApply_Deterministic verifies pixel-identical output for identical
// inputs, the property the glyph cache relies on.
func TestApply_Deterministic(t *testing.T) {
	layers := []Layer{
		{Kind: Outline, Color: graphics.RGB(0, 0, 0), Thickness: 1},
		{Kind: Shadow, Color: graphics.RGB(0, 0, 0), Offset: graphics.Offset{X: 1, Y: 1}},
		{Kind: Glow, Color: graphics.RGB(255, 200, 0), Thickness: 2},
	}

	a := Apply(squareGlyph(), layers, graphics.RGB(200, 100, 50))
	b := Apply(squareGlyph(), layers, graphics.RGB(200, 100, 50))

	if a.Origin != b.Origin || a.Image.Rect != b.Image.Rect {
		t.Fatal("geometry should be identical")
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("pixels should be identical")
	}
}
