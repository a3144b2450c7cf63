package graphics

import "image"

// AlphaBitmap is a rasterized glyph shape: an alpha coverage mask plus
// positioning metrics.
//
// Bounds is relative to the glyph origin, which sits on the baseline at the
// left edge. Advance is how far the layout cursor moves after this glyph.
// An AlphaBitmap is immutable after creation; regenerating a glyph for a new
// size or style produces a new AlphaBitmap, never mutates one in place.
type AlphaBitmap struct {
	Mask    *image.Alpha
	Bounds  image.Rectangle
	Advance float64
}

// Bitmap is a renderable colored bitmap, typically the output of effect
// compositing over an AlphaBitmap. Origin is the pixel offset of the glyph
// origin within Image, so effect layers that expand the bounds (glow, shadow)
// stay anchored to the baseline.
type Bitmap struct {
	Image  *image.NRGBA
	Origin image.Point
}

// QuadTransform is a per-quad visual override: rotation about the anchor,
// non-uniform scale, and a tint multiplied into the quad color.
// Anchor is expressed in unit coordinates of the quad (0,0 = top-left,
// 1,1 = bottom-right).
type QuadTransform struct {
	Rotation float64 // radians, clockwise
	ScaleX   float64
	ScaleY   float64
	Tint     Color
	Anchor   Offset
}

// IdentityTransform returns the transform that leaves a quad unchanged.
func IdentityTransform() QuadTransform {
	return QuadTransform{
		ScaleX: 1,
		ScaleY: 1,
		Tint:   RGB(255, 255, 255),
		Anchor: Offset{X: 0.5, Y: 0.5},
	}
}

// IsIdentity reports whether the transform has no visible effect.
func (t QuadTransform) IsIdentity() bool {
	return t == IdentityTransform()
}

// Quad is a positioned textured rectangle, the exchange type handed to the
// rendering collaborator. Labels emit one quad per character; widgets emit
// one quad per skin element.
type Quad struct {
	// Bitmap is the pixel content of the quad.
	Bitmap *Bitmap

	// Rect is the destination rectangle in the coordinate space of the
	// emitting label or widget.
	Rect Rect

	// Tint is multiplied with the bitmap pixels at submission time.
	Tint Color

	// Transform is the optional per-quad override. Nil means identity.
	Transform *QuadTransform
}
