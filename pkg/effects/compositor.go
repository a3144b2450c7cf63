package effects

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/go-weft/weft/pkg/graphics"
)

// Apply composites the effect layers around a rasterized glyph and returns a
// renderable bitmap. Layers are drawn in the fixed order Glow -> Shadow ->
// Outline -> base glyph, so overlapping effects are deterministic and two
// identical inputs produce pixel-identical output.
//
// Apply assumes the layers have already passed Validate for the producing
// backend; it performs no legality checks of its own.
func Apply(glyph *graphics.AlphaBitmap, layers []Layer, base graphics.Color) *graphics.Bitmap {
	ordered := orderLayers(layers)

	// Expand the canvas so offset and radius layers are not clipped.
	pad, shadowMin, shadowMax := expansion(ordered)
	bounds := glyph.Bounds
	canvasRect := image.Rect(
		bounds.Min.X-pad+min(shadowMin.X, 0),
		bounds.Min.Y-pad+min(shadowMin.Y, 0),
		bounds.Max.X+pad+max(shadowMax.X, 0),
		bounds.Max.Y+pad+max(shadowMax.Y, 0),
	)

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasRect.Dx(), canvasRect.Dy()))
	// shift maps glyph-origin coordinates onto canvas pixels.
	shift := image.Point{X: -canvasRect.Min.X, Y: -canvasRect.Min.Y}

	for _, layer := range ordered {
		switch layer.Kind {
		case Glow:
			halo := blurMask(glyph.Mask, ceilPositive(layer.Thickness))
			drawTinted(canvas, halo, layer.Color, shift)
		case Shadow:
			offset := image.Point{
				X: shift.X + int(layer.Offset.X),
				Y: shift.Y + int(layer.Offset.Y),
			}
			drawTinted(canvas, glyph.Mask, layer.Color, offset)
		case Outline:
			stroke := dilateMask(glyph.Mask, ceilPositive(layer.Thickness))
			drawTinted(canvas, stroke, layer.Color, shift)
		}
	}

	drawTinted(canvas, glyph.Mask, base, shift)

	return &graphics.Bitmap{
		Image:  canvas,
		Origin: image.Point{X: -canvasRect.Min.X, Y: -canvasRect.Min.Y},
	}
}

// expansion returns the uniform padding required by radius layers and the
// extra directional extents required by shadow offsets.
func expansion(layers []Layer) (pad int, shadowMin, shadowMax image.Point) {
	for _, layer := range layers {
		switch layer.Kind {
		case Glow, Outline:
			if r := ceilPositive(layer.Thickness); r > pad {
				pad = r
			}
		case Shadow:
			dx, dy := int(layer.Offset.X), int(layer.Offset.Y)
			shadowMin.X = min(shadowMin.X, dx)
			shadowMin.Y = min(shadowMin.Y, dy)
			shadowMax.X = max(shadowMax.X, dx)
			shadowMax.Y = max(shadowMax.Y, dy)
		}
	}
	return pad, shadowMin, shadowMax
}

// drawTinted composites mask onto canvas at the given shift, colored with
// tint and modulated by the mask coverage.
func drawTinted(canvas *image.NRGBA, mask *image.Alpha, tint graphics.Color, shift image.Point) {
	r, g, b, a := tint.Components()
	src := image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: a})
	dst := mask.Bounds().Add(shift)
	draw.DrawMask(canvas, dst, src, image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// blurMask applies a two-pass box blur of the given radius. A box blur is
// cheap, separable, and stable: the same input always yields the same halo.
func blurMask(mask *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		return mask
	}
	bounds := mask.Bounds()
	expanded := image.Rect(bounds.Min.X-radius, bounds.Min.Y-radius, bounds.Max.X+radius, bounds.Max.Y+radius)

	// Horizontal pass.
	horizontal := image.NewAlpha(expanded)
	window := 2*radius + 1
	for y := expanded.Min.Y; y < expanded.Max.Y; y++ {
		for x := expanded.Min.X; x < expanded.Max.X; x++ {
			sum := 0
			for dx := -radius; dx <= radius; dx++ {
				sum += int(alphaAt(mask, x+dx, y))
			}
			horizontal.SetAlpha(x, y, color.Alpha{A: uint8(sum / window)})
		}
	}

	// Vertical pass.
	blurred := image.NewAlpha(expanded)
	for y := expanded.Min.Y; y < expanded.Max.Y; y++ {
		for x := expanded.Min.X; x < expanded.Max.X; x++ {
			sum := 0
			for dy := -radius; dy <= radius; dy++ {
				sum += int(alphaAt(horizontal, x, y+dy))
			}
			blurred.SetAlpha(x, y, color.Alpha{A: uint8(sum / window)})
		}
	}
	return blurred
}

// dilateMask expands coverage by taking the neighborhood maximum, producing
// a stroke that hugs the glyph edge.
func dilateMask(mask *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		return mask
	}
	bounds := mask.Bounds()
	expanded := image.Rect(bounds.Min.X-radius, bounds.Min.Y-radius, bounds.Max.X+radius, bounds.Max.Y+radius)
	dilated := image.NewAlpha(expanded)
	for y := expanded.Min.Y; y < expanded.Max.Y; y++ {
		for x := expanded.Min.X; x < expanded.Max.X; x++ {
			var best uint8
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if v := alphaAt(mask, x+dx, y+dy); v > best {
						best = v
					}
				}
			}
			dilated.SetAlpha(x, y, color.Alpha{A: best})
		}
	}
	return dilated
}

// alphaAt reads the mask with out-of-bounds pixels treated as transparent.
func alphaAt(mask *image.Alpha, x, y int) uint8 {
	if !image.Pt(x, y).In(mask.Bounds()) {
		return 0
	}
	return mask.AlphaAt(x, y).A
}
