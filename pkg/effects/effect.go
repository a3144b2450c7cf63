// Package effects layers optional visual treatments (shadow, outline, glow)
// on top of rasterized glyphs. Which effects are legal depends on the font
// backend; legality is checked once at configuration time so render-time
// behavior is predictable and cheap.
package effects

import (
	"fmt"
	"math"
	"strings"

	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/font"
	"github.com/go-weft/weft/pkg/graphics"
)

// Kind identifies an effect layer type.
type Kind int

const (
	// Shadow draws an offset silhouette of the glyph behind it.
	Shadow Kind = iota
	// Outline strokes the glyph edge.
	Outline
	// Glow draws a blurred halo around the glyph.
	Glow
)

func (k Kind) String() string {
	switch k {
	case Shadow:
		return "shadow"
	case Outline:
		return "outline"
	case Glow:
		return "glow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// requiredCapability maps an effect to the backend capability it needs.
func (k Kind) requiredCapability() font.Capability {
	switch k {
	case Shadow:
		return font.CapShadow
	case Outline:
		return font.CapOutline
	case Glow:
		return font.CapGlow
	default:
		return 0
	}
}

// Layer is one configured effect. Offset applies to Shadow; Thickness is the
// stroke width for Outline and the blur radius for Glow.
type Layer struct {
	Kind      Kind
	Color     graphics.Color
	Offset    graphics.Offset
	Thickness float64
}

// Validate checks every layer against the backend's capability table.
// It returns a *errors.UnsupportedEffectError naming the first offending
// (backend, effect) pair. Call it when a label is configured, never during
// rendering.
func Validate(layers []Layer, backend font.BackendKind) error {
	caps := backend.Capabilities()
	for _, layer := range layers {
		if !caps.Has(layer.Kind.requiredCapability()) {
			return &wefterrors.UnsupportedEffectError{
				Backend: backend.String(),
				Effect:  layer.Kind.String(),
			}
		}
	}
	return nil
}

// Signature returns a deterministic description of the layer stack for use
// in glyph cache keys. Layers are normalized into compositing order first,
// so two stacks that render identically share a signature.
func Signature(layers []Layer) string {
	if len(layers) == 0 {
		return ""
	}
	ordered := orderLayers(layers)
	parts := make([]string, 0, len(ordered))
	for _, l := range ordered {
		parts = append(parts, fmt.Sprintf("%s(%08x,%g,%g,%g)", l.Kind, uint32(l.Color), l.Offset.X, l.Offset.Y, l.Thickness))
	}
	return strings.Join(parts, ";")
}

// orderLayers sorts layers into the fixed compositing order
// Glow (outermost) -> Shadow -> Outline, preserving relative order of
// layers of the same kind.
func orderLayers(layers []Layer) []Layer {
	ordered := make([]Layer, 0, len(layers))
	for _, kind := range []Kind{Glow, Shadow, Outline} {
		for _, l := range layers {
			if l.Kind == kind {
				ordered = append(ordered, l)
			}
		}
	}
	return ordered
}

// ceilPositive rounds a non-negative float up to an int.
func ceilPositive(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}
