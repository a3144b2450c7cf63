// Package font unifies three incompatible font backends behind one API:
// pre-rendered bitmap glyph atlases, outline (TTF/OTF) rasterization, and
// host-system fonts. The backend set is closed; behavioral differences are
// expressed through a capability table rather than subclassing, so callers
// can match exhaustively.
package font

import (
	"fmt"
	"sync/atomic"

	"github.com/go-weft/weft/pkg/graphics"
)

// BackendKind identifies one of the three font backends.
type BackendKind int

const (
	// BackendBitmap renders from a predeclared atlas of glyph images.
	// Cheap to rasterize, but the character set and size are fixed by the
	// atlas: resizing means loading a different atlas entirely.
	BackendBitmap BackendKind = iota
	// BackendOutline rasterizes a vector font at arbitrary size. Changing
	// size or style is the most expensive backend operation; callers should
	// lean on the glyph cache rather than re-rasterize per frame.
	BackendOutline
	// BackendSystem delegates to a host font resolved by family name.
	// Non-configurable beyond family and size; rescaling without
	// reconstructing the backend is a no-op.
	BackendSystem
)

func (k BackendKind) String() string {
	switch k {
	case BackendBitmap:
		return "bitmap"
	case BackendOutline:
		return "outline"
	case BackendSystem:
		return "system"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

// Capability is a bit set describing what a backend can do.
type Capability uint8

const (
	// CapShadow allows a drop-shadow effect layer.
	CapShadow Capability = 1 << iota
	// CapOutline allows a stroke-outline effect layer.
	CapOutline
	// CapGlow allows a blurred-glow effect layer.
	CapGlow
	// CapRescale allows rasterizing at a size other than the one the
	// backend was built with.
	CapRescale
	// CapPerGlyphTransform allows per-character quad transform overrides,
	// since each atlas character is an independently addressable element.
	CapPerGlyphTransform
)

// Has reports whether all bits of want are present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// capabilityTable is the closed mapping from backend to legal operations.
// Shadow is legal everywhere; outline and glow need vector coverage data
// only the outline backend has; per-glyph transforms need independently
// addressable glyph images only the atlas backend has.
var capabilityTable = map[BackendKind]Capability{
	BackendBitmap:  CapShadow | CapPerGlyphTransform,
	BackendOutline: CapShadow | CapOutline | CapGlow | CapRescale,
	BackendSystem:  CapShadow,
}

// Capabilities returns the capability set for the backend kind.
func (k BackendKind) Capabilities() Capability {
	return capabilityTable[k]
}

// CharMetrics describes one laid-out character: its advance width and its
// bounding box relative to the baseline origin.
type CharMetrics struct {
	Char    rune
	Advance float64
	Bounds  graphics.Rect
}

// Backend is the per-variant font contract: metrics and rasterization.
//
// Metrics and Rasterize report a *errors.GlyphNotFoundError when the bitmap
// backend is asked for a character its atlas does not declare. The caller
// decides whether to substitute a placeholder or drop the character; the
// condition is always observably signaled, never a silent blank quad.
type Backend interface {
	// Kind returns the backend variant.
	Kind() BackendKind

	// ID returns the backend identity used in glyph cache keys. IDs are
	// unique per backend instance for the life of the process.
	ID() uint64

	// LineHeight returns the baseline-to-baseline distance at the given size.
	LineHeight(d Descriptor) float64

	// Metrics returns the advance and bounding box for one character.
	Metrics(ch rune, d Descriptor) (CharMetrics, error)

	// Rasterize renders one character to an alpha mask.
	Rasterize(ch rune, d Descriptor) (*graphics.AlphaBitmap, error)
}

// Measure returns per-character metrics for the whole string, in order.
// It stops at the first error other than a missing glyph; missing glyphs are
// reported in the second return value by string index so layout can apply
// its placeholder or omission policy per character.
func Measure(b Backend, text string, d Descriptor) ([]CharMetrics, []int, error) {
	metrics := make([]CharMetrics, 0, len(text))
	var missing []int
	i := 0
	for _, ch := range text {
		m, err := b.Metrics(ch, d)
		if err != nil {
			if IsGlyphNotFound(err) {
				missing = append(missing, i)
				i++
				continue
			}
			return nil, nil, err
		}
		metrics = append(metrics, m)
		i++
	}
	return metrics, missing, nil
}

// nextBackendID allocates process-unique backend identities.
var nextBackendID atomic.Uint64

func newBackendID() uint64 {
	return nextBackendID.Add(1)
}
