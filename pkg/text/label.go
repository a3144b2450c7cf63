// Package text lays out strings as sequences of positioned glyph quads,
// pulling rasterized glyphs through the glyph cache and effect compositor.
package text

import (
	"fmt"

	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/effects"
	"github.com/go-weft/weft/pkg/font"
	"github.com/go-weft/weft/pkg/graphics"
)

// MissingGlyphPolicy decides what layout does with a character the bitmap
// backend's atlas does not declare. Whatever the policy, the condition is
// reported in the layout result; it never silently produces a blank quad.
type MissingGlyphPolicy int

const (
	// MissingOmit drops the character from the output.
	MissingOmit MissingGlyphPolicy = iota
	// MissingPlaceholder substitutes the label's placeholder character.
	MissingPlaceholder
	// MissingFail aborts the layout with the GlyphNotFound error.
	MissingFail
)

// MissingGlyph records one character that could not be resolved.
type MissingGlyph struct {
	// Index is the character index in the label text.
	Index int
	// Char is the unresolved character.
	Char rune
}

// Result is the output of a layout pass: one quad per rendered character
// plus the total advance and the characters the backend could not supply.
type Result struct {
	Quads   []graphics.Quad
	Missing []MissingGlyph
	Size    graphics.Size
	// Advance is the sum of per-character advances plus character spacing
	// for the widest line.
	Advance float64
}

// Label lays out one string with one font descriptor and an optional effect
// stack. Labels are owned and mutated by the main loop only; the glyph cache
// they share is the concurrency boundary.
type Label struct {
	backend font.Backend
	cache   *font.GlyphCache
	desc    font.Descriptor

	text        string
	color       graphics.Color
	layers      []effects.Layer
	effectSig   string
	charSpacing float64
	lineSpacing float64

	missingPolicy MissingGlyphPolicy
	placeholder   rune

	overrides map[int]graphics.QuadTransform

	laidOut *Result
}

// Option configures a Label at construction time.
type Option func(*Label) error

// WithText sets the initial text.
func WithText(text string) Option {
	return func(l *Label) error {
		l.text = text
		return nil
	}
}

// WithColor sets the base glyph color.
func WithColor(c graphics.Color) Option {
	return func(l *Label) error {
		l.color = c
		return nil
	}
}

// WithEffects sets the effect stack. Illegal (backend, effect) pairs reject
// the whole label configuration.
func WithEffects(layers ...effects.Layer) Option {
	return func(l *Label) error {
		return l.SetEffects(layers...)
	}
}

// WithSpacing sets extra per-character and per-line spacing.
func WithSpacing(char, line float64) Option {
	return func(l *Label) error {
		l.charSpacing = char
		l.lineSpacing = line
		return nil
	}
}

// WithMissingPolicy sets the policy for undeclared bitmap characters.
// The placeholder is only consulted for MissingPlaceholder.
func WithMissingPolicy(policy MissingGlyphPolicy, placeholder rune) Option {
	return func(l *Label) error {
		l.missingPolicy = policy
		l.placeholder = placeholder
		return nil
	}
}

// New creates a label for the given backend and descriptor. Effect legality
// is checked here, at configuration time: a rejected effect fails the whole
// call and no partial configuration survives.
func New(backend font.Backend, cache *font.GlyphCache, desc font.Descriptor, opts ...Option) (*Label, error) {
	l := &Label{
		backend:     backend,
		cache:       cache,
		desc:        desc,
		color:       graphics.RGB(255, 255, 255),
		placeholder: '?',
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Text returns the current text.
func (l *Label) Text() string { return l.text }

// SetText replaces the text and marks the layout dirty.
func (l *Label) SetText(text string) {
	if l.text == text {
		return
	}
	l.text = text
	l.laidOut = nil
}

// SetColor replaces the base glyph color.
func (l *Label) SetColor(c graphics.Color) {
	if l.color == c {
		return
	}
	l.color = c
	l.laidOut = nil
}

// SetEffects replaces the effect stack, re-validating against the backend.
// On error the previous stack is kept untouched.
func (l *Label) SetEffects(layers ...effects.Layer) error {
	if err := effects.Validate(layers, l.backend.Kind()); err != nil {
		return err
	}
	l.layers = layers
	l.effectSig = effects.Signature(layers)
	l.laidOut = nil
	return nil
}

// SetCharTransform overrides the quad transform of the character at the
// given index. Only the bitmap backend exposes independently addressable
// characters; other backends reject the call.
func (l *Label) SetCharTransform(index int, t graphics.QuadTransform) error {
	if !l.backend.Kind().Capabilities().Has(font.CapPerGlyphTransform) {
		return &wefterrors.WeftError{
			Op:   "text.Label.SetCharTransform",
			Kind: wefterrors.KindConfig,
			Err:  fmt.Errorf("per-character transforms require the bitmap backend, have %s", l.backend.Kind()),
		}
	}
	if l.overrides == nil {
		l.overrides = make(map[int]graphics.QuadTransform)
	}
	l.overrides[index] = t
	l.laidOut = nil
	return nil
}

// ClearCharTransforms removes all per-character overrides.
func (l *Label) ClearCharTransforms() {
	if len(l.overrides) == 0 {
		return
	}
	l.overrides = nil
	l.laidOut = nil
}

// Layout produces the positioned glyph quads for the current configuration.
// It is idempotent: identical inputs reproduce identical quad geometry, and
// repeated calls without intervening changes return the cached result.
func (l *Label) Layout() (*Result, error) {
	if l.laidOut != nil {
		return l.laidOut, nil
	}

	result := &Result{}
	lineHeight := l.backend.LineHeight(l.desc)
	var cursorX, baselineY, lineAdvance float64
	var bounds graphics.Rect

	index := -1
	for _, ch := range l.text {
		index++
		if ch == '\n' {
			if lineAdvance > result.Advance {
				result.Advance = lineAdvance
			}
			cursorX = 0
			lineAdvance = 0
			baselineY += lineHeight + l.lineSpacing
			continue
		}

		metrics, err := l.backend.Metrics(ch, l.desc)
		if err != nil {
			if !font.IsGlyphNotFound(err) {
				return nil, err
			}
			switch l.missingPolicy {
			case MissingFail:
				return nil, err
			case MissingPlaceholder:
				result.Missing = append(result.Missing, MissingGlyph{Index: index, Char: ch})
				metrics, err = l.backend.Metrics(l.placeholder, l.desc)
				if err != nil {
					// Placeholder undeclared as well; nothing to draw.
					continue
				}
				ch = l.placeholder
			default: // MissingOmit
				result.Missing = append(result.Missing, MissingGlyph{Index: index, Char: ch})
				continue
			}
		}

		bitmap, err := l.glyphBitmap(ch)
		if err != nil {
			return nil, err
		}

		quad := graphics.Quad{
			Bitmap: bitmap,
			Rect: graphics.RectFromLTWH(
				cursorX-float64(bitmap.Origin.X),
				baselineY-float64(bitmap.Origin.Y),
				float64(bitmap.Image.Rect.Dx()),
				float64(bitmap.Image.Rect.Dy()),
			),
			Tint: graphics.RGB(255, 255, 255),
		}
		if t, ok := l.overrides[index]; ok {
			override := t
			quad.Transform = &override
		}
		result.Quads = append(result.Quads, quad)

		bounds = bounds.Union(quad.Rect)
		cursorX += metrics.Advance + l.charSpacing
		lineAdvance += metrics.Advance + l.charSpacing
	}

	if lineAdvance > result.Advance {
		result.Advance = lineAdvance
	}
	result.Size = bounds.Size()
	l.laidOut = result
	return result, nil
}

// glyphBitmap fetches the composited bitmap for ch through the glyph cache,
// rasterizing and compositing at most once per cache key.
func (l *Label) glyphBitmap(ch rune) (*graphics.Bitmap, error) {
	key := font.CacheKey{
		BackendID: l.backend.ID(),
		Char:      ch,
		Size:      l.desc.Size,
		Style:     l.desc.Style,
		Effects:   l.effectSig + sigColor(l.color),
	}
	return l.cache.GetOrCreate(key, func() (*graphics.Bitmap, error) {
		glyph, err := l.backend.Rasterize(ch, l.desc)
		if err != nil {
			return nil, err
		}
		return effects.Apply(glyph, l.layers, l.color), nil
	})
}

// sigColor folds the base color into the cache key so labels with different
// colors never share composited pixels.
func sigColor(c graphics.Color) string {
	return fmt.Sprintf("#%08x", uint32(c))
}
