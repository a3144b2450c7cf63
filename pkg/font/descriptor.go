package font

import (
	stderrors "errors"
	"strings"

	wefterrors "github.com/go-weft/weft/pkg/errors"
)

// Style is a bit set of style flags. Backends that have no styled variants
// ignore flags they cannot honor.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
)

func (s Style) String() string {
	if s == 0 {
		return "regular"
	}
	var parts []string
	if s&StyleBold != 0 {
		parts = append(parts, "bold")
	}
	if s&StyleItalic != 0 {
		parts = append(parts, "italic")
	}
	return strings.Join(parts, "+")
}

// Descriptor selects a font: which backend, which source, at what size and
// style. It is an immutable value; labels hold it by value, and several
// labels built from one shared config bundle hold equal descriptors.
//
// Source is interpreted per backend: the atlas definition path for bitmap,
// the font file path for outline, the family name for system fonts.
type Descriptor struct {
	Backend BackendKind
	Source  string
	Size    float64
	Style   Style
}

// IsGlyphNotFound reports whether err is (or wraps) a missing-glyph
// condition from the bitmap backend.
func IsGlyphNotFound(err error) bool {
	var notFound *wefterrors.GlyphNotFoundError
	return stderrors.As(err, &notFound)
}
