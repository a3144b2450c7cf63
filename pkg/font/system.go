package font

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tsfont "github.com/go-text/typesetting/font"

	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
)

// systemFontDirs are the conventional host font locations scanned when a
// family is not registered in-process.
var systemFontDirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"/System/Library/Fonts",
	"/Library/Fonts",
	`C:\Windows\Fonts`,
}

var systemRegistry = struct {
	sync.RWMutex
	families map[string][]byte
}{families: make(map[string][]byte)}

// RegisterSystemFont makes font data available to SystemBackend lookups
// under the given family name, bypassing the host scan. Embedders use this
// to pin deterministic fonts; tests use it to avoid touching the host at all.
func RegisterSystemFont(family string, data []byte) {
	systemRegistry.Lock()
	defer systemRegistry.Unlock()
	systemRegistry.families[strings.ToLower(family)] = data
}

// SystemBackend delegates rendering to a host font resolved by family name.
// It is deliberately non-configurable beyond family and size: effect layers
// other than Shadow are rejected by the capability table, and descriptor
// sizes other than the constructed one are ignored (rescaling without
// reconstructing the backend is a no-op).
type SystemBackend struct {
	family  string
	size    float64
	id      uint64
	outline *OutlineBackend
}

// NewSystemBackend resolves family against registered fonts, then the host
// font directories.
func NewSystemBackend(family string, size float64) (*SystemBackend, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	data, err := lookupSystemFont(family)
	if err != nil {
		return nil, err
	}
	outline, err := NewOutlineBackend(data)
	if err != nil {
		return nil, err
	}
	return &SystemBackend{
		family:  family,
		size:    size,
		id:      newBackendID(),
		outline: outline,
	}, nil
}

// Kind implements Backend.
func (b *SystemBackend) Kind() BackendKind { return BackendSystem }

// ID implements Backend.
func (b *SystemBackend) ID() uint64 { return b.id }

// Family returns the requested family name.
func (b *SystemBackend) Family() string { return b.family }

// Size returns the fixed size the backend was constructed with.
func (b *SystemBackend) Size() float64 { return b.size }

// pin replaces the descriptor size and style with the constructed ones.
func (b *SystemBackend) pin(d Descriptor) Descriptor {
	d.Size = b.size
	d.Style = 0
	return d
}

// LineHeight implements Backend.
func (b *SystemBackend) LineHeight(d Descriptor) float64 {
	return b.outline.LineHeight(b.pin(d))
}

// Metrics implements Backend.
func (b *SystemBackend) Metrics(ch rune, d Descriptor) (CharMetrics, error) {
	return b.outline.Metrics(ch, b.pin(d))
}

// Rasterize implements Backend.
func (b *SystemBackend) Rasterize(ch rune, d Descriptor) (*graphics.AlphaBitmap, error) {
	return b.outline.Rasterize(ch, b.pin(d))
}

// lookupSystemFont finds font bytes for a family name.
func lookupSystemFont(family string) ([]byte, error) {
	key := strings.ToLower(family)

	systemRegistry.RLock()
	data, ok := systemRegistry.families[key]
	systemRegistry.RUnlock()
	if ok {
		return data, nil
	}

	for _, dir := range systemFontDirs {
		var found []byte
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || found != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			face, err := tsfont.ParseTTF(bytes.NewReader(raw))
			if err != nil {
				return nil
			}
			if strings.EqualFold(face.Describe().Family, family) {
				found = raw
			}
			return nil
		})
		if found != nil {
			return found, nil
		}
	}

	return nil, &wefterrors.WeftError{
		Op:   "font.NewSystemBackend",
		Kind: wefterrors.KindFont,
		Err:  fmt.Errorf("no host font matches family %q", family),
	}
}
