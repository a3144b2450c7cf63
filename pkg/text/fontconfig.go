package text

import (
	stderrors "errors"
	"fmt"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-weft/weft/pkg/assets"
	"github.com/go-weft/weft/pkg/effects"
	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/font"
	"github.com/go-weft/weft/pkg/graphics"
)

// configFormatMajor is the supported major version of font config bundles.
const configFormatMajor = "v1"

// GlyphSet selects between a predeclared atlas character set and dynamic
// outline rasterization.
type GlyphSet string

const (
	GlyphSetPredeclared GlyphSet = "predeclared-set"
	GlyphSetDynamic     GlyphSet = "dynamic"
)

// FontConfig is a reusable descriptor bundle. Constructing several labels
// from one bundle produces configuration-identical results: they share one
// backend instance and receive equal descriptors, spacing and effect stacks,
// with no hidden per-label drift.
type FontConfig struct {
	FormatVersion  string   `yaml:"formatVersion"`
	FontFile       string   `yaml:"fontFile"`
	Size           float64  `yaml:"size"`
	GlyphSet       GlyphSet `yaml:"glyphSet"`
	OutlineWidth   float64  `yaml:"outlineWidth"`
	EffectsEnabled bool     `yaml:"effectsEnabled"`

	once       sync.Once
	backend    font.Backend
	backendErr error
}

// ParseFontConfig parses a yaml bundle and validates its format version.
func ParseFontConfig(data []byte) (*FontConfig, error) {
	var cfg FontConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &wefterrors.WeftError{Op: "text.ParseFontConfig", Kind: wefterrors.KindConfig, Err: err}
	}

	version := "v" + cfg.FormatVersion
	if !semver.IsValid(version) {
		return nil, bundleErr(fmt.Errorf("invalid formatVersion %q", cfg.FormatVersion))
	}
	if semver.Major(version) != configFormatMajor {
		return nil, bundleErr(fmt.Errorf("unsupported bundle format %s, want major %s", version, configFormatMajor))
	}
	if cfg.FontFile == "" {
		return nil, bundleErr(stderrors.New("bundle missing fontFile"))
	}
	switch cfg.GlyphSet {
	case GlyphSetPredeclared, GlyphSetDynamic:
	case "":
		cfg.GlyphSet = GlyphSetDynamic
	default:
		return nil, bundleErr(fmt.Errorf("unknown glyphSet %q", cfg.GlyphSet))
	}
	return &cfg, nil
}

// Backend returns the backend shared by every label built from this bundle,
// constructing it on first use. A predeclared glyph set loads fontFile as an
// atlas definition; a dynamic one loads it as a TTF/OTF.
func (c *FontConfig) Backend(p assets.Provider) (font.Backend, error) {
	c.once.Do(func() {
		if c.GlyphSet == GlyphSetPredeclared {
			c.backend, c.backendErr = font.LoadBitmapBackend(p, c.FontFile)
		} else {
			c.backend, c.backendErr = font.LoadOutlineBackend(p, c.FontFile)
		}
	})
	return c.backend, c.backendErr
}

// Descriptor returns the immutable descriptor the bundle resolves to.
func (c *FontConfig) Descriptor() font.Descriptor {
	kind := font.BackendOutline
	if c.GlyphSet == GlyphSetPredeclared {
		kind = font.BackendBitmap
	}
	return font.Descriptor{
		Backend: kind,
		Source:  c.FontFile,
		Size:    c.Size,
	}
}

// NewLabel builds a label from the bundle. When effects are enabled and an
// outline width is set, the stroke layer is part of the configuration, so an
// incompatible backend fails here with UnsupportedEffect rather than at
// render time.
func (c *FontConfig) NewLabel(p assets.Provider, cache *font.GlyphCache, textContent string, opts ...Option) (*Label, error) {
	backend, err := c.Backend(p)
	if err != nil {
		return nil, err
	}

	var layers []effects.Layer
	if c.EffectsEnabled && c.OutlineWidth > 0 {
		layers = append(layers, effects.Layer{
			Kind:      effects.Outline,
			Color:     graphics.RGB(0, 0, 0),
			Thickness: c.OutlineWidth,
		})
	}

	bundled := []Option{WithText(textContent), WithEffects(layers...)}
	return New(backend, cache, c.Descriptor(), append(bundled, opts...)...)
}

func bundleErr(err error) error {
	return &wefterrors.WeftError{Op: "text.ParseFontConfig", Kind: wefterrors.KindConfig, Err: err}
}
