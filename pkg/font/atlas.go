package font

import (
	stderrors "errors"
	"fmt"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	wefterrors "github.com/go-weft/weft/pkg/errors"
)

// atlasFormatMajor is the supported major version of atlas definition files.
const atlasFormatMajor = "v1"

// AtlasGlyph locates one pre-rendered character inside the atlas page and
// carries its layout metrics.
type AtlasGlyph struct {
	Char     string  `yaml:"char"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	XOffset  float64 `yaml:"xoffset"`
	YOffset  float64 `yaml:"yoffset"`
	XAdvance float64 `yaml:"xadvance"`
}

// AtlasDefinition is the parsed form of an atlas definition file. The full
// character set is declared up front; characters absent from Glyphs do not
// exist for the bitmap backend.
type AtlasDefinition struct {
	FormatVersion string       `yaml:"formatVersion"`
	Page          string       `yaml:"page"`
	LineHeight    float64      `yaml:"lineHeight"`
	Base          float64      `yaml:"base"`
	Glyphs        []AtlasGlyph `yaml:"glyphs"`

	byChar map[rune]AtlasGlyph
}

// ParseAtlas parses a yaml atlas definition and validates its format version.
func ParseAtlas(data []byte) (*AtlasDefinition, error) {
	var def AtlasDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &wefterrors.WeftError{
			Op:   "font.ParseAtlas",
			Kind: wefterrors.KindConfig,
			Err:  err,
		}
	}

	version := "v" + def.FormatVersion
	if !semver.IsValid(version) {
		return nil, configErr("font.ParseAtlas", fmt.Errorf("invalid formatVersion %q", def.FormatVersion))
	}
	if semver.Major(version) != atlasFormatMajor {
		return nil, configErr("font.ParseAtlas", fmt.Errorf("unsupported atlas format %s, want major %s", version, atlasFormatMajor))
	}
	if def.Page == "" {
		return nil, configErr("font.ParseAtlas", stderrors.New("atlas definition missing page"))
	}
	if def.LineHeight <= 0 {
		return nil, configErr("font.ParseAtlas", stderrors.New("atlas definition missing lineHeight"))
	}

	def.byChar = make(map[rune]AtlasGlyph, len(def.Glyphs))
	for _, g := range def.Glyphs {
		runes := []rune(g.Char)
		if len(runes) != 1 {
			return nil, configErr("font.ParseAtlas", fmt.Errorf("glyph char %q is not a single character", g.Char))
		}
		if _, dup := def.byChar[runes[0]]; dup {
			return nil, configErr("font.ParseAtlas", fmt.Errorf("glyph %q declared twice", g.Char))
		}
		def.byChar[runes[0]] = g
	}
	return &def, nil
}

// Glyph returns the declared atlas entry for ch.
func (d *AtlasDefinition) Glyph(ch rune) (AtlasGlyph, bool) {
	g, ok := d.byChar[ch]
	return g, ok
}

// DeclaredSet returns all declared characters. Order is unspecified.
func (d *AtlasDefinition) DeclaredSet() []rune {
	set := make([]rune, 0, len(d.byChar))
	for ch := range d.byChar {
		set = append(set, ch)
	}
	return set
}

func configErr(op string, err error) error {
	return &wefterrors.WeftError{Op: op, Kind: wefterrors.KindConfig, Err: err}
}
