// Package assets defines the narrow interface through which Weft consumes
// decoded images (bitmap-font atlas pages, widget skins) and raw font bytes.
// Asset decoding itself lives with the embedding application; this package
// only ships a plain filesystem provider for tools and tests.
package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// Provider supplies decoded images and raw bytes by path. Paths are
// interpreted by the provider; Weft treats them as opaque keys.
type Provider interface {
	// Image returns the decoded image for the given path.
	Image(path string) (image.Image, error)

	// Bytes returns the raw contents for the given path, e.g. TTF data.
	Bytes(path string) ([]byte, error)
}

// Dir is a Provider rooted at a filesystem directory.
type Dir string

// Image implements Provider.
func (d Dir) Image(path string) (image.Image, error) {
	f, err := os.Open(filepath.Join(string(d), path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Bytes implements Provider.
func (d Dir) Bytes(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), path))
}
