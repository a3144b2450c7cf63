// Package weft ties the toolkit together: one widget tree, one touch
// dispatcher, and one shared glyph cache, driven by a single-threaded
// frame loop. Applications feed pointer events in and submit the quads
// that labels and widget skins produce.
package weft

import (
	"github.com/go-weft/weft/pkg/font"
	"github.com/go-weft/weft/pkg/graphics"
	"github.com/go-weft/weft/pkg/touch"
	"github.com/go-weft/weft/pkg/widget"
)

// App bundles the toolkit's long-lived state. All methods must be called
// from the main dispatch/render loop; the glyph cache is the only part
// that is safe to touch from other goroutines.
type App struct {
	Tree       *widget.Tree
	Dispatcher *touch.Dispatcher
	GlyphCache *font.GlyphCache
}

// New creates an app with a root container spanning the viewport and a
// glyph cache with default bounds.
func New(viewport graphics.Size) *App {
	tree := widget.NewTree(viewport)
	return &App{
		Tree:       tree,
		Dispatcher: touch.NewDispatcher(tree),
		GlyphCache: font.NewGlyphCache(),
	}
}

// HandleTouch routes one raw pointer event through the dispatcher.
func (a *App) HandleTouch(ev touch.Event) {
	a.Dispatcher.Dispatch(ev)
}
