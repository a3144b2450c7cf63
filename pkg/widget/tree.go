package widget

import (
	"sort"

	"github.com/go-weft/weft/pkg/graphics"
)

// Tree is the arena holding every widget record. Containers reference their
// children by ID, so there is no recursive ownership: removing a widget is a
// map delete plus hook notifications, which keeps mid-dispatch removal safe
// to reason about.
//
// The tree is owned and mutated exclusively by the main dispatch/render
// loop; it is not safe for concurrent use.
type Tree struct {
	widgets  map[ID]*Widget
	root     ID
	nextID   ID
	viewport graphics.Size

	removalHooks []func(ID)
}

// NewTree creates a tree with a root container spanning the viewport.
func NewTree(viewport graphics.Size) *Tree {
	t := &Tree{
		widgets:  make(map[ID]*Widget),
		viewport: viewport,
	}
	root := t.NewWidget(0)
	root.Container = true
	root.PercentSize = graphics.Size{Width: 1, Height: 1}
	t.root = root.id
	return t
}

// Root returns the root container's ID.
func (t *Tree) Root() ID { return t.root }

// Viewport returns the size the root region resolves to.
func (t *Tree) Viewport() graphics.Size { return t.viewport }

// SetViewport resizes the root region.
func (t *Tree) SetViewport(viewport graphics.Size) { t.viewport = viewport }

// NewWidget allocates a widget record and appends it to the parent's
// children. Passing parent 0 is only valid for the root, which the tree
// creates itself. Insertion order determines both paint order and hit-test
// priority: last added paints on top and is hit-tested first.
func (t *Tree) NewWidget(parent ID) *Widget {
	t.nextID++
	w := &Widget{
		id:      t.nextID,
		parent:  parent,
		enabled: true,
		Anchor:  graphics.Offset{X: 0.5, Y: 0.5},
	}
	t.widgets[w.id] = w
	if p := t.widgets[parent]; p != nil {
		p.children = append(p.children, w.id)
	}
	return w
}

// Get returns the widget for id, or nil if it no longer exists.
func (t *Tree) Get(id ID) *Widget {
	return t.widgets[id]
}

// Remove deletes the widget and all its descendants. Removal hooks run for
// every deleted ID so the touch dispatcher can release captures held by the
// removed subtree.
func (t *Tree) Remove(id ID) {
	w := t.widgets[id]
	if w == nil || id == t.root {
		return
	}
	if p := t.widgets[w.parent]; p != nil {
		for i, child := range p.children {
			if child == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	t.removeRecursive(id)
}

func (t *Tree) removeRecursive(id ID) {
	w := t.widgets[id]
	if w == nil {
		return
	}
	for _, child := range w.children {
		t.removeRecursive(child)
	}
	// Hooks run while the record still exists so the dispatcher can
	// synthesize a Cancelled event to the remaining reference; once this
	// returns the widget is gone and nothing more is delivered to it.
	for _, hook := range t.removalHooks {
		hook(id)
	}
	delete(t.widgets, id)
}

// OnRemoval registers a hook invoked with the ID of every widget about to
// be removed.
func (t *Tree) OnRemoval(hook func(ID)) {
	t.removalHooks = append(t.removalHooks, hook)
}

// SetEnabled flips the widget's own enabled flag and drives the
// disable/enable state transitions. Disabling a container makes every
// descendant non-interactive without touching their stored flags, so
// re-enabling the container restores prior behavior.
func (t *Tree) SetEnabled(id ID, enabled bool) {
	w := t.widgets[id]
	if w == nil || w.enabled == enabled {
		return
	}
	w.enabled = enabled
	if enabled {
		if w.state == StateDisabled {
			w.state = StateNormal
		}
	} else {
		w.state = StateDisabled
	}
}

// EffectivelyEnabled reports whether the widget and all its ancestors are
// enabled.
func (t *Tree) EffectivelyEnabled(id ID) bool {
	for id != 0 {
		w := t.widgets[id]
		if w == nil || !w.enabled {
			return false
		}
		id = w.parent
	}
	return true
}

// Region resolves the widget's hit region in viewport pixels. Percent
// geometry is resolved against the parent region; a container's region is
// the union of its children's regions.
func (t *Tree) Region(id ID) graphics.Rect {
	w := t.widgets[id]
	if w == nil {
		return graphics.Rect{}
	}
	if id == t.root {
		return graphics.RectFromLTWH(0, 0, t.viewport.Width, t.viewport.Height)
	}
	if w.Container {
		var union graphics.Rect
		for _, child := range w.children {
			union = union.Union(t.Region(child))
		}
		return union
	}

	parentRegion := t.Region(t.containingRegionOwner(w.parent))
	width := w.PercentSize.Width * parentRegion.Width()
	height := w.PercentSize.Height * parentRegion.Height()
	anchorX := parentRegion.Left + w.PercentPos.X*parentRegion.Width()
	anchorY := parentRegion.Top + w.PercentPos.Y*parentRegion.Height()
	return graphics.RectFromLTWH(
		anchorX-w.Anchor.X*width,
		anchorY-w.Anchor.Y*height,
		width,
		height,
	)
}

// containingRegionOwner walks up past containers whose region is derived
// from their children, so percent geometry resolves against a concrete
// rectangle rather than a circular union.
func (t *Tree) containingRegionOwner(id ID) ID {
	for id != 0 && id != t.root {
		w := t.widgets[id]
		if w == nil {
			break
		}
		if !w.Container {
			return id
		}
		id = w.parent
	}
	return t.root
}

// OrderedChildren returns the child IDs in effective z-order, back to
// front: ascending Z, insertion order within equal Z.
func (t *Tree) OrderedChildren(id ID) []ID {
	w := t.widgets[id]
	if w == nil || len(w.children) == 0 {
		return nil
	}
	ordered := make([]ID, len(w.children))
	copy(ordered, w.children)
	sort.SliceStable(ordered, func(i, j int) bool {
		return t.widgets[ordered[i]].Z < t.widgets[ordered[j]].Z
	})
	return ordered
}

// Deliver applies one touch phase to the widget: state machine first, then
// the lifecycle callback on a real transition, then the control handler.
// Disabled widgets (own flag or any ancestor's) ignore every phase and fire
// no callback.
func (t *Tree) Deliver(id ID, phase Phase, pos graphics.Offset) {
	w := t.widgets[id]
	if w == nil || !t.EffectivelyEnabled(id) {
		return
	}
	inside := t.Region(id).Contains(pos)
	from := w.state
	if w.transition(phase, inside) && w.callback != nil {
		w.callback(id, phase)
	}
	if w.handler != nil {
		w.handler.HandleTouch(t, w, Touch{Phase: phase, Pos: pos, Inside: inside, From: from})
	}
}
