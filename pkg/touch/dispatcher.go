// Package touch routes raw pointer events through the widget tree: it hit
// tests in reverse z-order, grants exclusive capture of a touch sequence to
// the widget that accepted its Began event, and drives the widget state
// machine. Every operation completes synchronously within the event
// processing step; nothing here suspends.
package touch

import (
	"github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
	"github.com/go-weft/weft/pkg/widget"
)

// Event is one raw pointer event. Sequence is the platform's stable
// per-touch identity; events of one logical touch share it from Began to
// Ended or Cancelled. Events are ephemeral: produced and consumed within
// one dispatch pass, never persisted.
type Event struct {
	Sequence int64
	Phase    widget.Phase
	Position graphics.Offset
}

// Dispatcher maps each event to zero or one target widget. Simultaneous
// touch sequences are tracked independently by sequence identity, each with
// its own capture target.
type Dispatcher struct {
	tree      *widget.Tree
	captures  map[int64]widget.ID
	positions map[int64]graphics.Offset
	focused   widget.ID
}

// NewDispatcher creates a dispatcher over the tree and hooks widget removal
// so a capture held by a removed widget degrades to a synthesized Cancelled
// instead of a stale delivery.
func NewDispatcher(tree *widget.Tree) *Dispatcher {
	d := &Dispatcher{
		tree:      tree,
		captures:  make(map[int64]widget.ID),
		positions: make(map[int64]graphics.Offset),
	}
	tree.OnRemoval(d.widgetRemoved)
	return d
}

// Focused returns the widget holding keyboard focus, or zero.
func (d *Dispatcher) Focused() widget.ID { return d.focused }

// Dispatch routes one event. Dispatcher-level inconsistencies (stale
// capture targets, tree mutation mid-dispatch) are handled defensively and
// never surface as failures.
func (d *Dispatcher) Dispatch(ev Event) {
	defer errors.Recover("touch.Dispatch")

	d.positions[ev.Sequence] = ev.Position

	switch ev.Phase {
	case widget.PhaseBegan:
		d.began(ev)
	default:
		d.continued(ev)
	}

	if ev.Phase == widget.PhaseEnded || ev.Phase == widget.PhaseCancelled {
		delete(d.captures, ev.Sequence)
		delete(d.positions, ev.Sequence)
	}
}

// began hit tests the tree and grants capture to the accepting widget.
func (d *Dispatcher) began(ev Event) {
	if d.exclusiveCaptureActive() {
		return
	}

	target := d.hitTest(d.tree.Root(), ev.Position)
	d.moveFocus(target)
	if target == 0 {
		return
	}

	d.captures[ev.Sequence] = target
	d.tree.Deliver(target, widget.PhaseBegan, ev.Position)
}

// continued routes Moved/Ended/Cancelled to the sequence's capture target,
// wherever the pointer has moved in the meantime.
func (d *Dispatcher) continued(ev Event) {
	target, ok := d.captures[ev.Sequence]
	if !ok {
		return
	}
	if d.tree.Get(target) == nil {
		// Capture target vanished without the removal hook firing; treat
		// as already-cancelled.
		delete(d.captures, ev.Sequence)
		return
	}
	d.tree.Deliver(target, ev.Phase, ev.Position)
}

// widgetRemoved releases any capture held by the removed widget. The record
// still exists while the hook runs, so the synthesized Cancelled reaches
// the remaining listener reference and resets its state; afterwards no
// stale Ended can be delivered because the capture is gone.
func (d *Dispatcher) widgetRemoved(id widget.ID) {
	for seq, target := range d.captures {
		if target != id {
			continue
		}
		d.tree.Deliver(id, widget.PhaseCancelled, d.positions[seq])
		delete(d.captures, seq)
		delete(d.positions, seq)
	}
	if d.focused == id {
		d.focused = 0
	}
}

// hitTest walks the subtree in reverse z-order so overlapping widgets
// resolve to the frontmost. A disabled widget is skipped entirely, children
// included: events pass through to whatever is beneath it.
func (d *Dispatcher) hitTest(id widget.ID, pos graphics.Offset) widget.ID {
	w := d.tree.Get(id)
	if w == nil || !w.Enabled() {
		return 0
	}

	ordered := d.tree.OrderedChildren(id)
	for i := len(ordered) - 1; i >= 0; i-- {
		if hit := d.hitTest(ordered[i], pos); hit != 0 {
			return hit
		}
	}

	if id != d.tree.Root() && w.Interactive() && d.tree.Region(id).Contains(pos) {
		return id
	}
	return 0
}

// exclusiveCaptureActive reports whether a live capture target claims
// exclusive ownership of all touch input.
func (d *Dispatcher) exclusiveCaptureActive() bool {
	for _, target := range d.captures {
		if w := d.tree.Get(target); w != nil && w.ExclusiveTouch {
			return true
		}
	}
	return false
}

// moveFocus shifts keyboard focus on touch down: a focusable target takes
// focus, anything else (including empty space) clears it.
func (d *Dispatcher) moveFocus(target widget.ID) {
	next := widget.ID(0)
	if w := d.tree.Get(target); w != nil {
		if _, ok := w.Handler().(widget.Focusable); ok {
			next = target
		}
	}
	if next == d.focused {
		return
	}
	if prev := d.tree.Get(d.focused); prev != nil {
		if f, ok := prev.Handler().(widget.Focusable); ok {
			f.SetFocused(false)
		}
	}
	d.focused = next
	if w := d.tree.Get(next); w != nil {
		if f, ok := w.Handler().(widget.Focusable); ok {
			f.SetFocused(true)
		}
	}
}
