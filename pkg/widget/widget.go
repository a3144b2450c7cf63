// Package widget provides the interaction core shared by all controls: a
// per-widget visual state machine, percent-based geometry, and a z-ordered
// tree of widget records addressed by stable IDs.
package widget

import (
	"fmt"

	"github.com/go-weft/weft/pkg/graphics"
)

// ID addresses a widget record in its Tree. The zero ID is "no widget".
type ID uint64

// Phase is one step of a touch sequence's lifecycle.
type Phase int

const (
	PhaseBegan Phase = iota
	PhaseMoved
	PhaseEnded
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseMoved:
		return "moved"
	case PhaseEnded:
		return "ended"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the visual/interaction state of a widget.
type State int

const (
	// StateNormal is the initial state.
	StateNormal State = iota
	// StateHighlighted is entered while a touch sequence is held inside
	// the widget's hit region.
	StateHighlighted
	// StateDisabled ignores all touch phases until explicitly re-enabled.
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateHighlighted:
		return "highlighted"
	case StateDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Callback receives lifecycle events. It fires once per state transition
// that is not a no-op, with the phase that caused the transition.
type Callback func(id ID, phase Phase)

// Touch describes one delivered phase from the handler's point of view:
// the position, whether it lies inside the widget's hit region, and the
// state the widget was in before the state machine ran. Controls use From
// to distinguish a release of a live press from one whose highlight was
// already cancelled by leaving the region.
type Touch struct {
	Phase  Phase
	Pos    graphics.Offset
	Inside bool
	From   State
}

// Handler lets concrete controls (button, checkbox, slider...) react to
// touch phases delivered to their widget. It runs after the state machine
// and the user callback, synchronously within the dispatch step.
type Handler interface {
	HandleTouch(t *Tree, w *Widget, touch Touch)
}

// Focusable is implemented by handlers that accept keyboard focus, e.g.
// text fields. The dispatcher moves focus on touch down: a focusable
// target takes it, anything else clears it.
type Focusable interface {
	SetFocused(focused bool)
}

// Widget is one record in the tree. Fields that are plain configuration are
// exported; interaction state is owned by the tree and the dispatcher.
type Widget struct {
	id       ID
	parent   ID
	children []ID

	state   State
	enabled bool

	// TracksOutside keeps the widget highlighted when a captured touch
	// moves outside its hit region. The default (false) cancels the
	// highlight on exit.
	TracksOutside bool

	// ExclusiveTouch blocks new touch sequences from starting on other
	// widgets while this widget holds a capture.
	ExclusiveTouch bool

	// Container marks the widget as a composite whose hit region is the
	// union of its children's regions.
	Container bool

	// Decorative excludes the widget from hit testing even when it has a
	// handler attached, so purely visual widgets never absorb touches.
	Decorative bool

	// Percent geometry, resolved against the parent region: position of
	// the anchor point, size, and the anchor in unit coordinates.
	PercentPos  graphics.Offset
	PercentSize graphics.Size
	Anchor      graphics.Offset

	// Z overrides the z-order position. Widgets with equal Z keep their
	// insertion order; higher Z paints later and hit-tests earlier.
	Z int

	callback Callback
	handler  Handler
	skins    map[State]string
}

// ID returns the widget's stable identity.
func (w *Widget) ID() ID { return w.id }

// Parent returns the parent widget's ID, or zero for the root.
func (w *Widget) Parent() ID { return w.parent }

// Children returns the child IDs in insertion order.
func (w *Widget) Children() []ID { return w.children }

// State returns the current interaction state.
func (w *Widget) State() State { return w.state }

// Enabled returns the widget's own stored enabled flag. A widget with
// Enabled true can still be non-interactive when an ancestor container is
// disabled; see Tree.EffectivelyEnabled.
func (w *Widget) Enabled() bool { return w.enabled }

// SetCallback registers the lifecycle callback.
func (w *Widget) SetCallback(cb Callback) { w.callback = cb }

// SetHandler attaches a control behavior.
func (w *Widget) SetHandler(h Handler) { w.handler = h }

// Interactive reports whether the widget participates in hit testing:
// it must have a handler or callback and not be marked decorative.
func (w *Widget) Interactive() bool {
	return !w.Decorative && (w.handler != nil || w.callback != nil)
}

// Handler returns the attached control behavior, or nil.
func (w *Widget) Handler() Handler { return w.handler }

// SetSkin assigns the appearance asset used while in the given state.
func (w *Widget) SetSkin(state State, asset string) {
	if w.skins == nil {
		w.skins = make(map[State]string)
	}
	w.skins[state] = asset
}

// Skin returns the appearance asset for the given state, falling back to
// the normal skin when the state has none configured.
func (w *Widget) Skin(state State) string {
	if asset, ok := w.skins[state]; ok {
		return asset
	}
	return w.skins[StateNormal]
}

// CurrentSkin returns the appearance asset for the current state.
func (w *Widget) CurrentSkin() string {
	return w.Skin(w.state)
}

// transition applies one touch phase to the state machine and reports
// whether the state changed. Disabled widgets never transition here; the
// disable/enable transitions happen only through Tree.SetEnabled.
func (w *Widget) transition(phase Phase, inside bool) bool {
	if w.state == StateDisabled {
		return false
	}

	switch phase {
	case PhaseBegan:
		if w.state == StateNormal && inside {
			w.state = StateHighlighted
			return true
		}
	case PhaseMoved:
		if w.state == StateHighlighted && !inside && !w.TracksOutside {
			w.state = StateNormal
			return true
		}
	case PhaseEnded, PhaseCancelled:
		if w.state == StateHighlighted {
			w.state = StateNormal
			return true
		}
	}
	return false
}
