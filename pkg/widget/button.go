package widget

// Button fires OnTap when a captured touch sequence is released inside the
// hit region while the press is still live. A press whose highlight was
// cancelled by leaving the region does not fire. Visual feedback comes from
// the per-state skins on the widget.
type Button struct {
	OnTap func()
}

// NewButton creates a button widget under parent.
func NewButton(t *Tree, parent ID, onTap func()) *Widget {
	w := t.NewWidget(parent)
	w.SetHandler(&Button{OnTap: onTap})
	return w
}

// HandleTouch implements Handler.
func (b *Button) HandleTouch(_ *Tree, _ *Widget, touch Touch) {
	if touch.Phase == PhaseEnded && touch.Inside && touch.From == StateHighlighted && b.OnTap != nil {
		b.OnTap()
	}
}
