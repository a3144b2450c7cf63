package widget

// Checkbox toggles its checked flag on every completed tap and reports the
// new value through OnChange.
type Checkbox struct {
	Checked  bool
	OnChange func(checked bool)
}

// NewCheckbox creates a checkbox widget under parent.
func NewCheckbox(t *Tree, parent ID, checked bool, onChange func(bool)) *Widget {
	w := t.NewWidget(parent)
	w.SetHandler(&Checkbox{Checked: checked, OnChange: onChange})
	return w
}

// HandleTouch implements Handler.
func (c *Checkbox) HandleTouch(_ *Tree, _ *Widget, touch Touch) {
	if touch.Phase != PhaseEnded || !touch.Inside || touch.From != StateHighlighted {
		return
	}
	c.Checked = !c.Checked
	if c.OnChange != nil {
		c.OnChange(c.Checked)
	}
}
