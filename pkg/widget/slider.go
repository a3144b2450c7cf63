package widget

// Slider maps the horizontal touch position within its hit region onto a
// value in [0, 1]. It keeps tracking while the captured touch moves outside
// the region, so new slider widgets default TracksOutside to true.
type Slider struct {
	Value    float64
	OnChange func(value float64)
}

// NewSlider creates a slider widget under parent.
func NewSlider(t *Tree, parent ID, value float64, onChange func(float64)) *Widget {
	w := t.NewWidget(parent)
	w.TracksOutside = true
	w.SetHandler(&Slider{Value: value, OnChange: onChange})
	return w
}

// HandleTouch implements Handler.
func (s *Slider) HandleTouch(t *Tree, w *Widget, touch Touch) {
	if touch.Phase != PhaseBegan && touch.Phase != PhaseMoved {
		return
	}
	region := t.Region(w.ID())
	if region.Width() <= 0 {
		return
	}

	value := (touch.Pos.X - region.Left) / region.Width()
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	if value == s.Value {
		return
	}
	s.Value = value
	if s.OnChange != nil {
		s.OnChange(value)
	}
}
