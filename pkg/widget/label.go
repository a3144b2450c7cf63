package widget

import (
	"github.com/go-weft/weft/pkg/graphics"
	"github.com/go-weft/weft/pkg/text"
)

// LabelWidget places a text label in the widget tree. It is not
// interactive; it exists so text participates in geometry and enable
// propagation like any other widget.
type LabelWidget struct {
	Label *text.Label
}

// NewLabel creates a label widget under parent wrapping the given text
// label.
func NewLabel(t *Tree, parent ID, label *text.Label) *Widget {
	w := t.NewWidget(parent)
	w.Decorative = true
	w.SetHandler(&LabelWidget{Label: label})
	return w
}

// Quads lays out the label and positions its quads inside the widget's
// resolved region.
func (l *LabelWidget) Quads(t *Tree, w *Widget) ([]graphics.Quad, error) {
	result, err := l.Label.Layout()
	if err != nil {
		return nil, err
	}
	region := t.Region(w.ID())
	origin := graphics.Offset{X: region.Left, Y: region.Top}

	quads := make([]graphics.Quad, len(result.Quads))
	for i, q := range result.Quads {
		q.Rect = q.Rect.Translate(origin)
		quads[i] = q
	}
	return quads, nil
}

// HandleTouch implements Handler. Labels ignore touches.
func (l *LabelWidget) HandleTouch(_ *Tree, _ *Widget, _ Touch) {}
