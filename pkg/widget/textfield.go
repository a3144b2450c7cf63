package widget

// TextField is a focusable single-line text control. Pointer interaction
// only moves focus; character input arrives from the host keyboard
// collaborator through InsertRune and Backspace while focused.
type TextField struct {
	text    []rune
	caret   int
	focused bool

	// OnChange fires after every text mutation with the new contents.
	OnChange func(text string)
}

// NewTextField creates a text field widget under parent.
func NewTextField(t *Tree, parent ID, text string) (*Widget, *TextField) {
	field := &TextField{text: []rune(text)}
	field.caret = len(field.text)
	w := t.NewWidget(parent)
	w.SetHandler(field)
	return w, field
}

// Text returns the current contents.
func (f *TextField) Text() string { return string(f.text) }

// Caret returns the caret position in characters.
func (f *TextField) Caret() int { return f.caret }

// Focused reports whether the field currently has keyboard focus.
func (f *TextField) Focused() bool { return f.focused }

// SetFocused implements Focusable.
func (f *TextField) SetFocused(focused bool) { f.focused = focused }

// SetCaret clamps and moves the caret.
func (f *TextField) SetCaret(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.text) {
		pos = len(f.text)
	}
	f.caret = pos
}

// InsertRune inserts ch at the caret. Ignored while unfocused.
func (f *TextField) InsertRune(ch rune) {
	if !f.focused {
		return
	}
	f.text = append(f.text[:f.caret], append([]rune{ch}, f.text[f.caret:]...)...)
	f.caret++
	f.changed()
}

// Backspace deletes the character before the caret. Ignored while unfocused
// or at the start of the text.
func (f *TextField) Backspace() {
	if !f.focused || f.caret == 0 {
		return
	}
	f.text = append(f.text[:f.caret-1], f.text[f.caret:]...)
	f.caret--
	f.changed()
}

func (f *TextField) changed() {
	if f.OnChange != nil {
		f.OnChange(string(f.text))
	}
}

// HandleTouch implements Handler. Focus itself is granted by the touch
// dispatcher on a completed tap; the field only positions its caret at the
// end of the text when tapped.
func (f *TextField) HandleTouch(_ *Tree, _ *Widget, touch Touch) {
	if touch.Phase == PhaseEnded && touch.Inside && touch.From == StateHighlighted {
		f.SetCaret(len(f.text))
	}
}
