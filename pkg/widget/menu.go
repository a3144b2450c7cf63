package widget

// Menu is a composite container of item widgets. Its hit region is the
// union of its items, disabling it makes every item non-interactive without
// touching their own flags, and item order determines both paint order and
// hit-test priority.
type Menu struct {
	// OnSelect fires with the item index when an item's tap completes.
	OnSelect func(index int)

	items []ID
}

// NewMenu creates a menu container under parent.
func NewMenu(t *Tree, parent ID, onSelect func(int)) (*Widget, *Menu) {
	menu := &Menu{OnSelect: onSelect}
	w := t.NewWidget(parent)
	w.Container = true
	w.SetHandler(menu)
	return w, menu
}

// AddItem appends an item widget to the menu and returns it. The item is a
// button wired to report its index through the menu's OnSelect.
func (m *Menu) AddItem(t *Tree, menuWidget *Widget) *Widget {
	index := len(m.items)
	item := NewButton(t, menuWidget.ID(), func() {
		if m.OnSelect != nil {
			m.OnSelect(index)
		}
	})
	m.items = append(m.items, item.ID())
	return item
}

// Items returns the item widget IDs in insertion order.
func (m *Menu) Items() []ID { return m.items }

// HandleTouch implements Handler. The menu itself has no behavior; items
// handle their own touches. The handler exists so a menu can be found by
// type when walking the tree.
func (m *Menu) HandleTouch(_ *Tree, _ *Widget, _ Touch) {}
