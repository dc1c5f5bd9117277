package pack

import "sync"

// Store owns the session's single GiftPack. The TUI is the only writer;
// the mutex exists because the commit pipeline snapshots and clears the
// pack from a background command.
type Store struct {
	mu      sync.Mutex
	pack    GiftPack
	palette []string
	effects Effects
}

// NewStore creates an empty pack with the given ribbon palette. A nil
// or empty palette falls back to DefaultPalette; nil effects are
// replaced with a no-op sink. The initial ribbon color is the first
// palette entry.
func NewStore(palette []string, effects Effects) *Store {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if effects == nil {
		effects = NopEffects{}
	}
	return &Store{
		pack:    GiftPack{RibbonColor: palette[0]},
		palette: palette,
		effects: effects,
	}
}

// AddItem appends the product as a new quantity-1 item. Duplicates are
// kept, insertion order is preserved. Emits the item-added cue and
// toast.
func (s *Store) AddItem(p Product) error {
	if p.ID == "" {
		return ErrEmptyProductID
	}
	s.mu.Lock()
	s.pack.Items = append(s.pack.Items, SelectedItem{Product: p, Quantity: 1})
	s.mu.Unlock()

	s.effects.PlayTick()
	s.effects.Notify(Notification{
		Title:       "Item Added!",
		Description: "Don't forget you can add a personal message to your gift!",
		Style:       s.palette[0],
	})
	return nil
}

// RemoveItem deletes the item at index, keeping order of the rest.
func (s *Store) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pack.Items) {
		return ErrOutOfRange
	}
	s.pack.Items = append(s.pack.Items[:index], s.pack.Items[index+1:]...)
	return nil
}

// SetQuantity replaces the quantity of the item at index. Quantities
// below 1 are rejected; removal goes through RemoveItem instead.
func (s *Store) SetQuantity(index, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pack.Items) {
		return ErrOutOfRange
	}
	s.pack.Items[index].Quantity = quantity
	return nil
}

// SetNote replaces the pack-level personalization note.
func (s *Store) SetNote(text string) {
	s.mu.Lock()
	s.pack.Note = text
	s.mu.Unlock()
}

// SetRibbonColor validates against the palette before mutating.
func (s *Store) SetRibbonColor(color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.palette {
		if c == color {
			s.pack.RibbonColor = color
			return nil
		}
	}
	return ErrInvalidColor
}

// Clear resets to an empty pack. Ribbon color returns to the palette
// default; used after a successful commit.
func (s *Store) Clear() {
	s.mu.Lock()
	s.pack = GiftPack{RibbonColor: s.palette[0]}
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current pack for readers
// (arranger, commit pipeline, views).
func (s *Store) Snapshot() GiftPack {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pack
	out.Items = make([]SelectedItem, len(s.pack.Items))
	copy(out.Items, s.pack.Items)
	return out
}

// Len reports the current item count without copying.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pack.Items)
}

// Palette returns the configured ribbon palette.
func (s *Store) Palette() []string {
	return s.palette
}
