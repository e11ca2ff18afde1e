package world

// OverlayStore persists overlay edits outside process memory. The in-memory
// overlay stays authoritative; a store only has to reproduce it on startup.
type OverlayStore interface {
	// Put records the latest block id for a position.
	Put(edit Edit) error
	// LoadAll streams every stored edit, one per position, until fn returns false.
	LoadAll(fn func(Edit) bool) error
	Close() error
}

// LoadOverlay reads every edit from store into a new overlay.
func LoadOverlay(store OverlayStore) (*Overlay, error) {
	overlay := NewOverlay()
	if store == nil {
		return overlay, nil
	}
	err := store.LoadAll(func(edit Edit) bool {
		overlay.Set(edit.Pos, edit.ID)
		return true
	})
	if err != nil {
		return nil, err
	}
	return overlay, nil
}
