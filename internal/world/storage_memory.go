package world

import "sync"

type memoryOverlayStore struct {
	mu    sync.RWMutex
	edits map[BlockCoord]BlockID
}

// NewMemoryStore returns a store that keeps edits for the life of the process.
func NewMemoryStore() OverlayStore {
	return &memoryOverlayStore{edits: make(map[BlockCoord]BlockID)}
}

func (m *memoryOverlayStore) Put(edit Edit) error {
	m.mu.Lock()
	m.edits[edit.Pos] = edit.ID
	m.mu.Unlock()
	return nil
}

func (m *memoryOverlayStore) LoadAll(fn func(Edit) bool) error {
	m.mu.RLock()
	edits := make([]Edit, 0, len(m.edits))
	for pos, id := range m.edits {
		edits = append(edits, Edit{Pos: pos, ID: id})
	}
	m.mu.RUnlock()
	sortEdits(edits)
	for _, edit := range edits {
		if !fn(edit) {
			break
		}
	}
	return nil
}

func (m *memoryOverlayStore) Close() error {
	return nil
}
