package snapshot

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"voxelengine/internal/world"
)

// ErrSeedMismatch is returned when a snapshot was taken in a different world.
var ErrSeedMismatch = errors.New("snapshot seed does not match world seed")

// Store keeps edits in memory and writes them out as a snapshot on Flush and
// Close. It trades durability between flushes for a compact file.
type Store struct {
	path    string
	seed    int64
	catalog string

	mu    sync.Mutex
	edits map[world.BlockCoord]world.BlockID
	dirty bool
}

// OpenStore loads the snapshot at path, or starts empty when none exists.
func OpenStore(path string, seed int64, catalogDigest string) (*Store, error) {
	s := &Store{
		path:    path,
		seed:    seed,
		catalog: catalogDigest,
		edits:   make(map[world.BlockCoord]world.BlockID),
	}
	snap, err := ReadSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.Header.Seed != seed {
		return nil, fmt.Errorf("%w: snapshot %d, world %d", ErrSeedMismatch, snap.Header.Seed, seed)
	}
	for _, e := range snap.Edits {
		s.edits[world.BlockCoord{X: e.X, Y: e.Y, Z: e.Z}] = world.BlockID(e.ID)
	}
	return s, nil
}

func (s *Store) Put(edit world.Edit) error {
	s.mu.Lock()
	s.edits[edit.Pos] = edit.ID
	s.dirty = true
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadAll(fn func(world.Edit) bool) error {
	for _, edit := range s.overlay().Edits() {
		if !fn(edit) {
			break
		}
	}
	return nil
}

// Reset drops every edit; the file is rewritten on the next flush.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.edits = make(map[world.BlockCoord]world.BlockID)
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored positions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edits)
}

// Flush writes the snapshot when anything changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	s.mu.Unlock()

	snap := FromOverlay(s.seed, s.catalog, s.overlay())
	if err := WriteSnapshot(s.path, snap); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return s.Flush()
}

func (s *Store) overlay() world.OverlaySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(world.OverlaySnapshot)
	for pos, id := range s.edits {
		key := world.ChunkOf(pos)
		edits, ok := out[key]
		if !ok {
			edits = make(map[world.BlockCoord]world.BlockID)
			out[key] = edits
		}
		edits[pos] = id
	}
	return out
}
