package world

import "sort"

// Edit is a single recorded block write.
type Edit struct {
	Pos BlockCoord
	ID  BlockID
}

// OverlaySnapshot is the serialisable form of an overlay, keyed by chunk.
type OverlaySnapshot map[ChunkCoord]map[BlockCoord]BlockID

// Overlay records every block write made through the public world API so that
// regenerated chunks reproduce prior edits. Entries survive chunk unloads.
// Overlay is not safe for concurrent use; its owner serialises access.
type Overlay struct {
	chunks map[ChunkCoord]map[BlockCoord]BlockID
	count  int
}

func NewOverlay() *Overlay {
	return &Overlay{chunks: make(map[ChunkCoord]map[BlockCoord]BlockID)}
}

// Set upserts the entry for pos; the last write for a coordinate wins.
func (o *Overlay) Set(pos BlockCoord, id BlockID) {
	if o.chunks == nil {
		o.chunks = make(map[ChunkCoord]map[BlockCoord]BlockID)
	}
	key := ChunkOf(pos)
	edits, ok := o.chunks[key]
	if !ok {
		edits = make(map[BlockCoord]BlockID)
		o.chunks[key] = edits
	}
	if _, exists := edits[pos]; !exists {
		o.count++
	}
	edits[pos] = id
}

// Get returns the recorded edit for pos.
func (o *Overlay) Get(pos BlockCoord) (BlockID, bool) {
	edits, ok := o.chunks[ChunkOf(pos)]
	if !ok {
		return Air, false
	}
	id, ok := edits[pos]
	return id, ok
}

// Len returns the number of recorded positions.
func (o *Overlay) Len() int {
	return o.count
}

// Chunks lists every chunk with at least one edit, sorted by X then Z.
func (o *Overlay) Chunks() []ChunkCoord {
	keys := make([]ChunkCoord, 0, len(o.chunks))
	for key := range o.chunks {
		keys = append(keys, key)
	}
	sortChunkCoords(keys)
	return keys
}

// ChunkEdits returns the edits recorded for one chunk in a deterministic order.
func (o *Overlay) ChunkEdits(key ChunkCoord) []Edit {
	edits := o.chunks[key]
	if len(edits) == 0 {
		return nil
	}
	out := make([]Edit, 0, len(edits))
	for pos, id := range edits {
		out = append(out, Edit{Pos: pos, ID: id})
	}
	sortEdits(out)
	return out
}

// Replay writes the chunk's recorded edits onto freshly generated data and
// returns how many voxels it touched.
func (o *Overlay) Replay(c *Chunk) int {
	if c == nil {
		return 0
	}
	applied := 0
	for pos, id := range o.chunks[c.Key] {
		if c.SetBlock(pos, id) {
			applied++
		}
	}
	return applied
}

// Snapshot returns a deep copy suitable for an external store.
func (o *Overlay) Snapshot() OverlaySnapshot {
	snap := make(OverlaySnapshot, len(o.chunks))
	for key, edits := range o.chunks {
		dup := make(map[BlockCoord]BlockID, len(edits))
		for pos, id := range edits {
			dup[pos] = id
		}
		snap[key] = dup
	}
	return snap
}

// Merge upserts every entry of snap. Entries are re-keyed by their own
// position so a snapshot with a wrong chunk key still lands correctly.
func (o *Overlay) Merge(snap OverlaySnapshot) {
	for _, edits := range snap {
		for pos, id := range edits {
			o.Set(pos, id)
		}
	}
}

// Reset drops every entry, e.g. when switching worlds.
func (o *Overlay) Reset() {
	o.chunks = make(map[ChunkCoord]map[BlockCoord]BlockID)
	o.count = 0
}

// Edits flattens a snapshot into a deterministic edit list.
func (s OverlaySnapshot) Edits() []Edit {
	var out []Edit
	for _, edits := range s {
		for pos, id := range edits {
			out = append(out, Edit{Pos: pos, ID: id})
		}
	}
	sortEdits(out)
	return out
}

// Len counts the entries of a snapshot.
func (s OverlaySnapshot) Len() int {
	n := 0
	for _, edits := range s {
		n += len(edits)
	}
	return n
}

func sortChunkCoords(keys []ChunkCoord) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
}

// SortChunkCoords orders chunk coordinates by X then Z.
func SortChunkCoords(keys []ChunkCoord) {
	sortChunkCoords(keys)
}

func sortEdits(edits []Edit) {
	sort.Slice(edits, func(i, j int) bool {
		return lessBlockCoord(edits[i].Pos, edits[j].Pos)
	})
}

func lessBlockCoord(a, b BlockCoord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.Y < b.Y
}
