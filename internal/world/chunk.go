package world

import (
	"crypto/sha256"
	"encoding/binary"
)

// Chunk stores the dense block grid of one chunk column. Voxels are addressed
// by local coordinates through Index; there are no per-voxel allocations.
type Chunk struct {
	Key    ChunkCoord
	blocks [ChunkVolume]BlockID
}

func NewChunk(key ChunkCoord) *Chunk {
	return &Chunk{Key: key}
}

// Index is the linear offset of a local coordinate: x + y*S + z*S*H.
func Index(x, y, z int) int {
	return x + y*ChunkSize + z*ChunkSize*ChunkHeight
}

// InBounds reports whether a local coordinate addresses a voxel of the chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSize &&
		y >= 0 && y < ChunkHeight &&
		z >= 0 && z < ChunkSize
}

// LocalBlock returns the block at a local coordinate, or Air when out of range.
func (c *Chunk) LocalBlock(x, y, z int) BlockID {
	if !InBounds(x, y, z) {
		return Air
	}
	return c.blocks[Index(x, y, z)]
}

// SetLocalBlock writes a block and reports whether the stored value changed.
// Out of range writes are ignored.
func (c *Chunk) SetLocalBlock(x, y, z int, id BlockID) bool {
	if !InBounds(x, y, z) {
		return false
	}
	idx := Index(x, y, z)
	if c.blocks[idx] == id {
		return false
	}
	c.blocks[idx] = id
	return true
}

// Contains reports whether the global coordinate belongs to this chunk.
func (c *Chunk) Contains(b BlockCoord) bool {
	return InHeight(b.Y) && ChunkOf(b) == c.Key
}

// GlobalToLocal converts a global coordinate owned by this chunk.
func (c *Chunk) GlobalToLocal(b BlockCoord) (int, int, int, bool) {
	if !c.Contains(b) {
		return 0, 0, 0, false
	}
	x, y, z := LocalOf(b)
	return x, y, z, true
}

// Block returns the block at a global coordinate, Air when not owned.
func (c *Chunk) Block(b BlockCoord) BlockID {
	x, y, z, ok := c.GlobalToLocal(b)
	if !ok {
		return Air
	}
	return c.blocks[Index(x, y, z)]
}

// SetBlock writes a block at a global coordinate owned by this chunk.
func (c *Chunk) SetBlock(b BlockCoord, id BlockID) bool {
	x, y, z, ok := c.GlobalToLocal(b)
	if !ok {
		return false
	}
	return c.SetLocalBlock(x, y, z, id)
}

// FillColumn writes id into [fromY, toY) of the column at (x, z).
func (c *Chunk) FillColumn(x, z, fromY, toY int, id BlockID) {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	if fromY < 0 {
		fromY = 0
	}
	if toY > ChunkHeight {
		toY = ChunkHeight
	}
	for y := fromY; y < toY; y++ {
		c.blocks[Index(x, y, z)] = id
	}
}

// HighestBlock returns the y of the topmost block in the column matching keep,
// or -1 when the column has none.
func (c *Chunk) HighestBlock(x, z int, keep func(BlockID) bool) int {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return -1
	}
	for y := ChunkHeight - 1; y >= 0; y-- {
		id := c.blocks[Index(x, y, z)]
		if id == Air {
			continue
		}
		if keep == nil || keep(id) {
			return y
		}
	}
	return -1
}

// ForEachBlock calls fn for every non-air voxel with its global coordinate.
func (c *Chunk) ForEachBlock(fn func(global BlockCoord, id BlockID) bool) {
	origin := c.Key.Origin()
	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkHeight; y++ {
			for x := 0; x < ChunkSize; x++ {
				id := c.blocks[Index(x, y, z)]
				if id == Air {
					continue
				}
				if !fn(origin.Add(x, y, z), id) {
					return
				}
			}
		}
	}
}

// Count returns the number of non-air voxels.
func (c *Chunk) Count() int {
	n := 0
	for _, id := range c.blocks {
		if id != Air {
			n++
		}
	}
	return n
}

// Equal reports whether both chunks hold the same position and voxels.
func (c *Chunk) Equal(other *Chunk) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key == other.Key && c.blocks == other.blocks
}

// Clone returns an independent copy.
func (c *Chunk) Clone() *Chunk {
	dup := *c
	return &dup
}

// Digest hashes the raw voxel array in little-endian order.
func (c *Chunk) Digest() [32]byte {
	h := sha256.New()
	var tmp [2]byte
	for _, v := range c.blocks {
		binary.LittleEndian.PutUint16(tmp[:], uint16(v))
		h.Write(tmp[:])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
