package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ChunkSize is the horizontal edge length of a chunk in blocks.
	ChunkSize = 16
	// ChunkHeight is the fixed vertical extent of every chunk.
	ChunkHeight = 256
	// ChunkVolume is the number of voxels stored per chunk.
	ChunkVolume = ChunkSize * ChunkHeight * ChunkSize
)

// BlockID identifies a block type in the catalog palette. Zero is air.
type BlockID uint16

// Air is the reserved empty block.
const Air BlockID = 0

// ChunkCoord identifies a vertical chunk column in chunk space.
type ChunkCoord struct {
	X int
	Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Origin returns the global block coordinate of the chunk's (0,0,0) voxel.
func (c ChunkCoord) Origin() BlockCoord {
	return BlockCoord{X: c.X * ChunkSize, Y: 0, Z: c.Z * ChunkSize}
}

// Add offsets the chunk coordinate.
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// BlockCoord describes a block position in global block space.
type BlockCoord struct {
	X int
	Y int
	Z int
}

func (b BlockCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.X, b.Y, b.Z)
}

// Add offsets the block coordinate.
func (b BlockCoord) Add(dx, dy, dz int) BlockCoord {
	return BlockCoord{X: b.X + dx, Y: b.Y + dy, Z: b.Z + dz}
}

// Side returns the neighbouring block across the given face.
func (b BlockCoord) Side(f Face) BlockCoord {
	dx, dy, dz := f.Offset()
	return b.Add(dx, dy, dz)
}

// Vec returns the voxel centre as a float vector.
func (b BlockCoord) Vec() mgl64.Vec3 {
	return mgl64.Vec3{float64(b.X), float64(b.Y), float64(b.Z)}
}

// ChunkOf maps a global block coordinate onto the chunk that owns it.
func ChunkOf(b BlockCoord) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(b.X, ChunkSize),
		Z: floorDiv(b.Z, ChunkSize),
	}
}

// LocalOf maps a global block coordinate onto chunk-local coordinates. The
// result is always inside [0,ChunkSize) x [0,ChunkHeight) x [0,ChunkSize).
func LocalOf(b BlockCoord) (x, y, z int) {
	return mod(b.X, ChunkSize), mod(b.Y, ChunkHeight), mod(b.Z, ChunkSize)
}

// GlobalOf rebuilds a global block coordinate from chunk-local parts.
func GlobalOf(c ChunkCoord, x, y, z int) BlockCoord {
	return BlockCoord{
		X: c.X*ChunkSize + x,
		Y: y,
		Z: c.Z*ChunkSize + z,
	}
}

// InHeight reports whether y lies within the fixed vertical extent.
func InHeight(y int) bool {
	return y >= 0 && y < ChunkHeight
}

// BlockAt returns the voxel containing p. Voxels are unit cubes centred on
// integer coordinates.
func BlockAt(p mgl64.Vec3) BlockCoord {
	return BlockCoord{
		X: int(math.Floor(p.X() + 0.5)),
		Y: int(math.Floor(p.Y() + 0.5)),
		Z: int(math.Floor(p.Z() + 0.5)),
	}
}

// ChunkAt returns the chunk containing the world-space point p.
func ChunkAt(p mgl64.Vec3) ChunkCoord {
	return ChunkOf(BlockAt(p))
}

// ChebyshevDistance is max(|dx|,|dz|) between two chunk coordinates.
func ChebyshevDistance(a, b ChunkCoord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// FloorDiv divides rounding towards negative infinity.
func FloorDiv(value, size int) int {
	return floorDiv(value, size)
}

// Mod is the Euclidean remainder, always in [0,size).
func Mod(value, size int) int {
	return mod(value, size)
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

func mod(value, size int) int {
	if size <= 0 {
		return 0
	}
	m := value % size
	if m < 0 {
		m += size
	}
	return m
}
