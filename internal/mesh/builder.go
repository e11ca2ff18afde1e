package mesh

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxelengine/internal/world"
)

// MaxFaces is the face count of a chunk with every voxel solid and every face
// visible. Buffers never need to grow past it.
const MaxFaces = world.ChunkVolume * 6

// Catalog is the subset of the block catalog the builder reads.
type Catalog interface {
	IsSolid(id world.BlockID) bool
	IsTransparent(id world.BlockID) bool
	TextureIndex(id world.BlockID, face world.Face) int
}

// Lookup resolves blocks outside the chunk being meshed by global coordinate.
// It must return committed data; unloaded positions read as air.
type Lookup func(pos world.BlockCoord) world.BlockID

// Builder turns chunk data into visible-face geometry. Meshes handed out by
// Build may be returned with Recycle so their buffers are reused.
type Builder struct {
	catalog      Catalog
	initialFaces int
	pool         sync.Pool
}

// NewBuilder returns a builder whose fresh meshes reserve room for
// initialFaces opaque faces.
func NewBuilder(catalog Catalog, initialFaces int) *Builder {
	if initialFaces < 0 {
		initialFaces = 0
	}
	if initialFaces > MaxFaces {
		initialFaces = MaxFaces
	}
	b := &Builder{catalog: catalog, initialFaces: initialFaces}
	b.pool.New = func() any {
		m := &Mesh{}
		m.Opaque.grow(b.initialFaces)
		m.Transparent.grow(b.initialFaces / 8)
		return m
	}
	return b
}

// Build meshes chunk into a pooled Mesh.
func (b *Builder) Build(chunk *world.Chunk, lookup Lookup) *Mesh {
	m := b.pool.Get().(*Mesh)
	b.BuildInto(m, chunk, lookup)
	return m
}

// Recycle hands a mesh back for reuse. The caller must not touch it afterwards.
func (b *Builder) Recycle(m *Mesh) {
	if m == nil {
		return
	}
	m.Reset(world.ChunkCoord{})
	b.pool.Put(m)
}

// BuildInto replaces the contents of dst with the geometry of chunk, reusing
// the capacity dst already holds.
func (b *Builder) BuildInto(dst *Mesh, chunk *world.Chunk, lookup Lookup) {
	dst.Reset(chunk.Key)
	origin := chunk.Key.Origin()

	for z := 0; z < world.ChunkSize; z++ {
		for y := 0; y < world.ChunkHeight; y++ {
			for x := 0; x < world.ChunkSize; x++ {
				id := chunk.LocalBlock(x, y, z)
				if id == world.Air || !b.catalog.IsSolid(id) {
					continue
				}
				target := &dst.Opaque
				if b.catalog.IsTransparent(id) {
					target = &dst.Transparent
				}
				center := mgl32.Vec3{float32(origin.X + x), float32(y), float32(origin.Z + z)}
				for _, face := range world.Faces {
					if !b.visible(chunk, origin, x, y, z, face, lookup) {
						continue
					}
					target.appendFace(center, face, int32(b.catalog.TextureIndex(id, face)))
				}
			}
		}
	}
}

// visible applies the face rule: a face shows unless its neighbour is solid
// and opaque.
func (b *Builder) visible(chunk *world.Chunk, origin world.BlockCoord, x, y, z int, face world.Face, lookup Lookup) bool {
	dx, dy, dz := face.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz

	var neighbor world.BlockID
	switch {
	case world.InBounds(nx, ny, nz):
		neighbor = chunk.LocalBlock(nx, ny, nz)
	case !world.InHeight(ny):
		neighbor = world.Air
	case lookup != nil:
		neighbor = lookup(origin.Add(nx, ny, nz))
	default:
		neighbor = world.Air
	}
	if neighbor == world.Air {
		return true
	}
	// Neighbour transparency only un-hides faces; a transparent voxel's face
	// against an opaque solid neighbour stays culled.
	return !b.catalog.IsSolid(neighbor) || b.catalog.IsTransparent(neighbor)
}

// Build meshes chunk with a throwaway builder.
func Build(chunk *world.Chunk, catalog Catalog, lookup Lookup) *Mesh {
	m := &Mesh{}
	NewBuilder(catalog, 0).BuildInto(m, chunk, lookup)
	return m
}
