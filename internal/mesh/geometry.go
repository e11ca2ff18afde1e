package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelengine/internal/world"
)

// Vertex is one corner of an emitted face.
type Vertex struct {
	Pos        mgl32.Vec3
	UV         mgl32.Vec2
	Texture    int32
	Brightness float32
}

// Geometry is an indexed triangle list. Every face contributes 4 vertices and
// 6 indices.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Reset truncates the buffers and keeps their capacity.
func (g *Geometry) Reset() {
	g.Vertices = g.Vertices[:0]
	g.Indices = g.Indices[:0]
}

func (g *Geometry) Empty() bool {
	return len(g.Indices) == 0
}

// FaceCount returns the number of quads stored.
func (g *Geometry) FaceCount() int {
	return len(g.Vertices) / 4
}

func (g *Geometry) grow(faces int) {
	if cap(g.Vertices)-len(g.Vertices) < faces*4 {
		vertices := make([]Vertex, len(g.Vertices), len(g.Vertices)+faces*4)
		copy(vertices, g.Vertices)
		g.Vertices = vertices
	}
	if cap(g.Indices)-len(g.Indices) < faces*6 {
		indices := make([]uint32, len(g.Indices), len(g.Indices)+faces*6)
		copy(indices, g.Indices)
		g.Indices = indices
	}
}

// Mesh is the renderable output for one chunk: opaque faces are drawn first,
// transparent faces are sorted by the renderer.
type Mesh struct {
	Pos         world.ChunkCoord
	Opaque      Geometry
	Transparent Geometry
}

func (m *Mesh) Reset(pos world.ChunkCoord) {
	m.Pos = pos
	m.Opaque.Reset()
	m.Transparent.Reset()
}

func (m *Mesh) Empty() bool {
	return m.Opaque.Empty() && m.Transparent.Empty()
}

func (m *Mesh) FaceCount() int {
	return m.Opaque.FaceCount() + m.Transparent.FaceCount()
}
