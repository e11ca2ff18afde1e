package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelengine/internal/world"
)

// Static per-direction brightness.
const (
	BrightnessTop    float32 = 1.0
	BrightnessSide   float32 = 0.8
	BrightnessBottom float32 = 0.5
)

// faceTemplate holds the corners of a unit cube face centred on the origin,
// counter-clockwise when viewed from outside the cube.
type faceTemplate struct {
	corners    [4]mgl32.Vec3
	brightness float32
}

var faceUVs = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// quadIndices are the two triangles of a face relative to its first vertex.
var quadIndices = [6]uint32{0, 1, 2, 2, 3, 0}

var faceTemplates = [...]faceTemplate{
	world.FaceEast: {
		corners:    [4]mgl32.Vec3{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}},
		brightness: BrightnessSide,
	},
	world.FaceWest: {
		corners:    [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}},
		brightness: BrightnessSide,
	},
	world.FaceTop: {
		corners:    [4]mgl32.Vec3{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},
		brightness: BrightnessTop,
	},
	world.FaceBottom: {
		corners:    [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}},
		brightness: BrightnessBottom,
	},
	world.FaceSouth: {
		corners:    [4]mgl32.Vec3{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}},
		brightness: BrightnessSide,
	},
	world.FaceNorth: {
		corners:    [4]mgl32.Vec3{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}},
		brightness: BrightnessSide,
	},
}

// Brightness returns the ambient constant applied to a face direction.
func Brightness(face world.Face) float32 {
	if face == world.FaceNone || int(face) >= len(faceTemplates) {
		return 0
	}
	return faceTemplates[face].brightness
}

// appendFace emits one quad for face of the voxel centred at pos.
func (g *Geometry) appendFace(pos mgl32.Vec3, face world.Face, texture int32) {
	tpl := &faceTemplates[face]
	base := uint32(len(g.Vertices))
	for i, corner := range tpl.corners {
		g.Vertices = append(g.Vertices, Vertex{
			Pos:        pos.Add(corner),
			UV:         faceUVs[i],
			Texture:    texture,
			Brightness: tpl.brightness,
		})
	}
	for _, idx := range quadIndices {
		g.Indices = append(g.Indices, base+idx)
	}
}
