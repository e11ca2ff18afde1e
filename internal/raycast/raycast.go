// Package raycast walks a ray through the unit voxel grid one cell at a time.
package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelengine/internal/world"
)

// MaxDistance caps the length of a single cast.
const MaxDistance = 4096.0

// Hit is the first solid voxel along a ray.
type Hit struct {
	Voxel world.BlockCoord
	// Face is the side of Voxel the ray entered through, FaceNone when the ray
	// started inside Voxel.
	Face world.Face
	// Distance travelled along the normalised direction to the entry point.
	Distance float64
}

// Adjacent returns the voxel in front of the struck face, where a block placed
// against the hit would go. A hit without a face returns the voxel itself.
func (h Hit) Adjacent() world.BlockCoord {
	return h.Voxel.Side(h.Face)
}

// Cast traverses the voxels pierced by the ray from origin along direction and
// returns the first one isSolid accepts within maxDistance. Voxels are unit
// cubes centred on integer coordinates. A zero direction only tests the origin
// voxel; a negative maxDistance is treated as zero.
func Cast(origin, direction mgl64.Vec3, maxDistance float64, isSolid func(world.BlockCoord) bool) (Hit, bool) {
	if isSolid == nil || !finite(origin) {
		return Hit{}, false
	}
	if math.IsNaN(maxDistance) || maxDistance < 0 {
		maxDistance = 0
	}
	if maxDistance > MaxDistance {
		maxDistance = MaxDistance
	}

	voxel := world.BlockAt(origin)
	if isSolid(voxel) {
		return Hit{Voxel: voxel, Face: world.FaceNone}, true
	}

	length := direction.Len()
	if length == 0 || !finite(direction) || math.IsInf(length, 0) {
		return Hit{}, false
	}
	dir := direction.Mul(1 / length)

	cell := [3]int{voxel.X, voxel.Y, voxel.Z}
	var step [3]int
	var tMax, tDelta [3]float64
	for axis := 0; axis < 3; axis++ {
		d := dir[axis]
		switch {
		case d > 0:
			step[axis] = 1
			tMax[axis] = (float64(cell[axis]) + 0.5 - origin[axis]) / d
			tDelta[axis] = 1 / d
		case d < 0:
			step[axis] = -1
			tMax[axis] = (float64(cell[axis]) - 0.5 - origin[axis]) / d
			tDelta[axis] = -1 / d
		default:
			tMax[axis] = math.Inf(1)
			tDelta[axis] = math.Inf(1)
		}
	}

	for {
		// Ties go to X, then Y, then Z.
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t := tMax[axis]
		if t > maxDistance {
			return Hit{}, false
		}
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		next := world.BlockCoord{X: cell[0], Y: cell[1], Z: cell[2]}
		if isSolid(next) {
			return Hit{
				Voxel:    next,
				Face:     world.FaceFor(axis, -step[axis]),
				Distance: t,
			}, true
		}
	}
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
