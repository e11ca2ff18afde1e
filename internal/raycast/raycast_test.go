package raycast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"voxelengine/internal/world"
)

func solidAt(voxels ...world.BlockCoord) func(world.BlockCoord) bool {
	set := make(map[world.BlockCoord]bool, len(voxels))
	for _, v := range voxels {
		set[v] = true
	}
	return func(b world.BlockCoord) bool { return set[b] }
}

func TestCastStartsInsideSolid(t *testing.T) {
	isSolid := solidAt(world.BlockCoord{})
	for _, dir := range []mgl64.Vec3{{1, 0, 0}, {0, -1, 0}, {0.3, 0.2, -0.9}, {0, 0, 0}} {
		hit, ok := Cast(mgl64.Vec3{0.2, -0.1, 0.4}, dir, 10, isSolid)
		if !ok || hit.Voxel != (world.BlockCoord{}) {
			t.Fatalf("direction %v: expected hit at origin voxel, got %+v (ok=%v)", dir, hit, ok)
		}
		if hit.Face != world.FaceNone || hit.Distance != 0 {
			t.Fatalf("direction %v: expected no face at distance 0, got %+v", dir, hit)
		}
	}
}

func TestCastCardinalDirections(t *testing.T) {
	tests := []struct {
		dir  mgl64.Vec3
		want world.BlockCoord
		face world.Face
	}{
		{dir: mgl64.Vec3{1, 0, 0}, want: world.BlockCoord{X: 1}, face: world.FaceWest},
		{dir: mgl64.Vec3{-1, 0, 0}, want: world.BlockCoord{X: -1}, face: world.FaceEast},
		{dir: mgl64.Vec3{0, 1, 0}, want: world.BlockCoord{Y: 1}, face: world.FaceBottom},
		{dir: mgl64.Vec3{0, -1, 0}, want: world.BlockCoord{Y: -1}, face: world.FaceTop},
		{dir: mgl64.Vec3{0, 0, 1}, want: world.BlockCoord{Z: 1}, face: world.FaceNorth},
		{dir: mgl64.Vec3{0, 0, -1}, want: world.BlockCoord{Z: -1}, face: world.FaceSouth},
	}
	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			hit, ok := Cast(mgl64.Vec3{}, tt.dir, 10, solidAt(tt.want))
			if !ok {
				t.Fatalf("expected a hit along %v", tt.dir)
			}
			if hit.Voxel != tt.want || hit.Face != tt.face {
				t.Fatalf("got %+v, want voxel %v face %v", hit, tt.want, tt.face)
			}
			if math.Abs(hit.Distance-0.5) > 1e-9 {
				t.Fatalf("expected entry at distance 0.5, got %v", hit.Distance)
			}
			if hit.Adjacent() != (world.BlockCoord{}) {
				t.Fatalf("expected adjacent voxel to be the origin, got %v", hit.Adjacent())
			}
		})
	}
}

func TestCastMaxDistance(t *testing.T) {
	isSolid := solidAt(world.BlockCoord{X: 5})
	if hit, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 2, isSolid); ok {
		t.Fatalf("expected no hit within distance 2, got %+v", hit)
	}
	hit, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 10, isSolid)
	if !ok || hit.Voxel != (world.BlockCoord{X: 5}) {
		t.Fatalf("expected hit at (5,0,0), got %+v (ok=%v)", hit, ok)
	}
	if math.Abs(hit.Distance-4.5) > 1e-9 {
		t.Fatalf("expected distance 4.5, got %v", hit.Distance)
	}
	// Direction magnitude does not scale the reach.
	if _, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{100, 0, 0}, 2, isSolid); ok {
		t.Fatalf("direction must be normalised before measuring distance")
	}
}

func TestCastDegenerateInput(t *testing.T) {
	calls := 0
	isSolid := func(world.BlockCoord) bool {
		calls++
		return false
	}
	if _, ok := Cast(mgl64.Vec3{3, 4, 5}, mgl64.Vec3{}, 10, isSolid); ok {
		t.Fatalf("zero direction over air must miss")
	}
	if calls != 1 {
		t.Fatalf("zero direction must only test the origin voxel, tested %d", calls)
	}

	if _, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, -5, solidAt(world.BlockCoord{X: 1})); ok {
		t.Fatalf("negative distance must only test the origin voxel")
	}
	if _, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{math.NaN(), 0, 0}, 10, solidAt(world.BlockCoord{X: 1})); ok {
		t.Fatalf("NaN direction must miss")
	}
	if _, ok := Cast(mgl64.Vec3{math.Inf(1), 0, 0}, mgl64.Vec3{1, 0, 0}, 10, solidAt(world.BlockCoord{})); ok {
		t.Fatalf("non-finite origin must miss")
	}
	if _, ok := Cast(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, math.Inf(1), isSolid); ok {
		t.Fatalf("infinite distance over air must terminate without a hit")
	}
}

func TestCastDiagonalVisitsEveryCrossedVoxel(t *testing.T) {
	var visited []world.BlockCoord
	isSolid := func(b world.BlockCoord) bool {
		visited = append(visited, b)
		return false
	}
	Cast(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 0}, 3, isSolid)
	for i := 1; i < len(visited); i++ {
		prev, cur := visited[i-1], visited[i]
		d := abs(cur.X-prev.X) + abs(cur.Y-prev.Y) + abs(cur.Z-prev.Z)
		if d != 1 {
			t.Fatalf("traversal skipped from %v to %v", prev, cur)
		}
	}
	// The exact corner crossing resolves X first.
	if len(visited) < 2 || visited[1] != (world.BlockCoord{X: 1}) {
		t.Fatalf("expected X to win the tie, visited %v", visited)
	}
}

func TestCastPlacementFace(t *testing.T) {
	ground := func(b world.BlockCoord) bool { return b.Y <= 0 }
	hit, ok := Cast(mgl64.Vec3{2.2, 3, -1.4}, mgl64.Vec3{0.1, -1, 0.05}, 8, ground)
	if !ok {
		t.Fatalf("expected to hit the ground")
	}
	if hit.Voxel.Y != 0 || hit.Face != world.FaceTop {
		t.Fatalf("expected to enter the top of a ground voxel, got %+v", hit)
	}
	if adj := hit.Adjacent(); adj.Y != 1 || adj.X != hit.Voxel.X || adj.Z != hit.Voxel.Z {
		t.Fatalf("expected placement above the hit, got %v", adj)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
