package terrain

import (
	"testing"

	"voxelengine/internal/blocks"
	"voxelengine/internal/config"
	"voxelengine/internal/world"
)

func TestTreesStayInsideChunkMargin(t *testing.T) {
	g, catalog := newTestGenerator(t, func(cfg *config.TerrainConfig) { cfg.TreeProbability = 1 })
	logID := catalog.MustResolve(blocks.NameLog)
	leaves := catalog.MustResolve(blocks.NameLeaves)

	pos := world.ChunkCoord{X: 4, Z: -3}
	plan := g.PlanStructures(42, pos)
	inner := world.ChunkSize - 2*structureMargin
	if len(plan) != inner*inner {
		t.Fatalf("expected %d planned trees, got %d", inner*inner, len(plan))
	}
	for _, s := range plan {
		if s.LocalX < structureMargin || s.LocalX >= world.ChunkSize-structureMargin ||
			s.LocalZ < structureMargin || s.LocalZ >= world.ChunkSize-structureMargin {
			t.Fatalf("structure %+v planned inside the border margin", s)
		}
	}

	chunk := g.Generate(42, pos)
	origin := pos.Origin()
	trunk := config.Default().Terrain.TrunkHeight
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			border := x == 0 || z == 0 || x == world.ChunkSize-1 || z == world.ChunkSize-1
			h := g.HeightAt(42, origin.X+x, origin.Z+z)
			for y := h; y < h+trunk; y++ {
				got := chunk.LocalBlock(x, y, z)
				if border && got == logID {
					t.Fatalf("log placed on border column (%d,%d)", x, z)
				}
				if !border && got != logID {
					t.Fatalf("column (%d,%d) y=%d: expected trunk, got %d", x, z, y, got)
				}
			}
			if !border && chunk.LocalBlock(x, h+trunk, z) != leaves {
				t.Fatalf("column (%d,%d): expected a leaf cap", x, z)
			}
		}
	}
}

func TestSparseTreesUseCanopy(t *testing.T) {
	g, catalog := newTestGenerator(t, func(cfg *config.TerrainConfig) { cfg.TreeProbability = 0.05 })
	logID := catalog.MustResolve(blocks.NameLog)
	leaves := catalog.MustResolve(blocks.NameLeaves)
	trunk := config.Default().Terrain.TrunkHeight

	found := 0
	for cx := 0; cx < 6 && found == 0; cx++ {
		pos := world.ChunkCoord{X: cx, Z: cx}
		chunk := g.Generate(9, pos)
		for _, s := range g.PlanStructures(9, pos) {
			h := g.HeightAt(9, pos.Origin().X+s.LocalX, pos.Origin().Z+s.LocalZ)
			top := h + trunk - 1
			if chunk.LocalBlock(s.LocalX, top, s.LocalZ) != logID {
				t.Fatalf("tree %+v is missing its trunk top", s)
			}
			for dz := -1; dz <= 1; dz++ {
				for dx := -1; dx <= 1; dx++ {
					id := chunk.LocalBlock(s.LocalX+dx, top, s.LocalZ+dz)
					if id != leaves && id != logID {
						t.Fatalf("tree %+v: canopy at (%d,%d) holds %d", s, dx, dz, id)
					}
				}
			}
			found++
		}
	}
	if found == 0 {
		t.Fatalf("expected at least one tree in the sampled chunks")
	}
}

func TestTreesNeedGrassSurface(t *testing.T) {
	bare, catalog := newTestGenerator(t, func(cfg *config.TerrainConfig) {
		cfg.TreeProbability = 1
		cfg.SeaLevel = 1
		cfg.Amplitude = 0
	})
	pos := world.ChunkCoord{X: -2, Z: 7}
	if plan := bare.PlanStructures(3, pos); len(plan) != 0 {
		t.Fatalf("expected no trees on bedrock columns, got %d", len(plan))
	}
	chunk := bare.Generate(3, pos)
	if n := chunk.Count(); n != world.ChunkSize*world.ChunkSize {
		t.Fatalf("expected only the bedrock floor, got %d blocks", n)
	}
	if id := chunk.LocalBlock(5, 0, 5); id != catalog.MustResolve(blocks.NameBedrock) {
		t.Fatalf("expected bedrock at y=0, got %d", id)
	}

	grassy, _ := newTestGenerator(t, func(cfg *config.TerrainConfig) {
		cfg.TreeProbability = 1
		cfg.SeaLevel = 2
		cfg.Amplitude = 0
	})
	inner := world.ChunkSize - 2*structureMargin
	if plan := grassy.PlanStructures(3, pos); len(plan) != inner*inner {
		t.Fatalf("expected %d trees on grass columns, got %d", inner*inner, len(plan))
	}
}
