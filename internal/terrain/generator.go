package terrain

import (
	"fmt"
	"math"

	"voxelengine/internal/blocks"
	"voxelengine/internal/config"
	"voxelengine/internal/world"
)

// Generator produces layered heightmap terrain with trees. Generate is a pure
// function of its arguments; a Generator may be shared between goroutines.
type Generator struct {
	cfg config.TerrainConfig

	bedrock world.BlockID
	stone   world.BlockID
	dirt    world.BlockID
	grass   world.BlockID
	log     world.BlockID
	leaves  world.BlockID
}

// New resolves the blocks the generator writes from catalog.
func New(cfg config.TerrainConfig, catalog *blocks.Catalog) (*Generator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("terrain: catalog is nil")
	}
	if cfg.Octaves < 1 {
		return nil, fmt.Errorf("terrain: octaves must be at least 1")
	}
	g := &Generator{cfg: cfg}
	targets := []struct {
		name string
		id   *world.BlockID
	}{
		{blocks.NameBedrock, &g.bedrock},
		{blocks.NameStone, &g.stone},
		{blocks.NameDirt, &g.dirt},
		{blocks.NameGrass, &g.grass},
		{blocks.NameLog, &g.log},
		{blocks.NameLeaves, &g.leaves},
	}
	for _, target := range targets {
		id, err := catalog.ResolveID(target.name)
		if err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
		*target.id = id
	}
	return g, nil
}

func (g *Generator) field(seed int64) heightField {
	if g.cfg.Noise == config.NoiseSimplex {
		return newSimplexField(seed)
	}
	return valueField{seed: seed}
}

// HeightAt returns the y of the first air block above the surface of the
// column at world (x, z).
func (g *Generator) HeightAt(seed int64, x, z int) int {
	return g.heightAt(g.field(seed), x, z)
}

func (g *Generator) heightAt(field heightField, x, z int) int {
	n := fractalNoise(field, float64(x), float64(z), g.cfg.Frequency, g.cfg.Octaves, g.cfg.Persistence, g.cfg.Lacunarity)
	h := int(math.Floor(float64(g.cfg.SeaLevel) + (n+1)*g.cfg.Amplitude))
	return clampInt(h, 1, world.ChunkHeight-1)
}

// Generate builds the chunk at pos for seed. Noise state is derived from seed
// inside the call, so call order never affects the output.
func (g *Generator) Generate(seed int64, pos world.ChunkCoord) *world.Chunk {
	chunk := world.NewChunk(pos)
	field := g.field(seed)
	origin := pos.Origin()

	var heights [world.ChunkSize][world.ChunkSize]int
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			h := g.heightAt(field, origin.X+x, origin.Z+z)
			heights[x][z] = h
			g.fillColumn(chunk, x, z, h)
		}
	}

	for _, s := range g.planStructures(seed, pos, &heights) {
		switch s.Kind {
		case StructureTree:
			g.placeTree(chunk, s.LocalX, heights[s.LocalX][s.LocalZ], s.LocalZ)
		}
	}
	return chunk
}

// fillColumn writes bedrock at y=0, stone up to height-3, two layers of dirt
// and a grass cap at height-1.
func (g *Generator) fillColumn(chunk *world.Chunk, x, z, height int) {
	for y := 0; y < height; y++ {
		var id world.BlockID
		switch {
		case y == 0:
			id = g.bedrock
		case y < height-3:
			id = g.stone
		case y < height-1:
			id = g.dirt
		default:
			id = g.grass
		}
		chunk.SetLocalBlock(x, y, z, id)
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
