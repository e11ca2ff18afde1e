package terrain

import "voxelengine/internal/world"

// StructureKind names a generation-time structure.
type StructureKind string

const StructureTree StructureKind = "tree"

// structureMargin keeps structures away from chunk borders so they never need
// a neighbouring chunk's data.
const structureMargin = 1

// Structure is a structure planned inside its origin chunk.
type Structure struct {
	Kind   StructureKind
	LocalX int
	LocalZ int
}

// PlanStructures lists the structures Generate places in the chunk at pos. The
// result depends only on seed and pos.
func (g *Generator) PlanStructures(seed int64, pos world.ChunkCoord) []Structure {
	field := g.field(seed)
	origin := pos.Origin()
	var heights [world.ChunkSize][world.ChunkSize]int
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			heights[x][z] = g.heightAt(field, origin.X+x, origin.Z+z)
		}
	}
	return g.planStructures(seed, pos, &heights)
}

func (g *Generator) planStructures(seed int64, pos world.ChunkCoord, heights *[world.ChunkSize][world.ChunkSize]int) []Structure {
	if g.cfg.TreeProbability <= 0 {
		return nil
	}
	origin := pos.Origin()
	var out []Structure
	for z := structureMargin; z < world.ChunkSize-structureMargin; z++ {
		for x := structureMargin; x < world.ChunkSize-structureMargin; x++ {
			rng := newDeterministicRNG(origin.X+x, origin.Z+z, seed)
			rng.next()
			if rng.nextFloat() >= g.cfg.TreeProbability {
				continue
			}
			if !g.treeFits(heights[x][z]) {
				continue
			}
			out = append(out, Structure{Kind: StructureTree, LocalX: x, LocalZ: z})
		}
	}
	return out
}

// treeFits reports whether the column has a grass surface and a trunk plus
// its leaf cap fits below the chunk top. A height-1 column is bare bedrock.
func (g *Generator) treeFits(height int) bool {
	return height >= 2 && height+g.cfg.TrunkHeight < world.ChunkHeight
}

// placeTree writes a trunk starting at surface, a 3x3 canopy around the top
// two trunk layers and one leaf block on top. Leaves only fill air, so they
// never replace logs or terrain.
func (g *Generator) placeTree(chunk *world.Chunk, x, surface, z int) {
	top := surface + g.cfg.TrunkHeight - 1
	for y := surface; y <= top; y++ {
		chunk.SetLocalBlock(x, y, z, g.log)
	}
	for y := top - 1; y <= top; y++ {
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				g.setLeaf(chunk, x+dx, y, z+dz)
			}
		}
	}
	g.setLeaf(chunk, x, top+1, z)
}

func (g *Generator) setLeaf(chunk *world.Chunk, x, y, z int) {
	if !world.InBounds(x, y, z) {
		return
	}
	if chunk.LocalBlock(x, y, z) != world.Air {
		return
	}
	chunk.SetLocalBlock(x, y, z, g.leaves)
}
