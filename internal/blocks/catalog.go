package blocks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"voxelengine/internal/world"
)

// ErrUnknownBlock marks a lookup for an id or name the catalog does not hold.
// Stored chunk data must only ever reference catalogued ids, so predicate
// lookups treat a miss as a content bug and panic with this error.
var ErrUnknownBlock = errors.New("unknown block")

// Built-in block names.
const (
	NameAir     = "air"
	NameBedrock = "bedrock"
	NameStone   = "stone"
	NameDirt    = "dirt"
	NameGrass   = "grass"
	NameLog     = "log"
	NameLeaves  = "leaves"
	NameGlass   = "glass"
	NameSand    = "sand"
	NamePlanks  = "planks"
)

// Textures selects atlas indices per face group.
type Textures struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Side   int `json:"side"`
}

// Def describes one block type.
type Def struct {
	Name        string   `json:"name"`
	Solid       bool     `json:"solid"`
	Transparent bool     `json:"transparent"`
	Color       string   `json:"color,omitempty"`
	Textures    Textures `json:"textures"`
}

// Catalog maps palette ids onto block definitions. The id of a block is its
// index in the palette; id 0 is always air.
type Catalog struct {
	defs   []Def
	index  map[string]world.BlockID
	colors []color.NRGBA
	digest string
}

// New validates defs and builds a catalog.
func New(defs []Def) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog has no blocks")
	}
	if len(defs) > 1<<16 {
		return nil, fmt.Errorf("catalog has %d blocks, limit is %d", len(defs), 1<<16)
	}
	air := defs[0]
	if air.Name != NameAir {
		return nil, fmt.Errorf("block 0 must be %q, got %q", NameAir, air.Name)
	}
	if air.Solid || air.Transparent {
		return nil, fmt.Errorf("block %q must be neither solid nor transparent", NameAir)
	}

	c := &Catalog{
		defs:   make([]Def, len(defs)),
		index:  make(map[string]world.BlockID, len(defs)),
		colors: make([]color.NRGBA, len(defs)),
	}
	copy(c.defs, defs)
	for i, def := range c.defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("block %d: empty name", i)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("block %d: duplicate name %q", i, name)
		}
		if def.Textures.Top < 0 || def.Textures.Bottom < 0 || def.Textures.Side < 0 {
			return nil, fmt.Errorf("block %q: negative texture index", name)
		}
		rgba, err := parseColor(def.Color)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", name, err)
		}
		c.defs[i].Name = name
		c.index[name] = world.BlockID(i)
		c.colors[i] = rgba
	}

	raw, err := json.Marshal(c.defs)
	if err != nil {
		return nil, fmt.Errorf("digest catalog: %w", err)
	}
	sum := sha256.Sum256(raw)
	c.digest = hex.EncodeToString(sum[:])
	return c, nil
}

// Len returns the palette size.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Digest identifies the palette and its definitions. Two catalogs with the same
// digest interpret stored block ids identically.
func (c *Catalog) Digest() string {
	return c.digest
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id world.BlockID) (Def, error) {
	if int(id) >= len(c.defs) {
		return Def{}, fmt.Errorf("%w: id %d", ErrUnknownBlock, id)
	}
	return c.defs[id], nil
}

func (c *Catalog) mustLookup(id world.BlockID) Def {
	def, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}
	return def
}

func (c *Catalog) IsSolid(id world.BlockID) bool {
	return c.mustLookup(id).Solid
}

func (c *Catalog) IsTransparent(id world.BlockID) bool {
	return c.mustLookup(id).Transparent
}

// TextureIndex returns the atlas index drawn on the given face of id.
func (c *Catalog) TextureIndex(id world.BlockID, face world.Face) int {
	tex := c.mustLookup(id).Textures
	switch face {
	case world.FaceTop:
		return tex.Top
	case world.FaceBottom:
		return tex.Bottom
	default:
		return tex.Side
	}
}

// ResolveID maps an external block name onto its palette id.
func (c *Catalog) ResolveID(name string) (world.BlockID, error) {
	id, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return world.Air, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	return id, nil
}

// MustResolve is ResolveID for names known at compile time.
func (c *Catalog) MustResolve(name string) world.BlockID {
	id, err := c.ResolveID(name)
	if err != nil {
		panic(err)
	}
	return id
}

// Name returns the name of id, or an empty string for an unknown id.
func (c *Catalog) Name(id world.BlockID) string {
	if int(id) >= len(c.defs) {
		return ""
	}
	return c.defs[id].Name
}

// Color returns the preview colour of id. Unknown ids render magenta.
func (c *Catalog) Color(id world.BlockID) color.NRGBA {
	if int(id) >= len(c.colors) {
		return color.NRGBA{R: 255, B: 255, A: 255}
	}
	return c.colors[id]
}

// Defs returns a copy of the palette.
func (c *Catalog) Defs() []Def {
	out := make([]Def, len(c.defs))
	copy(out, c.defs)
	return out
}

func parseColor(value string) (color.NRGBA, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if value == "" {
		return color.NRGBA{}, nil
	}
	if len(value) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q must be #rrggbb", value)
	}
	v, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", value, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Default returns the built-in palette used by the terrain generator.
func Default() *Catalog {
	c, err := New(DefaultDefs())
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultDefs lists the built-in block definitions in palette order.
func DefaultDefs() []Def {
	return []Def{
		{Name: NameAir},
		{Name: NameBedrock, Solid: true, Color: "#3a3a3a", Textures: Textures{Top: 1, Bottom: 1, Side: 1}},
		{Name: NameStone, Solid: true, Color: "#7d7d7d", Textures: Textures{Top: 2, Bottom: 2, Side: 2}},
		{Name: NameDirt, Solid: true, Color: "#8b5a2b", Textures: Textures{Top: 3, Bottom: 3, Side: 3}},
		{Name: NameGrass, Solid: true, Color: "#5d9b3d", Textures: Textures{Top: 4, Bottom: 3, Side: 5}},
		{Name: NameLog, Solid: true, Color: "#7e5134", Textures: Textures{Top: 6, Bottom: 6, Side: 7}},
		{Name: NameLeaves, Solid: true, Transparent: true, Color: "#2f8f3f", Textures: Textures{Top: 8, Bottom: 8, Side: 8}},
		{Name: NameGlass, Solid: true, Transparent: true, Color: "#c8e6f0", Textures: Textures{Top: 9, Bottom: 9, Side: 9}},
		{Name: NameSand, Solid: true, Color: "#dbcf8e", Textures: Textures{Top: 10, Bottom: 10, Side: 10}},
		{Name: NamePlanks, Solid: true, Color: "#b08850", Textures: Textures{Top: 11, Bottom: 11, Side: 11}},
	}
}
