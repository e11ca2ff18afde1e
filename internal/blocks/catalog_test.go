package blocks

import (
	"errors"
	"image/color"
	"testing"

	"voxelengine/internal/world"
)

func TestDefaultCatalogFlags(t *testing.T) {
	c := Default()
	tests := []struct {
		name        string
		solid       bool
		transparent bool
	}{
		{name: NameAir},
		{name: NameStone, solid: true},
		{name: NameGrass, solid: true},
		{name: NameLeaves, solid: true, transparent: true},
		{name: NameGlass, solid: true, transparent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := c.MustResolve(tt.name)
			if got := c.IsSolid(id); got != tt.solid {
				t.Fatalf("IsSolid(%s) = %v, want %v", tt.name, got, tt.solid)
			}
			if got := c.IsTransparent(id); got != tt.transparent {
				t.Fatalf("IsTransparent(%s) = %v, want %v", tt.name, got, tt.transparent)
			}
		})
	}
	if c.MustResolve(NameAir) != world.Air {
		t.Fatalf("air must be palette id 0")
	}
}

func TestTextureIndexPerFace(t *testing.T) {
	c := Default()
	grass := c.MustResolve(NameGrass)
	if got := c.TextureIndex(grass, world.FaceTop); got != 4 {
		t.Fatalf("expected grass top texture 4, got %d", got)
	}
	if got := c.TextureIndex(grass, world.FaceBottom); got != 3 {
		t.Fatalf("expected grass bottom texture 3, got %d", got)
	}
	for _, face := range []world.Face{world.FaceEast, world.FaceWest, world.FaceNorth, world.FaceSouth} {
		if got := c.TextureIndex(grass, face); got != 5 {
			t.Fatalf("expected grass %v texture 5, got %d", face, got)
		}
	}
}

func TestUnknownBlockIsFatal(t *testing.T) {
	c := Default()
	if _, err := c.ResolveID("obsidian"); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}
	if _, err := c.Lookup(world.BlockID(c.Len())); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnknownBlock) {
			t.Fatalf("expected panic with ErrUnknownBlock, got %v", r)
		}
	}()
	c.IsSolid(world.BlockID(500))
}

func TestNewRejectsInvalidPalettes(t *testing.T) {
	tests := []struct {
		name string
		defs []Def
	}{
		{name: "empty"},
		{name: "air not first", defs: []Def{{Name: NameStone, Solid: true}, {Name: NameAir}}},
		{name: "solid air", defs: []Def{{Name: NameAir, Solid: true}}},
		{name: "duplicate", defs: []Def{{Name: NameAir}, {Name: "x"}, {Name: "x"}}},
		{name: "bad color", defs: []Def{{Name: NameAir}, {Name: "x", Color: "#12"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.defs); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestColorAndDigest(t *testing.T) {
	c := Default()
	if got := c.Color(c.MustResolve(NameGrass)); got != (color.NRGBA{R: 0x5d, G: 0x9b, B: 0x3d, A: 255}) {
		t.Fatalf("unexpected grass colour %v", got)
	}
	if Default().Digest() != c.Digest() {
		t.Fatalf("digest must be stable")
	}
	defs := DefaultDefs()
	defs[2].Solid = false
	other, err := New(defs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if other.Digest() == c.Digest() {
		t.Fatalf("digest must change with definitions")
	}
}
