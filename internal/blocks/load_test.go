package blocks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
)

const yamlCatalog = `
blocks:
  - name: air
  - name: stone
    solid: true
    color: "#7d7d7d"
    textures: {top: 2, bottom: 2, side: 2}
  - name: water
    solid: true
    transparent: true
    textures: {top: 12, bottom: 12, side: 12}
`

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	if err := os.WriteFile(path, []byte(yamlCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := []Def{
		{Name: "air"},
		{Name: "stone", Solid: true, Color: "#7d7d7d", Textures: Textures{Top: 2, Bottom: 2, Side: 2}},
		{Name: "water", Solid: true, Transparent: true, Textures: Textures{Top: 12, Bottom: 12, Side: 12}},
	}
	if diff := pretty.Diff(c.Defs(), want); len(diff) > 0 {
		t.Fatalf("unexpected defs: %v", diff)
	}
}

func TestParseJSONMatchesDefault(t *testing.T) {
	raw := []byte(`{"blocks":[{"name":"air"},{"name":"glass","solid":true,"transparent":true}]}`)
	c, err := Parse(raw, "json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.IsTransparent(c.MustResolve("glass")) {
		t.Fatalf("expected glass to be transparent")
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format string
	}{
		{name: "missing blocks", raw: `{}`, format: "json"},
		{name: "unknown field", raw: `{"blocks":[{"name":"air","glow":true}]}`, format: "json"},
		{name: "negative texture", raw: "blocks:\n  - name: air\n    textures: {top: -1}\n", format: "yaml"},
		{name: "bad colour", raw: `{"blocks":[{"name":"air","color":"red"}]}`, format: "json"},
		{name: "unsupported format", raw: `blocks = []`, format: "toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw), tt.format); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
