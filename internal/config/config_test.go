package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"
	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "wrong chunk size",
			mutate:  func(cfg *Config) { cfg.World.ChunkSize = 32 },
			wantErr: "world.chunkSize must be 16",
		},
		{
			name:    "wrong chunk height",
			mutate:  func(cfg *Config) { cfg.World.ChunkHeight = 128 },
			wantErr: "world.chunkHeight must be 256",
		},
		{
			name:    "unknown noise",
			mutate:  func(cfg *Config) { cfg.Terrain.Noise = "perlin" },
			wantErr: `terrain.noise must be "value" or "simplex"`,
		},
		{
			name:    "zero octaves",
			mutate:  func(cfg *Config) { cfg.Terrain.Octaves = 0 },
			wantErr: "terrain.octaves must be at least 1",
		},
		{
			name:    "persistence out of range",
			mutate:  func(cfg *Config) { cfg.Terrain.Persistence = 1.5 },
			wantErr: "terrain.persistence must be within (0, 1]",
		},
		{
			name:    "tree probability out of range",
			mutate:  func(cfg *Config) { cfg.Terrain.TreeProbability = -0.1 },
			wantErr: "terrain.treeProbability must be within [0, 1]",
		},
		{
			name:    "negative render distance",
			mutate:  func(cfg *Config) { cfg.Streaming.RenderDistance = -1 },
			wantErr: "streaming.renderDistance cannot be negative",
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Streaming.Workers = -1 },
			wantErr: "streaming.workers cannot be negative",
		},
		{
			name:    "disk backend without path",
			mutate:  func(cfg *Config) { cfg.Storage.Backend = BackendDisk },
			wantErr: `storage.path must be set for backend "disk"`,
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.Storage.Backend = "redis" },
			wantErr: `storage.backend "redis" is not supported`,
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: `logging.format must be "text" or "json"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch: %v", pretty.Diff(want, cfg))
	}
}

func TestLoadReadsJSONAndYAML(t *testing.T) {
	cfg := Default()
	cfg.World.Seed = 42
	cfg.Terrain.Noise = NoiseSimplex
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.Path = "edits.db"
	cfg.Storage.AutosaveEvery = Duration(1500 * time.Millisecond)

	encoders := map[string]func(any) ([]byte, error){
		"config.json": json.Marshal,
		"config.yaml": yaml.Marshal,
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			data, err := encode(cfg)
			if err != nil {
				t.Fatalf("marshal config: %v", err)
			}
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, data, 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if !reflect.DeepEqual(got, cfg) {
				t.Fatalf("loaded configuration mismatch: %v", pretty.Diff(cfg, got))
			}
		})
	}
}

func TestLoadReadsTOMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[world]
seed = 7

[terrain]
noise = "simplex"
amplitude = 24.0

[streaming]
renderDistance = 2
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := Default()
	want.World.Seed = 7
	want.Terrain.Noise = NoiseSimplex
	want.Terrain.Amplitude = 24
	want.Streaming.RenderDistance = 2
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("loaded configuration mismatch: %v", pretty.Diff(want, got))
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Terrain.Octaves = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: terrain.octaves must be at least 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte("seed=1"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestDurationDecodesStringsAndNumbers(t *testing.T) {
	var holder struct {
		D Duration `json:"d" yaml:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"250ms"}`), &holder); err != nil || holder.D.Duration() != 250*time.Millisecond {
		t.Fatalf("json string: %v (%v)", holder.D, err)
	}
	if err := json.Unmarshal([]byte(`{"d":1000}`), &holder); err != nil || holder.D.Duration() != time.Microsecond {
		t.Fatalf("json number: %v (%v)", holder.D, err)
	}
	if err := yaml.Unmarshal([]byte("d: 2s\n"), &holder); err != nil || holder.D.Duration() != 2*time.Second {
		t.Fatalf("yaml string: %v (%v)", holder.D, err)
	}
	if err := yaml.Unmarshal([]byte("d: 5\n"), &holder); err != nil || holder.D.Duration() != 5 {
		t.Fatalf("yaml number: %v (%v)", holder.D, err)
	}
	if err := json.Unmarshal([]byte(`{"d":"soon"}`), &holder); err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
}
