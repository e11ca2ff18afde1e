package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Engine constants mirrored here so configuration files can state them
// explicitly and be rejected when they disagree.
const (
	ChunkSize   = 16
	ChunkHeight = 256
)

// Storage backends for the edit overlay.
const (
	BackendMemory   = "memory"
	BackendDisk     = "disk"
	BackendSQLite   = "sqlite"
	BackendSnapshot = "snapshot"
)

// Noise kinds for the height field.
const (
	NoiseValue   = "value"
	NoiseSimplex = "simplex"
)

// Config captures the tunable parameters of the voxel world engine.
type Config struct {
	World     WorldConfig     `json:"world" yaml:"world"`
	Terrain   TerrainConfig   `json:"terrain" yaml:"terrain"`
	Streaming StreamingConfig `json:"streaming" yaml:"streaming"`
	Mesh      MeshConfig      `json:"mesh" yaml:"mesh"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

type WorldConfig struct {
	Seed        int64  `json:"seed" yaml:"seed"`
	ChunkSize   int    `json:"chunkSize" yaml:"chunkSize"`
	ChunkHeight int    `json:"chunkHeight" yaml:"chunkHeight"`
	CatalogPath string `json:"catalogPath" yaml:"catalogPath"` // empty selects the built-in catalog
}

type TerrainConfig struct {
	Noise           string  `json:"noise" yaml:"noise"` // "value" or "simplex"
	SeaLevel        int     `json:"seaLevel" yaml:"seaLevel"`
	Amplitude       float64 `json:"amplitude" yaml:"amplitude"`
	Frequency       float64 `json:"frequency" yaml:"frequency"`
	Octaves         int     `json:"octaves" yaml:"octaves"`
	Persistence     float64 `json:"persistence" yaml:"persistence"`
	Lacunarity      float64 `json:"lacunarity" yaml:"lacunarity"`
	TreeProbability float64 `json:"treeProbability" yaml:"treeProbability"`
	TrunkHeight     int     `json:"trunkHeight" yaml:"trunkHeight"`
}

type StreamingConfig struct {
	RenderDistance int `json:"renderDistance" yaml:"renderDistance"`
	Workers        int `json:"workers" yaml:"workers"` // 0 generates inline on the caller
}

type MeshConfig struct {
	InitialFaceCapacity int `json:"initialFaceCapacity" yaml:"initialFaceCapacity"`
}

type StorageConfig struct {
	Backend       string   `json:"backend" yaml:"backend"`
	Path          string   `json:"path" yaml:"path"`
	AutosaveEvery Duration `json:"autosaveEvery" yaml:"autosaveEvery"` // snapshot backend only
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// Load reads configuration from a JSON, YAML or TOML file chosen by extension.
// An empty path returns defaults. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		return json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		// TOML is routed through the JSON decoder so defaults and Duration
		// parsing behave exactly as for .json files.
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return err
		}
		normalised, err := json.Marshal(tree.ToMap())
		if err != nil {
			return err
		}
		return json.Unmarshal(normalised, cfg)
	}
	return fmt.Errorf("unsupported config format %q", ext)
}

func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:        1337,
			ChunkSize:   ChunkSize,
			ChunkHeight: ChunkHeight,
		},
		Terrain: TerrainConfig{
			Noise:           NoiseValue,
			SeaLevel:        48,
			Amplitude:       16,
			Frequency:       0.01,
			Octaves:         4,
			Persistence:     0.5,
			Lacunarity:      2.0,
			TreeProbability: 0.02,
			TrunkHeight:     5,
		},
		Streaming: StreamingConfig{
			RenderDistance: 4,
			Workers:        4,
		},
		Mesh: MeshConfig{
			InitialFaceCapacity: 4096,
		},
		Storage: StorageConfig{
			Backend:       BackendMemory,
			AutosaveEvery: Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) Validate() error {
	if c.World.ChunkSize != ChunkSize {
		return fmt.Errorf("world.chunkSize must be %d", ChunkSize)
	}
	if c.World.ChunkHeight != ChunkHeight {
		return fmt.Errorf("world.chunkHeight must be %d", ChunkHeight)
	}
	if c.Terrain.Noise != NoiseValue && c.Terrain.Noise != NoiseSimplex {
		return fmt.Errorf("terrain.noise must be %q or %q", NoiseValue, NoiseSimplex)
	}
	if c.Terrain.SeaLevel < 1 || c.Terrain.SeaLevel >= ChunkHeight {
		return fmt.Errorf("terrain.seaLevel must be within [1, %d)", ChunkHeight)
	}
	if c.Terrain.Amplitude < 0 {
		return errors.New("terrain.amplitude cannot be negative")
	}
	if c.Terrain.Frequency <= 0 {
		return errors.New("terrain.frequency must be positive")
	}
	if c.Terrain.Octaves < 1 {
		return errors.New("terrain.octaves must be at least 1")
	}
	if c.Terrain.Persistence <= 0 || c.Terrain.Persistence > 1 {
		return errors.New("terrain.persistence must be within (0, 1]")
	}
	if c.Terrain.Lacunarity < 1 {
		return errors.New("terrain.lacunarity must be at least 1")
	}
	if c.Terrain.TreeProbability < 0 || c.Terrain.TreeProbability > 1 {
		return errors.New("terrain.treeProbability must be within [0, 1]")
	}
	if c.Terrain.TrunkHeight < 2 {
		return errors.New("terrain.trunkHeight must be at least 2")
	}
	if c.Streaming.RenderDistance < 0 {
		return errors.New("streaming.renderDistance cannot be negative")
	}
	if c.Streaming.Workers < 0 {
		return errors.New("streaming.workers cannot be negative")
	}
	if c.Mesh.InitialFaceCapacity < 0 {
		return errors.New("mesh.initialFaceCapacity cannot be negative")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendDisk, BackendSQLite, BackendSnapshot:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for backend %q", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.Storage.AutosaveEvery < 0 {
		return errors.New("storage.autosaveEvery cannot be negative")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return errors.New("logging.format must be \"text\" or \"json\"")
	}
	return nil
}
