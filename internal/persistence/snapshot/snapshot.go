package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"voxelengine/internal/world"
)

// Version is the current snapshot layout.
const Version = 1

// ErrVersion is returned for snapshots written by an unknown layout.
var ErrVersion = errors.New("unsupported snapshot version")

// Header is written as a JSON line ahead of the gob payload so tools can
// inspect a snapshot without decoding it.
type Header struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Catalog string `json:"catalog,omitempty"`
	Edits   int    `json:"edits"`
	Chunks  int    `json:"chunks"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Edits []EditV1 `json:"edits"`
	// Chunks optionally captures resident chunk data for offline inspection.
	Chunks []ChunkV1 `json:"chunks,omitempty"`
}

type EditV1 struct {
	X  int    `json:"x"`
	Y  int    `json:"y"`
	Z  int    `json:"z"`
	ID uint16 `json:"id"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Blocks []uint16 `json:"blocks"`
}

// FromOverlay builds a snapshot of every recorded edit, in coordinate order.
func FromOverlay(seed int64, catalogDigest string, overlay world.OverlaySnapshot) SnapshotV1 {
	edits := overlay.Edits()
	snap := SnapshotV1{
		Header: Header{Version: Version, Seed: seed, Catalog: catalogDigest, Edits: len(edits)},
		Edits:  make([]EditV1, 0, len(edits)),
	}
	for _, edit := range edits {
		snap.Edits = append(snap.Edits, EditV1{X: edit.Pos.X, Y: edit.Pos.Y, Z: edit.Pos.Z, ID: uint16(edit.ID)})
	}
	return snap
}

// AddChunk captures a chunk's voxels in linear index order.
func (s *SnapshotV1) AddChunk(c *world.Chunk) {
	blocks := make([]uint16, world.ChunkVolume)
	for z := 0; z < world.ChunkSize; z++ {
		for y := 0; y < world.ChunkHeight; y++ {
			for x := 0; x < world.ChunkSize; x++ {
				blocks[world.Index(x, y, z)] = uint16(c.LocalBlock(x, y, z))
			}
		}
	}
	s.Chunks = append(s.Chunks, ChunkV1{CX: c.Key.X, CZ: c.Key.Z, Blocks: blocks})
	s.Header.Chunks = len(s.Chunks)
}

// Overlay rebuilds the overlay snapshot keyed by chunk.
func (s SnapshotV1) Overlay() world.OverlaySnapshot {
	out := make(world.OverlaySnapshot)
	for _, e := range s.Edits {
		pos := world.BlockCoord{X: e.X, Y: e.Y, Z: e.Z}
		key := world.ChunkOf(pos)
		edits, ok := out[key]
		if !ok {
			edits = make(map[world.BlockCoord]world.BlockID)
			out[key] = edits
		}
		edits[pos] = world.BlockID(e.ID)
	}
	return out
}

// Chunk restores captured chunk data.
func (c ChunkV1) Chunk() (*world.Chunk, error) {
	if len(c.Blocks) != world.ChunkVolume {
		return nil, fmt.Errorf("chunk %d,%d: %d blocks, want %d", c.CX, c.CZ, len(c.Blocks), world.ChunkVolume)
	}
	chunk := world.NewChunk(world.ChunkCoord{X: c.CX, Z: c.CZ})
	for z := 0; z < world.ChunkSize; z++ {
		for y := 0; y < world.ChunkHeight; y++ {
			for x := 0; x < world.ChunkSize; x++ {
				chunk.SetLocalBlock(x, y, z, world.BlockID(c.Blocks[world.Index(x, y, z)]))
			}
		}
	}
	return chunk, nil
}

// WriteSnapshot writes snap to path as zstd(header line + gob). The file is
// replaced atomically.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	snap.Header.Edits = len(snap.Edits)
	snap.Header.Chunks = len(snap.Chunks)

	tmp := path + ".tmp"
	if err := writeFile(tmp, snap); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func writeFile(path string, snap SnapshotV1) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish zstd stream: %w", err)
	}
	return f.Sync()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if header.Version != Version {
		return snap, fmt.Errorf("%w: %d", ErrVersion, header.Version)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var header Header
	f, err := os.Open(path)
	if err != nil {
		return header, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return header, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return header, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, fmt.Errorf("decode header: %w", err)
	}
	return header, nil
}
