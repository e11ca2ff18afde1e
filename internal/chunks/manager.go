package chunks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"voxelengine/internal/logging"
	"voxelengine/internal/mesh"
	"voxelengine/internal/raycast"
	"voxelengine/internal/world"
)

// Generator materialises the terrain of one chunk. It must be a pure function
// of its arguments and safe for concurrent use.
type Generator interface {
	Generate(seed int64, pos world.ChunkCoord) *world.Chunk
}

// Sink receives chunk geometry for rendering. It is called with the manager
// locked and must not call back into it. A mesh passed to Upload is rebuilt in
// place on the next edit, so the sink copies what it keeps.
type Sink interface {
	Upload(pos world.ChunkCoord, m *mesh.Mesh)
	Release(pos world.ChunkCoord)
}

// Options configures a Manager. Catalog and Generator are required.
type Options struct {
	Seed      int64
	Catalog   mesh.Catalog
	Generator Generator
	Mesher    *mesh.Builder
	Store     world.OverlayStore
	Logger    logrus.FieldLogger
	// Workers bounds concurrent chunk generation; 0 generates inline.
	Workers int
	Sink    Sink
}

// Manager owns the loaded chunks and the edit overlay. Every global block read
// and write goes through it. Generation may run on worker goroutines; commits,
// overlay replay and meshing happen under the write lock so readers always see
// the latest completed write.
type Manager struct {
	seed      int64
	catalog   mesh.Catalog
	generator Generator
	mesher    *mesh.Builder
	store     world.OverlayStore
	sink      Sink
	log       logrus.FieldLogger
	workers   int

	// streamMu serialises SetViewerPosition calls.
	streamMu sync.Mutex

	mu             sync.RWMutex
	chunks         map[world.ChunkCoord]*world.Chunk
	meshes         map[world.ChunkCoord]*mesh.Mesh
	overlay        *world.Overlay
	viewer         world.ChunkCoord
	renderDistance int
	closed         bool

	stats counters
}

// ErrClosed is returned by streaming calls after Close.
var ErrClosed = errors.New("chunk manager closed")

// New builds a manager and pre-populates its overlay from opts.Store, so stored
// edits apply the first time their chunk is generated.
func New(opts Options) (*Manager, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("chunk manager: catalog is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("chunk manager: generator is required")
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("chunk manager: workers cannot be negative")
	}
	mesher := opts.Mesher
	if mesher == nil {
		mesher = mesh.NewBuilder(opts.Catalog, 4096)
	}
	overlay, err := world.LoadOverlay(opts.Store)
	if err != nil {
		return nil, fmt.Errorf("load overlay: %w", err)
	}
	log := logging.OrDiscard(opts.Logger)
	if overlay.Len() > 0 {
		log.WithFields(logrus.Fields{
			"edits":  overlay.Len(),
			"chunks": len(overlay.Chunks()),
		}).Info("overlay restored")
	}
	return &Manager{
		seed:      opts.Seed,
		catalog:   opts.Catalog,
		generator: opts.Generator,
		mesher:    mesher,
		store:     opts.Store,
		sink:      opts.Sink,
		log:       log,
		workers:   opts.Workers,
		chunks:    make(map[world.ChunkCoord]*world.Chunk),
		meshes:    make(map[world.ChunkCoord]*mesh.Mesh),
		overlay:   overlay,
	}, nil
}

// Seed returns the world seed chunks are generated with.
func (m *Manager) Seed() int64 {
	return m.seed
}

// GetBlock returns the block at pos, or air when its chunk is not loaded.
func (m *Manager) GetBlock(pos world.BlockCoord) world.BlockID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blockLocked(pos)
}

func (m *Manager) blockLocked(pos world.BlockCoord) world.BlockID {
	if !world.InHeight(pos.Y) {
		return world.Air
	}
	chunk, ok := m.chunks[world.ChunkOf(pos)]
	if !ok {
		return world.Air
	}
	return chunk.Block(pos)
}

// IsBlockSolid reports whether the block at pos is solid. Unloaded positions
// are not.
func (m *Manager) IsBlockSolid(pos world.BlockCoord) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.solidLocked(pos)
}

func (m *Manager) solidLocked(pos world.BlockCoord) bool {
	id := m.blockLocked(pos)
	return id != world.Air && m.catalog.IsSolid(id)
}

// Solidity returns IsBlockSolid as a predicate for collision and raycasts.
func (m *Manager) Solidity() func(world.BlockCoord) bool {
	return m.IsBlockSolid
}

// SetBlock writes id at pos, records it in the overlay and rebuilds the
// affected meshes. It reports false, and does nothing, when the owning chunk
// is not loaded.
func (m *Manager) SetBlock(pos world.BlockCoord, id world.BlockID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(pos, id)
}

// DestroyBlock replaces the block at pos with air.
func (m *Manager) DestroyBlock(pos world.BlockCoord) bool {
	return m.SetBlock(pos, world.Air)
}

func (m *Manager) setLocked(pos world.BlockCoord, id world.BlockID) bool {
	if m.closed || !world.InHeight(pos.Y) {
		return false
	}
	key := world.ChunkOf(pos)
	chunk, ok := m.chunks[key]
	if !ok {
		return false
	}
	changed := chunk.SetBlock(pos, id)
	m.overlay.Set(pos, id)
	m.stats.edits.Inc()
	if m.store != nil {
		if err := m.store.Put(world.Edit{Pos: pos, ID: id}); err != nil {
			m.stats.storeErrors.Inc()
			m.log.WithError(err).WithField("block", pos.String()).Warn("overlay store write failed")
		}
	}
	if !changed {
		return true
	}
	m.remeshLocked(key)
	for _, neighbor := range borderNeighbors(pos) {
		if _, loaded := m.chunks[neighbor]; loaded {
			m.remeshLocked(neighbor)
		}
	}
	return true
}

// borderNeighbors lists the chunks sharing a face with pos across a chunk
// border.
func borderNeighbors(pos world.BlockCoord) []world.ChunkCoord {
	key := world.ChunkOf(pos)
	x, _, z := world.LocalOf(pos)
	var out []world.ChunkCoord
	if x == 0 {
		out = append(out, key.Add(-1, 0))
	}
	if x == world.ChunkSize-1 {
		out = append(out, key.Add(1, 0))
	}
	if z == 0 {
		out = append(out, key.Add(0, -1))
	}
	if z == world.ChunkSize-1 {
		out = append(out, key.Add(0, 1))
	}
	return out
}

// Raycast casts against the loaded world under one read lock.
func (m *Manager) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (raycast.Hit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return raycast.Cast(origin, direction, maxDistance, m.solidLocked)
}

// PlaceBlock puts id against the struck face of hit. Hits without a face and
// occupied targets are refused.
func (m *Manager) PlaceBlock(hit raycast.Hit, id world.BlockID) bool {
	if hit.Face == world.FaceNone {
		return false
	}
	target := hit.Adjacent()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solidLocked(target) {
		return false
	}
	return m.setLocked(target, id)
}

// Loaded reports whether the chunk at pos is resident.
func (m *Manager) Loaded(pos world.ChunkCoord) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[pos]
	return ok
}

// LoadedChunks lists resident chunks sorted by X then Z.
func (m *Manager) LoadedChunks() []world.ChunkCoord {
	m.mu.RLock()
	keys := make([]world.ChunkCoord, 0, len(m.chunks))
	for key := range m.chunks {
		keys = append(keys, key)
	}
	m.mu.RUnlock()
	world.SortChunkCoords(keys)
	return keys
}

// Chunk returns a copy of the resident chunk data at pos.
func (m *Manager) Chunk(pos world.ChunkCoord) (*world.Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunk, ok := m.chunks[pos]
	if !ok {
		return nil, false
	}
	return chunk.Clone(), true
}

// Mesh returns a copy of the current geometry of the chunk at pos.
func (m *Manager) Mesh(pos world.ChunkCoord) (*mesh.Mesh, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.meshes[pos]
	if !ok {
		return nil, false
	}
	return cloneMesh(src), true
}

func cloneMesh(src *mesh.Mesh) *mesh.Mesh {
	dst := &mesh.Mesh{Pos: src.Pos}
	dst.Opaque.Vertices = append([]mesh.Vertex(nil), src.Opaque.Vertices...)
	dst.Opaque.Indices = append([]uint32(nil), src.Opaque.Indices...)
	dst.Transparent.Vertices = append([]mesh.Vertex(nil), src.Transparent.Vertices...)
	dst.Transparent.Indices = append([]uint32(nil), src.Transparent.Indices...)
	return dst
}

// Overlay returns a deep copy of every recorded edit.
func (m *Manager) Overlay() world.OverlaySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlay.Snapshot()
}

// MergeOverlay upserts snap into the overlay. Edits for resident chunks are
// applied immediately; the rest apply when their chunk loads.
func (m *Manager) MergeOverlay(snap world.OverlaySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay.Merge(snap)
	touched := make(map[world.ChunkCoord]bool)
	for _, edit := range snap.Edits() {
		key := world.ChunkOf(edit.Pos)
		chunk, ok := m.chunks[key]
		if !ok {
			continue
		}
		if chunk.SetBlock(edit.Pos, edit.ID) {
			touched[key] = true
			for _, neighbor := range borderNeighbors(edit.Pos) {
				if _, loaded := m.chunks[neighbor]; loaded {
					touched[neighbor] = true
				}
			}
		}
	}
	m.remeshSetLocked(touched)
}

// ResetOverlay drops every edit and regenerates the resident chunks so they
// show pristine terrain. A store that supports Reset is cleared as well.
func (m *Manager) ResetOverlay() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay.Reset()
	touched := make(map[world.ChunkCoord]bool, len(m.chunks))
	for key := range m.chunks {
		m.chunks[key] = m.generator.Generate(m.seed, key)
		m.stats.generated.Inc()
		touched[key] = true
	}
	m.remeshSetLocked(touched)
	if resetter, ok := m.store.(interface{ Reset() error }); ok {
		if err := resetter.Reset(); err != nil {
			return fmt.Errorf("reset overlay store: %w", err)
		}
	}
	return nil
}

func (m *Manager) remeshSetLocked(touched map[world.ChunkCoord]bool) {
	keys := make([]world.ChunkCoord, 0, len(touched))
	for key := range touched {
		keys = append(keys, key)
	}
	world.SortChunkCoords(keys)
	for _, key := range keys {
		m.remeshLocked(key)
	}
}

// remeshLocked rebuilds the geometry of a resident chunk in place and hands it
// to the sink.
func (m *Manager) remeshLocked(pos world.ChunkCoord) {
	chunk, ok := m.chunks[pos]
	if !ok {
		return
	}
	dst, ok := m.meshes[pos]
	if ok {
		m.mesher.BuildInto(dst, chunk, m.blockLocked)
	} else {
		dst = m.mesher.Build(chunk, m.blockLocked)
		m.meshes[pos] = dst
	}
	m.stats.meshed.Inc()
	if m.sink != nil {
		m.sink.Upload(pos, dst)
	}
}

// unloadLocked discards the chunk data and geometry at pos. Its overlay entries
// stay.
func (m *Manager) unloadLocked(pos world.ChunkCoord) {
	if _, ok := m.chunks[pos]; !ok {
		return
	}
	delete(m.chunks, pos)
	if dst, ok := m.meshes[pos]; ok {
		delete(m.meshes, pos)
		if m.sink != nil {
			m.sink.Release(pos)
		}
		m.mesher.Recycle(dst)
	}
	m.stats.unloaded.Inc()
	m.log.WithField("chunk", pos.String()).Debug("chunk unloaded")
}

// Close releases every chunk and closes the overlay store.
func (m *Manager) Close() error {
	m.streamMu.Lock()
	defer m.streamMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, key := range m.sortedKeysLocked() {
		m.unloadLocked(key)
	}
	m.stats.loaded.Store(0)
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			return fmt.Errorf("close overlay store: %w", err)
		}
	}
	return nil
}

func (m *Manager) sortedKeysLocked() []world.ChunkCoord {
	keys := make([]world.ChunkCoord, 0, len(m.chunks))
	for key := range m.chunks {
		keys = append(keys, key)
	}
	world.SortChunkCoords(keys)
	return keys
}
