package chunks

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"voxelengine/internal/world"
)

// StreamUpdate summarises one SetViewerPosition call.
type StreamUpdate struct {
	Center   world.ChunkCoord
	Loaded   []world.ChunkCoord
	Unloaded []world.ChunkCoord
	// Remeshed lists resident chunks rebuilt because a neighbour appeared.
	Remeshed []world.ChunkCoord
}

// SetViewerPosition moves the streaming window to the chunk containing pos.
// Chunks farther than renderDistance (Chebyshev) are unloaded; every missing
// chunk of the (2*renderDistance+1)^2 square is generated, has its overlay
// replayed and is meshed. Chunks already resident that border a new chunk are
// remeshed so their boundary faces match.
func (m *Manager) SetViewerPosition(pos mgl64.Vec3, renderDistance int) (StreamUpdate, error) {
	if renderDistance < 0 {
		renderDistance = 0
	}
	m.streamMu.Lock()
	defer m.streamMu.Unlock()

	center := world.ChunkAt(pos)
	update := StreamUpdate{Center: center}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return update, ErrClosed
	}
	m.viewer = center
	m.renderDistance = renderDistance
	for _, key := range m.sortedKeysLocked() {
		if world.ChebyshevDistance(key, center) > renderDistance {
			m.unloadLocked(key)
			update.Unloaded = append(update.Unloaded, key)
		}
	}
	var wanted []world.ChunkCoord
	for dz := -renderDistance; dz <= renderDistance; dz++ {
		for dx := -renderDistance; dx <= renderDistance; dx++ {
			key := center.Add(dx, dz)
			if _, ok := m.chunks[key]; !ok {
				wanted = append(wanted, key)
			}
		}
	}
	m.stats.loaded.Store(int64(len(m.chunks)))
	m.mu.Unlock()

	if len(wanted) == 0 {
		return update, nil
	}
	sortByDistance(wanted, center)

	// Generation reads no manager state, so it runs without the lock.
	generated := m.generateAll(wanted)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return update, ErrClosed
	}
	fresh := make(map[world.ChunkCoord]bool, len(wanted))
	for i, key := range wanted {
		chunk := generated[i]
		replayed := m.overlay.Replay(chunk)
		m.chunks[key] = chunk
		fresh[key] = true
		update.Loaded = append(update.Loaded, key)
		m.log.WithFields(logrus.Fields{
			"chunk":    key.String(),
			"replayed": replayed,
		}).Debug("chunk loaded")
	}
	// Mesh only after the whole batch is committed so boundary lookups see
	// every new neighbour.
	for _, key := range wanted {
		m.remeshLocked(key)
	}
	stale := make(map[world.ChunkCoord]bool)
	for _, key := range wanted {
		for _, neighbor := range [4]world.ChunkCoord{key.Add(1, 0), key.Add(-1, 0), key.Add(0, 1), key.Add(0, -1)} {
			if _, ok := m.chunks[neighbor]; ok && !fresh[neighbor] {
				stale[neighbor] = true
			}
		}
	}
	for key := range stale {
		update.Remeshed = append(update.Remeshed, key)
	}
	world.SortChunkCoords(update.Remeshed)
	for _, key := range update.Remeshed {
		m.remeshLocked(key)
	}
	m.stats.loaded.Store(int64(len(m.chunks)))
	return update, nil
}

// Viewer returns the chunk and render distance of the last streaming update.
func (m *Manager) Viewer() (world.ChunkCoord, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewer, m.renderDistance
}

// sortByDistance orders keys nearest first: Chebyshev, then Euclidean, then
// X and Z.
func sortByDistance(keys []world.ChunkCoord, center world.ChunkCoord) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if da, db := world.ChebyshevDistance(a, center), world.ChebyshevDistance(b, center); da != db {
			return da < db
		}
		if ea, eb := squaredDistance(a, center), squaredDistance(b, center); ea != eb {
			return ea < eb
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
}

func squaredDistance(a, b world.ChunkCoord) int {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// generateAll runs the generator for every position, on up to m.workers
// goroutines. The result slice is index-aligned with positions.
func (m *Manager) generateAll(positions []world.ChunkCoord) []*world.Chunk {
	out := make([]*world.Chunk, len(positions))
	workers := m.workers
	if workers > len(positions) {
		workers = len(positions)
	}
	if workers <= 1 {
		for i, pos := range positions {
			out[i] = m.generator.Generate(m.seed, pos)
			m.stats.generated.Inc()
		}
		return out
	}

	type task struct {
		index int
		pos   world.ChunkCoord
	}
	type result struct {
		index int
		chunk *world.Chunk
	}

	tasks := make(chan task, workers)
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- result{index: t.index, chunk: m.generator.Generate(m.seed, t.pos)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(tasks)
		for i, pos := range positions {
			tasks <- task{index: i, pos: pos}
		}
	}()

	for r := range results {
		out[r.index] = r.chunk
		m.stats.generated.Inc()
	}
	return out
}
