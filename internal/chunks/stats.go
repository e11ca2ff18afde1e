package chunks

import "go.uber.org/atomic"

type counters struct {
	loaded      atomic.Int64
	generated   atomic.Int64
	unloaded    atomic.Int64
	meshed      atomic.Int64
	edits       atomic.Int64
	storeErrors atomic.Int64
}

// Stats is a point-in-time view of the manager counters.
type Stats struct {
	Loaded      int64 // resident chunks
	Generated   int64
	Unloaded    int64
	Meshed      int64
	Edits       int64
	StoreErrors int64
	Overlay     int // recorded edit positions
}

// Stats reads the counters. Loaded and Overlay are gauges; the rest are totals.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	overlay := m.overlay.Len()
	m.mu.RUnlock()
	return Stats{
		Loaded:      m.stats.loaded.Load(),
		Generated:   m.stats.generated.Load(),
		Unloaded:    m.stats.unloaded.Load(),
		Meshed:      m.stats.meshed.Load(),
		Edits:       m.stats.edits.Load(),
		StoreErrors: m.stats.storeErrors.Load(),
		Overlay:     overlay,
	}
}
