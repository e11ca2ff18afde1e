package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"voxelengine/internal/config"
	"voxelengine/internal/persistence/editdb"
	"voxelengine/internal/persistence/snapshot"
	"voxelengine/internal/world"
)

func openStore(ctx context.Context, cfg config.StorageConfig, seed int64, catalogDigest string) (world.OverlayStore, error) {
	switch cfg.Backend {
	case config.BackendDisk:
		return world.NewDiskStore(cfg.Path)
	case config.BackendSQLite:
		return editdb.Open(ctx, cfg.Path)
	case config.BackendSnapshot:
		return snapshot.OpenStore(cfg.Path, seed, catalogDigest)
	default:
		return world.NewMemoryStore(), nil
	}
}

type flusher interface {
	Flush() error
}

// startAutosave flushes buffered stores every interval until ctx ends or the
// returned stop func is called.
func startAutosave(ctx context.Context, store world.OverlayStore, every time.Duration, log logrus.FieldLogger) func() {
	f, ok := store.(flusher)
	if !ok || every <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := f.Flush(); err != nil {
					log.WithError(err).Warn("autosave failed")
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
