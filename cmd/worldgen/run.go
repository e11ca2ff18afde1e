package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"voxelengine/internal/blocks"
	"voxelengine/internal/chunks"
	"voxelengine/internal/config"
	"voxelengine/internal/mesh"
	"voxelengine/internal/persistence/snapshot"
	"voxelengine/internal/raycast"
	"voxelengine/internal/terrain"
	"voxelengine/internal/world"
)

type runOptions struct {
	configPath     string
	catalogPath    string
	path           string
	renderDistance int
	previewDir     string
	previewScale   int
	snapshotPath   string
	ray            string
	place          string
}

func run(ctx context.Context, cfg *config.Config, opts runOptions, log *logrus.Logger) error {
	catalogPath := cfg.World.CatalogPath
	if opts.catalogPath != "" {
		catalogPath = opts.catalogPath
	}
	catalog := blocks.Default()
	if catalogPath != "" {
		loaded, err := blocks.LoadFile(catalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		catalog = loaded
	}

	waypoints, err := parseWaypoints(opts.path)
	if err != nil {
		return err
	}
	renderDistance := cfg.Streaming.RenderDistance
	if opts.renderDistance >= 0 {
		renderDistance = opts.renderDistance
	}

	gen, err := terrain.New(cfg.Terrain, catalog)
	if err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	store, err := openStore(ctx, cfg.Storage, cfg.World.Seed, catalog.Digest())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	manager, err := chunks.New(chunks.Options{
		Seed:      cfg.World.Seed,
		Catalog:   catalog,
		Generator: gen,
		Mesher:    mesh.NewBuilder(catalog, cfg.Mesh.InitialFaceCapacity),
		Store:     store,
		Logger:    log,
		Workers:   cfg.Streaming.Workers,
	})
	if err != nil {
		store.Close()
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			log.WithError(err).Warn("close chunk manager")
		}
	}()

	stopAutosave := startAutosave(ctx, store, cfg.Storage.AutosaveEvery.Duration(), log)
	defer stopAutosave()

	log.WithFields(logrus.Fields{
		"seed":     cfg.World.Seed,
		"noise":    cfg.Terrain.Noise,
		"backend":  cfg.Storage.Backend,
		"blocks":   catalog.Len(),
		"distance": renderDistance,
	}).Info("world ready")

	for _, point := range waypoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		update, err := manager.SetViewerPosition(point, renderDistance)
		if err != nil {
			return fmt.Errorf("stream to %v: %w", point, err)
		}
		log.WithFields(logrus.Fields{
			"center":   update.Center.String(),
			"loaded":   len(update.Loaded),
			"unloaded": len(update.Unloaded),
			"remeshed": len(update.Remeshed),
			"elapsed":  time.Since(start).Round(time.Millisecond),
		}).Info("viewer moved")
	}

	if opts.ray != "" {
		if err := castRay(manager, catalog, opts.ray, opts.place, log); err != nil {
			return err
		}
	}

	if opts.previewDir != "" {
		for _, key := range manager.LoadedChunks() {
			chunk, ok := manager.Chunk(key)
			if !ok {
				continue
			}
			path, err := world.SavePreview(chunk, catalog, opts.previewScale, opts.previewDir)
			if err != nil {
				return fmt.Errorf("preview %s: %w", key, err)
			}
			log.WithField("path", path).Debug("preview written")
		}
	}

	if opts.snapshotPath != "" {
		snap := snapshot.FromOverlay(cfg.World.Seed, catalog.Digest(), manager.Overlay())
		for _, key := range manager.LoadedChunks() {
			if chunk, ok := manager.Chunk(key); ok {
				snap.AddChunk(chunk)
			}
		}
		if err := snapshot.WriteSnapshot(opts.snapshotPath, snap); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.WithFields(logrus.Fields{
			"path":   opts.snapshotPath,
			"edits":  len(snap.Edits),
			"chunks": len(snap.Chunks),
		}).Info("snapshot written")
	}

	stats := manager.Stats()
	log.WithFields(logrus.Fields{
		"loaded":      stats.Loaded,
		"generated":   stats.Generated,
		"unloaded":    stats.Unloaded,
		"meshed":      stats.Meshed,
		"edits":       stats.Edits,
		"storeErrors": stats.StoreErrors,
		"overlay":     stats.Overlay,
	}).Info("done")
	return nil
}

func castRay(manager *chunks.Manager, catalog *blocks.Catalog, raw, place string, log *logrus.Logger) error {
	origin, direction, err := parseRay(raw)
	if err != nil {
		return err
	}
	hit, ok := manager.Raycast(origin, direction, raycast.MaxDistance)
	if !ok {
		log.WithField("ray", raw).Info("ray missed")
		return nil
	}
	log.WithFields(logrus.Fields{
		"voxel":    hit.Voxel.String(),
		"face":     hit.Face.String(),
		"block":    catalog.Name(manager.GetBlock(hit.Voxel)),
		"distance": hit.Distance,
	}).Info("ray hit")

	if place == "" {
		return nil
	}
	id, err := catalog.ResolveID(place)
	if err != nil {
		return err
	}
	if !manager.PlaceBlock(hit, id) {
		log.WithField("target", hit.Adjacent().String()).Warn("placement refused")
		return nil
	}
	log.WithFields(logrus.Fields{
		"target": hit.Adjacent().String(),
		"block":  place,
	}).Info("block placed")
	return nil
}

// parseWaypoints reads "x,z;x,z" block positions. The viewer height does not
// affect streaming.
func parseWaypoints(raw string) ([]mgl64.Vec3, error) {
	var out []mgl64.Vec3
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		values, err := parseFloats(part, 2)
		if err != nil {
			return nil, fmt.Errorf("waypoint %q: %w", part, err)
		}
		out = append(out, mgl64.Vec3{values[0], 64, values[1]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("path needs at least one waypoint")
	}
	return out, nil
}

func parseRay(raw string) (mgl64.Vec3, mgl64.Vec3, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("ray %q: want origin:direction", raw)
	}
	origin, err := parseFloats(parts[0], 3)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("ray origin: %w", err)
	}
	direction, err := parseFloats(parts[1], 3)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("ray direction: %w", err)
	}
	return mgl64.Vec3{origin[0], origin[1], origin[2]}, mgl64.Vec3{direction[0], direction[1], direction[2]}, nil
}

func parseFloats(raw string, n int) ([]float64, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("want %d comma separated numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
