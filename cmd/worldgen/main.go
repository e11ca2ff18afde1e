package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelengine/internal/config"
	"voxelengine/internal/logging"
)

func main() {
	var opts runOptions
	flag.StringVar(&opts.configPath, "config", "", "path to world configuration file (json, yaml or toml)")
	flag.StringVar(&opts.catalogPath, "catalog", "", "block catalog file; overrides world.catalogPath")
	flag.StringVar(&opts.path, "path", "0,0", "viewer waypoints as x,z block positions separated by ';'")
	flag.IntVar(&opts.renderDistance, "render-distance", -1, "override streaming.renderDistance")
	flag.StringVar(&opts.previewDir, "preview", "", "write a PNG preview of every resident chunk into this directory")
	flag.IntVar(&opts.previewScale, "preview-scale", 4, "preview upscaling factor")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "write the final overlay and resident chunks to this snapshot file")
	flag.StringVar(&opts.ray, "ray", "", "cast a ray 'ox,oy,oz:dx,dy,dz' after streaming")
	flag.StringVar(&opts.place, "place", "", "block to place against the ray hit")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("initialise logging: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.WithError(err).Fatal("worldgen failed")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
