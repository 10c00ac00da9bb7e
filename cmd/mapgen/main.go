package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"

	"worldgen/internal/api"
	"worldgen/internal/config"
	"worldgen/internal/mapgen"
	"worldgen/internal/world"
)

func main() {
	var (
		cfgPath     string
		previewPath string
		previewMode string
		previewHour int
		savePath    string
		loadPath    string
		serveAddr   string
	)
	flag.StringVar(&cfgPath, "config", "", "path to map generation configuration file")
	flag.StringVar(&previewPath, "preview", "", "write a PNG preview to this path")
	flag.StringVar(&previewMode, "mode", "", "preview mode (terrain, height, temperature, precipitation, biome, brightness, regions)")
	flag.IntVar(&previewHour, "hour", 12, "hour of day used by the brightness preview")
	flag.StringVar(&savePath, "save", "", "write a map snapshot to this path")
	flag.StringVar(&loadPath, "load", "", "restore a map snapshot instead of generating")
	flag.StringVar(&serveAddr, "serve", "", "serve the map over HTTP on this address")
	flag.Parse()

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("sync config from environment: %v", err)
	} else if wrote {
		log.Printf("wrote configuration from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if previewPath == "" {
		previewPath = cfg.Output.PreviewPath
	}
	if previewMode == "" {
		previewMode = cfg.Output.PreviewMode
	}
	if savePath == "" {
		savePath = cfg.Output.SnapshotPath
	}

	m, err := buildMap(cfg, loadPath)
	if err != nil {
		log.Fatalf("build map: %v", err)
	}

	if previewPath != "" {
		mode, err := world.ParsePreviewMode(previewMode)
		if err != nil {
			log.Fatalf("preview: %v", err)
		}
		opts := world.PreviewOptions{
			Mode:         mode,
			Scale:        cfg.Output.PreviewScale,
			Hour:         previewHour,
			BiomeColours: m.Biomes().Colours(),
		}
		if err := world.SavePreview(m.Grid(), previewPath, opts); err != nil {
			log.Fatalf("preview: %v", err)
		}
		log.Printf("wrote %s preview to %s", mode, previewPath)
	}

	if savePath != "" {
		if err := saveMap(m, savePath); err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
	}

	if serveAddr == "" {
		return
	}
	serve(m, cfg, serveAddr)
}

func buildMap(cfg *config.Config, loadPath string) (*mapgen.Map, error) {
	if loadPath != "" {
		store, err := world.OpenDiskStorage(loadPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return mapgen.Restore(cfg, store)
	}

	m, err := mapgen.New(cfg)
	if err != nil {
		return nil, err
	}
	total := len(mapgen.Stages())
	m.Generate(func(stage mapgen.Stage, done int) {
		log.Printf("generation %d/%d: %s", done, total, stage)
	})
	return m, nil
}

func saveMap(m *mapgen.Map, path string) error {
	store, err := world.OpenDiskStorage(path)
	if err != nil {
		return err
	}
	if err := m.Save(store); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}

func serve(m *mapgen.Map, cfg *config.Config, addr string) {
	h := server.Default(
		server.WithHostPorts(addr),
		server.WithReadTimeout(cfg.Server.ReadTimeout.Duration()),
		server.WithExitWaitTime(cfg.Server.ExitWait.Duration()),
	)
	api.NewHandler(m, cfg.Output).RegisterRoutes(h)

	ctx, cancel := signalContext()
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		errs <- h.Run()
	}()
	log.Printf("serving map on %s", addr)

	select {
	case err := <-errs:
		if err != nil {
			log.Fatalf("server exited with error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ExitWait.Duration()+time.Second)
		defer stop()
		if err := h.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
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
