// latcarf renders the Mandelbrot set in a window, on the CPU or in a shader.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/gops/agent"
	mandel "github.com/marben/latcarf"
	"github.com/marben/latcarf/loop"
	"github.com/marben/latcarf/pace"
	"github.com/marben/latcarf/render"
	"github.com/marben/latcarf/shader"
	"github.com/marben/latcarf/stats"
	"github.com/marben/latcarf/window"
)

func main() {
	var cfg config
	fs := newFlagSet(&cfg, os.Stderr)
	if err := parseConfig(fs, &cfg, os.Args[1:]); err != nil {
		os.Exit(reportParseError(os.Stderr, fs, err))
	}

	if err := run(cfg); err != nil {
		var ce *shader.CompileError
		if errors.As(err, &ce) {
			log.Fatalf("shader %s stage failed at line %d: %v", ce.Stage, ce.Line, ce.Err)
		}
		log.Fatalf("run: %v", err)
	}
}

func run(cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("gops agent: %w", err)
		}
		defer agent.Close()
	}

	opts := render.DefaultOptions()
	opts.MaxIterations = cfg.maxIter
	opts.DistanceAA = cfg.aa
	opts.Threshold = cfg.threshold
	opts.Workers = cfg.workers
	opts.TileSize = cfg.tile
	renderer := render.RendererImpl{Opts: opts}

	cam := cfg.camera()

	if cfg.out != "" {
		return saveSnapshot(ctx, renderer, cam, cfg)
	}

	backend, err := newBackend(cfg, renderer)
	if err != nil {
		return err
	}

	var hub *stats.Hub
	if cfg.statsAddr != "" {
		hub = stats.NewHub()
		srv := stats.NewServer(cfg.statsAddr, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("stats server: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("stats on ws://%s/ws", cfg.statsAddr)
	}

	pacer := pace.New(pace.DefaultPeriod)
	lc := loop.NewContext(cam, cfg.zoomK, pacer)
	pacer.OnAverage = func(avg time.Duration) {
		log.Printf("time per frame: %dus", avg.Microseconds())
		if hub == nil {
			return
		}
		err := hub.Publish(stats.Snapshot{
			Backend:     backend.Name(),
			FrameTimeUS: avg.Microseconds(),
			OffsetReal:  lc.Camera.OffsetReal,
			OffsetImag:  lc.Camera.OffsetImag,
			Scale:       lc.Camera.Scale,
			Width:       lc.Width,
			Height:      lc.Height,
		})
		if err != nil {
			log.Printf("stats: %v", err)
		}
	}

	log.Printf("initialized window manager, device: %s", backend.Name())
	return window.Run(ctx, window.Config{Title: "latcarf", Width: cfg.width, Height: cfg.height}, backend, lc)
}

func newBackend(cfg config, r render.RendererImpl) (window.Backend, error) {
	switch cfg.device {
	case loop.CPU:
		return window.NewCPU(r), nil
	case loop.GPU:
		p := shader.DefaultParams()
		p.MaxIterations = cfg.maxIter
		u, err := shader.Build(p)
		if err != nil {
			return nil, err
		}
		gpu, err := window.NewGPU(u, shader.Options{
			DistanceAA: cfg.aa,
			Threshold:  cfg.threshold,
			Foreground: r.Opts.Foreground,
			Background: r.Opts.Background,
		})
		if err != nil {
			return nil, err
		}
		return gpu, nil
	}
	return nil, fmt.Errorf("no backend for device %s", cfg.device)
}

func saveSnapshot(ctx context.Context, r mandel.Renderer, cam mandel.Camera, cfg config) error {
	log.Printf("rendering %dx%d snapshot", cfg.width, cfg.height)
	f, err := os.Create(cfg.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	start := time.Now()
	if err := render.WritePNG(ctx, f, r, cam, cfg.width, cfg.height); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", cfg.out, err)
	}
	log.Printf("snapshot saved to %q in %s", cfg.out, time.Since(start))
	return nil
}
