package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"

	mandel "github.com/marben/latcarf"
	"github.com/marben/latcarf/loop"
)

type config struct {
	device loop.Device

	width, height int
	maxIter       int
	aa            bool
	threshold     float64
	zoomK         float64
	region        string
	workers       int
	tile          int

	out       string
	statsAddr string
	gops      bool
}

func newFlagSet(cfg *config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("latcarf", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: latcarf [flags] [cpu|gpu]\n\n")
		fmt.Fprintf(fs.Output(), "Renders the Mandelbrot set. Scroll to zoom, drag with the left button to pan.\n")
		fmt.Fprintf(fs.Output(), "The device defaults to %s.\n\n", loop.DefaultDevice)
		fs.PrintDefaults()
	}

	fs.IntVar(&cfg.width, "width", 1920, "Initial window width in pixels.")
	fs.IntVar(&cfg.height, "height", 1080, "Initial window height in pixels.")
	fs.IntVar(&cfg.maxIter, "iter", mandel.MaxIterations, "Iteration budget per pixel.")
	fs.BoolVar(&cfg.aa, "aa", false, "Thin the boundary with the distance estimate.")
	fs.Float64Var(&cfg.threshold, "threshold", 0.25, "Distance threshold in pixels when -aa is set.")
	fs.Float64Var(&cfg.zoomK, "zoom-k", loop.DefaultZoomK, "Zoom coefficient per unit of wheel scroll.")
	fs.StringVar(&cfg.region, "region", "", "Start at a landmark: "+strings.Join(mandel.LandmarkNames(), ", ")+".")
	fs.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "Tiles evaluated concurrently by the cpu device.")
	fs.IntVar(&cfg.tile, "tile", 64, "Tile edge in pixels for the cpu device.")
	fs.StringVar(&cfg.out, "out", "", "Render one cpu frame to this PNG file and exit.")
	fs.StringVar(&cfg.statsAddr, "stats-addr", "", "Serve frame stats over websocket at this address (e.g. :8080).")
	fs.BoolVar(&cfg.gops, "gops", false, "Start the gops diagnostics agent.")
	return fs
}

var errUsage = errors.New("usage error")

// parseConfig parses args. A bad device argument wraps loop.ErrUnknownDevice
// and is reported without failing the process.
func parseConfig(fs *flag.FlagSet, cfg *config, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: expected at most one device argument, got %q", errUsage, fs.Args())
	}
	dev, err := loop.ParseDevice(fs.Arg(0))
	if err != nil {
		return err
	}
	cfg.device = dev
	return cfg.validate()
}

// reportParseError prints what fs.Parse has not already printed about err
// and returns the process exit code.
func reportParseError(w io.Writer, fs *flag.FlagSet, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, loop.ErrUnknownDevice):
		// reported, not fatal
		fmt.Fprintf(w, "usage error: %v\n", err)
		fs.Usage()
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(w, err)
		return 2
	}
	// flag errors were printed by fs.Parse along with the usage
	return 2
}

func (c *config) validate() error {
	switch {
	case c.width <= 0 || c.height <= 0:
		return fmt.Errorf("%w: invalid size %dx%d", errUsage, c.width, c.height)
	case c.maxIter <= 0:
		return fmt.Errorf("%w: -iter must be positive", errUsage)
	case c.threshold < 0:
		return fmt.Errorf("%w: -threshold must not be negative", errUsage)
	case c.tile <= 0:
		return fmt.Errorf("%w: -tile must be positive", errUsage)
	case c.workers <= 0:
		return fmt.Errorf("%w: -workers must be positive", errUsage)
	}
	if c.region != "" {
		if _, ok := mandel.Landmark(c.region); !ok {
			return fmt.Errorf("%w: unknown region %q", errUsage, c.region)
		}
	}
	return nil
}

func (c *config) camera() mandel.Camera {
	if r, ok := mandel.Landmark(c.region); ok {
		return r.Camera()
	}
	return mandel.DefaultCamera()
}
