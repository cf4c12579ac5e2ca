// Package render is the CPU backend: it evaluates every pixel of a frame on
// the host and paints it into an *image.RGBA.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"

	mandel "github.com/marben/latcarf"
	"golang.org/x/sync/errgroup"
)

// Options controls how a frame is evaluated and painted.
type Options struct {
	MaxIterations int

	// DistanceAA draws an escaped pixel only when its distance estimate
	// exceeds Threshold plane-units-per-pixel.
	DistanceAA bool
	Threshold  float64

	Foreground color.RGBA
	Background color.RGBA

	// Workers caps the number of tiles evaluated at once; zero or less
	// leaves it unbounded.
	Workers  int
	TileSize int

	// Evaluator overrides the float64 evaluator built from the fields above.
	Evaluator mandel.Evaluator
}

// DefaultOptions paints white on black with the shared iteration budget.
func DefaultOptions() Options {
	return Options{
		MaxIterations: mandel.MaxIterations,
		Threshold:     0.25,
		Foreground:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background:    color.RGBA{A: 255},
		Workers:       runtime.NumCPU(),
		TileSize:      64,
	}
}

type RendererImpl struct {
	Opts Options

	// OnTileRender, when set, is called before each tile is evaluated. It may
	// be called from several goroutines at once.
	OnTileRender func(tile image.Rectangle)
}

var _ mandel.Renderer = RendererImpl{}

func (imp RendererImpl) evaluator() mandel.Evaluator {
	if imp.Opts.Evaluator != nil {
		return imp.Opts.Evaluator
	}
	return mandel.Double{MaxIterations: imp.Opts.MaxIterations, Derivative: imp.Opts.DistanceAA}
}

// Render clears dst to the background and paints every pixel of it as seen
// through cam. Tiles are evaluated concurrently, each by a single goroutine.
// Cancelling ctx abandons the frame between tiles.
func (imp RendererImpl) Render(ctx context.Context, dst *image.RGBA, cam mandel.Camera) error {
	if !cam.Valid() {
		return fmt.Errorf("render: invalid camera scale %v", cam.Scale)
	}
	b := dst.Bounds()
	if b.Empty() {
		return nil
	}

	fill(dst, imp.Opts.Background)

	tileSize := imp.Opts.TileSize
	if tileSize <= 0 {
		tileSize = 64
	}
	tiles := splitRectNoClip(b, tileSize, tileSize)

	ev := imp.evaluator()
	g, gctx := errgroup.WithContext(ctx)
	if imp.Opts.Workers > 0 {
		g.SetLimit(imp.Opts.Workers)
	}
	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		tile := tile
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if imp.OnTileRender != nil {
				imp.OnTileRender(tile)
			}
			imp.RenderTile(ev, dst, tile, cam)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// RenderTile paints the pixels of tile in raster order. It does not clear
// the tile first; only foreground pixels are written.
func (imp RendererImpl) RenderTile(ev mandel.Evaluator, dst *image.RGBA, tile image.Rectangle, cam mandel.Camera) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	ps := cam.PixelScale(w)
	fg := imp.Opts.Foreground
	pe, perPixel := ev.(mandel.PixelEvaluator)

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		for px := tile.Min.X; px < tile.Max.X; px++ {
			x, y := px-b.Min.X, py-b.Min.Y
			var r mandel.Result
			if perPixel {
				r = pe.EvaluatePixel(cam, x, y, w, h)
			} else {
				r = ev.Evaluate(cam.PixelToComplex(x, y, w, h))
			}
			if mandel.Drawable(r, imp.Opts.DistanceAA, imp.Opts.Threshold, ps) {
				dst.SetRGBA(px, py, fg)
			}
		}
	}
}

func fill(dst *image.RGBA, c color.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	}
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)

		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)

			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
