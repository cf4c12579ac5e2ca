package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	mandel "github.com/marben/latcarf"
)

func TestSplitRectNoClip(t *testing.T) {
	r := image.Rect(5, 7, 135, 77)
	tiles := splitRectNoClip(r, 64, 64)
	if len(tiles) != 6 {
		t.Fatalf("tiles=%d, want 6", len(tiles))
	}

	area := 0
	for _, tile := range tiles {
		if !tile.In(r) {
			t.Fatalf("tile %v outside %v", tile, r)
		}
		area += tile.Dx() * tile.Dy()
	}
	if area != r.Dx()*r.Dy() {
		t.Fatalf("area=%d, want %d", area, r.Dx()*r.Dy())
	}

	last := tiles[len(tiles)-1]
	if last != image.Rect(133, 71, 135, 77) {
		t.Fatalf("last tile=%v", last)
	}
}

func TestRenderCenterAndCorner(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 64, 36))
	opts := DefaultOptions()
	if err := (RendererImpl{Opts: opts}).Render(context.Background(), dst, mandel.DefaultCamera()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := dst.RGBAAt(32, 18); got != opts.Background {
		t.Fatalf("center=%v, want background", got)
	}
	if got := dst.RGBAAt(0, 0); got != opts.Foreground {
		t.Fatalf("corner=%v, want foreground", got)
	}
	// Left edge of the middle row is c = -2, the tip of the set.
	if got := dst.RGBAAt(0, 18); got != opts.Background {
		t.Fatalf("tip=%v, want background", got)
	}
}

func TestRenderClearsFrame(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 30))
	red := color.RGBA{R: 255, A: 255}
	for i := 0; i < len(dst.Pix); i += 4 {
		copy(dst.Pix[i:i+4], []byte{red.R, red.G, red.B, red.A})
	}

	opts := DefaultOptions()
	if err := (RendererImpl{Opts: opts}).Render(context.Background(), dst, mandel.DefaultCamera()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			c := dst.RGBAAt(x, y)
			if c != opts.Foreground && c != opts.Background {
				t.Fatalf("(%d,%d)=%v left over from previous frame", x, y, c)
			}
		}
	}
}

func TestRenderIsIndependentOfWorkers(t *testing.T) {
	cam := mandel.Camera{OffsetReal: -0.75, OffsetImag: 0.1, Scale: 0.1}
	render := func(workers, tile int) []byte {
		dst := image.NewRGBA(image.Rect(0, 0, 97, 61))
		opts := DefaultOptions()
		opts.Workers = workers
		opts.TileSize = tile
		opts.DistanceAA = true
		if err := (RendererImpl{Opts: opts}).Render(context.Background(), dst, cam); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return dst.Pix
	}
	a := render(1, 97)
	b := render(8, 16)
	if !bytes.Equal(a, b) {
		t.Fatal("frames differ between worker counts")
	}
}

func TestRenderOffsetBounds(t *testing.T) {
	cam := mandel.DefaultCamera()
	opts := DefaultOptions()

	a := image.NewRGBA(image.Rect(0, 0, 48, 32))
	b := image.NewRGBA(image.Rect(100, 200, 148, 232))
	for _, dst := range []*image.RGBA{a, b} {
		if err := (RendererImpl{Opts: opts}).Render(context.Background(), dst, cam); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x+100, y+200) {
				t.Fatalf("(%d,%d) differs with offset bounds", x, y)
			}
		}
	}
}

func TestDistanceAADrawsSubset(t *testing.T) {
	cam := mandel.DefaultCamera()
	plain := DefaultOptions()
	aa := DefaultOptions()
	aa.DistanceAA = true

	a := image.NewRGBA(image.Rect(0, 0, 120, 80))
	b := image.NewRGBA(image.Rect(0, 0, 120, 80))
	if err := (RendererImpl{Opts: plain}).Render(context.Background(), a, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := (RendererImpl{Opts: aa}).Render(context.Background(), b, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}

	thinned := 0
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			pa, pb := a.RGBAAt(x, y), b.RGBAAt(x, y)
			if pb == aa.Foreground && pa != plain.Foreground {
				t.Fatalf("(%d,%d) drawn only with anti-aliasing", x, y)
			}
			if pa == plain.Foreground && pb != aa.Foreground {
				thinned++
			}
		}
	}
	if thinned == 0 {
		t.Fatal("distance threshold removed no boundary pixels")
	}
}

func TestGoldenParityWithShaderPrecision(t *testing.T) {
	cam := mandel.Camera{OffsetReal: -0.5, Scale: 0.75}
	const w, h = 192, 108

	double := DefaultOptions()
	single := DefaultOptions()
	single.Evaluator = mandel.Single{MaxIterations: mandel.MaxIterations}

	a := image.NewRGBA(image.Rect(0, 0, w, h))
	b := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := (RendererImpl{Opts: double}).Render(context.Background(), a, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := (RendererImpl{Opts: single}).Render(context.Background(), b, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}

	diff := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				diff++
			}
		}
	}
	if float64(diff)/(w*h) > 0.02 {
		t.Fatalf("%d of %d pixels differ between float64 and float32", diff, w*h)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	err := (RendererImpl{Opts: DefaultOptions()}).Render(ctx, dst, mandel.DefaultCamera())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestRenderRejectsInvalidCamera(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := (RendererImpl{Opts: DefaultOptions()}).Render(context.Background(), dst, mandel.Camera{}); err == nil {
		t.Fatal("expected error for zero scale")
	}
}

func TestOnTileRender(t *testing.T) {
	var n atomic.Int32
	opts := DefaultOptions()
	opts.TileSize = 10
	imp := RendererImpl{Opts: opts, OnTileRender: func(image.Rectangle) { n.Add(1) }}

	dst := image.NewRGBA(image.Rect(0, 0, 35, 20))
	if err := imp.Render(context.Background(), dst, mandel.DefaultCamera()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := n.Load(); got != 8 {
		t.Fatalf("tiles rendered=%d, want 8", got)
	}
}

// pixelOnly draws the left half of the frame and counts plane-point calls.
type pixelOnly struct {
	planeCalls atomic.Int32
}

func (p *pixelOnly) Evaluate(float64, float64) mandel.Result {
	p.planeCalls.Add(1)
	return mandel.Result{}
}

func (p *pixelOnly) EvaluatePixel(_ mandel.Camera, x, _, w, _ int) mandel.Result {
	return mandel.Result{Escaped: x < w/2}
}

func TestRenderUsesPixelEvaluator(t *testing.T) {
	ev := &pixelOnly{}
	opts := DefaultOptions()
	opts.Evaluator = ev

	dst := image.NewRGBA(image.Rect(10, 10, 90, 50))
	if err := (RendererImpl{Opts: opts}).Render(context.Background(), dst, mandel.DefaultCamera()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := ev.planeCalls.Load(); n != 0 {
		t.Fatalf("Evaluate called %d times", n)
	}
	if got := dst.RGBAAt(10+39, 30); got != opts.Foreground {
		t.Fatalf("left half=%v, want foreground", got)
	}
	if got := dst.RGBAAt(10+40, 30); got != opts.Background {
		t.Fatalf("right half=%v, want background", got)
	}
}
