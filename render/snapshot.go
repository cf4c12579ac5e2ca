package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"

	mandel "github.com/marben/latcarf"
)

// WritePNG renders a single width×height frame through cam and encodes it
// to out as PNG.
func WritePNG(ctx context.Context, out io.Writer, r mandel.Renderer, cam mandel.Camera, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("snapshot: invalid size %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := r.Render(ctx, img, cam); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("snapshot: encode png: %w", err)
	}
	return nil
}
