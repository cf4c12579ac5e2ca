package mandel

import (
	"context"
	"image"
)

// Evaluator classifies a single point c of the parameter plane.
type Evaluator interface {
	Evaluate(cReal, cImag float64) Result
}

// PixelEvaluator is an Evaluator that does its own pixel-to-plane mapping,
// for precisions where that mapping differs from Camera.PixelToComplex.
type PixelEvaluator interface {
	Evaluator
	EvaluatePixel(cam Camera, x, y, w, h int) Result
}

// Renderer paints one full frame of the set as seen through cam.
type Renderer interface {
	Render(ctx context.Context, dst *image.RGBA, cam Camera) error
}
