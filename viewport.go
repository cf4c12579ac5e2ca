package mandel

import "math"

// PlaneSpan is the horizontal extent of the plane, in plane units, shown
// across the framebuffer at Scale 1.
const PlaneSpan = 4.0

// Camera is the view onto the complex plane: the plane point at the
// framebuffer center and a zoom multiplier. Scale must stay positive.
type Camera struct {
	OffsetReal, OffsetImag float64
	Scale                  float64
}

// DefaultCamera shows the whole set centered on the origin.
func DefaultCamera() Camera {
	return Camera{Scale: 1}
}

// Valid reports whether the camera's scale is positive and finite.
func (c Camera) Valid() bool {
	return c.Scale > 0 && !math.IsInf(c.Scale, 0)
}

// PixelScale returns plane units per pixel for a framebuffer w pixels wide.
func (c Camera) PixelScale(w int) float64 {
	return c.Scale * PlaneSpan / float64(w)
}

// PixelToComplex maps pixel (x, y) of a w×h framebuffer to the plane.
// Imaginary values grow downward, along with y.
func (c Camera) PixelToComplex(x, y, w, h int) (cReal, cImag float64) {
	ps := c.PixelScale(w)
	cReal = (float64(x)-0.5*float64(w))*ps + c.OffsetReal
	cImag = (float64(y)-0.5*float64(h))*ps + c.OffsetImag
	return cReal, cImag
}

// Zoom returns the camera after a wheel scroll: Scale is multiplied by
// exp(-k·scroll), so positive scrolls zoom in. A result that is not
// positive and finite leaves the camera unchanged.
func (c Camera) Zoom(scroll, k float64) Camera {
	s := c.Scale * math.Exp(-k*scroll)
	if !(s > 0) || math.IsInf(s, 0) {
		return c
	}
	c.Scale = s
	return c
}

// Drag returns the camera after the pointer moved (dx, dy) pixels with the
// button held, on a framebuffer w pixels wide. The plane follows the
// pointer: offset -= delta·PixelScale on both axes.
func (c Camera) Drag(dx, dy float64, w int) Camera {
	ps := c.PixelScale(w)
	c.OffsetReal -= dx * ps
	c.OffsetImag -= dy * ps
	return c
}
