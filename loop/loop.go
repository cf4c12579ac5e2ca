// Package loop holds the render loop's state between phases: events mutate
// the camera, the backend renders through it and the pacer times it.
package loop

import (
	mandel "github.com/marben/latcarf"
	"github.com/marben/latcarf/pace"
)

// DefaultZoomK is the zoom coefficient applied per unit of wheel scroll.
const DefaultZoomK = 0.1

// Event is one input event consumed by the loop.
type Event interface {
	event()
}

// Quit requests the loop to stop; the frame in progress is abandoned.
type Quit struct{}

// Wheel is a vertical scroll; positive values zoom in.
type Wheel struct {
	Delta float64
}

// Motion is a pointer move of (DX, DY) pixels. Left reports whether the
// left button was held during the move.
type Motion struct {
	DX, DY float64
	Left   bool
}

func (Quit) event()   {}
func (Wheel) event()  {}
func (Motion) event() {}

// Context is owned by the driver and passed through every phase of a frame.
type Context struct {
	Camera mandel.Camera
	ZoomK  float64
	Pacer  *pace.Pacer

	// Width and Height are the current framebuffer size. Width scales drags.
	Width, Height int

	quit bool
}

func NewContext(cam mandel.Camera, zoomK float64, p *pace.Pacer) *Context {
	if p == nil {
		p = pace.New(pace.DefaultPeriod)
	}
	return &Context{Camera: cam, ZoomK: zoomK, Pacer: p}
}

// Handle applies events in order and reports whether the loop should stop.
// Events after a Quit are ignored.
func (c *Context) Handle(events ...Event) (quit bool) {
	for _, ev := range events {
		if c.quit {
			break
		}
		switch ev := ev.(type) {
		case Quit:
			c.quit = true
		case Wheel:
			c.Camera = c.Camera.Zoom(ev.Delta, c.ZoomK)
		case Motion:
			if ev.Left && c.Width > 0 {
				c.Camera = c.Camera.Drag(ev.DX, ev.DY, c.Width)
			}
		}
	}
	return c.quit
}

// Quitting reports whether a Quit event has been handled.
func (c *Context) Quitting() bool { return c.quit }

// Render runs one render step with the current camera and records its cost.
func (c *Context) Render(fn func(cam mandel.Camera) error) error {
	cam := c.Camera
	return c.Pacer.Time(func() error { return fn(cam) })
}
