package window

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	mandel "github.com/marben/latcarf"
	"github.com/marben/latcarf/loop"
)

// game implements ebiten.Game. Each tick: sleep the pacer's slice after the
// previous frame, poll events, mutate the camera, then render in Draw.
type game struct {
	ctx     context.Context
	backend Backend
	lc      *loop.Context
	in      input

	frames int
	err    error
}

func (g *game) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.frames > 0 {
		g.lc.Pacer.Wait()
	}
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if g.lc.Handle(g.in.poll()...) {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.err != nil || g.lc.Quitting() {
		return
	}
	err := g.lc.Render(func(cam mandel.Camera) error {
		return g.backend.Draw(g.ctx, screen, cam)
	})
	g.frames++
	// a cancelled frame is abandoned; Update terminates on the next tick
	if err != nil && g.ctx.Err() == nil {
		g.err = err
	}
}

// Layout makes the framebuffer follow the window size.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.lc.Width, g.lc.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
