package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/marben/latcarf/loop"
)

// input turns ebiten's polled state into loop events.
type input struct {
	lastX, lastY int
	primed       bool
}

func (in *input) poll() []loop.Event {
	var evs []loop.Event

	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		evs = append(evs, loop.Quit{})
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		evs = append(evs, loop.Wheel{Delta: dy})
	}

	x, y := ebiten.CursorPosition()
	if in.primed && (x != in.lastX || y != in.lastY) {
		evs = append(evs, loop.Motion{
			DX:   float64(x - in.lastX),
			DY:   float64(y - in.lastY),
			Left: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		})
	}
	in.lastX, in.lastY, in.primed = x, y, true

	return evs
}
