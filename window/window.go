// Package window runs the render loop inside an ebiten window.
package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/marben/latcarf/loop"
)

// Config describes the window opened by Run.
type Config struct {
	Title         string
	Width, Height int
}

// Run opens the window and drives lc with backend until the user quits or
// ctx is cancelled. It blocks until the window closes.
func Run(ctx context.Context, cfg Config, backend Backend, lc *loop.Context) error {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	// pacing comes from lc.Pacer, not from vsync
	ebiten.SetVsyncEnabled(false)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	g := &game{ctx: ctx, backend: backend, lc: lc}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}
