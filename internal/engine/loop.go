package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/input"
	"chosenoffset.com/mspj/internal/render"
)

// MainGameLoop runs the backend loop until the window closes, the quit
// action fires, or ctx is cancelled. Each tick runs the scene systems, then
// draws every object in creation order.
func (e *Engine) MainGameLoop(ctx context.Context) error {
	if err := e.requireStarted(); err != nil {
		return err
	}
	if e.running {
		return ErrLoopRunning
	}

	e.running = true
	defer func() { e.running = false }()

	g := &loopGame{engine: e, ctx: ctx}
	e.log.Info("main loop started")

	if err := e.backend.Loop.RunGame(g); err != nil {
		e.log.Error("main loop failed", zap.Error(err), zap.Uint64("ticks", g.ticks))
		return fmt.Errorf("main loop: %w", err)
	}

	reason := g.reason
	if reason == "" {
		reason = "window closed"
	}
	e.log.Info("main loop exited", zap.String("reason", reason), zap.Uint64("ticks", g.ticks))
	return nil
}

// loopGame adapts the engine to render.Game for one MainGameLoop call.
type loopGame struct {
	engine *Engine
	ctx    context.Context
	ticks  uint64
	reason string
}

func (g *loopGame) Update() error {
	if err := g.ctx.Err(); err != nil {
		g.reason = err.Error()
		return render.ErrTerminated
	}
	if in := g.engine.input; in != nil && in.JustPressed(input.Quit) {
		g.reason = "quit action"
		return render.ErrTerminated
	}

	g.engine.scene.Update()
	g.ticks++
	return nil
}

func (g *loopGame) Draw(screen render.Image) {
	g.engine.scene.Draw(screen)
}

func (g *loopGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.engine.cfg.Window.Width, g.engine.cfg.Window.Height
}
