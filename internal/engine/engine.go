// Package engine ties the backend, assets, input and scene together behind
// a small lifecycle: New, initialize subsystems, Start, MainGameLoop,
// Shutdown.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/config"
	"chosenoffset.com/mspj/internal/input"
	"chosenoffset.com/mspj/internal/logger"
	"chosenoffset.com/mspj/internal/render"
	ebitenrender "chosenoffset.com/mspj/internal/render/ebiten"
	"chosenoffset.com/mspj/internal/scene"
)

var (
	ErrAlreadyStarted         = errors.New("engine already started")
	ErrGraphicsNotInitialized = errors.New("graphics subsystem not initialized")
	ErrNotStarted             = errors.New("engine not started")
	ErrShutdown               = errors.New("engine shut down")
	ErrLoopRunning            = errors.New("main loop already running")
)

type state int

const (
	stateCreated state = iota
	stateStarted
	stateShutdown
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateStarted:
		return "started"
	default:
		return "shutdown"
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithBackend replaces the default Ebiten backend.
func WithBackend(b render.Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithLogger replaces the logger built from the config. The engine does not
// sync a logger it did not build.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// Engine owns the subsystems and the main loop.
type Engine struct {
	cfg     config.Config
	log     *zap.Logger
	ownsLog bool
	backend render.Backend

	assets *asset.Cache
	scene  *scene.Scene
	input  *input.Manager
	atlas  *asset.TextureAtlas

	state    state
	graphics bool
	running  bool
}

// New creates an engine from a validated config.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		l, err := logger.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		e.log = l
		e.ownsLog = true
	}
	e.log = e.log.Named("engine")

	if e.backend.Loop == nil {
		e.backend = ebitenrender.NewBackend()
	}

	assets, err := asset.NewCache(cfg.Assets.Workers, e.log.Named("asset"))
	if err != nil {
		return nil, err
	}
	e.assets = assets

	e.scene = scene.New(scene.Options{
		Logger: e.log,
		TPS:    cfg.Loop.TPS,
	})

	e.log.Info("engine created", zap.String("backend", e.backend.Name), zap.Int("tps", cfg.Loop.TPS))
	return e, nil
}

// InitializeGraphicsSubSystem configures the window and binds the renderer.
func (e *Engine) InitializeGraphicsSubSystem() error {
	if err := e.requireCreated(); err != nil {
		return err
	}

	w := e.cfg.Window
	e.backend.Loop.SetWindowSize(w.Width, w.Height)
	e.backend.Loop.SetWindowTitle(w.Title)
	e.backend.Loop.SetWindowResizable(w.Resizable)
	e.backend.Loop.SetTPS(e.cfg.Loop.TPS)
	e.scene.SetRenderer(e.backend.Renderer)
	e.graphics = true

	e.log.Info("graphics initialized",
		zap.Int("width", w.Width), zap.Int("height", w.Height), zap.String("title", w.Title))
	return nil
}

// InitializeInputSystem builds the action bindings from the config.
func (e *Engine) InitializeInputSystem() error {
	if err := e.requireCreated(); err != nil {
		return err
	}
	if e.backend.Input == nil {
		return fmt.Errorf("backend %q has no input manager", e.backend.Name)
	}

	m, err := input.NewManager(e.backend.Input, e.cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to initialize input: %w", err)
	}
	e.input = m
	e.scene.SetInput(m)

	e.log.Info("input initialized", zap.Int("actions", len(m.Actions())))
	return nil
}

// Start initializes the scene systems. Graphics must be initialized first.
func (e *Engine) Start() error {
	if err := e.requireCreated(); err != nil {
		return err
	}
	if !e.graphics {
		return ErrGraphicsNotInitialized
	}
	if e.input == nil {
		e.log.Warn("starting without input; controllers will not move")
	}

	e.scene.Initialize()
	e.state = stateStarted
	e.log.Info("engine started")
	return nil
}

// Shutdown destroys every GameObject and releases assets. It is safe to call
// more than once.
func (e *Engine) Shutdown() error {
	if e.state == stateShutdown {
		return nil
	}
	if e.running {
		return ErrLoopRunning
	}

	for _, sheet := range e.scene.Spritesheets() {
		e.assets.Adopt(sheet)
	}
	e.scene.Finalize()
	e.assets.Release()
	e.atlas = nil
	e.state = stateShutdown

	e.log.Info("engine shut down")
	if e.ownsLog {
		logger.Sync(e.log)
	}
	return nil
}

// Started reports whether Start succeeded and Shutdown has not run.
func (e *Engine) Started() bool {
	return e.state == stateStarted
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// Scene returns the scene holding every GameObject.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Input returns the action bindings, or nil before InitializeInputSystem.
func (e *Engine) Input() *input.Manager {
	return e.input
}

// Assets returns the asset cache.
func (e *Engine) Assets() *asset.Cache {
	return e.assets
}

func (e *Engine) requireCreated() error {
	switch e.state {
	case stateStarted:
		return ErrAlreadyStarted
	case stateShutdown:
		return ErrShutdown
	}
	return nil
}

func (e *Engine) requireStarted() error {
	switch e.state {
	case stateCreated:
		return ErrNotStarted
	case stateShutdown:
		return ErrShutdown
	}
	return nil
}

// Preload decodes images on the asset worker pool ahead of use.
func (e *Engine) Preload(ctx context.Context, paths ...string) error {
	if e.state == stateShutdown {
		return ErrShutdown
	}
	if err := e.assets.Preload(ctx, paths...); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	return nil
}
