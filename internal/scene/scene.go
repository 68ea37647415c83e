// Package scene stores GameObjects and their components in an ECS world and
// runs the per-tick systems that move, animate and draw them.
package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mlange-42/ark-tools/app"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/input"
	"chosenoffset.com/mspj/internal/render"
)

var (
	// ErrNoSuchObject is returned for a destroyed GameObject or one owned by
	// another scene.
	ErrNoSuchObject = errors.New("no such game object")

	// ErrComponentExists is returned when attaching a component kind twice.
	ErrComponentExists = errors.New("component already attached")
)

const initialCapacity = 64

// Options configures a Scene.
type Options struct {
	Renderer render.Renderer
	Logger   *zap.Logger
	TPS      int // fixed update rate; movement uses 1/TPS seconds per tick
}

// Scene owns the ECS world holding every GameObject.
type Scene struct {
	app      *app.App
	world    *ecs.World
	renderer render.Renderer
	input    *input.Manager
	log      *zap.Logger
	dt       float64
	nextSeq  uint64

	identities  *ecs.Map[Identity]
	transforms  *ecs.Map[Transform]
	tilemaps    *ecs.Map[TileMap]
	controllers *ecs.Map[Controller]
	sprites     *ecs.Map[SpriteRenderer]

	objects    *ecs.Filter1[Identity]
	mapLayers  *ecs.Filter3[Identity, Transform, TileMap]
	spriteDraw *ecs.Filter3[Identity, Transform, SpriteRenderer]

	drawList    []drawItem
	initialized bool
	finalized   bool
}

// New creates a scene and registers its systems.
func New(opts Options) *Scene {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tps := opts.TPS
	if tps <= 0 {
		tps = 60
	}

	a := app.New(initialCapacity)
	w := &a.World

	s := &Scene{
		app:      a,
		world:    w,
		renderer: opts.Renderer,
		log:      log.Named("scene"),
		dt:       1 / float64(tps),

		identities:  ecs.NewMap[Identity](w),
		transforms:  ecs.NewMap[Transform](w),
		tilemaps:    ecs.NewMap[TileMap](w),
		controllers: ecs.NewMap[Controller](w),
		sprites:     ecs.NewMap[SpriteRenderer](w),

		objects:    ecs.NewFilter1[Identity](w),
		mapLayers:  ecs.NewFilter3[Identity, Transform, TileMap](w),
		spriteDraw: ecs.NewFilter3[Identity, Transform, SpriteRenderer](w),
	}

	a.AddSystem(&ControllerSystem{scene: s})
	a.AddSystem(&AnimationSystem{scene: s})
	return s
}

// SetInput sets the action source read by controllers. Without one,
// controllers stay still.
func (s *Scene) SetInput(m *input.Manager) {
	s.input = m
}

// SetRenderer changes the renderer used to upload images when drawing.
func (s *Scene) SetRenderer(r render.Renderer) {
	s.renderer = r
}

// TickDuration returns the simulated seconds per Update.
func (s *Scene) TickDuration() float64 {
	return s.dt
}

// Initialize prepares the systems. It is a no-op after the first call.
func (s *Scene) Initialize() {
	if s.initialized {
		return
	}
	s.initialized = true
	s.app.Initialize()
}

// Update runs every system once.
func (s *Scene) Update() {
	if !s.initialized || s.finalized {
		return
	}
	s.app.Update()
}

// Finalize stops the systems and destroys every GameObject.
func (s *Scene) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	if s.initialized {
		s.app.Finalize()
	}

	var dead []ecs.Entity
	query := s.objects.Query()
	for query.Next() {
		dead = append(dead, query.Entity())
	}
	for _, e := range dead {
		s.world.RemoveEntity(e)
	}
	s.log.Debug("scene finalized", zap.Int("destroyed", len(dead)))
}

// NewGameObject creates an object with a Transform at the origin.
func (s *Scene) NewGameObject() GameObject {
	s.nextSeq++
	id := Identity{ID: uuid.New(), Seq: s.nextSeq}

	e := s.identities.NewEntity(&id)
	s.transforms.Add(e, &Transform{})

	s.log.Debug("game object created", zap.Stringer("id", id.ID), zap.Uint64("seq", id.Seq))
	return GameObject{scene: s, entity: e}
}

// Destroy removes an object and every component it owns.
func (s *Scene) Destroy(obj GameObject) error {
	if err := s.check(obj); err != nil {
		return err
	}
	id := obj.ID()
	s.world.RemoveEntity(obj.entity)
	s.log.Debug("game object destroyed", zap.Stringer("id", id))
	return nil
}

// Len returns the number of live GameObjects.
func (s *Scene) Len() int {
	n := 0
	query := s.objects.Query()
	for query.Next() {
		n++
	}
	return n
}

// AddTileMap attaches an empty TileMap to obj.
func (s *Scene) AddTileMap(obj GameObject) (TileMapRef, error) {
	if err := s.check(obj); err != nil {
		return TileMapRef{}, err
	}
	if s.tilemaps.Has(obj.entity) {
		return TileMapRef{}, fmt.Errorf("tilemap: %w", ErrComponentExists)
	}
	s.tilemaps.Add(obj.entity, &TileMap{})
	return TileMapRef{obj}, nil
}

// AddController attaches a Controller with DefaultSpeed to obj.
func (s *Scene) AddController(obj GameObject) (ControllerRef, error) {
	if err := s.check(obj); err != nil {
		return ControllerRef{}, err
	}
	if s.controllers.Has(obj.entity) {
		return ControllerRef{}, fmt.Errorf("controller: %w", ErrComponentExists)
	}
	s.controllers.Add(obj.entity, &Controller{Speed: DefaultSpeed})
	return ControllerRef{obj}, nil
}

// AddSpriteRenderer attaches a SpriteRenderer with no sheet to obj.
func (s *Scene) AddSpriteRenderer(obj GameObject) (SpriteRendererRef, error) {
	if err := s.check(obj); err != nil {
		return SpriteRendererRef{}, err
	}
	if s.sprites.Has(obj.entity) {
		return SpriteRendererRef{}, fmt.Errorf("sprite renderer: %w", ErrComponentExists)
	}
	s.sprites.Add(obj.entity, &SpriteRenderer{FrameRate: DefaultFrameRate})
	return SpriteRendererRef{obj}, nil
}

func (s *Scene) check(obj GameObject) error {
	if obj.scene != s || s.finalized || !s.world.Alive(obj.entity) {
		return ErrNoSuchObject
	}
	return nil
}
