package scene

import (
	"fmt"
	"image"
	"math"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/tilemap"
)

// GameObject is a handle to an entity in a Scene. Handles are values; they
// stay valid until the object is destroyed and never cache component
// pointers.
type GameObject struct {
	scene  *Scene
	entity ecs.Entity
}

// Alive reports whether the object still exists.
func (o GameObject) Alive() bool {
	return o.scene != nil && o.scene.check(o) == nil
}

// ID returns the object's unique id, or uuid.Nil once destroyed.
func (o GameObject) ID() uuid.UUID {
	if !o.Alive() {
		return uuid.Nil
	}
	return o.scene.identities.Get(o.entity).ID
}

// Seq returns the creation sequence number that orders drawing.
func (o GameObject) Seq() uint64 {
	if !o.Alive() {
		return 0
	}
	return o.scene.identities.Get(o.entity).Seq
}

// Transform returns the object's transform.
func (o GameObject) Transform() TransformRef {
	return TransformRef{o}
}

// TileMap returns the attached TileMap, if any.
func (o GameObject) TileMap() (TileMapRef, bool) {
	if !o.Alive() || !o.scene.tilemaps.Has(o.entity) {
		return TileMapRef{}, false
	}
	return TileMapRef{o}, true
}

// Controller returns the attached Controller, if any.
func (o GameObject) Controller() (ControllerRef, bool) {
	if !o.Alive() || !o.scene.controllers.Has(o.entity) {
		return ControllerRef{}, false
	}
	return ControllerRef{o}, true
}

// SpriteRenderer returns the attached SpriteRenderer, if any.
func (o GameObject) SpriteRenderer() (SpriteRendererRef, bool) {
	if !o.Alive() || !o.scene.sprites.Has(o.entity) {
		return SpriteRendererRef{}, false
	}
	return SpriteRendererRef{o}, true
}

// TransformRef reads and writes an object's position.
type TransformRef struct {
	obj GameObject
}

func (r TransformRef) get() *Transform {
	if !r.obj.Alive() {
		return nil
	}
	return r.obj.scene.transforms.Get(r.obj.entity)
}

// Position returns the position in world pixels.
func (r TransformRef) Position() (x, y float64) {
	t := r.get()
	if t == nil {
		return 0, 0
	}
	return t.X, t.Y
}

// SetPosition moves the object to (x, y).
func (r TransformRef) SetPosition(x, y float64) error {
	t := r.get()
	if t == nil {
		return ErrNoSuchObject
	}
	t.X, t.Y = x, y
	return nil
}

// Translate moves the object by (dx, dy).
func (r TransformRef) Translate(dx, dy float64) error {
	t := r.get()
	if t == nil {
		return ErrNoSuchObject
	}
	t.X += dx
	t.Y += dy
	return nil
}

// TileMapRef configures an attached TileMap.
type TileMapRef struct {
	obj GameObject
}

func (r TileMapRef) get() *TileMap {
	if !r.obj.Alive() || !r.obj.scene.tilemaps.Has(r.obj.entity) {
		return nil
	}
	return r.obj.scene.tilemaps.Get(r.obj.entity)
}

// Object returns the owner.
func (r TileMapRef) Object() GameObject {
	return r.obj
}

// SetDisplayTileSize sets the on-screen size of one cell.
func (r TileMapRef) SetDisplayTileSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display tile size %dx%d", width, height)
	}
	tm := r.get()
	if tm == nil {
		return ErrNoSuchObject
	}
	tm.TileWidth, tm.TileHeight = width, height
	return nil
}

// DisplayTileSize returns the on-screen size of one cell. Until set it is
// the atlas tile size.
func (r TileMapRef) DisplayTileSize() (width, height int) {
	tm := r.get()
	if tm == nil {
		return 0, 0
	}
	return displayTileSize(tm)
}

func displayTileSize(tm *TileMap) (int, int) {
	if tm.TileWidth > 0 && tm.TileHeight > 0 {
		return tm.TileWidth, tm.TileHeight
	}
	if tm.Atlas != nil {
		return tm.Atlas.TileWidth, tm.Atlas.TileHeight
	}
	return 0, 0
}

// SetTextureAtlas binds the atlas the map's tile indices refer to. A grid
// already set must fit the new atlas.
func (r TileMapRef) SetTextureAtlas(a *asset.TextureAtlas) error {
	tm := r.get()
	if tm == nil {
		return ErrNoSuchObject
	}
	if a != nil && tm.Grid != nil {
		if err := tm.Grid.ValidateTiles(a.TileCount()); err != nil {
			return err
		}
	}
	tm.Atlas = a
	return nil
}

// TextureAtlas returns the bound atlas.
func (r TileMapRef) TextureAtlas() *asset.TextureAtlas {
	tm := r.get()
	if tm == nil {
		return nil
	}
	return tm.Atlas
}

// GenerateMapFromFile loads a level file into the map.
func (r TileMapRef) GenerateMapFromFile(path string) error {
	if r.get() == nil {
		return ErrNoSuchObject
	}
	g, err := tilemap.Load(path)
	if err != nil {
		return err
	}
	if err := r.SetGrid(g); err != nil {
		return fmt.Errorf("level %s: %w", path, err)
	}
	r.obj.scene.log.Debug("level loaded",
		zap.String("path", path), zap.Int("width", g.Width), zap.Int("height", g.Height))
	return nil
}

// SetGrid replaces the map's grid. It must fit the bound atlas.
func (r TileMapRef) SetGrid(g *tilemap.Grid) error {
	tm := r.get()
	if tm == nil {
		return ErrNoSuchObject
	}
	if g != nil && tm.Atlas != nil {
		if err := g.ValidateTiles(tm.Atlas.TileCount()); err != nil {
			return err
		}
	}
	tm.Grid = g
	return nil
}

// Grid returns the map's grid.
func (r TileMapRef) Grid() *tilemap.Grid {
	tm := r.get()
	if tm == nil {
		return nil
	}
	return tm.Grid
}

// WorldBounds returns the area the map covers in world pixels.
func (r TileMapRef) WorldBounds() image.Rectangle {
	tm := r.get()
	if tm == nil {
		return image.Rectangle{}
	}
	x, y := r.obj.Transform().Position()
	return worldBounds(tm, x, y)
}

func worldBounds(tm *TileMap, x, y float64) image.Rectangle {
	if tm.Grid == nil {
		return image.Rectangle{}
	}
	dw, dh := displayTileSize(tm)
	origin := image.Pt(int(x), int(y))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tm.Grid.Width*dw, tm.Grid.Height*dh))}
}

// ControllerRef configures an attached Controller.
type ControllerRef struct {
	obj GameObject
}

func (r ControllerRef) get() *Controller {
	if !r.obj.Alive() || !r.obj.scene.controllers.Has(r.obj.entity) {
		return nil
	}
	return r.obj.scene.controllers.Get(r.obj.entity)
}

// Object returns the owner.
func (r ControllerRef) Object() GameObject {
	return r.obj
}

// SetSpeed sets the movement speed in pixels per second.
func (r ControllerRef) SetSpeed(pxPerSecond float64) error {
	if pxPerSecond < 0 || math.IsNaN(pxPerSecond) || math.IsInf(pxPerSecond, 0) {
		return fmt.Errorf("invalid speed %v", pxPerSecond)
	}
	c := r.get()
	if c == nil {
		return ErrNoSuchObject
	}
	c.Speed = pxPerSecond
	return nil
}

// Speed returns the movement speed in pixels per second.
func (r ControllerRef) Speed() float64 {
	c := r.get()
	if c == nil {
		return 0
	}
	return c.Speed
}

// Facing returns the last direction moved in.
func (r ControllerRef) Facing() Direction {
	c := r.get()
	if c == nil {
		return FacingDown
	}
	return c.Facing
}

// Moving reports whether the object moved on the last tick.
func (r ControllerRef) Moving() bool {
	c := r.get()
	return c != nil && c.Moving
}

// SpriteRendererRef configures an attached SpriteRenderer.
type SpriteRendererRef struct {
	obj GameObject
}

func (r SpriteRendererRef) get() *SpriteRenderer {
	if !r.obj.Alive() || !r.obj.scene.sprites.Has(r.obj.entity) {
		return nil
	}
	return r.obj.scene.sprites.Get(r.obj.entity)
}

// Object returns the owner.
func (r SpriteRendererRef) Object() GameObject {
	return r.obj
}

// SetSpritesheet assigns the sheet to draw from. The sheet is shared, not
// copied.
func (r SpriteRendererRef) SetSpritesheet(s *asset.Spritesheet) error {
	sr := r.get()
	if sr == nil {
		return ErrNoSuchObject
	}
	sr.Sheet = s
	sr.Col, sr.Row, sr.elapsed = 0, 0, 0
	return nil
}

// Spritesheet returns the assigned sheet.
func (r SpriteRendererRef) Spritesheet() *asset.Spritesheet {
	sr := r.get()
	if sr == nil {
		return nil
	}
	return sr.Sheet
}

// SetDisplaySize sets the on-screen sprite size.
func (r SpriteRendererRef) SetDisplaySize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", width, height)
	}
	sr := r.get()
	if sr == nil {
		return ErrNoSuchObject
	}
	sr.Width, sr.Height = width, height
	return nil
}

// DisplaySize returns the on-screen sprite size. Until set it is the
// sheet's sprite size.
func (r SpriteRendererRef) DisplaySize() (width, height int) {
	sr := r.get()
	if sr == nil {
		return 0, 0
	}
	return spriteDisplaySize(sr)
}

func spriteDisplaySize(sr *SpriteRenderer) (int, int) {
	if sr.Width > 0 && sr.Height > 0 {
		return sr.Width, sr.Height
	}
	if sr.Sheet != nil {
		return sr.Sheet.SpriteSize()
	}
	return 0, 0
}

// SetFrameRate sets the walk cycle speed in frames per second.
func (r SpriteRendererRef) SetFrameRate(fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %v", fps)
	}
	sr := r.get()
	if sr == nil {
		return ErrNoSuchObject
	}
	sr.FrameRate = fps
	return nil
}

// Frame returns the sheet cell drawn next.
func (r SpriteRendererRef) Frame() (col, row int) {
	sr := r.get()
	if sr == nil {
		return 0, 0
	}
	return sr.Col, sr.Row
}
