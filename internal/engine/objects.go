package engine

import (
	"fmt"

	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/scene"
)

// LoadTextureAtlas loads an atlas and makes it the current atlas. TileMap
// components created afterwards are bound to it.
func (e *Engine) LoadTextureAtlas(path string, tileWidth, tileHeight int) (*asset.TextureAtlas, error) {
	if err := e.requireStarted(); err != nil {
		return nil, err
	}

	a, err := e.assets.TextureAtlas(path, tileWidth, tileHeight)
	if err != nil {
		return nil, fmt.Errorf("load texture atlas: %w", err)
	}
	e.atlas = a

	e.log.Info("texture atlas loaded",
		zap.String("path", path),
		zap.Int("columns", a.Columns), zap.Int("rows", a.Rows),
		zap.Int("tile_width", tileWidth), zap.Int("tile_height", tileHeight))
	return a, nil
}

// TextureAtlas returns the current atlas, or nil if none was loaded.
func (e *Engine) TextureAtlas() *asset.TextureAtlas {
	return e.atlas
}

// LoadSpritesheet loads a spritesheet through the engine's cache, sharing
// the decoded image with other loads of the same path.
func (e *Engine) LoadSpritesheet(path string) (*asset.Spritesheet, error) {
	if e.state == stateShutdown {
		return nil, ErrShutdown
	}
	s, err := e.assets.Spritesheet(path)
	if err != nil {
		return nil, fmt.Errorf("load spritesheet: %w", err)
	}
	return s, nil
}

// LoadSpritesheet loads a spritesheet without an engine. The image is
// uploaded when first drawn. A sheet still assigned to a SpriteRenderer is
// disposed by Engine.Shutdown; otherwise the caller disposes it.
func LoadSpritesheet(path string) (*asset.Spritesheet, error) {
	s, err := asset.LoadSpritesheet(path)
	if err != nil {
		return nil, fmt.Errorf("load spritesheet: %w", err)
	}
	return s, nil
}

// InstantiateGameObject creates a GameObject with a Transform at the origin.
func (e *Engine) InstantiateGameObject() (scene.GameObject, error) {
	if err := e.requireStarted(); err != nil {
		return scene.GameObject{}, err
	}
	return e.scene.NewGameObject(), nil
}

// InstantiateTileMapComponent attaches a TileMap bound to the current atlas.
func (e *Engine) InstantiateTileMapComponent(obj scene.GameObject) (scene.TileMapRef, error) {
	if err := e.requireStarted(); err != nil {
		return scene.TileMapRef{}, err
	}

	tm, err := e.scene.AddTileMap(obj)
	if err != nil {
		return scene.TileMapRef{}, err
	}
	if e.atlas != nil {
		if err := tm.SetTextureAtlas(e.atlas); err != nil {
			return scene.TileMapRef{}, err
		}
	} else {
		e.log.Warn("tilemap created before any texture atlas was loaded", zap.Stringer("object", obj.ID()))
	}
	return tm, nil
}

// InstantiateControllerComponent attaches a Controller.
func (e *Engine) InstantiateControllerComponent(obj scene.GameObject) (scene.ControllerRef, error) {
	if err := e.requireStarted(); err != nil {
		return scene.ControllerRef{}, err
	}
	return e.scene.AddController(obj)
}

// InstantiateSpriteRendererComponent attaches a SpriteRenderer.
func (e *Engine) InstantiateSpriteRendererComponent(obj scene.GameObject) (scene.SpriteRendererRef, error) {
	if err := e.requireStarted(); err != nil {
		return scene.SpriteRendererRef{}, err
	}
	return e.scene.AddSpriteRenderer(obj)
}

// DestroyGameObject removes obj and its components.
func (e *Engine) DestroyGameObject(obj scene.GameObject) error {
	if err := e.requireStarted(); err != nil {
		return err
	}
	return e.scene.Destroy(obj)
}
