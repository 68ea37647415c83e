package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"chosenoffset.com/mspj/internal/render"
)

// TileDefinition describes one tile of an atlas in the optional JSON sidecar
type TileDefinition struct {
	Name       string                 `json:"name"`       // Semantic name (e.g., "path_cross")
	AtlasX     int                    `json:"atlas_x"`    // X position in atlas (in tiles)
	AtlasY     int                    `json:"atlas_y"`    // Y position in atlas (in tiles)
	Properties map[string]interface{} `json:"properties"` // Custom properties (walkable, type, etc.)
}

// AtlasConfig is the JSON sidecar stored next to an atlas image as
// "<image path>.json".
type AtlasConfig struct {
	Name  string           `json:"name"`
	Tiles []TileDefinition `json:"tiles"`
}

// TextureAtlas is an image divided into a fixed grid of equally sized tiles.
// Tile indices run left to right, top to bottom, starting at 0.
type TextureAtlas struct {
	Path       string
	TileWidth  int
	TileHeight int
	Columns    int
	Rows       int
	Name       string

	texture      *Texture
	tilesByIndex map[int]*TileDefinition
	tilesByName  map[string]*TileDefinition
	subs         subImages
}

// LoadTextureAtlas decodes an atlas image and divides it into tiles of the
// given size. A "<path>.json" sidecar, when present, supplies tile definitions.
func LoadTextureAtlas(path string, tileWidth, tileHeight int) (*TextureAtlas, error) {
	tex, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}
	return newAtlasWithSidecar(tex, tileWidth, tileHeight)
}

func newAtlasWithSidecar(tex *Texture, tileWidth, tileHeight int) (*TextureAtlas, error) {
	a, err := NewTextureAtlas(tex, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadAtlasConfig(tex.Path + ".json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return a, nil
		}
		return nil, err
	}
	if err := a.SetTileDefinitions(cfg); err != nil {
		return nil, fmt.Errorf("invalid atlas config for %s: %w", tex.Path, err)
	}
	return a, nil
}

// NewTextureAtlas divides a texture into tiles.
func NewTextureAtlas(tex *Texture, tileWidth, tileHeight int) (*TextureAtlas, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("invalid tile dimensions: %dx%d", tileWidth, tileHeight)
	}

	w, h := tex.Size()
	if tileWidth > w || tileHeight > h {
		return nil, fmt.Errorf("tile size %dx%d exceeds atlas image %s (%dx%d)", tileWidth, tileHeight, tex.Path, w, h)
	}

	return &TextureAtlas{
		Path:         tex.Path,
		TileWidth:    tileWidth,
		TileHeight:   tileHeight,
		Columns:      w / tileWidth,
		Rows:         h / tileHeight,
		texture:      tex,
		tilesByIndex: make(map[int]*TileDefinition),
		tilesByName:  make(map[string]*TileDefinition),
	}, nil
}

// LoadAtlasConfig reads an atlas sidecar file.
func LoadAtlasConfig(path string) (*AtlasConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas config %s: %w", path, err)
	}

	var config AtlasConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse atlas config %s: %w", path, err)
	}
	return &config, nil
}

// SetTileDefinitions attaches tile definitions to the atlas.
func (a *TextureAtlas) SetTileDefinitions(cfg *AtlasConfig) error {
	byIndex := make(map[int]*TileDefinition)
	byName := make(map[string]*TileDefinition)

	for i := range cfg.Tiles {
		tile := &cfg.Tiles[i]
		if tile.AtlasX < 0 || tile.AtlasX >= a.Columns || tile.AtlasY < 0 || tile.AtlasY >= a.Rows {
			return fmt.Errorf("tile %q at (%d, %d) is outside the %dx%d grid", tile.Name, tile.AtlasX, tile.AtlasY, a.Columns, a.Rows)
		}
		byIndex[tile.AtlasY*a.Columns+tile.AtlasX] = tile
		if tile.Name != "" {
			byName[tile.Name] = tile
		}
	}

	a.Name = cfg.Name
	a.tilesByIndex = byIndex
	a.tilesByName = byName
	return nil
}

// TileCount returns the number of tiles in the atlas.
func (a *TextureAtlas) TileCount() int {
	return a.Columns * a.Rows
}

// TileRect returns the source rectangle of a tile index.
func (a *TextureAtlas) TileRect(index int) (image.Rectangle, bool) {
	if index < 0 || index >= a.TileCount() {
		return image.Rectangle{}, false
	}
	x := (index % a.Columns) * a.TileWidth
	y := (index / a.Columns) * a.TileHeight
	return image.Rect(x, y, x+a.TileWidth, y+a.TileHeight), true
}

// TileImage returns the sub-image for a tile index, uploading the atlas to r
// if needed.
func (a *TextureAtlas) TileImage(r render.Renderer, index int) (render.Image, bool) {
	rect, ok := a.TileRect(index)
	if !ok {
		return nil, false
	}
	return a.subs.get(a.texture.Image(r), rect), true
}

// Texture returns the atlas texture.
func (a *TextureAtlas) Texture() *Texture {
	return a.texture
}

// GetTile returns the definition for a tile index, if the sidecar has one.
func (a *TextureAtlas) GetTile(index int) (*TileDefinition, bool) {
	tile, ok := a.tilesByIndex[index]
	return tile, ok
}

// GetTileByName returns a tile definition and its index by name.
func (a *TextureAtlas) GetTileByName(name string) (*TileDefinition, int, bool) {
	tile, ok := a.tilesByName[name]
	if !ok {
		return nil, 0, false
	}
	return tile, tile.AtlasY*a.Columns + tile.AtlasX, true
}

// IsWalkable reports whether a tile may be walked on. Tiles without a
// definition are walkable.
func (a *TextureAtlas) IsWalkable(index int) bool {
	tile, ok := a.GetTile(index)
	if !ok {
		return true
	}
	return tile.GetTilePropertyBool("walkable", true)
}

// Dispose releases the uploaded atlas image.
func (a *TextureAtlas) Dispose() {
	a.subs.reset()
	a.texture.Dispose()
}

// GetTileProperty retrieves a property from a tile definition
func (td *TileDefinition) GetTileProperty(key string) (interface{}, bool) {
	if td.Properties == nil {
		return nil, false
	}
	val, ok := td.Properties[key]
	return val, ok
}

// GetTilePropertyBool retrieves a boolean property
func (td *TileDefinition) GetTilePropertyBool(key string, defaultVal bool) bool {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	return defaultVal
}

// GetTilePropertyString retrieves a string property
func (td *TileDefinition) GetTilePropertyString(key string, defaultVal string) string {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	return defaultVal
}

// GetTilePropertyInt retrieves an integer property
func (td *TileDefinition) GetTilePropertyInt(key string, defaultVal int) int {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	// JSON numbers are float64
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}
