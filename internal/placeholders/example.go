package placeholders

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/tilemap"
)

// Example asset locations, relative to the output directory.
const (
	AtlasPath = "images/character-sprite/path/path-sheet.bmp"
	SheetPath = "images/character-sprite/walk-cycle/character-walk-spritesheet.bmp"
	LevelPath = "tilemap-levels/level1"
)

// Atlas tile indices of the example terrain.
const (
	TileGrass = iota
	TilePath
	TilePathCross
	TileStoneWall
	TileWater
	TileFlowers
	TileDirt
	TileBush
)

const (
	atlasColumns = 4
	levelWidth   = 20
	levelHeight  = 11
	walkFrames   = 4
)

// ExampleTiles returns the terrain tiles in atlas order.
func ExampleTiles() []*image.RGBA {
	p := ColorPalette
	return []*image.RGBA{
		TileGrass:     CreatePatternedTile(p.Grass, Darken(p.Grass, 0.8), "dots"),
		TilePath:      CreateSolidTile(p.Path),
		TilePathCross: CreatePatternedTile(p.Grass, p.Path, "cross"),
		TileStoneWall: CreatePatternedTile(p.Stone, Darken(p.Stone, 0.6), "bricks"),
		TileWater:     CreatePatternedTile(p.Water, Lighten(p.Water, 0.4), "waves"),
		TileFlowers:   CreatePatternedTile(p.Grass, p.Flowers, "dots"),
		TileDirt:      CreateSolidTile(p.Dirt),
		TileBush:      CreateBorderedTile(p.Bush, Darken(p.Bush, 0.6), 3),
	}
}

// ExampleAtlasConfig describes the example tiles. Walls, water and bushes
// block movement.
func ExampleAtlasConfig() *asset.AtlasConfig {
	def := func(name string, index int, walkable bool, kind string) asset.TileDefinition {
		return asset.TileDefinition{
			Name:   name,
			AtlasX: index % atlasColumns,
			AtlasY: index / atlasColumns,
			Properties: map[string]interface{}{
				"walkable": walkable,
				"type":     kind,
			},
		}
	}
	return &asset.AtlasConfig{
		Name: "path-sheet",
		Tiles: []asset.TileDefinition{
			def("grass", TileGrass, true, "floor"),
			def("path", TilePath, true, "floor"),
			def("path_cross", TilePathCross, true, "floor"),
			def("stone_wall", TileStoneWall, false, "wall"),
			def("water", TileWater, false, "water"),
			def("flowers", TileFlowers, true, "floor"),
			def("dirt", TileDirt, true, "floor"),
			def("bush", TileBush, false, "obstacle"),
		},
	}
}

// ExampleLevel builds the 20x11 example level: a walled meadow crossed by two
// paths, with a pond and some bushes.
func ExampleLevel() *tilemap.Grid {
	g, _ := tilemap.NewGrid(levelWidth, levelHeight)
	g.Name = "level1"

	for y := 0; y < levelHeight; y++ {
		for x := 0; x < levelWidth; x++ {
			tile := TileGrass
			switch {
			case x == 0 || y == 0 || x == levelWidth-1 || y == levelHeight-1:
				tile = TileStoneWall
			case x == 10 && y == 5:
				tile = TilePathCross
			case x == 10 || y == 5:
				tile = TilePath
			case x >= 14 && x <= 16 && y >= 2 && y <= 3:
				tile = TileWater
			case (x+y)%7 == 0:
				tile = TileFlowers
			}
			g.Cells[y*levelWidth+x] = tile
		}
	}

	for _, p := range []image.Point{{4, 8}, {5, 8}, {16, 8}} {
		g.Cells[p.Y*levelWidth+p.X] = TileBush
	}
	g.Cells[3*levelWidth+13] = TileDirt
	return g
}

// CreateWalkSheet draws a four-row walk cycle: down, left, right and up,
// each with walkFrames frames.
func CreateWalkSheet() *image.RGBA {
	sheet := image.NewRGBA(image.Rect(0, 0, walkFrames*TileSize, 4*TileSize))
	for row := 0; row < 4; row++ {
		for frame := 0; frame < walkFrames; frame++ {
			cell := createWalkFrame(row, frame)
			x, y := frame*TileSize, row*TileSize
			draw.Draw(sheet, image.Rect(x, y, x+TileSize, y+TileSize), cell, image.Point{}, draw.Src)
		}
	}
	return sheet
}

func createWalkFrame(facing, frame int) *image.RGBA {
	p := ColorPalette
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))

	fillRect(img, image.Rect(10, 13, 22, 25), p.Tunic)
	fillCircle(img, 16, 8, 6, p.Skin, p.Outline)

	// Feet alternate on odd frames.
	left, right := 0, 0
	switch frame % 4 {
	case 1:
		left = -2
	case 3:
		right = -2
	}
	fillRect(img, image.Rect(11, 25+left, 15, 30+left), p.Boots)
	fillRect(img, image.Rect(17, 25+right, 21, 30+right), p.Boots)

	// Eyes show the facing; none when walking away.
	switch facing {
	case 0:
		img.Set(13, 8, p.Outline)
		img.Set(19, 8, p.Outline)
	case 1:
		img.Set(12, 8, p.Outline)
	case 2:
		img.Set(20, 8, p.Outline)
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

func fillCircle(img *image.RGBA, cx, cy, radius int, fill, outline color.RGBA) {
	for y := cy - radius - 1; y <= cy+radius+1; y++ {
		for x := cx - radius - 1; x <= cx+radius+1; x++ {
			dx, dy := x-cx, y-cy
			distSq := dx*dx + dy*dy
			if distSq <= radius*radius {
				img.Set(x, y, fill)
			} else if distSq <= (radius+1)*(radius+1) {
				img.Set(x, y, outline)
			}
		}
	}
}

// GenerateExample writes the example atlas, its sidecar, the walk-cycle
// sheet and the level file under dir.
func GenerateExample(dir string) error {
	atlasPath := filepath.Join(dir, AtlasPath)
	if err := SaveBMP(CreateAtlas(ExampleTiles(), atlasColumns), atlasPath); err != nil {
		return err
	}

	sidecar, err := json.MarshalIndent(ExampleAtlasConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode atlas config: %w", err)
	}
	if err := os.WriteFile(atlasPath+".json", sidecar, 0o644); err != nil {
		return fmt.Errorf("failed to write atlas config: %w", err)
	}

	if err := SaveBMP(CreateWalkSheet(), filepath.Join(dir, SheetPath)); err != nil {
		return err
	}

	levelPath := filepath.Join(dir, LevelPath)
	if err := os.MkdirAll(filepath.Dir(levelPath), 0o755); err != nil {
		return fmt.Errorf("failed to create level directory: %w", err)
	}
	if err := os.WriteFile(levelPath, tilemap.WriteText(ExampleLevel()), 0o644); err != nil {
		return fmt.Errorf("failed to write level: %w", err)
	}
	return nil
}
