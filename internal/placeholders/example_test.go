package placeholders

import (
	"path/filepath"
	"testing"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/tilemap"
)

func TestGenerateExample(t *testing.T) {
	dir := t.TempDir()
	if err := GenerateExample(dir); err != nil {
		t.Fatalf("GenerateExample failed: %v", err)
	}

	atlas, err := asset.LoadTextureAtlas(filepath.Join(dir, AtlasPath), TileSize, TileSize)
	if err != nil {
		t.Fatalf("Failed to load atlas: %v", err)
	}
	if atlas.TileCount() != 8 {
		t.Errorf("Expected 8 tiles, got %d", atlas.TileCount())
	}
	if atlas.IsWalkable(TileStoneWall) || atlas.IsWalkable(TileWater) {
		t.Error("Expected walls and water to block")
	}
	if !atlas.IsWalkable(TilePath) {
		t.Error("Expected path to be walkable")
	}
	if _, idx, ok := atlas.GetTileByName("bush"); !ok || idx != TileBush {
		t.Errorf("Expected bush at index %d, got %d (%v)", TileBush, idx, ok)
	}

	sheet, err := asset.LoadSpritesheet(filepath.Join(dir, SheetPath))
	if err != nil {
		t.Fatalf("Failed to load sheet: %v", err)
	}
	if err := sheet.SetSpriteSize(TileSize, TileSize); err != nil {
		t.Fatalf("SetSpriteSize failed: %v", err)
	}
	if sheet.Columns() != 4 || sheet.Rows() != 4 {
		t.Errorf("Expected 4x4 walk cycle, got %dx%d", sheet.Columns(), sheet.Rows())
	}

	level, err := tilemap.Load(filepath.Join(dir, LevelPath))
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	if level.Width != 20 || level.Height != 11 {
		t.Errorf("Expected 20x11 level, got %dx%d", level.Width, level.Height)
	}
	if err := level.ValidateTiles(atlas.TileCount()); err != nil {
		t.Errorf("Level does not fit the atlas: %v", err)
	}
}

func TestExampleLevelStartIsOpen(t *testing.T) {
	level := ExampleLevel()

	// The player starts at (128, 64) on 64px display tiles.
	if tile, _ := level.At(2, 1); tile != TileGrass && tile != TileFlowers {
		t.Errorf("Expected open ground at the start cell, got %d", tile)
	}
	for x := 0; x < level.Width; x++ {
		if tile, _ := level.At(x, 0); tile != TileStoneWall {
			t.Errorf("Expected wall along the top edge at x=%d, got %d", x, tile)
		}
	}
}

func TestWalkSheetFramesDiffer(t *testing.T) {
	sheet := CreateWalkSheet()
	if b := sheet.Bounds(); b.Dx() != 4*TileSize || b.Dy() != 4*TileSize {
		t.Fatalf("Unexpected sheet size %v", b)
	}

	// Frame 1 lifts the left foot; frame 0 does not.
	if sheet.RGBAAt(12, 29) == sheet.RGBAAt(TileSize+12, 29) {
		t.Error("Expected walk frames to differ")
	}
}
