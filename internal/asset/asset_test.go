package asset

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"chosenoffset.com/mspj/internal/logger"
	"chosenoffset.com/mspj/internal/render/headless"
)

func writeBMP(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
	return path
}

func TestDecodeFormats(t *testing.T) {
	dir := t.TempDir()

	img, err := Decode(writeBMP(t, dir, "sheet.bmp", 96, 64))
	if err != nil {
		t.Fatalf("Failed to decode bmp: %v", err)
	}
	if img.Bounds().Dx() != 96 || img.Bounds().Dy() != 64 {
		t.Errorf("Expected 96x64 bmp, got %v", img.Bounds())
	}

	img, err = Decode(writePNG(t, dir, "sheet.png", 16, 8))
	if err != nil {
		t.Fatalf("Failed to decode png: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("Expected 16px wide png, got %v", img.Bounds())
	}

	if _, err := Decode(filepath.Join(dir, "missing.bmp")); err == nil {
		t.Error("Expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.bmp")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write garbage: %v", err)
	}
	if _, err := Decode(garbage); err == nil {
		t.Error("Expected error for undecodable file")
	}
}

func TestTextureAtlasGeometry(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "path-sheet.bmp", 128, 96)

	atlas, err := LoadTextureAtlas(path, 32, 32)
	if err != nil {
		t.Fatalf("Failed to load atlas: %v", err)
	}

	if atlas.Columns != 4 || atlas.Rows != 3 {
		t.Errorf("Expected 4x3 tiles, got %dx%d", atlas.Columns, atlas.Rows)
	}
	if atlas.TileCount() != 12 {
		t.Errorf("Expected 12 tiles, got %d", atlas.TileCount())
	}

	rect, ok := atlas.TileRect(5)
	if !ok {
		t.Fatal("Expected tile 5 to exist")
	}
	if rect != image.Rect(32, 32, 64, 64) {
		t.Errorf("Expected tile 5 at (32,32)-(64,64), got %v", rect)
	}

	for _, bad := range []int{-1, 12, 100} {
		if _, ok := atlas.TileRect(bad); ok {
			t.Errorf("Expected tile %d to be out of range", bad)
		}
	}

	// Without a sidecar every tile is walkable
	if !atlas.IsWalkable(3) {
		t.Error("Expected tile without definition to be walkable")
	}
}

func TestTextureAtlasRejectsBadTileSize(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "atlas.bmp", 64, 64)

	cases := [][2]int{{0, 32}, {32, -1}, {128, 32}, {32, 65}}
	for _, c := range cases {
		if _, err := LoadTextureAtlas(path, c[0], c[1]); err == nil {
			t.Errorf("Expected error for tile size %dx%d", c[0], c[1])
		}
	}
}

func TestTextureAtlasSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeBMP(t, dir, "path-sheet.bmp", 64, 64)

	sidecar := `{
		"name": "path",
		"tiles": [
			{"name": "grass", "atlas_x": 0, "atlas_y": 0, "properties": {"walkable": true, "type": "floor"}},
			{"name": "rock", "atlas_x": 1, "atlas_y": 1, "properties": {"walkable": false, "type": "wall", "height": 2}}
		]
	}`
	if err := os.WriteFile(path+".json", []byte(sidecar), 0o644); err != nil {
		t.Fatalf("Failed to write sidecar: %v", err)
	}

	atlas, err := LoadTextureAtlas(path, 32, 32)
	if err != nil {
		t.Fatalf("Failed to load atlas: %v", err)
	}

	if atlas.Name != "path" {
		t.Errorf("Expected atlas name 'path', got '%s'", atlas.Name)
	}
	if !atlas.IsWalkable(0) {
		t.Error("Expected grass to be walkable")
	}
	if atlas.IsWalkable(3) {
		t.Error("Expected rock to block movement")
	}

	rock, index, ok := atlas.GetTileByName("rock")
	if !ok {
		t.Fatal("Expected to find rock by name")
	}
	if index != 3 {
		t.Errorf("Expected rock at index 3, got %d", index)
	}
	if rock.GetTilePropertyString("type", "") != "wall" {
		t.Errorf("Expected type 'wall', got '%s'", rock.GetTilePropertyString("type", ""))
	}
	if rock.GetTilePropertyInt("height", 0) != 2 {
		t.Errorf("Expected height 2, got %d", rock.GetTilePropertyInt("height", 0))
	}
	if rock.GetTilePropertyInt("missing", 7) != 7 {
		t.Error("Expected default for missing property")
	}
}

func TestTextureAtlasSidecarOutsideGrid(t *testing.T) {
	dir := t.TempDir()
	path := writeBMP(t, dir, "atlas.bmp", 64, 32)

	sidecar := `{"tiles": [{"name": "far", "atlas_x": 5, "atlas_y": 0}]}`
	if err := os.WriteFile(path+".json", []byte(sidecar), 0o644); err != nil {
		t.Fatalf("Failed to write sidecar: %v", err)
	}

	if _, err := LoadTextureAtlas(path, 32, 32); err == nil {
		t.Error("Expected error for tile outside the grid")
	}
}

func TestTileImageUploadsOnce(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "atlas.bmp", 64, 64)
	atlas, err := LoadTextureAtlas(path, 32, 32)
	if err != nil {
		t.Fatalf("Failed to load atlas: %v", err)
	}

	r := headless.NewRenderer()
	first, ok := atlas.TileImage(r, 1)
	if !ok {
		t.Fatal("Expected tile 1")
	}
	second, _ := atlas.TileImage(r, 1)
	if first != second {
		t.Error("Expected tile sub-image to be reused")
	}
	atlas.TileImage(r, 2)

	if r.Uploads() != 1 {
		t.Errorf("Expected a single upload, got %d", r.Uploads())
	}
	if first.Bounds() != image.Rect(32, 0, 64, 32) {
		t.Errorf("Unexpected tile bounds %v", first.Bounds())
	}

	atlas.Dispose()
	atlas.TileImage(r, 1)
	if r.Uploads() != 2 {
		t.Errorf("Expected re-upload after Dispose, got %d uploads", r.Uploads())
	}
}

func TestSpritesheetFrames(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "character-walk-spritesheet.bmp", 128, 128)

	sheet, err := LoadSpritesheet(path)
	if err != nil {
		t.Fatalf("Failed to load spritesheet: %v", err)
	}

	// Whole image until a sprite size is set
	if sheet.FrameCount() != 1 {
		t.Errorf("Expected 1 frame before SetSpriteSize, got %d", sheet.FrameCount())
	}

	if err := sheet.SetSpriteSize(32, 32); err != nil {
		t.Fatalf("Failed to set sprite size: %v", err)
	}
	if sheet.Columns() != 4 || sheet.Rows() != 4 {
		t.Errorf("Expected 4x4 frames, got %dx%d", sheet.Columns(), sheet.Rows())
	}

	rect, ok := sheet.FrameRect(2, 3)
	if !ok {
		t.Fatal("Expected frame (2, 3)")
	}
	if rect != image.Rect(64, 96, 96, 128) {
		t.Errorf("Unexpected frame rect %v", rect)
	}
	if _, ok := sheet.FrameRect(4, 0); ok {
		t.Error("Expected column 4 to be out of range")
	}

	if err := sheet.SetSpriteSize(0, 32); err == nil {
		t.Error("Expected error for zero width")
	}
	if err := sheet.SetSpriteSize(256, 32); err == nil {
		t.Error("Expected error for sprite wider than sheet")
	}

	r := headless.NewRenderer()
	img, ok := sheet.FrameImage(r, 1, 0)
	if !ok {
		t.Fatal("Expected frame image")
	}
	if w, h := img.Size(); w != 32 || h != 32 {
		t.Errorf("Expected 32x32 frame, got %dx%d", w, h)
	}
}

func TestCacheSharesTextures(t *testing.T) {
	dir := t.TempDir()
	path := writeBMP(t, dir, "sheet.bmp", 64, 32)

	cache, err := NewCache(2, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Release()

	a, err := cache.Spritesheet(path)
	if err != nil {
		t.Fatalf("Failed to load spritesheet: %v", err)
	}
	b, err := cache.Spritesheet(path)
	if err != nil {
		t.Fatalf("Failed to load spritesheet: %v", err)
	}

	if a == b {
		t.Error("Expected distinct spritesheet handles")
	}
	if a.Texture() != b.Texture() {
		t.Error("Expected spritesheets to share the decoded texture")
	}

	// Sprite size is per handle
	if err := a.SetSpriteSize(32, 32); err != nil {
		t.Fatalf("Failed to set sprite size: %v", err)
	}
	if b.FrameCount() != 1 {
		t.Errorf("Expected untouched handle to keep 1 frame, got %d", b.FrameCount())
	}

	atlas, err := cache.TextureAtlas(path, 32, 32)
	if err != nil {
		t.Fatalf("Failed to load atlas: %v", err)
	}
	if atlas.Texture() != a.Texture() {
		t.Error("Expected atlas to share the decoded texture")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 cached texture, got %d", cache.Len())
	}
}

func TestCachePreload(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeBMP(t, dir, "a.bmp", 32, 32),
		writeBMP(t, dir, "b.bmp", 64, 32),
		writePNG(t, dir, "c.png", 32, 64),
	}

	cache, err := NewCache(3, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Release()

	if err := cache.Preload(context.Background(), paths...); err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	if cache.Len() != 3 {
		t.Errorf("Expected 3 cached textures, got %d", cache.Len())
	}

	// Second preload of the same paths is a no-op
	if err := cache.Preload(context.Background(), paths...); err != nil {
		t.Fatalf("Second preload failed: %v", err)
	}
	if cache.Len() != 3 {
		t.Errorf("Expected 3 cached textures, got %d", cache.Len())
	}
}

func TestCachePreloadReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeBMP(t, dir, "good.bmp", 32, 32)

	cache, err := NewCache(2, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Release()

	err = cache.Preload(context.Background(), good, filepath.Join(dir, "missing.bmp"))
	if err == nil {
		t.Fatal("Expected preload error for missing file")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected the good texture to be cached, got %d", cache.Len())
	}
}

func TestCachePreloadCancelled(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "a.bmp", 32, 32)

	cache, err := NewCache(1, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Preload(ctx, path); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestCacheReleaseDisposesUploads(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "a.bmp", 32, 32)

	cache, err := NewCache(1, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	sheet, err := cache.Spritesheet(path)
	if err != nil {
		t.Fatalf("Failed to load spritesheet: %v", err)
	}
	r := headless.NewRenderer()
	img, _ := sheet.FrameImage(r, 0, 0)

	cache.Release()
	cache.Release()

	if !img.(*headless.Image).Root().Disposed() {
		t.Error("Expected uploaded image to be disposed")
	}
}

func TestCacheAdoptDisposesLooseSheets(t *testing.T) {
	path := writeBMP(t, t.TempDir(), "a.bmp", 32, 32)

	cache, err := NewCache(1, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	sheet, err := LoadSpritesheet(path)
	if err != nil {
		t.Fatalf("Failed to load spritesheet: %v", err)
	}
	r := headless.NewRenderer()
	img, _ := sheet.FrameImage(r, 0, 0)

	cache.Adopt(sheet)
	cache.Adopt(sheet)
	if cache.Len() != 0 {
		t.Errorf("Expected adopted sheets not to be cached by path, got %d", cache.Len())
	}
	cache.Release()

	if !img.(*headless.Image).Root().Disposed() {
		t.Error("Expected adopted sheet's upload to be disposed")
	}
}
