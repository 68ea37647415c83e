// Package placeholders draws simple procedural art so the example program
// runs without hand-made assets.
package placeholders

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

// TileSize is the pixel size of generated tiles and sprite cells
const TileSize = 32

// ColorPalette defines the colors used by the example art
var ColorPalette = struct {
	// Terrain
	Grass   color.RGBA
	Path    color.RGBA
	Dirt    color.RGBA
	Stone   color.RGBA
	Water   color.RGBA
	Flowers color.RGBA
	Bush    color.RGBA

	// Character
	Skin    color.RGBA
	Tunic   color.RGBA
	Boots   color.RGBA
	Outline color.RGBA
}{
	Grass:   color.RGBA{76, 140, 64, 255},
	Path:    color.RGBA{196, 170, 120, 255},
	Dirt:    color.RGBA{130, 96, 60, 255},
	Stone:   color.RGBA{120, 118, 112, 255},
	Water:   color.RGBA{50, 100, 190, 255},
	Flowers: color.RGBA{230, 90, 150, 255},
	Bush:    color.RGBA{40, 96, 40, 255},

	Skin:    color.RGBA{240, 200, 160, 255},
	Tunic:   color.RGBA{40, 90, 200, 255},
	Boots:   color.RGBA{70, 45, 30, 255},
	Outline: color.RGBA{20, 20, 20, 255},
}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := CreateSolidTile(fillColor)
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < TileSize; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, TileSize-1-i, borderColor)
		}
		for y := 0; y < TileSize; y++ {
			img.Set(i, y, borderColor)
			img.Set(TileSize-1-i, y, borderColor)
		}
	}
	return img
}

// CreatePatternedTile creates a tile with a simple pattern
func CreatePatternedTile(baseColor, patternColor color.RGBA, pattern string) *image.RGBA {
	img := CreateSolidTile(baseColor)

	switch pattern {
	case "bricks":
		for y := 0; y < TileSize; y += 8 {
			for x := 0; x < TileSize; x++ {
				img.Set(x, y, patternColor)
			}
			offset := 0
			if (y/8)%2 == 1 {
				offset = 8
			}
			for x := offset; x < TileSize; x += 16 {
				for dy := 0; dy < 8 && y+dy < TileSize; dy++ {
					img.Set(x, y+dy, patternColor)
				}
			}
		}
	case "dots":
		quarter := TileSize / 4
		threeQuarter := 3 * TileSize / 4
		dots := []image.Point{{quarter, quarter}, {threeQuarter, quarter}, {quarter, threeQuarter}, {threeQuarter, threeQuarter}}
		for _, p := range dots {
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					img.Set(p.X+dx, p.Y+dy, patternColor)
				}
			}
		}
	case "cross":
		// Path crossing: a band through the middle both ways
		for i := 0; i < TileSize; i++ {
			for w := TileSize/2 - 6; w < TileSize/2+6; w++ {
				img.Set(i, w, patternColor)
				img.Set(w, i, patternColor)
			}
		}
	case "waves":
		for y := 4; y < TileSize; y += 8 {
			for x := 0; x < TileSize; x++ {
				if (x/4)%2 == 0 {
					img.Set(x, y, patternColor)
				} else {
					img.Set(x, y+1, patternColor)
				}
			}
		}
	}

	return img
}

// CreateAtlas lays tiles out left to right, top to bottom
func CreateAtlas(tiles []*image.RGBA, columns int) *image.RGBA {
	rows := (len(tiles) + columns - 1) / columns
	atlas := image.NewRGBA(image.Rect(0, 0, columns*TileSize, rows*TileSize))

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % columns) * TileSize
		y := (i / columns) * TileSize
		draw.Draw(atlas, image.Rect(x, y, x+TileSize, y+TileSize), tile, image.Point{}, draw.Src)
	}

	return atlas
}

// SaveBMP saves an image to a BMP file, creating parent directories
func SaveBMP(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := bmp.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}
