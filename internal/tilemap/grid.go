// Package tilemap loads tile levels and answers grid queries.
package tilemap

import (
	"errors"
	"fmt"
)

// Empty marks a cell with no tile.
const Empty = -1

// ErrOutOfBounds is returned for coordinates outside the grid.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Grid is a rectangular grid of atlas tile indices stored row by row.
type Grid struct {
	Name   string
	Width  int
	Height int
	Cells  []int
}

// NewGrid creates an empty grid of the given size.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid map dimensions: %dx%d", width, height)
	}
	cells := make([]int, width*height)
	for i := range cells {
		cells[i] = Empty
	}
	return &Grid{Width: width, Height: height, Cells: cells}, nil
}

// FromRows builds a grid from rows of tile indices.
func FromRows(rows [][]int) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map has no rows")
	}
	width := len(rows[0])
	g, err := NewGrid(width, len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("tiles array width mismatch at row %d: expected %d, got %d", y, width, len(row))
		}
		for x, v := range row {
			if v < Empty {
				return nil, fmt.Errorf("invalid tile index %d at (%d, %d)", v, x, y)
			}
			g.Cells[y*width+x] = v
		}
	}
	return g, nil
}

// At returns the tile index at the given grid coordinates.
func (g *Grid) At(x, y int) (int, error) {
	if !g.InBounds(x, y) {
		return Empty, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	return g.Cells[y*g.Width+x], nil
}

// Set changes the tile index at the given grid coordinates.
func (g *Grid) Set(x, y, tile int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	if tile < Empty {
		return fmt.Errorf("invalid tile index %d", tile)
	}
	g.Cells[y*g.Width+x] = tile
	return nil
}

// InBounds reports whether (x, y) is inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// MaxTile returns the largest tile index used, or Empty for an empty grid.
func (g *Grid) MaxTile() int {
	top := Empty
	for _, v := range g.Cells {
		if v > top {
			top = v
		}
	}
	return top
}

// ValidateTiles checks every non-empty cell against the number of tiles an
// atlas provides.
func (g *Grid) ValidateTiles(tileCount int) error {
	for i, v := range g.Cells {
		if v >= tileCount {
			return fmt.Errorf("tile index %d at (%d, %d) exceeds atlas tile count %d", v, i%g.Width, i/g.Width, tileCount)
		}
	}
	return nil
}
