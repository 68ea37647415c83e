package scene

import (
	"github.com/google/uuid"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/tilemap"
)

// Identity is carried by every GameObject. Seq orders drawing.
type Identity struct {
	ID  uuid.UUID
	Seq uint64
}

// Transform is a position in world pixels.
type Transform struct {
	X, Y float64
}

// TileMap draws a tile grid from an atlas at the owner's position.
type TileMap struct {
	Atlas      *asset.TextureAtlas
	Grid       *tilemap.Grid
	TileWidth  int // display size of one cell
	TileHeight int
}

// Direction is the way a controlled object faces. The order matches the
// row layout of four-row walk cycles.
type Direction int

const (
	FacingDown Direction = iota
	FacingLeft
	FacingRight
	FacingUp
)

func (d Direction) String() string {
	switch d {
	case FacingDown:
		return "down"
	case FacingLeft:
		return "left"
	case FacingRight:
		return "right"
	case FacingUp:
		return "up"
	default:
		return "unknown"
	}
}

// DefaultSpeed is the controller speed in pixels per second.
const DefaultSpeed = 120.0

// Controller moves its owner from the move actions.
type Controller struct {
	Speed  float64
	Facing Direction
	Moving bool
}

// DefaultFrameRate is the walk cycle speed in frames per second.
const DefaultFrameRate = 8.0

// SpriteRenderer draws one cell of a spritesheet at the owner's position.
type SpriteRenderer struct {
	Sheet     *asset.Spritesheet
	Width     int // display size, 0 means the sheet's sprite size
	Height    int
	FrameRate float64
	Col, Row  int
	elapsed   float64
}
