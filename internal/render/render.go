package render

import (
	"errors"
	"image"
	"image/color"
)

// ErrTerminated is returned from Game.Update to end the loop normally.
// Backends translate it into their own termination signal and report a nil
// error from RunGame.
var ErrTerminated = errors.New("render: game terminated")

// Renderer is the main rendering interface that abstracts the underlying
// graphics engine. This allows swapping rendering backends without changing
// game logic.
type Renderer interface {
	// NewImage creates a blank image.
	NewImage(width, height int) Image

	// NewImageFromImage uploads a decoded image.
	NewImageFromImage(src image.Image) Image
}

// Image represents a renderable image surface that can be drawn to or drawn from.
// It abstracts the underlying image implementation.
type Image interface {
	// Properties
	Bounds() image.Rectangle
	Size() (width, height int)

	// Sub-image extraction
	SubImage(r image.Rectangle) Image

	// Fill operations
	Fill(clr color.Color)
	Clear()

	// Drawing operations
	DrawImage(src Image, opts *DrawImageOptions)

	// Resource management
	Dispose()
}

// DrawImageOptions contains options for drawing an image.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM is a 2D affine transformation matrix:
//
//	| A  B  Tx |
//	| C  D  Ty |
//
// The zero value is the identity.
type GeoM struct {
	a1, b, c, d1 float64 // a and d are stored minus one so the zero value is the identity
	tx, ty       float64
}

// Translate shifts the image by (tx, ty).
func (g *GeoM) Translate(tx, ty float64) {
	g.tx += tx
	g.ty += ty
}

// Scale scales the image by (sx, sy).
func (g *GeoM) Scale(sx, sy float64) {
	a := (g.a1 + 1) * sx
	b := g.b * sx
	tx := g.tx * sx
	c := g.c * sy
	d := (g.d1 + 1) * sy
	ty := g.ty * sy

	g.a1 = a - 1
	g.b = b
	g.c = c
	g.d1 = d - 1
	g.tx = tx
	g.ty = ty
}

// Reset resets the matrix to identity.
func (g *GeoM) Reset() {
	*g = GeoM{}
}

// Element returns the matrix element at (i, j) for i in 0..1, j in 0..2.
func (g GeoM) Element(i, j int) float64 {
	switch {
	case i == 0 && j == 0:
		return g.a1 + 1
	case i == 0 && j == 1:
		return g.b
	case i == 0 && j == 2:
		return g.tx
	case i == 1 && j == 0:
		return g.c
	case i == 1 && j == 1:
		return g.d1 + 1
	case i == 1 && j == 2:
		return g.ty
	default:
		return 0
	}
}

// Apply transforms the point (x, y).
func (g GeoM) Apply(x, y float64) (float64, float64) {
	return (g.a1+1)*x + g.b*y + g.tx, g.c*x + (g.d1+1)*y + g.ty
}

// InputManager handles input from the user (keyboard, mouse, etc).
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
	GetCursorPosition() (x, y int)
	IsMouseButtonPressed(button MouseButton) bool
}

// MouseButton represents a mouse button.
type MouseButton int

// Mouse button constants
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Game represents the game interface that the engine will call.
// This is typically implemented by the main game struct.
type Game interface {
	// Update updates the game logic. It is called every tick (typically 60 times per second).
	// Returning ErrTerminated ends the loop without error.
	Update() error

	// Draw draws the game screen. It is called every frame.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	// The logical screen size is used for rendering and input coordinates.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine represents the game engine that manages the game loop and window.
type Engine interface {
	// SetWindowSize sets the window size in pixels.
	SetWindowSize(width, height int)

	// SetWindowTitle sets the window title.
	SetWindowTitle(title string)

	// SetWindowResizable enables or disables window resizing.
	SetWindowResizable(resizable bool)

	// SetTPS sets the number of logic ticks per second.
	SetTPS(tps int)

	// RunGame runs the game loop with the provided game.
	// This is a blocking call that runs until the game ends.
	RunGame(game Game) error
}

// Backend bundles the pieces a rendering backend provides.
type Backend struct {
	Name     string
	Renderer Renderer
	Input    InputManager
	Loop     Engine
}
