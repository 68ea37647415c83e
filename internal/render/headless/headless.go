// Package headless implements the render interfaces without a window or GPU.
//
// Images record the draw calls made on them, the loop runs a bounded number of
// ticks as fast as possible, and keyboard state is scripted. It backs the engine
// tests and -headless runs on machines without a display.
package headless

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"chosenoffset.com/mspj/internal/render"
)

// DrawCall is one recorded DrawImage call.
type DrawCall struct {
	Src  *Image
	GeoM render.GeoM
}

// Dst returns the destination rectangle of the call in screen space.
func (c DrawCall) Dst() (x0, y0, x1, y1 float64) {
	w, h := c.Src.Size()
	x0, y0 = c.GeoM.Apply(0, 0)
	x1, y1 = c.GeoM.Apply(float64(w), float64(h))
	return x0, y0, x1, y1
}

// Renderer creates in-memory images.
type Renderer struct {
	mu      sync.Mutex
	created int
}

// NewRenderer creates a headless renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// NewImage creates a blank image of the given size.
func (r *Renderer) NewImage(width, height int) render.Image {
	r.count()
	return &Image{bounds: image.Rect(0, 0, width, height)}
}

// NewImageFromImage wraps a decoded image.
func (r *Renderer) NewImageFromImage(src image.Image) render.Image {
	r.count()
	return &Image{bounds: src.Bounds(), source: src}
}

// Uploads returns the number of images created so far.
func (r *Renderer) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

func (r *Renderer) count() {
	r.mu.Lock()
	r.created++
	r.mu.Unlock()
}

// Image is an in-memory render target that records draw calls.
type Image struct {
	bounds   image.Rectangle
	source   image.Image
	parent   *Image
	fill     color.Color
	calls    []DrawCall
	disposed bool
}

// Bounds returns the bounds of the image.
func (i *Image) Bounds() image.Rectangle {
	return i.bounds
}

// Size returns the width and height of the image.
func (i *Image) Size() (width, height int) {
	return i.bounds.Dx(), i.bounds.Dy()
}

// SubImage returns a view on part of the image.
func (i *Image) SubImage(r image.Rectangle) render.Image {
	root := i.Root()
	return &Image{bounds: r.Intersect(i.bounds), source: root.source, parent: root}
}

// Root returns the image a sub-image was cut from, or the image itself.
func (i *Image) Root() *Image {
	if i.parent != nil {
		return i.parent
	}
	return i
}

// Fill records the fill color and forgets earlier draws.
func (i *Image) Fill(clr color.Color) {
	i.fill = clr
	i.calls = nil
}

// Clear resets the image to transparent.
func (i *Image) Clear() {
	i.fill = nil
	i.calls = nil
}

// Dispose marks the image as released.
func (i *Image) Dispose() {
	i.disposed = true
}

// Disposed reports whether Dispose was called.
func (i *Image) Disposed() bool {
	return i.disposed
}

// DrawImage records the call.
func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	call := DrawCall{Src: src.(*Image)}
	if opts != nil {
		call.GeoM = opts.GeoM
	}
	i.calls = append(i.calls, call)
}

// Calls returns the draw calls recorded since the last Clear or Fill.
func (i *Image) Calls() []DrawCall {
	out := make([]DrawCall, len(i.calls))
	copy(out, i.calls)
	return out
}

// FillColor returns the last fill color, or nil.
func (i *Image) FillColor() color.Color {
	return i.fill
}

// InputManager holds scripted keyboard and mouse state.
type InputManager struct {
	mu          sync.Mutex
	pressed     map[render.Key]bool
	justPressed map[render.Key]bool
	buttons     map[render.MouseButton]bool
	cursorX     int
	cursorY     int
}

// NewInputManager creates an input manager with nothing pressed.
func NewInputManager() *InputManager {
	return &InputManager{
		pressed:     make(map[render.Key]bool),
		justPressed: make(map[render.Key]bool),
		buttons:     make(map[render.MouseButton]bool),
	}
}

// Press holds a key down. It counts as just pressed until the next tick.
func (m *InputManager) Press(key render.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pressed[key] {
		m.justPressed[key] = true
	}
	m.pressed[key] = true
}

// Release lets go of a key.
func (m *InputManager) Release(key render.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pressed, key)
	delete(m.justPressed, key)
}

// SetCursor moves the mouse cursor.
func (m *InputManager) SetCursor(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursorX, m.cursorY = x, y
}

// SetMouseButton presses or releases a mouse button.
func (m *InputManager) SetMouseButton(button render.MouseButton, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttons[button] = down
}

// IsKeyPressed returns whether the key is held.
func (m *InputManager) IsKeyPressed(key render.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressed[key]
}

// IsKeyJustPressed returns whether the key went down this tick.
func (m *InputManager) IsKeyJustPressed(key render.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.justPressed[key]
}

// GetCursorPosition returns the scripted cursor position.
func (m *InputManager) GetCursorPosition() (x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursorX, m.cursorY
}

// IsMouseButtonPressed returns whether the button is held.
func (m *InputManager) IsMouseButtonPressed(button render.MouseButton) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buttons[button]
}

// endTick clears the just-pressed edge.
func (m *InputManager) endTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = make(map[render.Key]bool)
}

// TickFunc is called before each Update with the zero-based tick number.
type TickFunc func(tick int)

// Loop runs a game for a bounded number of ticks.
type Loop struct {
	Width, Height int
	Title         string
	Resizable     bool
	TPS           int

	// MaxTicks stops the loop after that many updates. Zero means run until
	// the game terminates.
	MaxTicks int

	// OnTick lets tests script input between ticks.
	OnTick TickFunc

	input  *InputManager
	screen *Image
	ticks  int
}

// NewLoop creates a loop. Input may be nil.
func NewLoop(input *InputManager, maxTicks int) *Loop {
	return &Loop{input: input, MaxTicks: maxTicks, Width: 640, Height: 480, TPS: 60}
}

// SetWindowSize sets the logical screen size.
func (l *Loop) SetWindowSize(width, height int) {
	l.Width, l.Height = width, height
}

// SetWindowTitle records the title.
func (l *Loop) SetWindowTitle(title string) {
	l.Title = title
}

// SetWindowResizable records the resizable flag.
func (l *Loop) SetWindowResizable(resizable bool) {
	l.Resizable = resizable
}

// SetTPS records the tick rate. The loop itself does not sleep.
func (l *Loop) SetTPS(tps int) {
	l.TPS = tps
}

// RunGame calls Update and Draw until the game terminates, fails, or MaxTicks
// is reached.
func (l *Loop) RunGame(game render.Game) error {
	w, h := game.Layout(l.Width, l.Height)
	l.screen = &Image{bounds: image.Rect(0, 0, w, h)}

	for l.MaxTicks == 0 || l.ticks < l.MaxTicks {
		if l.OnTick != nil {
			l.OnTick(l.ticks)
		}
		err := game.Update()
		l.ticks++
		if errors.Is(err, render.ErrTerminated) {
			return nil
		}
		if err != nil {
			return err
		}
		l.screen.Clear()
		game.Draw(l.screen)
		if l.input != nil {
			l.input.endTick()
		}
	}
	return nil
}

// Screen returns the image the last frame was drawn to.
func (l *Loop) Screen() *Image {
	return l.screen
}

// Ticks returns how many updates ran.
func (l *Loop) Ticks() int {
	return l.ticks
}

// NewBackend bundles a headless renderer, input manager and loop.
func NewBackend(maxTicks int) (render.Backend, *Renderer, *InputManager, *Loop) {
	r := NewRenderer()
	in := NewInputManager()
	loop := NewLoop(in, maxTicks)
	return render.Backend{
		Name:     "headless",
		Renderer: r,
		Input:    in,
		Loop:     loop,
	}, r, in, loop
}
