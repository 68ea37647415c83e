package asset

import (
	"fmt"
	"image"
	"sync"

	"chosenoffset.com/mspj/internal/render"
)

// Spritesheet is an image divided into equally sized sprite cells. Until
// SetSpriteSize is called the whole image is a single sprite.
//
// A spritesheet is shared by reference between every sprite renderer it is
// assigned to.
type Spritesheet struct {
	Path string

	texture *Texture

	mu           sync.RWMutex
	spriteWidth  int
	spriteHeight int
	subs         subImages
}

// LoadSpritesheet decodes a spritesheet image.
func LoadSpritesheet(path string) (*Spritesheet, error) {
	tex, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}
	return NewSpritesheet(tex), nil
}

// NewSpritesheet creates a spritesheet over a texture.
func NewSpritesheet(tex *Texture) *Spritesheet {
	w, h := tex.Size()
	return &Spritesheet{
		Path:         tex.Path,
		texture:      tex,
		spriteWidth:  w,
		spriteHeight: h,
	}
}

// SetSpriteSize sets the size of one sprite cell in pixels.
func (s *Spritesheet) SetSpriteSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid sprite size: %dx%d", width, height)
	}
	w, h := s.texture.Size()
	if width > w || height > h {
		return fmt.Errorf("sprite size %dx%d exceeds spritesheet %s (%dx%d)", width, height, s.Path, w, h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.spriteWidth = width
	s.spriteHeight = height
	s.subs.reset()
	return nil
}

// SpriteSize returns the size of one sprite cell.
func (s *Spritesheet) SpriteSize() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spriteWidth, s.spriteHeight
}

// Columns returns the number of sprite columns.
func (s *Spritesheet) Columns() int {
	w, _ := s.texture.Size()
	sw, _ := s.SpriteSize()
	return w / sw
}

// Rows returns the number of sprite rows.
func (s *Spritesheet) Rows() int {
	_, h := s.texture.Size()
	_, sh := s.SpriteSize()
	return h / sh
}

// FrameCount returns the total number of sprite cells.
func (s *Spritesheet) FrameCount() int {
	return s.Columns() * s.Rows()
}

// FrameRect returns the source rectangle of the cell at (col, row).
func (s *Spritesheet) FrameRect(col, row int) (image.Rectangle, bool) {
	if col < 0 || row < 0 || col >= s.Columns() || row >= s.Rows() {
		return image.Rectangle{}, false
	}
	sw, sh := s.SpriteSize()
	x := col * sw
	y := row * sh
	return image.Rect(x, y, x+sw, y+sh), true
}

// FrameImage returns the sub-image of the cell at (col, row), uploading the
// sheet to r if needed.
func (s *Spritesheet) FrameImage(r render.Renderer, col, row int) (render.Image, bool) {
	rect, ok := s.FrameRect(col, row)
	if !ok {
		return nil, false
	}
	base := s.texture.Image(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.get(base, rect), true
}

// Texture returns the sheet texture.
func (s *Spritesheet) Texture() *Texture {
	return s.texture
}

// Dispose releases the uploaded sheet image.
func (s *Spritesheet) Dispose() {
	s.mu.Lock()
	s.subs.reset()
	s.mu.Unlock()
	s.texture.Dispose()
}
