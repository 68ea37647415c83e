// Package asset loads the images the engine draws: texture atlases for tile
// maps and spritesheets for sprites.
//
// Decoding happens on load; the GPU upload is deferred until the first draw so
// assets can be loaded before a renderer exists.
package asset

import (
	"fmt"
	"image"
	"os"
	"sync"

	// Registered decoders for the supported asset formats
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"chosenoffset.com/mspj/internal/render"
)

// Decode reads and decodes a BMP or PNG image file.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Texture is a decoded image plus its lazily uploaded render image.
// A texture may be shared by any number of atlases and spritesheets.
type Texture struct {
	Path string

	src image.Image

	mu    sync.Mutex
	owner render.Renderer
	img   render.Image
}

// NewTexture wraps an already decoded image.
func NewTexture(path string, src image.Image) *Texture {
	return &Texture{Path: path, src: src}
}

// LoadTexture decodes an image file into a texture.
func LoadTexture(path string) (*Texture, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return NewTexture(path, img), nil
}

// Size returns the pixel dimensions of the texture.
func (t *Texture) Size() (width, height int) {
	b := t.src.Bounds()
	return b.Dx(), b.Dy()
}

// Source returns the decoded image.
func (t *Texture) Source() image.Image {
	return t.src
}

// Image returns the texture uploaded to r, uploading it on first use.
// Switching renderers discards the previous upload.
func (t *Texture) Image(r render.Renderer) render.Image {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.img != nil && t.owner == r {
		return t.img
	}
	if t.img != nil {
		t.img.Dispose()
	}
	t.img = r.NewImageFromImage(t.src)
	t.owner = r
	return t.img
}

// Dispose releases the uploaded image. The decoded source is kept, so a later
// draw uploads again.
func (t *Texture) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.img != nil {
		t.img.Dispose()
		t.img = nil
		t.owner = nil
	}
}

// subImages caches sub-images cut from one upload of a texture.
type subImages struct {
	of   render.Image
	subs map[image.Rectangle]render.Image
}

func (s *subImages) get(base render.Image, r image.Rectangle) render.Image {
	if s.of != base {
		s.of = base
		s.subs = make(map[image.Rectangle]render.Image)
	}
	sub, ok := s.subs[r]
	if !ok {
		sub = base.SubImage(r)
		s.subs[r] = sub
	}
	return sub
}

func (s *subImages) reset() {
	s.of = nil
	s.subs = nil
}
