package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Cache decodes each image path once and hands out atlases and spritesheets
// that share the decoded texture.
type Cache struct {
	log  *zap.Logger
	pool *ants.Pool

	mu       sync.Mutex
	textures map[string]*Texture
	atlases  []*TextureAtlas
	sheets   []*Spritesheet
	adopted  []*Texture
	released bool
}

// NewCache creates a cache whose Preload decodes on up to workers goroutines.
func NewCache(workers int, log *zap.Logger) (*Cache, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset worker pool: %w", err)
	}
	return &Cache{
		log:      log,
		pool:     pool,
		textures: make(map[string]*Texture),
	}, nil
}

// Texture returns the decoded texture for path, decoding it on first use.
func (c *Cache) Texture(path string) (*Texture, error) {
	c.mu.Lock()
	if tex, ok := c.textures[path]; ok {
		c.mu.Unlock()
		return tex, nil
	}
	c.mu.Unlock()

	tex, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}
	return c.store(tex), nil
}

// store keeps the first texture decoded for a path.
func (c *Cache) store(tex *Texture) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.textures[tex.Path]; ok {
		return existing
	}
	c.textures[tex.Path] = tex
	w, h := tex.Size()
	c.log.Debug("texture decoded", zap.String("path", tex.Path), zap.Int("width", w), zap.Int("height", h))
	return tex
}

// TextureAtlas loads an atlas through the cache.
func (c *Cache) TextureAtlas(path string, tileWidth, tileHeight int) (*TextureAtlas, error) {
	tex, err := c.Texture(path)
	if err != nil {
		return nil, err
	}
	a, err := newAtlasWithSidecar(tex, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.atlases = append(c.atlases, a)
	c.mu.Unlock()
	return a, nil
}

// Spritesheet loads a spritesheet through the cache. Every call returns a new
// spritesheet with its own sprite size; the decoded image is shared.
func (c *Cache) Spritesheet(path string) (*Spritesheet, error) {
	tex, err := c.Texture(path)
	if err != nil {
		return nil, err
	}
	s := NewSpritesheet(tex)

	c.mu.Lock()
	c.sheets = append(c.sheets, s)
	c.mu.Unlock()
	return s, nil
}

// Preload decodes the given paths concurrently. Paths already in the cache
// are skipped. All failures are reported together.
func (c *Cache) Preload(ctx context.Context, paths ...string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			record(err)
			break
		}
		if c.cached(path) {
			continue
		}

		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				record(fmt.Errorf("preload %s: %w", path, ctx.Err()))
				return
			}
			tex, err := LoadTexture(path)
			if err != nil {
				record(err)
				return
			}
			c.store(tex)
		})
		if err != nil {
			wg.Done()
			record(fmt.Errorf("failed to schedule preload of %s: %w", path, err))
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (c *Cache) cached(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.textures[path]
	return ok
}

// Len returns the number of decoded textures held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// Adopt registers a spritesheet loaded outside the cache, so Release also
// disposes its upload.
func (c *Cache) Adopt(s *Spritesheet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return
	}
	for _, known := range c.sheets {
		if known == s {
			return
		}
	}
	c.sheets = append(c.sheets, s)
	if tex := s.Texture(); c.textures[tex.Path] != tex {
		c.adopted = append(c.adopted, tex)
	}
}

// Release disposes every uploaded image and stops the worker pool.
// The cache must not be used afterwards.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return
	}
	c.released = true

	for _, a := range c.atlases {
		a.subs.reset()
	}
	for _, s := range c.sheets {
		s.mu.Lock()
		s.subs.reset()
		s.mu.Unlock()
	}
	for _, tex := range c.textures {
		tex.Dispose()
	}
	for _, tex := range c.adopted {
		tex.Dispose()
	}
	c.pool.Release()
	c.log.Debug("asset cache released", zap.Int("textures", len(c.textures)))
}
