package scene

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"chosenoffset.com/mspj/internal/asset"
	"chosenoffset.com/mspj/internal/render"
	"chosenoffset.com/mspj/internal/tilemap"
)

type drawItem struct {
	seq    uint64
	x, y   float64
	tm     *TileMap
	sprite *SpriteRenderer
}

// Draw renders every TileMap and SpriteRenderer in creation order, so later
// objects appear above earlier ones.
func (s *Scene) Draw(screen render.Image) {
	if s.renderer == nil || s.finalized {
		return
	}

	s.drawList = s.drawList[:0]

	mq := s.mapLayers.Query()
	for mq.Next() {
		id, t, tm := mq.Get()
		s.drawList = append(s.drawList, drawItem{seq: id.Seq, x: t.X, y: t.Y, tm: tm})
	}
	sq := s.spriteDraw.Query()
	for sq.Next() {
		id, t, sr := sq.Get()
		s.drawList = append(s.drawList, drawItem{seq: id.Seq, x: t.X, y: t.Y, sprite: sr})
	}

	// An object with both kinds draws its map first.
	sort.SliceStable(s.drawList, func(i, j int) bool {
		return s.drawList[i].seq < s.drawList[j].seq
	})

	for _, item := range s.drawList {
		if item.tm != nil {
			s.drawTileMap(screen, item.tm, item.x, item.y)
		} else {
			s.drawSprite(screen, item.sprite, item.x, item.y)
		}
	}
}

func (s *Scene) drawTileMap(screen render.Image, tm *TileMap, x, y float64) {
	if tm.Atlas == nil || tm.Grid == nil {
		return
	}

	dw, dh := displayTileSize(tm)
	sx := float64(dw) / float64(tm.Atlas.TileWidth)
	sy := float64(dh) / float64(tm.Atlas.TileHeight)

	for row := 0; row < tm.Grid.Height; row++ {
		for col := 0; col < tm.Grid.Width; col++ {
			tile := tm.Grid.Cells[row*tm.Grid.Width+col]
			if tile == tilemap.Empty {
				continue
			}
			img, ok := tm.Atlas.TileImage(s.renderer, tile)
			if !ok {
				continue
			}

			opts := &render.DrawImageOptions{}
			opts.GeoM.Scale(sx, sy)
			opts.GeoM.Translate(x+float64(col*dw), y+float64(row*dh))
			screen.DrawImage(img, opts)
		}
	}
}

func (s *Scene) drawSprite(screen render.Image, sr *SpriteRenderer, x, y float64) {
	if sr.Sheet == nil {
		return
	}
	img, ok := sr.Sheet.FrameImage(s.renderer, sr.Col, sr.Row)
	if !ok {
		return
	}

	fw, fh := sr.Sheet.SpriteSize()
	dw, dh := spriteDisplaySize(sr)

	opts := &render.DrawImageOptions{}
	opts.GeoM.Scale(float64(dw)/float64(fw), float64(dh)/float64(fh))
	opts.GeoM.Translate(x, y)
	screen.DrawImage(img, opts)
}

// Objects returns every live GameObject in creation order.
func (s *Scene) Objects() []GameObject {
	type entry struct {
		seq uint64
		e   ecs.Entity
	}
	var entries []entry
	query := s.objects.Query()
	for query.Next() {
		entries = append(entries, entry{seq: query.Get().Seq, e: query.Entity()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]GameObject, len(entries))
	for i, en := range entries {
		out[i] = GameObject{scene: s, entity: en.e}
	}
	return out
}

// Spritesheets returns the distinct sheets assigned to sprite renderers.
func (s *Scene) Spritesheets() []*asset.Spritesheet {
	if s.finalized {
		return nil
	}
	var sheets []*asset.Spritesheet
	seen := make(map[*asset.Spritesheet]bool)
	query := s.spriteDraw.Query()
	for query.Next() {
		_, _, sr := query.Get()
		if sr.Sheet != nil && !seen[sr.Sheet] {
			seen[sr.Sheet] = true
			sheets = append(sheets, sr.Sheet)
		}
	}
	return sheets
}
