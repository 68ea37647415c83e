package scene

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"chosenoffset.com/mspj/internal/tilemap"
)

// ControllerSystem moves controlled objects from the move actions. Each axis
// is resolved on its own so objects slide along walls.
type ControllerSystem struct {
	scene  *Scene
	movers *ecs.Filter2[Transform, Controller]
	maps   *ecs.Filter2[Transform, TileMap]
	layers []layer
}

// layer is a tile map resolved for collision on the current tick.
type layer struct {
	tm     *TileMap
	x, y   float64
	dw, dh float64
}

func (s *ControllerSystem) Initialize(w *ecs.World) {
	s.movers = ecs.NewFilter2[Transform, Controller](w)
	s.maps = ecs.NewFilter2[Transform, TileMap](w)
}

func (s *ControllerSystem) Update(w *ecs.World) {
	sc := s.scene

	s.layers = s.layers[:0]
	mq := s.maps.Query()
	for mq.Next() {
		t, tm := mq.Get()
		if tm.Grid == nil || tm.Atlas == nil {
			continue
		}
		dw, dh := displayTileSize(tm)
		s.layers = append(s.layers, layer{tm: tm, x: t.X, y: t.Y, dw: float64(dw), dh: float64(dh)})
	}

	query := s.movers.Query()
	for query.Next() {
		t, c := query.Get()
		if sc.input == nil {
			c.Moving = false
			continue
		}

		dx, dy := sc.input.Axis()
		c.Facing = facingFor(dx, dy, c.Facing)

		bw, bh := 1.0, 1.0
		if e := query.Entity(); sc.sprites.Has(e) {
			if sw, sh := spriteDisplaySize(sc.sprites.Get(e)); sw > 0 && sh > 0 {
				bw, bh = float64(sw), float64(sh)
			}
		}

		step := c.Speed * sc.dt
		ox, oy := t.X, t.Y
		if dx != 0 {
			t.X = s.clampX(t.X, t.Y, bw, bh, t.X+dx*step)
		}
		if dy != 0 {
			t.Y = s.clampY(t.X, t.Y, bw, bh, t.Y+dy*step)
		}
		c.Moving = t.X != ox || t.Y != oy
	}
}

func (s *ControllerSystem) Finalize(w *ecs.World) {}

// clampX returns how far a box at (x, y) of size (bw, bh) gets towards nx.
func (s *ControllerSystem) clampX(x, y, bw, bh, nx float64) float64 {
	for _, l := range s.layers {
		g := l.tm.Grid
		sp := span{
			lo: x - l.x, size: bw, cell: l.dw, cells: g.Width,
			cross0: y - l.y, cross1: y - l.y + bh, crossCell: l.dh, crossCells: g.Height,
		}
		nx = l.x + sp.limit(nx-l.x, l.solid)
	}
	return nx
}

// clampY is clampX for the vertical axis.
func (s *ControllerSystem) clampY(x, y, bw, bh, ny float64) float64 {
	for _, l := range s.layers {
		g := l.tm.Grid
		sp := span{
			lo: y - l.y, size: bh, cell: l.dh, cells: g.Height,
			cross0: x - l.x, cross1: x - l.x + bw, crossCell: l.dw, crossCells: g.Width,
		}
		ny = l.y + sp.limit(ny-l.y, func(row, col int) bool { return l.solid(col, row) })
	}
	return ny
}

// solid reports whether the cell blocks movement. Empty cells do not.
func (l layer) solid(col, row int) bool {
	tile, err := l.tm.Grid.At(col, row)
	if err != nil {
		return true
	}
	return tile != tilemap.Empty && !l.tm.Atlas.IsWalkable(tile)
}

// span is a box projected onto the axis of movement, in map-local pixels.
// The map edges and non-walkable cells stop the box flush. A box beside the
// map on the cross axis is not affected by it.
type span struct {
	lo, size       float64
	cell           float64
	cells          int
	cross0, cross1 float64
	crossCell      float64
	crossCells     int
}

// limit returns the furthest position towards target the box reaches.
// solid is indexed by cell along the axis, then across it.
func (sp span) limit(target float64, solid func(along, across int) bool) float64 {
	if sp.cell <= 0 || sp.crossCell <= 0 || target == sp.lo {
		return target
	}
	extent := float64(sp.cells) * sp.cell
	crossExtent := float64(sp.crossCells) * sp.crossCell
	if sp.cross1 <= 0 || sp.cross0 >= crossExtent {
		return target
	}
	forward := target > sp.lo
	hi := sp.lo + sp.size

	// Outside the map the box may approach it but not enter.
	switch {
	case hi <= 0:
		if forward {
			return math.Max(sp.lo, math.Min(target, -sp.size))
		}
		return target
	case sp.lo >= extent:
		if !forward {
			return math.Min(sp.lo, math.Max(target, extent))
		}
		return target
	}

	if forward {
		target = math.Max(sp.lo, math.Min(target, extent-sp.size))
	} else {
		target = math.Min(sp.lo, math.Max(target, 0))
	}

	k0 := int(math.Floor(math.Max(sp.cross0, 0) / sp.crossCell))
	k1 := int(math.Ceil(math.Min(sp.cross1, crossExtent)/sp.crossCell)) - 1
	blocked := func(c int) bool {
		for k := k0; k <= k1; k++ {
			if solid(c, k) {
				return true
			}
		}
		return false
	}

	// Cells the box already overlaps never stop it.
	if forward {
		last := int(math.Ceil((target+sp.size)/sp.cell)) - 1
		for c := int(math.Ceil(hi / sp.cell)); c <= last && c < sp.cells; c++ {
			if blocked(c) {
				return math.Max(sp.lo, float64(c)*sp.cell-sp.size)
			}
		}
		return target
	}
	last := int(math.Floor(target / sp.cell))
	for c := int(math.Floor(sp.lo/sp.cell)) - 1; c >= last && c >= 0; c-- {
		if blocked(c) {
			return math.Min(sp.lo, float64(c+1)*sp.cell)
		}
	}
	return target
}

// facingFor picks the dominant axis of the input. Exact diagonals face up or
// down. No input keeps the previous facing.
func facingFor(dx, dy float64, prev Direction) Direction {
	switch {
	case dx == 0 && dy == 0:
		return prev
	case math.Abs(dx) > math.Abs(dy):
		if dx < 0 {
			return FacingLeft
		}
		return FacingRight
	case dy < 0:
		return FacingUp
	default:
		return FacingDown
	}
}

// AnimationSystem steps the walk cycle of controlled sprites. Sheets with at
// least four rows pick the row from the facing direction.
type AnimationSystem struct {
	scene   *Scene
	walkers *ecs.Filter2[SpriteRenderer, Controller]
}

func (s *AnimationSystem) Initialize(w *ecs.World) {
	s.walkers = ecs.NewFilter2[SpriteRenderer, Controller](w)
}

func (s *AnimationSystem) Update(w *ecs.World) {
	dt := s.scene.dt

	query := s.walkers.Query()
	for query.Next() {
		sr, c := query.Get()
		if sr.Sheet == nil {
			continue
		}

		cols, rows := sr.Sheet.Columns(), sr.Sheet.Rows()
		if rows >= 4 {
			sr.Row = int(c.Facing)
		} else {
			sr.Row = 0
		}

		if !c.Moving || cols <= 1 || sr.FrameRate <= 0 {
			sr.Col = 0
			sr.elapsed = 0
			continue
		}

		period := 1 / sr.FrameRate
		sr.elapsed += dt
		for sr.elapsed >= period {
			sr.elapsed -= period
			sr.Col = (sr.Col + 1) % cols
		}
	}
}

func (s *AnimationSystem) Finalize(w *ecs.World) {}
