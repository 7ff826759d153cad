package bullet

import (
	"math"

	"github.com/cipherstorm/director/internal/geom"
)

// minCell is the smallest cell edge. The edge grows to the largest reach
// (target radius plus projectile radius) so that the 3x3 block around a
// projectile's cell holds every target it can touch.
const minCell = 64

type cellKey struct {
	cx int32
	cy int32
}

// targetGrid buckets the tick's targets into square cells. Rebuilt once per
// collision pass; accessed only from the game loop goroutine.
type targetGrid struct {
	cell  float64
	cells map[cellKey][]int // indices into the target slice, ascending
}

func newTargetGrid() *targetGrid {
	return &targetGrid{
		cell:  minCell,
		cells: make(map[cellKey][]int),
	}
}

func (g *targetGrid) key(p geom.Vec2) cellKey {
	return cellKey{
		cx: int32(math.Floor(p.X / g.cell)),
		cy: int32(math.Floor(p.Y / g.cell)),
	}
}

// rebuild indexes targets, reusing cell slices from the previous pass.
func (g *targetGrid) rebuild(targets []Target, projRadius float64) {
	for k, v := range g.cells {
		if len(v) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = v[:0]
	}
	reach := 0.0
	for i := range targets {
		reach = max(reach, targets[i].Radius+projRadius)
	}
	g.cell = max(minCell, reach)
	for i := range targets {
		k := g.key(targets[i].Pos)
		g.cells[k] = append(g.cells[k], i)
	}
}

// nearby calls fn with the index of every target in the 3x3 block of cells
// around p. Order is ascending within a cell only.
func (g *targetGrid) nearby(p geom.Vec2, fn func(i int)) {
	c := g.key(p)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for _, i := range g.cells[cellKey{cx: c.cx + dx, cy: c.cy + dy}] {
				fn(i)
			}
		}
	}
}
