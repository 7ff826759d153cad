// Package formation lays out where the enemies of a wave take position and
// in what order they arrive.
package formation

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/cipherstorm/director/internal/geom"
)

// Geometry is the shape of a wave's formation.
type Geometry int

const (
	Line Geometry = iota
	Random
	V
	Grid
	Pincer
	Spiral
)

var geometryNames = [...]string{
	Line:   "line",
	Random: "random",
	V:      "v",
	Grid:   "grid",
	Pincer: "pincer",
	Spiral: "spiral",
}

func (g Geometry) String() string {
	if g < 0 || int(g) >= len(geometryNames) {
		return fmt.Sprintf("geometry(%d)", int(g))
	}
	return geometryNames[g]
}

// ParseGeometry accepts the lower-case names used in data files.
func ParseGeometry(s string) (Geometry, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range geometryNames {
		if name == s {
			return Geometry(g), nil
		}
	}
	return 0, fmt.Errorf("unknown formation %q", s)
}

// Unlock is the first wave a geometry may be chosen on.
type Unlock struct {
	Geometry Geometry
	Wave     int
}

// Table lists every geometry the director may use.
type Table []Unlock

// DefaultTable is used when no formation list is loaded.
func DefaultTable() Table {
	return Table{
		{Line, 1},
		{Random, 1},
		{V, 3},
		{Grid, 5},
		{Pincer, 8},
		{Spiral, 12},
	}
}

// Unlocked returns the geometries available on wave, in table order. The
// result is never empty: Line is always allowed.
func Unlocked(wave int, table Table) []Geometry {
	var out []Geometry
	for _, u := range table {
		if wave >= u.Wave {
			out = append(out, u.Geometry)
		}
	}
	if len(out) == 0 {
		out = append(out, Line)
	}
	return out
}

// Slot is one enemy's destination and how long after the wave start it
// spawns.
type Slot struct {
	Target geom.Vec2
	Delay  time.Duration
}

// Assignment is a laid-out formation. Replaced counts slots whose computed
// position fell outside the viewport and were moved to a random one.
type Assignment struct {
	Geometry Geometry
	Slots    []Slot
	Replaced int
}

// Stagger steps between consecutive spawns.
const (
	lineStagger   = 120 * time.Millisecond
	vStagger      = 150 * time.Millisecond
	gridStagger   = 250 * time.Millisecond
	pincerStagger = 100 * time.Millisecond
	spiralStagger = 90 * time.Millisecond
	randomStagger = 100 * time.Millisecond
)

// band is the upper part of the viewport enemies hold position in.
func band(vp geom.Rect) geom.Rect {
	w, h := vp.Width(), vp.Height()
	return geom.Rect{
		MinX: vp.MinX + 0.1*w,
		MinY: vp.MinY + 0.1*h,
		MaxX: vp.MaxX - 0.1*w,
		MaxY: vp.MinY + 0.45*h,
	}
}

// Layout places count enemies in geometry g. It depends only on its
// arguments; rng is consumed by Random layouts and out-of-bounds
// replacement.
func Layout(g Geometry, count int, vp geom.Rect, rng *rand.Rand) Assignment {
	a := Assignment{Geometry: g}
	if count <= 0 {
		return a
	}
	b := band(vp)
	switch g {
	case Line:
		a.Slots = line(count, b)
	case V:
		a.Slots = vee(count, b)
	case Grid:
		a.Slots = grid(count, b)
	case Pincer:
		a.Slots = pincer(count, b)
	case Spiral:
		a.Slots = spiral(count, b)
	default:
		a.Geometry = Random
		a.Slots = scatter(count, b, rng)
	}
	for i := range a.Slots {
		if !vp.Contains(a.Slots[i].Target) || !a.Slots[i].Target.Finite() {
			a.Slots[i].Target = randomIn(b, rng)
			a.Replaced++
		}
	}
	return a
}

func line(count int, b geom.Rect) []Slot {
	slots := make([]Slot, count)
	y := b.Center().Y
	for i := range slots {
		x := b.MinX + b.Width()*(float64(i)+0.5)/float64(count)
		slots[i] = Slot{Target: geom.V(x, y), Delay: time.Duration(i) * lineStagger}
	}
	return slots
}

// vee puts slot 0 at the point and alternates the rest left and right, each
// rank one step further out and one step higher.
func vee(count int, b geom.Rect) []Slot {
	slots := make([]Slot, count)
	ranks := float64(count / 2)
	if ranks < 1 {
		ranks = 1
	}
	dx := math.Min(40, b.Width()/2/ranks)
	dy := math.Min(30, b.Height()/ranks)
	tip := geom.V(b.Center().X, b.MaxY)
	for i := range slots {
		rank := (i + 1) / 2
		side := 1.0
		if i%2 == 1 {
			side = -1
		}
		pos := tip.Add(geom.V(side*dx*float64(rank), -dy*float64(rank)))
		slots[i] = Slot{Target: pos, Delay: time.Duration(rank) * vStagger}
	}
	return slots
}

func grid(count int, b geom.Rect) []Slot {
	cols := int(math.Ceil(math.Sqrt(float64(count)) * 1.5))
	if cols > count {
		cols = count
	}
	rows := (count + cols - 1) / cols
	slots := make([]Slot, count)
	for i := range slots {
		r, c := i/cols, i%cols
		x := b.MinX + b.Width()*(float64(c)+0.5)/float64(cols)
		y := b.MinY + b.Height()*(float64(r)+0.5)/float64(rows)
		slots[i] = Slot{Target: geom.V(x, y), Delay: time.Duration(r) * gridStagger}
	}
	return slots
}

// pincer alternates between the two flanks, filling each from the top down.
func pincer(count int, b geom.Rect) []Slot {
	perSide := (count + 1) / 2
	left := b.MinX + 0.05*b.Width()
	right := b.MaxX - 0.05*b.Width()
	slots := make([]Slot, count)
	for i := range slots {
		x := left
		if i%2 == 1 {
			x = right
		}
		row := i / 2
		y := b.MinY + b.Height()*(float64(row)+0.5)/float64(perSide)
		slots[i] = Slot{Target: geom.V(x, y), Delay: time.Duration(i) * pincerStagger}
	}
	return slots
}

// spiral walks outward from the band centre by the golden angle.
func spiral(count int, b geom.Rect) []Slot {
	const golden = 2.399963229728653
	c := b.Center()
	rx, ry := b.Width()/2, b.Height()/2
	slots := make([]Slot, count)
	for i := range slots {
		r := math.Sqrt((float64(i) + 0.5) / float64(count))
		a := float64(i) * golden
		pos := geom.V(c.X+rx*r*math.Cos(a), c.Y+ry*r*math.Sin(a))
		slots[i] = Slot{Target: pos, Delay: time.Duration(i) * spiralStagger}
	}
	return slots
}

func scatter(count int, b geom.Rect, rng *rand.Rand) []Slot {
	slots := make([]Slot, count)
	for i := range slots {
		jitter := time.Duration(rng.Int63n(int64(randomStagger)))
		slots[i] = Slot{Target: randomIn(b, rng), Delay: time.Duration(i)*randomStagger + jitter}
	}
	return slots
}

func randomIn(b geom.Rect, rng *rand.Rand) geom.Vec2 {
	return geom.V(b.MinX+rng.Float64()*b.Width(), b.MinY+rng.Float64()*b.Height())
}

// entryHeight is how far above the viewport enemies appear.
const entryHeight = 40

// EntryPoint is the off-screen spawn position directly above target.
func EntryPoint(target geom.Vec2, vp geom.Rect) geom.Vec2 {
	return geom.V(target.X, vp.MinY-entryHeight)
}
