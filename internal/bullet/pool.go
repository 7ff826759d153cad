package bullet

import "github.com/cipherstorm/director/internal/geom"

// Faction decides which targets a projectile can strike.
type Faction uint8

const (
	Hostile  Faction = iota // enemy fire, strikes the player
	Friendly                // player fire, strikes enemies
)

func (f Faction) String() string {
	if f == Friendly {
		return "friendly"
	}
	return "hostile"
}

// Opposes reports whether a projectile of faction f may strike a target of
// faction t.
func (f Faction) Opposes(t Faction) bool { return f != t }

// Tag carries the faction and a visual style id for the renderer.
type Tag struct {
	Faction Faction
	Style   uint8
}

// Projectile is one pool slot. Inactive slots keep their last values but
// take no part in movement or collision.
type Projectile struct {
	Pos    geom.Vec2
	Dir    geom.Vec2 // unit length while active
	Speed  float64
	Tag    Tag
	Damage int
	Active bool
	Slot   int

	activeIdx int // position in Pool.active while Active
}

// Pool owns projectile slots. Slots are allocated up front and in growStep
// chunks afterwards, never beyond hardMax, and never freed while the pool
// lives. Free slots sit on a LIFO list; active slots are tracked in a dense
// index list so iteration never touches inactive slots.
type Pool struct {
	slots    []Projectile
	free     []int
	active   []int
	growStep int
	hardMax  int
}

// NewPool creates a pool with initial slots. initial is clamped to hardMax.
func NewPool(initial, growStep, hardMax int) *Pool {
	if hardMax < 1 {
		hardMax = 1
	}
	if growStep < 1 {
		growStep = 1
	}
	if initial > hardMax {
		initial = hardMax
	}
	if initial < 0 {
		initial = 0
	}
	p := &Pool{
		slots:    make([]Projectile, 0, initial),
		free:     make([]int, 0, initial),
		active:   make([]int, 0, initial),
		growStep: growStep,
		hardMax:  hardMax,
	}
	p.grow(initial)
	return p
}

// grow appends up to n slots without crossing hardMax and returns how many
// were added.
func (p *Pool) grow(n int) int {
	if room := p.hardMax - len(p.slots); n > room {
		n = room
	}
	if n <= 0 {
		return 0
	}
	start := len(p.slots)
	for i := 0; i < n; i++ {
		p.slots = append(p.slots, Projectile{Slot: start + i, activeIdx: -1})
	}
	// Push in reverse so the lowest new index is claimed first.
	for i := start + n - 1; i >= start; i-- {
		p.free = append(p.free, i)
	}
	return n
}

// Claim marks a free slot active and returns it. When no slot is free the
// pool grows by one step; at the hard cap Claim returns nil, false.
// The returned pointer is valid until the next Claim.
func (p *Pool) Claim() (*Projectile, bool) {
	if len(p.free) == 0 && p.grow(p.growStep) == 0 {
		return nil, false
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	pr := &p.slots[idx]
	pr.Active = true
	pr.activeIdx = len(p.active)
	p.active = append(p.active, idx)
	return pr, true
}

// Release deactivates the slot. Releasing an inactive slot is a no-op.
func (p *Pool) Release(slot int) bool {
	if slot < 0 || slot >= len(p.slots) {
		return false
	}
	pr := &p.slots[slot]
	if !pr.Active {
		return false
	}
	last := len(p.active) - 1
	moved := p.active[last]
	p.active[pr.activeIdx] = moved
	p.slots[moved].activeIdx = pr.activeIdx
	p.active = p.active[:last]

	pr.Active = false
	pr.activeIdx = -1
	p.free = append(p.free, slot)
	return true
}

// Sweep visits every active projectile; returning false from fn releases it.
// Active slots are walked from the back so releases never skip an element.
func (p *Pool) Sweep(fn func(*Projectile) bool) {
	for i := len(p.active) - 1; i >= 0; i-- {
		if i >= len(p.active) {
			continue
		}
		slot := p.active[i]
		if !fn(&p.slots[slot]) {
			p.Release(slot)
		}
	}
}

// ReleaseAll deactivates every active projectile.
func (p *Pool) ReleaseAll() int {
	n := len(p.active)
	for _, slot := range p.active {
		pr := &p.slots[slot]
		pr.Active = false
		pr.activeIdx = -1
		p.free = append(p.free, slot)
	}
	p.active = p.active[:0]
	return n
}

func (p *Pool) Active() int  { return len(p.active) }
func (p *Pool) Size() int    { return len(p.slots) }
func (p *Pool) HardMax() int { return p.hardMax }
