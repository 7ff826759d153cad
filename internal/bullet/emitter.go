package bullet

import (
	"math"
	"math/rand"
	"time"

	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/geom"
	"go.uber.org/zap"
)

// Target is a hit volume projectiles can strike.
type Target struct {
	ID      ecs.EntityID
	Pos     geom.Vec2
	Radius  float64
	Faction Faction
}

// TargetSource lists the current hit volumes. Implementations append to dst
// and return it so the emitter can reuse its buffer across ticks.
type TargetSource interface {
	Targets(dst []Target) []Target
}

// DamageSink receives one call per projectile that strikes a target.
type DamageSink interface {
	ApplyDamage(target ecs.EntityID, amount int)
}

// Options configures an Emitter.
type Options struct {
	Bounds          geom.Rect // play area
	Margin          float64   // projectiles retire this far outside Bounds
	Radius          float64   // projectile hit radius
	HostileDamage   int
	FriendlyDamage  int
	InitialSize     int
	GrowStep        int
	HardMax         int
	InvalidLogEvery int // warn on the first and every Nth direction fallback
}

// Emitter owns the projectile pool: pattern calls activate slots, Tick moves
// and retires them, and collisions are reported to the DamageSink. Speeds
// arrive pre-scaled; the emitter never reads the difficulty multiplier.
type Emitter struct {
	pool    *Pool
	opts    Options
	live    geom.Rect
	targets TargetSource
	sink    DamageSink
	bus     *event.Bus
	rng     *rand.Rand
	log     *zap.Logger

	scratch   []Target
	grid      *targetGrid
	invalid   uint64
	dropped   uint64
	hits      uint64
	retired   uint64
	activated uint64
}

// NewEmitter builds an emitter. targets, sink and bus may be nil (no
// collision, no reporting).
func NewEmitter(opts Options, targets TargetSource, sink DamageSink, bus *event.Bus, rng *rand.Rand, log *zap.Logger) *Emitter {
	if opts.InvalidLogEvery < 1 {
		opts.InvalidLogEvery = 1
	}
	return &Emitter{
		pool:    NewPool(opts.InitialSize, opts.GrowStep, opts.HardMax),
		opts:    opts,
		live:    opts.Bounds.Expand(opts.Margin),
		targets: targets,
		sink:    sink,
		bus:     bus,
		rng:     rng,
		log:     log.Named("emitter"),
		scratch: make([]Target, 0, 64),
		grid:    newTargetGrid(),
	}
}

// Bind sets the collision targets and damage sink for emitters built
// before the world they strike.
func (e *Emitter) Bind(targets TargetSource, sink DamageSink) {
	e.targets = targets
	e.sink = sink
}

func (e *Emitter) damageFor(f Faction) int {
	if f == Friendly {
		return e.opts.FriendlyDamage
	}
	return e.opts.HostileDamage
}

// Activate claims a slot for one projectile. At the pool's hard cap the shot
// is dropped and false returned; that is expected under load, not an error.
// A zero-length or non-finite direction is replaced with geom.Down.
func (e *Emitter) Activate(pos, dir geom.Vec2, speed float64, tag Tag) bool {
	if !pos.Finite() || math.IsNaN(speed) || math.IsInf(speed, 0) {
		e.dropped++
		e.log.Debug("non-finite shot dropped",
			zap.Float64("x", pos.X), zap.Float64("y", pos.Y), zap.Float64("speed", speed))
		return false
	}
	unit, ok := dir.Normalize()
	if !ok {
		unit = geom.Down
		e.invalid++
		if e.invalid%uint64(e.opts.InvalidLogEvery) == 1 || e.opts.InvalidLogEvery == 1 {
			e.log.Warn("invalid shot direction, using fallback",
				zap.Float64("dx", dir.X), zap.Float64("dy", dir.Y),
				zap.Float64("x", pos.X), zap.Float64("y", pos.Y),
				zap.Uint64("total", e.invalid))
		}
	}
	pr, ok := e.pool.Claim()
	if !ok {
		e.dropped++
		return false
	}
	pr.Pos = pos
	pr.Dir = unit
	pr.Speed = speed
	pr.Tag = tag
	pr.Damage = e.damageFor(tag.Faction)
	e.activated++
	return true
}

func (e *Emitter) emit(origin geom.Vec2, shots []Shot, tag Tag) int {
	n := 0
	for _, s := range shots {
		if e.Activate(origin.Add(s.Offset), s.Dir, s.Speed, tag) {
			n++
		}
	}
	return n
}

// Radial fires count shots evenly spaced by 2π/count from angleOffset.
func (e *Emitter) Radial(origin geom.Vec2, count int, speed, angleOffset float64, tag Tag) int {
	return e.emit(origin, RadialShots(count, speed, angleOffset), tag)
}

// Spiral fires one shot per arm starting at rotation.
func (e *Emitter) Spiral(origin geom.Vec2, arms int, speed, rotation float64, tag Tag) int {
	return e.emit(origin, SpiralShots(arms, speed, rotation), tag)
}

// Aimed fires count shots across spreadDeg centred on the bearing to target.
func (e *Emitter) Aimed(origin, target geom.Vec2, count int, spreadDeg, speed float64, tag Tag) int {
	return e.emit(origin, AimedShots(origin, target, count, spreadDeg, speed), tag)
}

// Wave fires a swaying fan around baseAngle.
func (e *Emitter) Wave(origin geom.Vec2, count int, speed, baseAngle, amplitudeDeg, phase float64, tag Tag) int {
	return e.emit(origin, WaveShots(count, speed, baseAngle, amplitudeDeg, phase), tag)
}

// Burst fires a randomised aimed shotgun.
func (e *Emitter) Burst(origin, target geom.Vec2, count int, spreadDeg, minSpeed, maxSpeed float64, tag Tag) int {
	return e.emit(origin, BurstShots(e.rng, origin, target, count, spreadDeg, minSpeed, maxSpeed), tag)
}

// Ring fires count shots outward from a circle of radius around origin.
func (e *Emitter) Ring(origin geom.Vec2, count int, radius, speed, angleOffset float64, tag Tag) int {
	return e.emit(origin, RingShots(count, radius, speed, angleOffset), tag)
}

// Cross fires four shots at right angles starting at rotation.
func (e *Emitter) Cross(origin geom.Vec2, speed, rotation float64, tag Tag) int {
	return e.emit(origin, CrossShots(speed, rotation), tag)
}

// RandomScatter fires count shots in random directions.
func (e *Emitter) RandomScatter(origin geom.Vec2, count int, minSpeed, maxSpeed float64, tag Tag) int {
	return e.emit(origin, ScatterShots(e.rng, count, minSpeed, maxSpeed), tag)
}

// Tick advances every active projectile, retires the ones that left the play
// area, then resolves collisions against the positions just computed.
func (e *Emitter) Tick(dt time.Duration) {
	step := dt.Seconds()
	e.pool.Sweep(func(p *Projectile) bool {
		p.Pos = p.Pos.Add(p.Dir.Scale(p.Speed * step))
		if !e.live.Contains(p.Pos) {
			e.retired++
			return false
		}
		return true
	})
	e.collide()
}

func (e *Emitter) collide() {
	if e.targets == nil || e.pool.Active() == 0 {
		return
	}
	e.scratch = e.targets.Targets(e.scratch[:0])
	if len(e.scratch) == 0 {
		return
	}
	r := e.opts.Radius
	e.grid.rebuild(e.scratch, r)
	e.pool.Sweep(func(p *Projectile) bool {
		// The lowest colliding index wins, so the player listed first takes
		// precedence over enemies sharing the spot.
		hit := -1
		e.grid.nearby(p.Pos, func(i int) {
			if hit >= 0 && i > hit {
				return
			}
			t := &e.scratch[i]
			if !p.Tag.Faction.Opposes(t.Faction) {
				return
			}
			reach := t.Radius + r
			if p.Pos.DistSq(t.Pos) <= reach*reach {
				hit = i
			}
		})
		if hit < 0 {
			return true
		}
		t := &e.scratch[hit]
		e.hits++
		if e.sink != nil {
			e.sink.ApplyDamage(t.ID, p.Damage)
		}
		if e.bus != nil {
			event.Publish(e.bus, event.ProjectileHit{Target: t.ID, Damage: p.Damage})
		}
		return false
	})
}

// ClearAll deactivates every active projectile and returns how many.
func (e *Emitter) ClearAll() int {
	n := e.pool.ReleaseAll()
	if n > 0 {
		e.log.Debug("pool cleared", zap.Int("cleared", n))
	}
	return n
}

// EachActive visits active projectiles read-only, for renderers and probes.
func (e *Emitter) EachActive(fn func(Projectile)) {
	e.pool.Sweep(func(p *Projectile) bool {
		fn(*p)
		return true
	})
}

// ActiveCount is the number of live projectiles.
func (e *Emitter) ActiveCount() int { return e.pool.Active() }

// PoolSize is the number of allocated slots.
func (e *Emitter) PoolSize() int { return e.pool.Size() }

// HardMax is the slot limit the pool never exceeds.
func (e *Emitter) HardMax() int { return e.pool.HardMax() }

// Stats is a snapshot of the emitter's counters.
type Stats struct {
	Active            int
	PoolSize          int
	Activated         uint64
	Dropped           uint64
	InvalidDirections uint64
	Hits              uint64
	Retired           uint64
}

func (e *Emitter) Stats() Stats {
	return Stats{
		Active:            e.pool.Active(),
		PoolSize:          e.pool.Size(),
		Activated:         e.activated,
		Dropped:           e.dropped,
		InvalidDirections: e.invalid,
		Hits:              e.hits,
		Retired:           e.retired,
	}
}
