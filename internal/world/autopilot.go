package world

import (
	"math"
	"time"

	"github.com/cipherstorm/director/internal/bullet"
	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/geom"
)

// Gun is the part of the emitter the autopilot uses.
type Gun interface {
	Aimed(origin, target geom.Vec2, count int, spreadDeg, speed float64, tag bullet.Tag) int
	EachActive(fn func(bullet.Projectile))
}

// PanicButton triggers a panic burst.
type PanicButton interface {
	TryTriggerPanicBurst() bool
}

// dodgeRadius is how close a hostile projectile gets before the autopilot
// steers away from it.
const dodgeRadius = 70

// Autopilot stands in for player input in headless runs: it strafes along
// the bottom of the screen, sidesteps close projectiles, fires at the
// nearest enemy and presses the panic button when a death is pending.
type Autopilot struct {
	state  *State
	gun    Gun
	button PanicButton
	cfg    config.PlayerConfig
	dir    float64
	cool   time.Duration
	shots  int
	panics int
}

func NewAutopilot(state *State, gun Gun, button PanicButton, cfg config.PlayerConfig) *Autopilot {
	return &Autopilot{state: state, gun: gun, button: button, cfg: cfg, dir: 1}
}

// Step moves and fires for one tick.
func (a *Autopilot) Step(dt time.Duration) {
	p := a.state.Player
	if p.Out() {
		return
	}
	if p.Dying() && a.button != nil && a.button.TryTriggerPanicBurst() {
		a.panics++
	}

	vp := a.state.Viewport()
	steer := a.dir
	if threat, ok := a.closestThreat(p.Pos); ok {
		// Step away from the projectile horizontally.
		if threat.X > p.Pos.X {
			steer = -1
		} else {
			steer = 1
		}
	}
	p.Pos.X += steer * a.cfg.Speed * dt.Seconds()
	margin := p.Radius * 2
	if p.Pos.X <= vp.MinX+margin {
		p.Pos.X = vp.MinX + margin
		a.dir = 1
	} else if p.Pos.X >= vp.MaxX-margin {
		p.Pos.X = vp.MaxX - margin
		a.dir = -1
	}

	a.cool = max(0, a.cool-dt)
	if a.cool > 0 {
		return
	}
	target, ok := a.state.NearestEnemy(p.Pos)
	if !ok {
		return
	}
	a.cool = a.cfg.FireInterval
	a.shots += a.gun.Aimed(p.Pos, target, 1, 0, a.cfg.ShotSpeed, bullet.Tag{Faction: bullet.Friendly})
}

func (a *Autopilot) closestThreat(pos geom.Vec2) (geom.Vec2, bool) {
	best, found := geom.Vec2{}, false
	bestD := math.Inf(1)
	a.gun.EachActive(func(pr bullet.Projectile) {
		if pr.Tag.Faction != bullet.Hostile {
			return
		}
		d := pr.Pos.DistSq(pos)
		if d < dodgeRadius*dodgeRadius && d < bestD && pr.Dir.Dot(pos.Sub(pr.Pos)) > 0 {
			best, bestD, found = pr.Pos, d, true
		}
	})
	return best, found
}

func (a *Autopilot) Shots() int  { return a.shots }
func (a *Autopilot) Panics() int { return a.panics }
