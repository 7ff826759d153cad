package system

import (
	"math"
	"time"

	"github.com/cipherstorm/director/internal/bullet"
	"github.com/cipherstorm/director/internal/component"
	"github.com/cipherstorm/director/internal/core/ecs"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/geom"
	"github.com/cipherstorm/director/internal/scripting"
	"github.com/cipherstorm/director/internal/world"
	"go.uber.org/zap"
)

// VolleyScript chooses the patterns of each volley. *scripting.Engine
// satisfies it; a nil VolleyScript means built-in volleys only.
type VolleyScript interface {
	ShooterVolley(ctx scripting.VolleyContext) ([]scripting.PatternCommand, bool)
	RotationSpeed(tier int) float64
}

// ShooterSystem fires enemy volleys. An enemy starts firing once it reaches
// its formation slot and then fires every Interval. Projectile speeds are
// scaled by the threat multiplier here, before they reach the emitter.
// Phase 2 (Update).
type ShooterSystem struct {
	world  *world.State
	gun    *bullet.Emitter
	script VolleyScript
	threat director.ThreatSource
	log    *zap.Logger

	volleys  int
	scripted int
	shots    int
	unknown  map[string]int
}

func NewShooterSystem(ws *world.State, gun *bullet.Emitter, script VolleyScript, threat director.ThreatSource, log *zap.Logger) *ShooterSystem {
	return &ShooterSystem{
		world:   ws,
		gun:     gun,
		script:  script,
		threat:  threat,
		log:     log.Named("shooter"),
		unknown: make(map[string]int),
	}
}

func (s *ShooterSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ShooterSystem) Update(dt time.Duration) {
	mul := 1.0
	if s.threat != nil {
		mul = s.threat.ThreatMultiplier()
	}
	aim := s.world.Player.Pos
	step := dt.Seconds()

	ecs.Each3(s.world.Enemies, s.world.Transforms, s.world.Shooters,
		func(id ecs.EntityID, e *component.Enemy, t *component.Transform, sh *component.Shooter) {
			if s.world.ECS.Doomed(id) {
				return
			}
			if sh.Spin == 0 {
				sh.Spin = s.spin(sh.Complexity)
			}
			sh.Rotation = math.Mod(sh.Rotation+sh.Spin*step, 2*math.Pi)
			if !t.Arrived || sh.Interval <= 0 {
				return
			}
			sh.Timer -= dt
			if sh.Timer > 0 {
				return
			}
			sh.Timer += sh.Interval
			if sh.Timer <= 0 {
				sh.Timer = sh.Interval
			}
			s.fire(e, t.Pos, aim, sh, mul)
		})
}

func (s *ShooterSystem) spin(tier int) float64 {
	if s.script != nil {
		return s.script.RotationSpeed(tier)
	}
	return scripting.DefaultSpin(tier)
}

func (s *ShooterSystem) volley(e *component.Enemy, origin, aim geom.Vec2, sh *component.Shooter) []scripting.PatternCommand {
	if s.script != nil {
		cmds, ok := s.script.ShooterVolley(scripting.VolleyContext{
			Kind:      e.Kind,
			Milestone: e.Milestone,
			Tier:      sh.Complexity,
			Wave:      e.Wave,
			Volley:    sh.Volleys,
			X:         origin.X,
			Y:         origin.Y,
			TargetX:   aim.X,
			TargetY:   aim.Y,
			Rotation:  sh.Rotation,
			HPRatio:   e.HPRatio(),
		})
		if ok {
			s.scripted++
			return cmds
		}
	}
	return scripting.DefaultVolley(sh.Complexity)
}

func (s *ShooterSystem) fire(e *component.Enemy, origin, aim geom.Vec2, sh *component.Shooter, mul float64) {
	tag := bullet.Tag{Faction: bullet.Hostile, Style: e.Style}
	for _, c := range s.volley(e, origin, aim, sh) {
		s.shots += s.dispatch(c, origin, aim, sh, mul, tag)
	}
	sh.Volleys++
	s.volleys++
}

// dispatch maps one command onto an emitter pattern and returns the shots
// actually fired.
func (s *ShooterSystem) dispatch(c scripting.PatternCommand, origin, aim geom.Vec2, sh *component.Shooter, mul float64, tag bullet.Tag) int {
	speed := c.Speed * mul
	switch c.Pattern {
	case "radial":
		return s.gun.Radial(origin, c.Count, speed, sh.Rotation, tag)
	case "spiral":
		return s.gun.Spiral(origin, c.Arms, speed, sh.Rotation, tag)
	case "aimed":
		return s.gun.Aimed(origin, aim, c.Count, c.Spread, speed, tag)
	case "wave":
		base := aim.Sub(origin).Angle()
		return s.gun.Wave(origin, c.Count, speed, base, c.Amplitude, float64(sh.Volleys)*0.5, tag)
	case "burst":
		return s.gun.Burst(origin, aim, c.Count, c.Spread, c.MinSpeed*mul, c.MaxSpeed*mul, tag)
	case "ring":
		return s.gun.Ring(origin, c.Count, c.Radius, speed, sh.Rotation, tag)
	case "cross":
		return s.gun.Cross(origin, speed, sh.Rotation, tag)
	case "scatter":
		return s.gun.RandomScatter(origin, c.Count, c.MinSpeed*mul, c.MaxSpeed*mul, tag)
	}
	s.unknown[c.Pattern]++
	if s.unknown[c.Pattern] == 1 {
		s.log.Warn("unknown pattern in volley, skipped", zap.String("pattern", c.Pattern))
	}
	return 0
}

// ShooterStats counts volleys for reports.
type ShooterStats struct {
	Volleys  int
	Scripted int
	Shots    int
	Unknown  int
}

func (s *ShooterSystem) Stats() ShooterStats {
	n := 0
	for _, c := range s.unknown {
		n += c
	}
	return ShooterStats{Volleys: s.volleys, Scripted: s.scripted, Shots: s.shots, Unknown: n}
}
