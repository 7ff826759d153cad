package world

import (
	"github.com/cipherstorm/director/internal/bullet"
	"github.com/cipherstorm/director/internal/component"
	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/geom"
	"go.uber.org/zap"
)

// MaxEnemies bounds live enemies; spawns beyond it fail.
const MaxEnemies = 256

// State holds every entity in play: the ECS world with its enemy stores and
// the player. Accessed only from the game loop goroutine, no locks needed.
type State struct {
	ECS        *ecs.World
	Transforms *ecs.PtrComponentStore[component.Transform]
	Enemies    *ecs.PtrComponentStore[component.Enemy]
	Shooters   *ecs.PtrComponentStore[component.Shooter]
	Player     *Player

	viewport   geom.Rect
	entrySpeed float64
	styles     map[string]uint8
	bus        *event.Bus
	log        *zap.Logger

	spawned  int
	defeated int
	refused  int
}

// NewState builds the world and its player. styles maps enemy kinds to
// projectile style ids and may be nil.
func NewState(cfg *config.Config, scaler DamageScaler, styles map[string]uint8, bus *event.Bus, log *zap.Logger) *State {
	w := ecs.NewWorld()
	s := &State{
		ECS:        w,
		Transforms: ecs.NewPtrComponentStore[component.Transform](),
		Enemies:    ecs.NewPtrComponentStore[component.Enemy](),
		Shooters:   ecs.NewPtrComponentStore[component.Shooter](),
		viewport:   geom.Viewport(cfg.Viewport.Width, cfg.Viewport.Height),
		entrySpeed: cfg.Waves.EnemyEntrySpeed,
		styles:     styles,
		bus:        bus,
		log:        log.Named("world"),
	}
	w.Track(s.Transforms, s.Enemies, s.Shooters)
	s.Player = newPlayer(w.CreateEntity(), cfg.Player, cfg.Difficulty.DeathbombWindow, s.PlayerSpawn(), scaler, bus, log)
	return s
}

// Subscribe routes panic bursts to the player's pending death.
func (s *State) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.PanicBurst) { s.Player.OnPanicBurst() })
}

// Viewport is the play area.
func (s *State) Viewport() geom.Rect { return s.viewport }

// PlayerSpawn is the player's start position, bottom centre.
func (s *State) PlayerSpawn() geom.Vec2 {
	return geom.V(s.viewport.Center().X, s.viewport.MaxY-0.1*s.viewport.Height())
}

// Spawn creates an enemy at req.Entry heading for req.Target. It returns
// the zero id once MaxEnemies are alive.
func (s *State) Spawn(req director.SpawnRequest) ecs.EntityID {
	if s.Enemies.Len() >= MaxEnemies {
		s.refused++
		s.log.Warn("enemy cap reached, spawn refused",
			zap.String("kind", req.Kind), zap.Int("wave", req.Wave))
		return 0
	}
	id := s.ECS.CreateEntity()
	s.Transforms.Set(id, &component.Transform{
		Pos:    req.Entry,
		Target: req.Target,
		Speed:  s.entrySpeed,
	})
	s.Enemies.Set(id, &component.Enemy{
		Kind:      req.Kind,
		HP:        req.Health,
		MaxHP:     req.Health,
		Radius:    req.Radius,
		Score:     req.Score,
		Wave:      req.Wave,
		Milestone: req.Milestone.String(),
		Style:     s.styles[req.Kind],
	})
	s.Shooters.Set(id, &component.Shooter{
		Interval:   req.FireInterval,
		Timer:      req.FireInterval / 2,
		Complexity: req.Complexity,
	})
	s.spawned++
	s.log.Debug("enemy spawned", zap.Uint64("id", uint64(id)), zap.String("kind", req.Kind))
	return id
}

// Targets lists the player and every enemy not already defeated this tick.
func (s *State) Targets(dst []bullet.Target) []bullet.Target {
	if !s.Player.Out() {
		dst = append(dst, bullet.Target{
			ID:      s.Player.ID,
			Pos:     s.Player.Pos,
			Radius:  s.Player.Radius,
			Faction: bullet.Friendly,
		})
	}
	ecs.Each2(s.Enemies, s.Transforms, func(id ecs.EntityID, e *component.Enemy, t *component.Transform) {
		if s.ECS.Doomed(id) {
			return
		}
		dst = append(dst, bullet.Target{ID: id, Pos: t.Pos, Radius: e.Radius, Faction: bullet.Hostile})
	})
	return dst
}

// ApplyDamage routes a projectile hit to the player or an enemy.
func (s *State) ApplyDamage(target ecs.EntityID, amount int) {
	if target == s.Player.ID {
		s.Player.ApplyDamage(amount)
		return
	}
	e, ok := s.Enemies.Get(target)
	if !ok || s.ECS.Doomed(target) {
		return
	}
	e.HP -= amount
	if e.HP > 0 {
		return
	}
	s.defeated++
	s.ECS.MarkForDestruction(target)
	s.Player.AddScore(e.Score)
	s.log.Debug("enemy defeated", zap.Uint64("id", uint64(target)), zap.String("kind", e.Kind))
	if s.bus != nil {
		event.Publish(s.bus, event.EnemyDefeated{EntityID: target, Score: e.Score})
	}
}

// NearestEnemy returns the position of the closest live enemy to p.
func (s *State) NearestEnemy(p geom.Vec2) (geom.Vec2, bool) {
	best, found := geom.Vec2{}, false
	bestD := 0.0
	ecs.Each2(s.Enemies, s.Transforms, func(id ecs.EntityID, _ *component.Enemy, t *component.Transform) {
		if s.ECS.Doomed(id) {
			return
		}
		if d := t.Pos.DistSq(p); !found || d < bestD {
			best, bestD, found = t.Pos, d, true
		}
	})
	return best, found
}

// EnemyCount is the number of enemies in play.
func (s *State) EnemyCount() int { return s.Enemies.Len() }

// ResetForNewGame removes every enemy and restores the player.
func (s *State) ResetForNewGame() {
	for _, id := range s.Enemies.IDs() {
		s.ECS.MarkForDestruction(id)
	}
	n := s.ECS.FlushDestroyQueue()
	s.Player.reset(s.PlayerSpawn())
	s.log.Debug("world reset", zap.Int("enemies_removed", n))
}

// Counters for reports.
type Counters struct {
	Spawned  int
	Defeated int
	Refused  int
	Entities int // live entities, player included
}

func (s *State) Counters() Counters {
	return Counters{
		Spawned:  s.spawned,
		Defeated: s.defeated,
		Refused:  s.refused,
		Entities: s.ECS.Pool().Live(),
	}
}
