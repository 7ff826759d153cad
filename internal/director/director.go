// Package director runs the endless wave loop: it decides when the next wave
// starts, how many enemies it has and where they go, and pays out rewards
// when the wave is cleared.
package director

import (
	"math"
	"math/rand"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/core/sched"
	"github.com/cipherstorm/director/internal/formation"
	"github.com/cipherstorm/director/internal/geom"
	"go.uber.org/zap"
)

// SpawnRequest describes one enemy for the Spawner to create.
type SpawnRequest struct {
	Kind         string
	Entry        geom.Vec2 // off-screen spawn point
	Target       geom.Vec2 // formation position to move to
	Health       int
	Radius       float64
	Score        int
	FireInterval time.Duration
	Complexity   int
	Milestone    Milestone
	Wave         int
}

// Spawner creates enemies. A zero EntityID means the spawn failed.
type Spawner interface {
	Spawn(req SpawnRequest) ecs.EntityID
}

// Player receives wave penalties and rewards.
type Player interface {
	ApplyPenalty(amount int)
	Heal(amount int)
	AddLife()
	AddScore(points int)
}

// Clearer wipes the projectile field.
type Clearer interface {
	ClearAll() int
}

// ThreatSource supplies the current difficulty multiplier.
type ThreatSource interface {
	ThreatMultiplier() float64
}

// Archetype is the template an enemy kind is built from.
type Archetype struct {
	Kind   string
	Health int
	Radius float64
	Score  int
}

// Roster holds the archetypes the director picks from. Milestone enemies
// take their health from Grunt scaled by the milestone multiplier.
type Roster struct {
	Grunt    Archetype
	Striker  Archetype
	MiniBoss Archetype
	Boss     Archetype
}

func DefaultRoster() Roster {
	return Roster{
		Grunt:    Archetype{Kind: "grunt", Health: 3, Radius: 14, Score: 10},
		Striker:  Archetype{Kind: "striker", Health: 5, Radius: 16, Score: 25},
		MiniBoss: Archetype{Kind: "miniboss", Radius: 32, Score: 250},
		Boss:     Archetype{Kind: "boss", Radius: 48, Score: 1000},
	}
}

// Deps bundles the collaborators a Director talks to.
type Deps struct {
	Spawner Spawner
	Player  Player
	Clearer Clearer
	Threat  ThreatSource
	Bus     *event.Bus
	Rng     *rand.Rand
	Log     *zap.Logger
}

// Director owns the wave state. Single-goroutine only.
type Director struct {
	cfg      config.WavesConfig
	roster   Roster
	table    formation.Table
	viewport geom.Rect
	deps     Deps
	log      *zap.Logger
	sched    *sched.Scheduler

	wave      int
	planned   int
	spawned   int
	failed    int
	queued    int
	remaining int
	active    bool
	halted    bool
	timedOut  bool
	elapsed   time.Duration
	limit     time.Duration
	idle      time.Duration
	delay     time.Duration
	geometry  formation.Geometry
	milestone Milestone
	live      map[ecs.EntityID]Milestone

	completed int
	timeouts  int
	total     int
	replaced  int
}

// New builds a director that is idle before wave 1.
func New(cfg config.WavesConfig, roster Roster, table formation.Table, viewport geom.Rect, deps Deps) *Director {
	if len(table) == 0 {
		table = formation.DefaultTable()
	}
	d := &Director{
		cfg:      cfg,
		roster:   roster,
		table:    table,
		viewport: viewport,
		deps:     deps,
		log:      deps.Log.Named("director"),
		sched:    sched.New(),
		live:     make(map[ecs.EntityID]Milestone),
	}
	d.Reset()
	return d
}

// Subscribe wires defeat notifications and session lifecycle.
func (d *Director) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.EnemyDefeated) { d.OnEnemyDefeated(e.EntityID) })
	event.Subscribe(bus, func(event.GameStarted) { d.Reset() })
	event.Subscribe(bus, func(event.GameOver) { d.Halt() })
}

// Tick runs due staggered spawns, then advances the idle or active timer.
func (d *Director) Tick(dt time.Duration) {
	if d.halted {
		return
	}
	d.sched.Advance(dt)

	if !d.active {
		d.idle += dt
		if d.idle >= d.delay {
			d.startWave()
		}
		return
	}

	d.elapsed += dt
	if d.elapsed > d.limit && !d.timedOut {
		d.applyTimeout()
	}
	if d.remaining == 0 && d.spawned+d.failed > 0 && d.sched.Len() == 0 {
		d.completeWave()
	}
}

// StartNextWave skips the rest of the inter-wave delay. It returns false
// while a wave is running or the session is over.
func (d *Director) StartNextWave() bool {
	if d.active || d.halted {
		return false
	}
	d.startWave()
	return true
}

func (d *Director) startWave() {
	d.wave++
	d.milestone = MilestoneFor(d.wave, d.cfg)
	d.spawned, d.failed, d.queued = 0, 0, 0
	d.elapsed = 0
	d.timedOut = false
	d.active = true
	clear(d.live)

	count := 1
	geometry := formation.Line
	if d.milestone == Regular {
		mult := 1.0
		if d.cfg.ScaleCountByThreat && d.deps.Threat != nil {
			mult = d.deps.Threat.ThreatMultiplier()
		}
		count = ScaledCount(d.wave, mult, d.cfg)
		choices := formation.Unlocked(d.wave, d.table)
		geometry = choices[d.deps.Rng.Intn(len(choices))]
	}
	d.geometry = geometry
	d.planned = count
	d.remaining = count
	d.limit = TimeLimit(count, d.cfg)

	d.schedule(formation.Layout(geometry, count, d.viewport, d.deps.Rng), d.milestone)

	d.log.Info("wave started",
		zap.Int("wave", d.wave),
		zap.Int("enemies", count),
		zap.Stringer("formation", geometry),
		zap.Stringer("milestone", d.milestone),
		zap.Duration("time_limit", d.limit))
	if d.deps.Bus != nil {
		event.Publish(d.deps.Bus, event.WaveStarted{
			Wave:      d.wave,
			Planned:   count,
			Formation: geometry.String(),
			Milestone: d.milestone.String(),
			TimeLimit: d.limit,
		})
	}
	// Slots with no delay spawn on the wave's first tick.
	d.sched.Advance(0)
}

// schedule queues one spawn per slot.
func (d *Director) schedule(a formation.Assignment, m Milestone) {
	if a.Replaced > 0 {
		d.replaced += a.Replaced
		d.log.Debug("formation slots moved in bounds",
			zap.Stringer("formation", a.Geometry), zap.Int("replaced", a.Replaced))
	}
	wave := d.wave
	for _, slot := range a.Slots {
		req := d.request(slot.Target, m)
		d.sched.After(slot.Delay, func() {
			if d.wave != wave || !d.active {
				return
			}
			d.spawn(req)
		})
	}
}

func (d *Director) request(target geom.Vec2, m Milestone) SpawnRequest {
	arch := d.roster.Grunt
	healthMul := 1.0
	tier := Complexity(d.wave, d.cfg)
	switch m {
	case MiniBoss:
		arch = d.roster.MiniBoss
		healthMul = d.cfg.MiniBossHealthMul
		tier = min(4, tier+1)
	case Boss:
		arch = d.roster.Boss
		healthMul = d.cfg.BossHealthMul
		tier = 4
	default:
		n := d.queued
		if d.cfg.StrikerEvery > 0 && d.wave >= d.cfg.StrikerFromWave && n%d.cfg.StrikerEvery == d.cfg.StrikerEvery-1 {
			arch = d.roster.Striker
		}
	}
	base := arch.Health
	if m != Regular {
		base = d.roster.Grunt.Health
	}
	d.queued++
	d.total++
	health := int(math.Round(float64(base) * healthMul * HealthScale(d.wave, d.cfg)))
	return SpawnRequest{
		Kind:         arch.Kind,
		Entry:        formation.EntryPoint(target, d.viewport),
		Target:       target,
		Health:       max(1, health),
		Radius:       arch.Radius,
		Score:        arch.Score,
		FireInterval: FireInterval(d.wave, d.cfg),
		Complexity:   tier,
		Milestone:    m,
		Wave:         d.wave,
	}
}

func (d *Director) spawn(req SpawnRequest) {
	id := d.deps.Spawner.Spawn(req)
	if id.IsZero() {
		d.failed++
		d.remaining = max(0, d.remaining-1)
		d.log.Warn("spawn failed", zap.Int("wave", d.wave), zap.String("kind", req.Kind))
		return
	}
	d.spawned++
	d.live[id] = req.Milestone
	if d.deps.Bus != nil {
		event.Publish(d.deps.Bus, event.EnemySpawned{EntityID: id, Wave: d.wave, Milestone: req.Milestone.String()})
	}
}

func (d *Director) applyTimeout() {
	d.timedOut = true
	d.timeouts++
	extra := 0
	if d.wave >= d.cfg.TimeoutExtraWave {
		extra = d.cfg.TimeoutExtraCount
	}
	d.log.Info("wave timed out",
		zap.Int("wave", d.wave),
		zap.Int("remaining", d.remaining),
		zap.Int("extra_spawns", extra))
	if d.deps.Player != nil {
		d.deps.Player.ApplyPenalty(d.cfg.TimeoutDamage)
	}
	if extra > 0 {
		d.planned += extra
		d.remaining += extra
		d.schedule(formation.Layout(formation.Random, extra, d.viewport, d.deps.Rng), Regular)
		d.sched.Advance(0)
	}
	if d.deps.Bus != nil {
		event.Publish(d.deps.Bus, event.WaveTimedOut{Wave: d.wave, ExtraSpawns: extra})
	}
}

func (d *Director) completeWave() {
	d.active = false
	d.completed++
	d.idle = 0
	d.delay = InterWaveDelay(d.wave, d.cfg)

	score := ScoreBonus(d.wave, d.cfg)
	heal := HealAmount(d.wave, d.cfg)
	life := GrantsLife(d.wave, d.cfg)
	if p := d.deps.Player; p != nil {
		p.AddScore(score)
		p.Heal(heal)
		if life {
			p.AddLife()
		}
	}
	d.log.Info("wave completed",
		zap.Int("wave", d.wave),
		zap.Int("spawned", d.spawned),
		zap.Duration("duration", d.elapsed),
		zap.Bool("timed_out", d.timedOut),
		zap.Int("score_bonus", score),
		zap.Int("heal", heal),
		zap.Bool("extra_life", life),
		zap.Duration("next_in", d.delay))
	if d.deps.Bus != nil {
		event.Publish(d.deps.Bus, event.WaveCompleted{
			Wave:     d.wave,
			Spawned:  d.spawned,
			Duration: d.elapsed,
			TimedOut: d.timedOut,
		})
	}
}

// OnEnemyDefeated counts a defeat against the running wave. It returns false
// for ids the current wave did not spawn or already counted.
func (d *Director) OnEnemyDefeated(id ecs.EntityID) bool {
	if !d.active {
		return false
	}
	m, ok := d.live[id]
	if !ok {
		return false
	}
	delete(d.live, id)
	d.remaining = max(0, d.remaining-1)
	if m == Boss && d.deps.Clearer != nil {
		n := d.deps.Clearer.ClearAll()
		d.log.Info("boss defeated, field cleared", zap.Int("wave", d.wave), zap.Int("cleared", n))
	}
	return true
}

// Reset returns to the idle state before wave 1.
func (d *Director) Reset() {
	d.sched.Clear()
	clear(d.live)
	d.wave, d.planned, d.spawned, d.failed, d.queued, d.remaining = 0, 0, 0, 0, 0, 0
	d.active, d.halted, d.timedOut = false, false, false
	d.elapsed, d.limit, d.idle = 0, 0, 0
	d.delay = InterWaveDelay(0, d.cfg)
	d.milestone = Regular
	d.completed, d.timeouts, d.total, d.replaced = 0, 0, 0, 0
}

// Halt stops the director until the next Reset.
func (d *Director) Halt() {
	d.halted = true
	d.active = false
	d.sched.Clear()
	clear(d.live)
}

func (d *Director) CurrentWave() int      { return d.wave }
func (d *Director) EnemiesRemaining() int { return d.remaining }
func (d *Director) Active() bool          { return d.active }
func (d *Director) Halted() bool          { return d.halted }
func (d *Director) PendingSpawns() int    { return d.sched.Len() }

// WaveTimeRemaining is zero between waves and after the limit passes.
func (d *Director) WaveTimeRemaining() time.Duration {
	if !d.active {
		return 0
	}
	return max(0, d.limit-d.elapsed)
}

// Snapshot is a read-only view of the wave state.
type Snapshot struct {
	Wave      int
	Active    bool
	Halted    bool
	Planned   int
	Spawned   int
	Remaining int
	Elapsed   time.Duration
	TimeLimit time.Duration
	TimedOut  bool
	Formation string
	Milestone string
	NextIn    time.Duration // until the next wave while idle
	Completed int
	Timeouts  int
	Replaced  int
}

func (d *Director) Snapshot() Snapshot {
	s := Snapshot{
		Wave:      d.wave,
		Active:    d.active,
		Halted:    d.halted,
		Planned:   d.planned,
		Spawned:   d.spawned,
		Remaining: d.remaining,
		Elapsed:   d.elapsed,
		TimeLimit: d.limit,
		TimedOut:  d.timedOut,
		Milestone: d.milestone.String(),
		Completed: d.completed,
		Timeouts:  d.timeouts,
		Replaced:  d.replaced,
	}
	if d.wave > 0 {
		s.Formation = d.geometry.String()
	}
	if !d.active && !d.halted {
		s.NextIn = max(0, d.delay-d.idle)
	}
	return s
}
