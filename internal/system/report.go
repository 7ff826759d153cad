package system

import (
	"time"

	"github.com/cipherstorm/director/internal/bullet"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/difficulty"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/world"
	"go.uber.org/zap"
)

// Status is everything the periodic report prints.
type Status struct {
	Director   director.Snapshot
	Difficulty difficulty.State
	Emitter    bullet.Stats
	World      world.Counters
	WaveLeft   time.Duration
	Cooldown   bool
	HP         int
	Lives      int
	Score      int
	Absorbed   int // damage prevented by resistance
}

// ReportSystem logs a status line every interval of simulated time.
// Phase 4 (Output).
type ReportSystem struct {
	director *director.Director
	ctrl     *difficulty.Controller
	gun      *bullet.Emitter
	world    *world.State
	log      *zap.Logger
	interval time.Duration
	since    time.Duration
	reports  int
}

func NewReportSystem(interval time.Duration, d *director.Director, ctrl *difficulty.Controller, gun *bullet.Emitter, ws *world.State, log *zap.Logger) *ReportSystem {
	return &ReportSystem{
		director: d,
		ctrl:     ctrl,
		gun:      gun,
		world:    ws,
		log:      log.Named("report"),
		interval: interval,
	}
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReportSystem) Update(dt time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.since += dt
	if s.since < s.interval {
		return
	}
	s.since -= s.interval
	s.emit(s.Status())
}

// Status gathers a snapshot of every component.
func (s *ReportSystem) Status() Status {
	p := s.world.Player
	return Status{
		Director:   s.director.Snapshot(),
		Difficulty: s.ctrl.Snapshot(),
		Emitter:    s.gun.Stats(),
		World:      s.world.Counters(),
		WaveLeft:   s.director.WaveTimeRemaining(),
		Cooldown:   s.ctrl.OnCooldown(),
		HP:         p.HP,
		Lives:      p.Lives,
		Score:      p.Score,
		Absorbed:   p.Absorbed(),
	}
}

func (s *ReportSystem) emit(st Status) {
	s.reports++
	s.log.Info("status",
		zap.Int("wave", st.Director.Wave),
		zap.Bool("wave_active", st.Director.Active),
		zap.Int("enemies", st.Director.Remaining),
		zap.String("formation", st.Director.Formation),
		zap.Duration("wave_time_left", st.WaveLeft),
		zap.Float64("threat", st.Difficulty.Threat),
		zap.Float64("multiplier", st.Difficulty.Multiplier),
		zap.Float64("resistance", st.Difficulty.Resistance),
		zap.Int("panic_charges", st.Difficulty.Charges),
		zap.Bool("panic_cooldown", st.Cooldown),
		zap.Int("projectiles", st.Emitter.Active),
		zap.Int("pool_size", st.Emitter.PoolSize),
		zap.Uint64("dropped", st.Emitter.Dropped),
		zap.Int("entities", st.World.Entities),
		zap.Int("hp", st.HP),
		zap.Int("lives", st.Lives),
		zap.Int("score", st.Score),
		zap.Int("absorbed", st.Absorbed),
	)
}

// Reports is the number of status lines logged.
func (s *ReportSystem) Reports() int { return s.reports }
