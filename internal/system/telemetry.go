package system

import (
	"context"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/event"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/persist"
	"github.com/cipherstorm/director/internal/world"
	"go.uber.org/zap"
)

// TelemetryWriter stores batches of run and wave records.
type TelemetryWriter interface {
	WriteBatch(ctx context.Context, b persist.Batch) error
}

// ThreatLevels reports the controller state recorded with each row.
type ThreatLevels interface {
	ThreatLevel() float64
	Resistance() float64
}

// TelemetrySystem collects a record per completed wave and per finished
// game and writes them in batches every flushInterval ticks. A failed write
// keeps the batch for the next flush; beyond maxPending records the oldest
// are dropped. Phase 5 (Persist).
type TelemetrySystem struct {
	writer  TelemetryWriter
	world   *world.State
	levels  ThreatLevels
	session string
	seed    string
	log     *zap.Logger

	interval   int
	maxPending int
	tickCount  int
	pending    persist.Batch

	run        int
	runElapsed time.Duration
	deathsAt   int
	savesAt    int
	formation  string
	milestone  string

	written  int
	dropped  int
	failures int
}

func NewTelemetrySystem(cfg config.DatabaseConfig, writer TelemetryWriter, ws *world.State, levels ThreatLevels, session, seed string, log *zap.Logger) *TelemetrySystem {
	interval := cfg.FlushInterval
	if interval < 1 {
		interval = 1
	}
	return &TelemetrySystem{
		writer:     writer,
		world:      ws,
		levels:     levels,
		session:    session,
		seed:       seed,
		log:        log.Named("telemetry"),
		interval:   interval,
		maxPending: cfg.MaxPending,
	}
}

func (s *TelemetrySystem) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.GameStarted) {
		s.run = e.Run
		s.runElapsed = 0
		s.deathsAt = s.world.Player.Deaths()
		s.savesAt = s.world.Player.Saves()
	})
	event.Subscribe(bus, func(e event.WaveStarted) {
		s.formation = e.Formation
		s.milestone = e.Milestone
	})
	event.Subscribe(bus, func(e event.WaveCompleted) {
		s.pending.Waves = append(s.pending.Waves, persist.WaveRecord{
			Session:   s.session,
			Run:       s.run,
			Wave:      e.Wave,
			Formation: s.formation,
			Milestone: s.milestone,
			Spawned:   e.Spawned,
			Duration:  e.Duration,
			TimedOut:  e.TimedOut,
			Threat:    s.levels.ThreatLevel(),
		})
		s.enforceCap()
	})
	event.Subscribe(bus, func(e event.GameOver) {
		s.pending.Runs = append(s.pending.Runs, persist.RunRecord{
			Session:    s.session,
			Run:        e.Run,
			Seed:       s.seed,
			FinalWave:  e.Wave,
			Score:      e.Score,
			Deaths:     s.world.Player.Deaths() - s.deathsAt,
			Saves:      s.world.Player.Saves() - s.savesAt,
			Threat:     s.levels.ThreatLevel(),
			Resistance: s.levels.Resistance(),
			Duration:   s.runElapsed,
		})
		s.enforceCap()
	})
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(dt time.Duration) {
	s.runElapsed += dt
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes everything pending now. Called on shutdown as well.
func (s *TelemetrySystem) Flush() {
	n := s.pending.Len()
	if n == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.writer.WriteBatch(ctx, s.pending); err != nil {
		s.failures++
		s.log.Warn("telemetry flush failed, keeping batch",
			zap.Int("records", n), zap.Int("failures", s.failures), zap.Error(err))
		return
	}
	s.written += n
	s.pending = persist.Batch{}
	s.log.Debug("telemetry flushed", zap.Int("records", n))
}

// enforceCap drops the oldest wave records first, then the oldest runs.
func (s *TelemetrySystem) enforceCap() {
	if s.maxPending <= 0 {
		return
	}
	over := s.pending.Len() - s.maxPending
	if over <= 0 {
		return
	}
	if w := min(over, len(s.pending.Waves)); w > 0 {
		s.pending.Waves = append(s.pending.Waves[:0], s.pending.Waves[w:]...)
		over -= w
		s.dropped += w
	}
	if over > 0 {
		s.pending.Runs = append(s.pending.Runs[:0], s.pending.Runs[over:]...)
		s.dropped += over
	}
	s.log.Warn("telemetry backlog full, dropped oldest records", zap.Int("dropped_total", s.dropped))
}

// Pending is the number of records awaiting a flush.
func (s *TelemetrySystem) Pending() int { return s.pending.Len() }
func (s *TelemetrySystem) Written() int { return s.written }
func (s *TelemetrySystem) Dropped() int { return s.dropped }
