package system

import (
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/core/sched"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/world"
	"go.uber.org/zap"
)

// Result is the outcome of one game.
type Result struct {
	Run      int
	Wave     int
	Score    int
	Duration time.Duration
}

// SessionSystem owns the game lifecycle. It starts the first game on its
// first update, turns the last lost life into GameOver and, with auto retry,
// starts the next game after RetryDelay. Phase 1 (PreUpdate).
type SessionSystem struct {
	cfg      config.SimulationConfig
	world    *world.State
	director *director.Director
	clearer  director.Clearer
	bus      *event.Bus
	log      *zap.Logger
	sched    *sched.Scheduler

	run     int
	playing bool
	done    bool
	elapsed time.Duration
	results []Result
}

func NewSessionSystem(cfg config.SimulationConfig, ws *world.State, d *director.Director, clearer director.Clearer, bus *event.Bus, log *zap.Logger) *SessionSystem {
	return &SessionSystem{
		cfg:      cfg,
		world:    ws,
		director: d,
		clearer:  clearer,
		bus:      bus,
		log:      log.Named("session"),
		sched:    sched.New(),
	}
}

// Subscribe wires the session to the bus. Register it before the other
// GameStarted listeners so the world is clean when they run.
func (s *SessionSystem) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.GameStarted) { s.onGameStarted(e) })
	event.Subscribe(bus, func(e event.PlayerDied) {
		if e.LivesLeft == 0 {
			s.gameOver()
		}
	})
}

func (s *SessionSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *SessionSystem) Update(dt time.Duration) {
	if s.run == 0 {
		s.start(1)
		return
	}
	if s.playing {
		s.elapsed += dt
	}
	s.sched.Advance(dt)
}

func (s *SessionSystem) start(run int) {
	event.Publish(s.bus, event.GameStarted{Run: run})
}

func (s *SessionSystem) onGameStarted(e event.GameStarted) {
	s.run = e.Run
	s.playing = true
	s.elapsed = 0
	s.world.ResetForNewGame()
	if s.clearer != nil {
		s.clearer.ClearAll()
	}
	s.log.Info("game started", zap.Int("run", e.Run))
}

func (s *SessionSystem) gameOver() {
	if !s.playing {
		return
	}
	s.playing = false
	r := Result{
		Run:      s.run,
		Wave:     s.director.CurrentWave(),
		Score:    s.world.Player.Score,
		Duration: s.elapsed,
	}
	s.results = append(s.results, r)
	s.log.Info("game over",
		zap.Int("run", r.Run),
		zap.Int("wave", r.Wave),
		zap.Int("score", r.Score),
		zap.Duration("duration", r.Duration),
	)
	event.Publish(s.bus, event.GameOver{Run: r.Run, Wave: r.Wave, Score: r.Score})

	if !s.cfg.AutoRetry {
		s.done = true
		return
	}
	next := s.run + 1
	s.sched.After(s.cfg.RetryDelay, func() { s.start(next) })
}

// Run is the current game's number, 0 before the first game.
func (s *SessionSystem) Run() int { return s.run }

// Playing reports whether a game is in progress.
func (s *SessionSystem) Playing() bool { return s.playing }

// Done reports that the game is over and no retry will follow.
func (s *SessionSystem) Done() bool { return s.done }

func (s *SessionSystem) Results() []Result { return s.results }

// Best returns the highest-scoring finished game.
func (s *SessionSystem) Best() (Result, bool) {
	if len(s.results) == 0 {
		return Result{}, false
	}
	best := s.results[0]
	for _, r := range s.results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}
	return best, true
}
