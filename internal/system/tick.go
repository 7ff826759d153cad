package system

import (
	"time"

	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/world"
)

// Ticker is anything advanced once per tick by dt.
type Ticker interface {
	Tick(dt time.Duration)
}

// TickSystem adapts a Ticker to the runner at a fixed phase. The difficulty
// controller, the wave director and the emitter all run through it.
type TickSystem struct {
	name   string
	phase  coresys.Phase
	ticker Ticker
}

func NewTickSystem(name string, phase coresys.Phase, t Ticker) *TickSystem {
	return &TickSystem{name: name, phase: phase, ticker: t}
}

func (s *TickSystem) Phase() coresys.Phase { return s.phase }

func (s *TickSystem) Update(dt time.Duration) { s.ticker.Tick(dt) }

func (s *TickSystem) Name() string { return s.name }

// AutopilotSystem drives the player stand-in. Phase 0 (Input).
type AutopilotSystem struct {
	pilot *world.Autopilot
}

func NewAutopilotSystem(pilot *world.Autopilot) *AutopilotSystem {
	return &AutopilotSystem{pilot: pilot}
}

func (s *AutopilotSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *AutopilotSystem) Update(dt time.Duration) { s.pilot.Step(dt) }

// PlayerSystem runs down invulnerability and resolves pending deaths once
// the deathbomb window closes. Phase 2 (Update), after the difficulty
// controller so an automatic deathbomb lands first.
type PlayerSystem struct {
	player *world.Player
}

func NewPlayerSystem(p *world.Player) *PlayerSystem {
	return &PlayerSystem{player: p}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlayerSystem) Update(dt time.Duration) { s.player.Tick(dt) }
