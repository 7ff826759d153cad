package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: player stand-in moves and fires
	PhasePreUpdate               // 1: session lifecycle transitions
	PhaseUpdate                  // 2: difficulty, director, enemies, shooters
	PhasePostUpdate              // 3: projectile advance + collision
	PhaseOutput                  // 4: periodic status reporting
	PhasePersist                 // 5: telemetry batch flush
	PhaseCleanup                 // 6: destroy queued entities
)

var phaseNames = [...]string{"input", "pre_update", "update", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every simulation system implements. Update is
// called exactly once per tick from the single game-loop goroutine.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
