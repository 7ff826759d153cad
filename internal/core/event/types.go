package event

import (
	"time"

	"github.com/cipherstorm/director/internal/core/ecs"
)

// Session lifecycle.

type GameStarted struct {
	Run int // 1-based retry counter within the process
}

type GameOver struct {
	Run   int
	Wave  int
	Score int
}

// FullReset clears progression that normally survives retries.
type FullReset struct{}

// Waves.

type WaveStarted struct {
	Wave      int
	Planned   int
	Formation string
	Milestone string // "", "miniboss" or "boss"
	TimeLimit time.Duration
}

type WaveCompleted struct {
	Wave     int
	Spawned  int
	Duration time.Duration
	TimedOut bool
}

type WaveTimedOut struct {
	Wave        int
	ExtraSpawns int
}

// Enemies.

type EnemySpawned struct {
	EntityID  ecs.EntityID
	Wave      int
	Milestone string
}

type EnemyDefeated struct {
	EntityID ecs.EntityID
	Score    int
}

// Player.

type PlayerDamaged struct {
	Amount int
	HP     int
}

type PlayerDied struct {
	LivesLeft int
}

// Projectiles and panic bursts.

type PanicBurst struct {
	Cleared int
	Auto    bool // fired by the deathbomb window rather than on request
}

type ProjectileHit struct {
	Target ecs.EntityID
	Damage int
}
