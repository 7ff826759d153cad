package world

import (
	"math"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/geom"
	"go.uber.org/zap"
)

// DamageScaler supplies the resistance factor applied to incoming damage.
type DamageScaler interface {
	DamageMultiplier() float64
}

// Player is the player's ship and its damage pipeline. Lethal damage does
// not kill at once: the death stays pending for the deathbomb window and a
// panic burst inside that window cancels it.
type Player struct {
	ID     ecs.EntityID
	Pos    geom.Vec2
	Radius float64
	HP     int
	MaxHP  int
	Lives  int
	Score  int

	cfg      config.PlayerConfig
	window   time.Duration
	scaler   DamageScaler
	bus      *event.Bus
	log      *zap.Logger
	invuln   time.Duration
	pending  time.Duration // remaining deathbomb window while dying
	dying    bool
	out      bool // no lives left
	deaths   int
	saves    int
	absorbed int
}

func newPlayer(id ecs.EntityID, cfg config.PlayerConfig, deathbomb time.Duration, spawn geom.Vec2, scaler DamageScaler, bus *event.Bus, log *zap.Logger) *Player {
	p := &Player{
		ID:     id,
		Radius: cfg.Radius,
		cfg:    cfg,
		window: deathbomb,
		scaler: scaler,
		bus:    bus,
		log:    log.Named("player"),
	}
	p.reset(spawn)
	return p
}

func (p *Player) reset(spawn geom.Vec2) {
	p.Pos = spawn
	p.MaxHP = p.cfg.MaxHP
	p.HP = p.cfg.MaxHP
	p.Lives = p.cfg.Lives
	p.Score = 0
	p.invuln = 0
	p.pending = 0
	p.dying = false
	p.out = false
}

// ApplyDamage runs amount through the pipeline: ignored while invulnerable,
// dying or out of lives, otherwise scaled by the resistance factor with a
// floor of 1.
func (p *Player) ApplyDamage(amount int) {
	if p.invuln > 0 {
		return
	}
	p.hit(amount, true)
}

// ApplyPenalty is fixed damage from the director, such as the wave timeout.
// It bypasses invulnerability and leaves the invulnerability timer alone,
// but is still scaled by resistance.
func (p *Player) ApplyPenalty(amount int) {
	p.hit(amount, false)
}

func (p *Player) hit(amount int, grace bool) {
	if amount <= 0 || p.out || p.dying {
		return
	}
	scaled := amount
	if p.scaler != nil {
		scaled = max(1, int(math.Round(float64(amount)*p.scaler.DamageMultiplier())))
	}
	p.absorbed += amount - scaled
	p.HP = max(0, p.HP-scaled)
	if grace {
		p.invuln = p.cfg.Invulnerable
	}

	if p.HP == 0 {
		p.dying = true
		p.pending = p.window
		p.log.Debug("lethal hit, death pending", zap.Duration("window", p.window))
	}
	if p.bus != nil {
		event.Publish(p.bus, event.PlayerDamaged{Amount: scaled, HP: p.HP})
	}
	if p.dying && p.pending <= 0 {
		p.die()
	}
}

// OnPanicBurst cancels a pending death.
func (p *Player) OnPanicBurst() {
	if !p.dying {
		return
	}
	p.dying = false
	p.pending = 0
	p.HP = 1
	p.saves++
	p.log.Info("deathbomb saved the player")
}

// Tick runs down invulnerability and any pending death.
func (p *Player) Tick(dt time.Duration) {
	p.invuln = max(0, p.invuln-dt)
	if !p.dying {
		return
	}
	p.pending -= dt
	if p.pending <= 0 {
		p.die()
	}
}

func (p *Player) die() {
	p.dying = false
	p.pending = 0
	p.deaths++
	p.Lives--
	if p.Lives > 0 {
		p.HP = p.MaxHP
		p.invuln = 2 * p.cfg.Invulnerable
	} else {
		p.Lives = 0
		p.out = true
	}
	p.log.Info("player died", zap.Int("lives_left", p.Lives), zap.Int("score", p.Score))
	if p.bus != nil {
		event.Publish(p.bus, event.PlayerDied{LivesLeft: p.Lives})
	}
}

// Heal restores hp up to MaxHP. A dying or defeated player cannot be healed.
func (p *Player) Heal(amount int) {
	if p.dying || p.out || amount <= 0 {
		return
	}
	p.HP = min(p.MaxHP, p.HP+amount)
}

func (p *Player) AddLife() {
	if !p.out {
		p.Lives++
	}
}

func (p *Player) AddScore(points int) { p.Score += points }

func (p *Player) Dying() bool        { return p.dying }
func (p *Player) Out() bool          { return p.out }
func (p *Player) Invulnerable() bool { return p.invuln > 0 }
func (p *Player) Deaths() int        { return p.deaths }
func (p *Player) Saves() int         { return p.saves }

// Absorbed is the total damage resistance has prevented.
func (p *Player) Absorbed() int { return p.absorbed }
