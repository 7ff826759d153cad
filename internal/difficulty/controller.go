// Package difficulty adapts the challenge to how the player is doing.
//
// Threat is a short-term signal: deaths and damage push it down, kills and
// damage-free waves push it up, and every tick it drifts back toward a fixed
// midpoint. Resistance is long-term: each death adds to it, nothing but a
// full reset takes it away. Panic charges are the consumable screen clear.
package difficulty

import (
	"math"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/event"
	"go.uber.org/zap"
)

// Clearer wipes the projectile field. The bullet emitter implements it.
type Clearer interface {
	ClearAll() int
}

// Controller owns the difficulty state. Single-goroutine only.
type Controller struct {
	cfg     config.DifficultyConfig
	clearer Clearer
	bus     *event.Bus
	log     *zap.Logger

	threat     float64
	resistance float64
	charges    int
	cooldown   time.Duration // remaining panic cooldown
	window     time.Duration // remaining deathbomb window

	damagedThisWave bool
	bursts          int
	perfectWaves    int
}

// New builds a controller in its start-of-session state. bus may be nil.
func New(cfg config.DifficultyConfig, clearer Clearer, bus *event.Bus, log *zap.Logger) *Controller {
	c := &Controller{
		cfg:     cfg,
		clearer: clearer,
		bus:     bus,
		log:     log.Named("difficulty"),
	}
	c.ResetForNewGame()
	return c
}

// Subscribe wires the controller to gameplay events.
func (c *Controller) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.PlayerDied) { c.OnPlayerDeath() })
	event.Subscribe(bus, func(event.PlayerDamaged) { c.OnPlayerDamaged() })
	event.Subscribe(bus, func(event.EnemyDefeated) { c.OnEnemyDefeated() })
	event.Subscribe(bus, func(event.WaveStarted) { c.OnWaveStarted() })
	event.Subscribe(bus, func(e event.WaveCompleted) { c.OnWaveCompleted(e.Wave) })
	event.Subscribe(bus, func(event.GameStarted) { c.ResetForNewGame() })
	event.Subscribe(bus, func(event.FullReset) { c.FullReset() })
}

func (c *Controller) nudge(delta float64) {
	c.threat = clamp(c.threat+delta, c.cfg.ThreatMin, c.cfg.ThreatMax)
}

// OnPlayerDeath lowers threat sharply and raises resistance up to its cap.
func (c *Controller) OnPlayerDeath() {
	c.nudge(c.cfg.DeathDelta)
	before := c.resistance
	c.resistance = clamp(c.resistance+c.cfg.ResistancePerDie, 0, c.cfg.ResistanceCap)
	c.window = 0
	c.log.Info("player death",
		zap.Float64("threat", c.threat),
		zap.Float64("resistance", c.resistance),
		zap.Bool("resistance_capped", c.resistance == before))
}

// OnPlayerDamaged lowers threat slightly and opens the deathbomb window.
func (c *Controller) OnPlayerDamaged() {
	c.nudge(c.cfg.DamageDelta)
	c.damagedThisWave = true
	c.window = c.cfg.DeathbombWindow
}

// OnEnemyDefeated raises threat slightly.
func (c *Controller) OnEnemyDefeated() {
	c.nudge(c.cfg.KillDelta)
}

// OnWaveStarted starts tracking whether the new wave stays damage-free.
func (c *Controller) OnWaveStarted() {
	c.damagedThisWave = false
}

// OnWaveCompleted refills one panic charge and rewards a damage-free wave
// with a threat increase.
func (c *Controller) OnWaveCompleted(wave int) {
	if c.charges < c.cfg.PanicMax {
		c.charges++
	}
	if !c.damagedThisWave {
		c.perfectWaves++
		c.nudge(c.cfg.PerfectWaveDelta)
		c.log.Debug("perfect wave", zap.Int("wave", wave), zap.Float64("threat", c.threat))
	}
	c.damagedThisWave = false
}

// Tick drifts threat toward the midpoint and runs down the panic cooldown
// and deathbomb window. With auto_deathbomb set, an open window with a
// usable charge fires the burst on the player's behalf.
func (c *Controller) Tick(dt time.Duration) {
	if c.cfg.AutoDeathbomb && c.window > 0 {
		c.tryBurst(true)
	}

	secs := dt.Seconds()
	mid := c.cfg.ThreatMidpoint
	switch {
	case c.threat < mid:
		c.threat = math.Min(mid, c.threat+c.cfg.RiseRate*secs)
	case c.threat > mid:
		c.threat = math.Max(mid, c.threat-c.cfg.FallRate*secs)
	}
	c.threat = clamp(c.threat, c.cfg.ThreatMin, c.cfg.ThreatMax)

	c.cooldown = max(0, c.cooldown-dt)
	c.window = max(0, c.window-dt)
}

// TryTriggerPanicBurst consumes a charge and clears the projectile field.
// It returns false, touching nothing, when no charge is left or the
// cooldown is still running.
func (c *Controller) TryTriggerPanicBurst() bool {
	return c.tryBurst(false)
}

func (c *Controller) tryBurst(auto bool) bool {
	if c.charges <= 0 || c.cooldown > 0 {
		return false
	}
	c.charges--
	c.cooldown = c.cfg.PanicCooldown
	c.window = 0
	c.bursts++
	cleared := 0
	if c.clearer != nil {
		cleared = c.clearer.ClearAll()
	}
	c.log.Info("panic burst",
		zap.Bool("auto", auto),
		zap.Int("cleared", cleared),
		zap.Int("charges_left", c.charges))
	if c.bus != nil {
		event.Publish(c.bus, event.PanicBurst{Cleared: cleared, Auto: auto})
	}
	return true
}

// ThreatMultiplier maps threat linearly from [threat_min, threat_max] onto
// [multiplier_min, multiplier_max].
func (c *Controller) ThreatMultiplier() float64 {
	span := c.cfg.ThreatMax - c.cfg.ThreatMin
	t := (c.threat - c.cfg.ThreatMin) / span
	return c.cfg.MultiplierMin + t*(c.cfg.MultiplierMax-c.cfg.MultiplierMin)
}

// DamageMultiplier is the factor the player damage pipeline applies to
// incoming damage.
func (c *Controller) DamageMultiplier() float64 {
	return 1 - c.resistance/100
}

// ResetForNewGame restores threat and panic state. Resistance survives.
func (c *Controller) ResetForNewGame() {
	c.threat = c.cfg.ThreatMidpoint
	c.charges = c.cfg.PanicStart
	c.cooldown = 0
	c.window = 0
	c.damagedThisWave = false
}

// FullReset also clears resistance.
func (c *Controller) FullReset() {
	c.ResetForNewGame()
	c.resistance = 0
	c.log.Info("difficulty fully reset")
}

func (c *Controller) ThreatLevel() float64    { return c.threat }
func (c *Controller) Resistance() float64     { return c.resistance }
func (c *Controller) PanicCharges() int       { return c.charges }
func (c *Controller) InDeathbombWindow() bool { return c.window > 0 }
func (c *Controller) OnCooldown() bool        { return c.cooldown > 0 }

// State is a read-only snapshot for reports and telemetry.
type State struct {
	Threat       float64
	Multiplier   float64
	Resistance   float64
	Charges      int
	Bursts       int
	PerfectWaves int
}

func (c *Controller) Snapshot() State {
	return State{
		Threat:       c.threat,
		Multiplier:   c.ThreatMultiplier(),
		Resistance:   c.resistance,
		Charges:      c.charges,
		Bursts:       c.bursts,
		PerfectWaves: c.perfectWaves,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
