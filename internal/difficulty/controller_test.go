package difficulty

import (
	"math"
	"testing"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/event"
	"go.uber.org/zap"
)

type countingClearer struct {
	calls  int
	active int
}

func (c *countingClearer) ClearAll() int {
	c.calls++
	n := c.active
	c.active = 0
	return n
}

func newTestController(clr Clearer, bus *event.Bus) *Controller {
	return New(config.Defaults().Difficulty, clr, bus, zap.NewNop())
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInitialState(t *testing.T) {
	c := newTestController(nil, nil)
	if c.ThreatLevel() != 55 {
		t.Fatalf("threat = %v, want 55", c.ThreatLevel())
	}
	if !almost(c.ThreatMultiplier(), 1.0) {
		t.Fatalf("multiplier = %v, want 1.0", c.ThreatMultiplier())
	}
	if c.PanicCharges() != 1 || c.Resistance() != 0 {
		t.Fatalf("charges=%d resistance=%v", c.PanicCharges(), c.Resistance())
	}
}

func TestThreatMultiplierRange(t *testing.T) {
	tests := []struct {
		name   string
		threat float64
		want   float64
	}{
		{"min", 10, 0.5},
		{"mid", 55, 1.0},
		{"max", 100, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(nil, nil)
			c.threat = tt.threat
			if got := c.ThreatMultiplier(); !almost(got, tt.want) {
				t.Errorf("ThreatMultiplier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThreatStaysInBounds(t *testing.T) {
	c := newTestController(nil, nil)
	for i := 0; i < 20; i++ {
		c.OnPlayerDeath()
	}
	if c.ThreatLevel() != 10 {
		t.Fatalf("threat after many deaths = %v, want 10", c.ThreatLevel())
	}
	for i := 0; i < 500; i++ {
		c.OnEnemyDefeated()
		c.OnWaveCompleted(i + 1)
	}
	if c.ThreatLevel() != 100 {
		t.Fatalf("threat after many kills = %v, want 100", c.ThreatLevel())
	}
	if m := c.ThreatMultiplier(); m < 0.5 || m > 1.5 {
		t.Fatalf("multiplier %v out of range", m)
	}
}

func TestResistanceCapsAndSurvivesNewGame(t *testing.T) {
	c := newTestController(nil, nil)
	for i := 0; i < 30; i++ {
		c.OnPlayerDeath()
	}
	if c.Resistance() != 75 {
		t.Fatalf("resistance = %v, want 75", c.Resistance())
	}
	if !almost(c.DamageMultiplier(), 0.25) {
		t.Fatalf("damage multiplier = %v, want 0.25", c.DamageMultiplier())
	}
	c.ResetForNewGame()
	if c.Resistance() != 75 {
		t.Fatalf("resistance reset by new game: %v", c.Resistance())
	}
	if c.ThreatLevel() != 55 || c.PanicCharges() != 1 {
		t.Fatalf("new game did not restore threat/charges: %v %d", c.ThreatLevel(), c.PanicCharges())
	}
	c.FullReset()
	if c.Resistance() != 0 {
		t.Fatalf("resistance after full reset = %v", c.Resistance())
	}
}

func TestDriftTowardMidpoint(t *testing.T) {
	c := newTestController(nil, nil)

	c.threat = 40
	c.Tick(2 * time.Second)
	if !almost(c.ThreatLevel(), 41) {
		t.Fatalf("rising drift: threat = %v, want 41", c.ThreatLevel())
	}

	c.threat = 70
	c.Tick(2 * time.Second)
	if !almost(c.ThreatLevel(), 68) {
		t.Fatalf("falling drift: threat = %v, want 68", c.ThreatLevel())
	}

	c.threat = 54.9
	c.Tick(10 * time.Second)
	if c.ThreatLevel() != 55 {
		t.Fatalf("drift overshot midpoint: %v", c.ThreatLevel())
	}
}

func TestPerfectWaveBonus(t *testing.T) {
	c := newTestController(nil, nil)
	c.OnWaveStarted()
	c.OnWaveCompleted(1)
	if c.ThreatLevel() != 65 {
		t.Fatalf("perfect wave threat = %v, want 65", c.ThreatLevel())
	}

	c.OnWaveStarted()
	c.OnPlayerDamaged()
	before := c.ThreatLevel()
	c.OnWaveCompleted(2)
	if c.ThreatLevel() != before {
		t.Fatalf("damaged wave still earned bonus: %v -> %v", before, c.ThreatLevel())
	}
}

func TestPanicBurst(t *testing.T) {
	clr := &countingClearer{active: 40}
	bus := event.NewBus()
	var got []event.PanicBurst
	event.Subscribe(bus, func(e event.PanicBurst) { got = append(got, e) })

	c := newTestController(clr, bus)
	if !c.TryTriggerPanicBurst() {
		t.Fatal("first burst refused")
	}
	if c.PanicCharges() != 0 || clr.calls != 1 {
		t.Fatalf("charges=%d clears=%d", c.PanicCharges(), clr.calls)
	}
	if len(got) != 1 || got[0].Cleared != 40 || got[0].Auto {
		t.Fatalf("events = %+v", got)
	}

	// No charge left.
	c.OnWaveCompleted(1)
	if c.PanicCharges() != 1 {
		t.Fatalf("wave completion did not refill: %d", c.PanicCharges())
	}
	// Charge available but cooldown still running.
	if c.TryTriggerPanicBurst() {
		t.Fatal("burst allowed during cooldown")
	}
	if c.PanicCharges() != 1 || clr.calls != 1 {
		t.Fatal("refused burst changed state")
	}
	c.Tick(2 * time.Second)
	if !c.TryTriggerPanicBurst() {
		t.Fatal("burst refused after cooldown")
	}
}

func TestChargesNeverExceedMax(t *testing.T) {
	c := newTestController(nil, nil)
	for i := 0; i < 10; i++ {
		c.OnWaveCompleted(i + 1)
	}
	if c.PanicCharges() != 3 {
		t.Fatalf("charges = %d, want 3", c.PanicCharges())
	}
}

func TestDeathbombWindow(t *testing.T) {
	c := newTestController(nil, nil)
	c.OnPlayerDamaged()
	if !c.InDeathbombWindow() {
		t.Fatal("window not opened by damage")
	}
	c.Tick(300 * time.Millisecond)
	if !c.InDeathbombWindow() {
		t.Fatal("window closed early")
	}
	c.Tick(200 * time.Millisecond)
	if c.InDeathbombWindow() {
		t.Fatal("window still open after 500ms")
	}
}

func TestAutoDeathbomb(t *testing.T) {
	cfg := config.Defaults().Difficulty
	cfg.AutoDeathbomb = true
	clr := &countingClearer{active: 5}
	bus := event.NewBus()
	var auto bool
	event.Subscribe(bus, func(e event.PanicBurst) { auto = e.Auto })

	c := New(cfg, clr, bus, zap.NewNop())
	c.OnPlayerDamaged()
	c.Tick(time.Second / 60)
	if clr.calls != 1 || !auto {
		t.Fatalf("auto deathbomb did not fire: calls=%d auto=%v", clr.calls, auto)
	}
	if c.InDeathbombWindow() {
		t.Fatal("window should close once the burst fires")
	}
}

func TestSubscribeRoutesEvents(t *testing.T) {
	bus := event.NewBus()
	c := newTestController(nil, bus)
	c.Subscribe(bus)

	event.Publish(bus, event.PlayerDied{LivesLeft: 2})
	if c.ThreatLevel() != 40 || c.Resistance() != 5 {
		t.Fatalf("after death: threat=%v resistance=%v", c.ThreatLevel(), c.Resistance())
	}
	event.Publish(bus, event.GameStarted{Run: 2})
	if c.ThreatLevel() != 55 || c.Resistance() != 5 {
		t.Fatalf("after new game: threat=%v resistance=%v", c.ThreatLevel(), c.Resistance())
	}
	event.Publish(bus, event.FullReset{})
	if c.Resistance() != 0 {
		t.Fatalf("after full reset: resistance=%v", c.Resistance())
	}
}
