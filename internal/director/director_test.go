package director

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/core/event"
	"github.com/cipherstorm/director/internal/difficulty"
	"github.com/cipherstorm/director/internal/formation"
	"github.com/cipherstorm/director/internal/geom"
	"go.uber.org/zap"
)

type fakeSpawner struct {
	pool *ecs.EntityPool
	reqs []SpawnRequest
	live []ecs.EntityID
	fail bool
}

func (s *fakeSpawner) Spawn(req SpawnRequest) ecs.EntityID {
	if s.fail {
		return 0
	}
	id := s.pool.Create()
	s.reqs = append(s.reqs, req)
	s.live = append(s.live, id)
	return id
}

type fakePlayer struct {
	damage []int
	heals  []int
	lives  int
	score  int
}

func (p *fakePlayer) ApplyPenalty(n int) { p.damage = append(p.damage, n) }
func (p *fakePlayer) Heal(n int)         { p.heals = append(p.heals, n) }
func (p *fakePlayer) AddLife()           { p.lives++ }
func (p *fakePlayer) AddScore(n int)     { p.score += n }

type fakeClearer struct{ calls int }

func (c *fakeClearer) ClearAll() int { c.calls++; return 0 }

type fixedThreat float64

func (f fixedThreat) ThreatMultiplier() float64 { return float64(f) }

type harness struct {
	d       *Director
	spawner *fakeSpawner
	player  *fakePlayer
	clearer *fakeClearer
	bus     *event.Bus
}

func newHarness(seed int64) *harness {
	h := &harness{
		spawner: &fakeSpawner{pool: ecs.NewEntityPool()},
		player:  &fakePlayer{},
		clearer: &fakeClearer{},
		bus:     event.NewBus(),
	}
	h.d = New(config.Defaults().Waves, DefaultRoster(), formation.DefaultTable(), geom.Viewport(1280, 720), Deps{
		Spawner: h.spawner,
		Player:  h.player,
		Clearer: h.clearer,
		Threat:  fixedThreat(1),
		Bus:     h.bus,
		Rng:     rand.New(rand.NewSource(seed)),
		Log:     zap.NewNop(),
	})
	return h
}

// finishSpawns ticks until every staggered spawn of the wave has run.
func (h *harness) finishSpawns() {
	for h.d.PendingSpawns() > 0 {
		h.d.Tick(100 * time.Millisecond)
	}
}

func (h *harness) defeatAll() {
	for _, id := range h.spawner.live {
		h.d.OnEnemyDefeated(id)
	}
	h.spawner.live = h.spawner.live[:0]
}

// clearWave starts the next wave if needed and plays it to completion.
func (h *harness) clearWave(t *testing.T) {
	t.Helper()
	if !h.d.Active() && !h.d.StartNextWave() {
		t.Fatal("could not start wave")
	}
	h.finishSpawns()
	h.defeatAll()
	h.d.Tick(time.Millisecond)
	if h.d.Active() {
		t.Fatalf("wave %d still active after clearing", h.d.CurrentWave())
	}
}

func TestFirstWaveAfterInitialDelay(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(seed)
		var started event.WaveStarted
		event.Subscribe(h.bus, func(e event.WaveStarted) { started = e })

		h.d.Tick(2 * time.Second)
		if h.d.Active() {
			t.Fatal("wave started before the inter-wave delay")
		}
		h.d.Tick(time.Second)
		if !h.d.Active() || h.d.CurrentWave() != 1 {
			t.Fatalf("wave 1 not started: active=%v wave=%d", h.d.Active(), h.d.CurrentWave())
		}
		if started.Planned != 3 || h.d.EnemiesRemaining() != 3 {
			t.Fatalf("wave 1 planned %d remaining %d, want 3", started.Planned, h.d.EnemiesRemaining())
		}
		if started.Formation != "line" && started.Formation != "random" {
			t.Fatalf("seed %d: wave 1 used formation %q", seed, started.Formation)
		}
	}
}

func TestNoCompletionWhileSpawnsPending(t *testing.T) {
	h := newHarness(3)
	h.d.StartNextWave()
	if h.d.PendingSpawns() == 0 {
		t.Skip("layout put every slot at zero delay")
	}
	h.defeatAll()
	h.d.Tick(time.Millisecond)
	if !h.d.Active() {
		t.Fatal("wave completed while spawns were still pending")
	}
	if h.d.EnemiesRemaining() == 0 {
		t.Fatal("remaining reached zero before all planned enemies spawned")
	}
	h.finishSpawns()
	h.defeatAll()
	h.d.Tick(time.Millisecond)
	if h.d.Active() {
		t.Fatal("wave did not complete once every enemy was defeated")
	}
}

func TestSpawnRequestsCarryWaveParameters(t *testing.T) {
	h := newHarness(5)
	h.d.StartNextWave()
	h.finishSpawns()
	if len(h.spawner.reqs) != 3 {
		t.Fatalf("spawned %d, want 3", len(h.spawner.reqs))
	}
	vp := geom.Viewport(1280, 720)
	for _, r := range h.spawner.reqs {
		if r.Kind != "grunt" || r.Complexity != 1 || r.FireInterval != 2500*time.Millisecond || r.Health != 3 {
			t.Errorf("unexpected request %+v", r)
		}
		if !vp.Contains(r.Target) || r.Entry.Y >= vp.MinY {
			t.Errorf("bad positions entry=%v target=%v", r.Entry, r.Target)
		}
	}
}

func TestTimeoutPenaltyAppliedOnce(t *testing.T) {
	h := newHarness(7)
	var timeouts []event.WaveTimedOut
	event.Subscribe(h.bus, func(e event.WaveTimedOut) { timeouts = append(timeouts, e) })

	h.d.StartNextWave()
	for i := 0; i < 120; i++ {
		h.d.Tick(time.Second)
	}
	if len(h.player.damage) != 1 || h.player.damage[0] != 10 {
		t.Fatalf("timeout damage = %v, want [10]", h.player.damage)
	}
	if len(timeouts) != 1 || timeouts[0].ExtraSpawns != 0 {
		t.Fatalf("timeouts = %+v, want one without extras", timeouts)
	}
	if h.d.EnemiesRemaining() != 3 {
		t.Fatalf("remaining = %d, want 3", h.d.EnemiesRemaining())
	}
}

func TestTimeoutExtraSpawnsFromWaveFive(t *testing.T) {
	h := newHarness(11)
	for i := 0; i < 4; i++ {
		h.clearWave(t)
	}
	h.d.StartNextWave()
	if h.d.CurrentWave() != 5 {
		t.Fatalf("wave = %d", h.d.CurrentWave())
	}
	h.finishSpawns()
	before := h.d.EnemiesRemaining()
	spawnedBefore := len(h.spawner.reqs)
	damageBefore := len(h.player.damage)

	for i := 0; i < 120; i++ {
		h.d.Tick(time.Second)
	}
	if got := len(h.player.damage) - damageBefore; got != 1 {
		t.Fatalf("penalties applied = %d, want 1", got)
	}
	if got := h.d.EnemiesRemaining(); got != before+3 {
		t.Fatalf("remaining = %d, want %d", got, before+3)
	}
	if got := len(h.spawner.reqs) - spawnedBefore; got != 3 {
		t.Fatalf("extra spawns = %d, want 3", got)
	}
}

func TestBossTimeoutAddsRegularEnemies(t *testing.T) {
	h := newHarness(23)
	for i := 0; i < 19; i++ {
		h.clearWave(t)
	}
	h.d.StartNextWave()
	h.finishSpawns()
	if h.d.Snapshot().Milestone != "boss" {
		t.Fatalf("wave %d is not a boss wave", h.d.CurrentWave())
	}
	n := len(h.spawner.reqs)
	for i := 0; i < 120; i++ {
		h.d.Tick(time.Second)
	}
	extras := h.spawner.reqs[n:]
	if len(extras) != 3 {
		t.Fatalf("extra spawns = %d, want 3", len(extras))
	}
	for _, r := range extras {
		if r.Milestone != Regular || (r.Kind != "grunt" && r.Kind != "striker") || r.Health >= 100 {
			t.Fatalf("timeout extra is a milestone unit: %+v", r)
		}
	}

	// Defeating the extras must not clear the pool; only the boss does.
	calls := h.clearer.calls
	extraIDs := h.spawner.live[len(h.spawner.live)-3:]
	for _, id := range extraIDs {
		if !h.d.OnEnemyDefeated(id) {
			t.Fatalf("extra %v not tracked", id)
		}
	}
	if h.clearer.calls != calls {
		t.Fatalf("pool cleared %d times by regular extras", h.clearer.calls-calls)
	}
}

func TestWaveTenRewards(t *testing.T) {
	h := newHarness(13)
	ctrl := difficulty.New(config.Defaults().Difficulty, h.clearer, h.bus, zap.NewNop())
	ctrl.Subscribe(h.bus)

	for i := 0; i < 9; i++ {
		h.clearWave(t)
	}
	if h.player.lives != 0 {
		t.Fatalf("extra life before wave 10: %d", h.player.lives)
	}
	// Spend a charge so the refill is observable below the cap.
	if !ctrl.TryTriggerPanicBurst() {
		t.Fatal("burst refused")
	}
	chargesBefore := ctrl.PanicCharges()
	h.clearWave(t)

	if h.d.CurrentWave() != 10 {
		t.Fatalf("wave = %d", h.d.CurrentWave())
	}
	if h.player.lives != 1 {
		t.Fatalf("lives granted = %d, want 1", h.player.lives)
	}
	if got := h.player.heals[len(h.player.heals)-1]; got != 10 {
		t.Fatalf("wave 10 heal = %d, want 10", got)
	}
	if ctrl.PanicCharges() != chargesBefore+1 {
		t.Fatalf("charges = %d, want %d", ctrl.PanicCharges(), chargesBefore+1)
	}
}

func TestMiniBossWave(t *testing.T) {
	h := newHarness(17)
	for i := 0; i < 9; i++ {
		h.clearWave(t)
	}
	n := len(h.spawner.reqs)
	h.d.StartNextWave()
	h.finishSpawns()
	reqs := h.spawner.reqs[n:]
	if len(reqs) != 1 {
		t.Fatalf("mini-boss wave spawned %d enemies", len(reqs))
	}
	r := reqs[0]
	// grunt 3 hp · 8 · (1 + 0.1·9)
	if r.Milestone != MiniBoss || r.Health != 46 || r.Complexity != 3 {
		t.Fatalf("mini-boss request %+v", r)
	}
}

func TestBossDefeatClearsPool(t *testing.T) {
	h := newHarness(19)
	for i := 0; i < 19; i++ {
		h.clearWave(t)
	}
	calls := h.clearer.calls
	h.d.StartNextWave()
	h.finishSpawns()
	if h.d.Snapshot().Milestone != "boss" {
		t.Fatalf("wave %d is not a boss wave", h.d.CurrentWave())
	}
	h.defeatAll()
	if h.clearer.calls != calls+1 {
		t.Fatalf("ClearAll calls = %d, want %d", h.clearer.calls, calls+1)
	}
	if r := h.spawner.reqs[len(h.spawner.reqs)-1]; r.Complexity != 4 || r.Kind != "boss" {
		t.Fatalf("boss request %+v", r)
	}
}

func TestOnEnemyDefeatedRejectsUnknown(t *testing.T) {
	h := newHarness(23)
	if h.d.OnEnemyDefeated(ecs.NewEntityID(1, 1)) {
		t.Fatal("accepted defeat with no active wave")
	}
	h.d.StartNextWave()
	h.finishSpawns()
	if h.d.OnEnemyDefeated(ecs.NewEntityID(999, 1)) {
		t.Fatal("accepted unknown id")
	}
	id := h.spawner.live[0]
	if !h.d.OnEnemyDefeated(id) {
		t.Fatal("rejected live id")
	}
	if h.d.OnEnemyDefeated(id) {
		t.Fatal("counted the same defeat twice")
	}
}

func TestStartNextWaveRefusedWhileActiveOrHalted(t *testing.T) {
	h := newHarness(29)
	if !h.d.StartNextWave() {
		t.Fatal("first StartNextWave refused")
	}
	if h.d.StartNextWave() {
		t.Fatal("StartNextWave allowed during a wave")
	}
	h.d.Halt()
	if h.d.StartNextWave() {
		t.Fatal("StartNextWave allowed while halted")
	}
	h.d.Tick(10 * time.Second)
	if h.d.CurrentWave() != 1 {
		t.Fatal("halted director advanced")
	}
	h.d.Reset()
	if h.d.CurrentWave() != 0 || h.d.Active() || h.d.Halted() {
		t.Fatalf("reset state: %+v", h.d.Snapshot())
	}
}

func TestFailedSpawnsDoNotStallWave(t *testing.T) {
	h := newHarness(31)
	h.spawner.fail = true
	h.d.StartNextWave()
	h.finishSpawns()
	h.d.Tick(time.Millisecond)
	if h.d.Active() {
		t.Fatal("wave with only failed spawns never completed")
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	h := newHarness(37)
	h.d.Subscribe(h.bus)
	h.d.StartNextWave()
	h.finishSpawns()

	event.Publish(h.bus, event.EnemyDefeated{EntityID: h.spawner.live[0]})
	if h.d.EnemiesRemaining() != 2 {
		t.Fatalf("remaining = %d, want 2", h.d.EnemiesRemaining())
	}
	event.Publish(h.bus, event.GameOver{Wave: 1})
	if !h.d.Halted() {
		t.Fatal("GameOver did not halt")
	}
	event.Publish(h.bus, event.GameStarted{Run: 2})
	if h.d.Halted() || h.d.CurrentWave() != 0 {
		t.Fatal("GameStarted did not reset")
	}
}
