package game

import (
	"math/rand"
	"time"

	"github.com/cipherstorm/director/internal/bullet"
	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/core/event"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/difficulty"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/formation"
	"github.com/cipherstorm/director/internal/geom"
	"github.com/cipherstorm/director/internal/system"
	"github.com/cipherstorm/director/internal/world"
	"go.uber.org/zap"
)

// Options are the optional collaborators of a Game.
type Options struct {
	Roster     *director.Roster       // nil: director.DefaultRoster
	Styles     map[string]uint8       // projectile style per enemy kind
	Formations formation.Table        // nil: formation.DefaultTable
	Script     system.VolleyScript    // nil: built-in volleys
	Telemetry  system.TelemetryWriter // nil: no telemetry
	Session    string                 // telemetry session label
}

// Game is one fully wired simulation: every component, subscribed to one
// bus and registered on one runner in phase order.
type Game struct {
	Cfg        *config.Config
	Bus        *event.Bus
	Rng        *rand.Rand
	Emitter    *bullet.Emitter
	Difficulty *difficulty.Controller
	World      *world.State
	Director   *director.Director
	Autopilot  *world.Autopilot
	Runner     *coresys.Runner

	Session   *system.SessionSystem
	Shooters  *system.ShooterSystem
	Report    *system.ReportSystem
	Telemetry *system.TelemetrySystem
	Cleanup   *system.CleanupSystem
}

// New builds a game from cfg. Nothing runs until the first Step.
func New(cfg *config.Config, opts Options, log *zap.Logger) *Game {
	bus := event.NewBus()
	rng := rand.New(rand.NewSource(cfg.Simulation.SeedValue()))
	vp := geom.Viewport(cfg.Viewport.Width, cfg.Viewport.Height)

	gun := bullet.NewEmitter(bullet.Options{
		Bounds:          vp,
		Margin:          cfg.Viewport.Margin,
		Radius:          cfg.Pool.ProjectileRadius,
		HostileDamage:   cfg.Pool.ProjectileDamage,
		FriendlyDamage:  cfg.Player.ShotDamage,
		InitialSize:     cfg.Pool.InitialSize,
		GrowStep:        cfg.Pool.GrowStep,
		HardMax:         cfg.Pool.HardMax,
		InvalidLogEvery: cfg.Pool.InvalidLogEvery,
	}, nil, nil, bus, rng, log)

	ctrl := difficulty.New(cfg.Difficulty, gun, bus, log)
	ws := world.NewState(cfg, ctrl, opts.Styles, bus, log)
	gun.Bind(ws, ws)

	roster := director.DefaultRoster()
	if opts.Roster != nil {
		roster = *opts.Roster
	}
	table := opts.Formations
	if len(table) == 0 {
		table = formation.DefaultTable()
	}
	dir := director.New(cfg.Waves, roster, table, vp, director.Deps{
		Spawner: ws,
		Player:  ws.Player,
		Clearer: gun,
		Threat:  ctrl,
		Bus:     bus,
		Rng:     rng,
		Log:     log,
	})
	pilot := world.NewAutopilot(ws, gun, ctrl, cfg.Player)

	g := &Game{
		Cfg:        cfg,
		Bus:        bus,
		Rng:        rng,
		Emitter:    gun,
		Difficulty: ctrl,
		World:      ws,
		Director:   dir,
		Autopilot:  pilot,
		Runner:     coresys.NewRunner(),
	}

	// Session first: its GameStarted handler clears the world before the
	// controller and director reset.
	g.Session = system.NewSessionSystem(cfg.Simulation, ws, dir, gun, bus, log)
	g.Session.Subscribe(bus)
	ctrl.Subscribe(bus)
	ws.Subscribe(bus)
	dir.Subscribe(bus)

	g.Shooters = system.NewShooterSystem(ws, gun, opts.Script, ctrl, log)
	g.Report = system.NewReportSystem(cfg.Simulation.ReportInterval, dir, ctrl, gun, ws, log)
	g.Cleanup = system.NewCleanupSystem(ws.ECS)

	r := g.Runner
	r.Register(system.NewAutopilotSystem(pilot))
	r.Register(g.Session)
	r.Register(system.NewTickSystem("difficulty", coresys.PhaseUpdate, ctrl))
	r.Register(system.NewPlayerSystem(ws.Player))
	r.Register(system.NewTickSystem("director", coresys.PhaseUpdate, dir))
	r.Register(system.NewMotionSystem(ws))
	r.Register(g.Shooters)
	r.Register(system.NewTickSystem("emitter", coresys.PhasePostUpdate, gun))
	r.Register(g.Report)
	if opts.Telemetry != nil {
		g.Telemetry = system.NewTelemetrySystem(cfg.Database, opts.Telemetry, ws, ctrl, opts.Session, cfg.Simulation.Seed, log)
		g.Telemetry.Subscribe(bus)
		r.Register(g.Telemetry)
	}
	r.Register(g.Cleanup)
	return g
}

// Step advances the simulation by one tick.
func (g *Game) Step() {
	g.Runner.Tick(g.Cfg.Simulation.TickRate)
}

// RunFor steps until d of simulated time has passed or the session is done.
// It returns the number of ticks run.
func (g *Game) RunFor(d time.Duration) int {
	n := 0
	for g.Runner.Elapsed() < d && !g.Session.Done() {
		g.Step()
		n++
	}
	return n
}

// Close flushes outstanding telemetry.
func (g *Game) Close() {
	if g.Telemetry != nil {
		g.Telemetry.Flush()
	}
}
