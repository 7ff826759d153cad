package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/data"
	"github.com/cipherstorm/director/internal/game"
	"github.com/cipherstorm/director/internal/persist"
	"github.com/cipherstorm/director/internal/scripting"
	"github.com/cipherstorm/director/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/width"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var out = message.NewPrinter(language.English)

func printBanner(name, seed string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          cipherstorm director             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     waves · patterns · adaptive threat    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	if seed == "" {
		seed = "clock"
	}
	fmt.Printf("  \033[1m%s\033[0m \033[90m(seed: %s)\033[0m\n\n", name, seed)
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := max(3, 46-displayWidth(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	v := out.Sprintf("%v", value)
	dotsLen := max(3, 42-displayWidth(label)-len(v))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), v)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/director.toml"
	if p := os.Getenv("DIRECTOR_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Simulation.Seed)

	// 3. Load data tables
	printSection("Data")
	enemies, err := data.LoadEnemyTable(cfg.Data.EnemyList)
	if err != nil {
		return fmt.Errorf("enemy list: %w", err)
	}
	printStat("enemy templates", enemies.Count())
	formations, err := data.LoadFormationTable(cfg.Data.FormationList)
	if err != nil {
		return fmt.Errorf("formation list: %w", err)
	}
	printStat("formations", len(formations))
	roster := enemies.Roster()

	// 4. Lua shooter scripts
	var script system.VolleyScript
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer engine.Close()
		script = engine
		if engine.HasVolleyScript() {
			printOK("Lua volley scripts loaded")
		} else {
			printOK("no volley script, using built-in volleys")
		}
	}
	fmt.Println()

	// 5. Optional telemetry database
	var telemetry system.TelemetryWriter
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", version)

		repo := persist.NewTelemetryRepo(db)
		best, err := repo.BestRuns(ctx, 1)
		if err != nil {
			log.Warn("could not read previous runs", zap.Error(err))
		} else if len(best) > 0 {
			printStat("best score so far", best[0].Score)
			printStat("reached wave", best[0].FinalWave)
		}
		telemetry = repo
		fmt.Println()
	}

	// 6. Assemble the simulation
	g := game.New(cfg, game.Options{
		Roster:     &roster,
		Styles:     enemies.Styles(),
		Formations: formations,
		Script:     script,
		Telemetry:  telemetry,
		Session:    fmt.Sprintf("%s-%d", cfg.Server.Name, cfg.Server.StartTime),
	}, log)

	// 7. Start the loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("Running")
	printReady(fmt.Sprintf("tick %s, %d systems", cfg.Simulation.TickRate, g.Runner.Len()))
	if cfg.Simulation.Duration > 0 {
		printReady(fmt.Sprintf("stopping after %s of simulated time", cfg.Simulation.Duration))
	}
	fmt.Println()

	finished := func() bool {
		if g.Session.Done() {
			return true
		}
		return cfg.Simulation.Duration > 0 && g.Runner.Elapsed() >= cfg.Simulation.Duration
	}

	start := time.Now()
	if cfg.Simulation.Realtime {
		ticker := time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
	loop:
		for !finished() {
			select {
			case <-ticker.C:
				g.Step()
			case sig := <-shutdownCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				break loop
			}
		}
	} else {
	fast:
		for !finished() {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				break fast
			default:
				g.Step()
			}
		}
	}

	g.Close()
	printSummary(g, time.Since(start))
	log.Info("director stopped")
	return nil
}

func printSummary(g *game.Game, wall time.Duration) {
	fmt.Println()
	printSection("Summary")
	printStat("simulated", g.Runner.Elapsed().Round(time.Second))
	printStat("wall clock", wall.Round(time.Millisecond))
	printStat("ticks", g.Runner.Ticks())
	printStat("games", len(g.Session.Results()))
	if best, ok := g.Session.Best(); ok {
		printStat("best score", best.Score)
		printStat("best wave", best.Wave)
	}
	snap := g.Director.Snapshot()
	printStat("current wave", snap.Wave)
	printStat("waves completed", snap.Completed)
	printStat("score", g.World.Player.Score)

	st := g.Emitter.Stats()
	printStat("projectiles fired", st.Activated)
	printStat("projectiles dropped", st.Dropped)
	printStat("pool size", st.PoolSize)
	d := g.Difficulty.Snapshot()
	printStat("threat", out.Sprintf("%.1f", d.Threat))
	printStat("resistance", out.Sprintf("%.0f%%", d.Resistance))
	printStat("panic bursts", d.Bursts)
	printStat("damage absorbed", g.World.Player.Absorbed())
	printStat("deathbomb saves", g.World.Player.Saves())
	printStat("enemies destroyed", g.Cleanup.Flushed())
	if g.Telemetry != nil {
		printStat("telemetry records", g.Telemetry.Written())
	}
	fmt.Println()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
