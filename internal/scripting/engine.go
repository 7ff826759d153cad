package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for shooter behaviour.
// Single-goroutine access only (game loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	errors int
}

// NewEngine creates a Lua engine and loads every script under scriptsDir's
// core and shooter directories. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log.Named("lua")}

	for _, sub := range []string{"core", "shooter"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// VolleyContext is what a shooter knows when it fires.
type VolleyContext struct {
	Kind      string
	Milestone string
	Tier      int
	Wave      int
	Volley    int // volleys this shooter has fired so far
	X, Y      float64
	TargetX   float64
	TargetY   float64
	Rotation  float64 // radians, advanced every tick
	HPRatio   float64 // remaining health fraction
}

// PatternCommand is one emitter pattern call. Unused fields stay zero.
type PatternCommand struct {
	Pattern   string // radial, spiral, aimed, wave, burst, ring, cross, scatter
	Count     int
	Arms      int
	Speed     float64
	MinSpeed  float64
	MaxSpeed  float64
	Spread    float64 // degrees
	Amplitude float64 // degrees
	Radius    float64
}

// HasVolleyScript reports whether shooter_volley is defined.
func (e *Engine) HasVolleyScript() bool {
	return e.vm.GetGlobal("shooter_volley") != lua.LNil
}

// ShooterVolley calls Lua shooter_volley(ctx) and returns its commands. ok is
// false when the function is missing, fails, or returns something other than
// a table; callers then use DefaultVolley.
func (e *Engine) ShooterVolley(ctx VolleyContext) (cmds []PatternCommand, ok bool) {
	fn := e.vm.GetGlobal("shooter_volley")
	if fn == lua.LNil {
		return nil, false
	}

	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(ctx.Kind))
	t.RawSetString("milestone", lua.LString(ctx.Milestone))
	t.RawSetString("tier", lua.LNumber(ctx.Tier))
	t.RawSetString("wave", lua.LNumber(ctx.Wave))
	t.RawSetString("volley", lua.LNumber(ctx.Volley))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("target_x", lua.LNumber(ctx.TargetX))
	t.RawSetString("target_y", lua.LNumber(ctx.TargetY))
	t.RawSetString("rotation", lua.LNumber(ctx.Rotation))
	t.RawSetString("hp_ratio", lua.LNumber(ctx.HPRatio))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.errors++
		e.log.Warn("lua shooter_volley error, using built-in volley",
			zap.Error(err), zap.String("kind", ctx.Kind), zap.Int("tier", ctx.Tier))
		return nil, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, isTable := result.(*lua.LTable)
	if !isTable {
		return nil, false
	}

	rt.ForEach(func(_, v lua.LValue) {
		if row, isRow := v.(*lua.LTable); isRow {
			cmds = append(cmds, PatternCommand{
				Pattern:   lStr(row, "pattern"),
				Count:     lInt(row, "count"),
				Arms:      lInt(row, "arms"),
				Speed:     lNum(row, "speed"),
				MinSpeed:  lNum(row, "min_speed"),
				MaxSpeed:  lNum(row, "max_speed"),
				Spread:    lNum(row, "spread"),
				Amplitude: lNum(row, "amplitude"),
				Radius:    lNum(row, "radius"),
			})
		}
	})
	return cmds, true
}

// RotationSpeed calls Lua shooter_spin(tier) for the radians per second a
// shooter's rotation advances. Falls back to DefaultSpin.
func (e *Engine) RotationSpeed(tier int) float64 {
	if e.vm.GetGlobal("shooter_spin") == lua.LNil {
		return DefaultSpin(tier)
	}
	v, ok := e.callNumFunc("shooter_spin", tier)
	if !ok || v < 0 {
		return DefaultSpin(tier)
	}
	return v
}

// Errors is the number of failed script calls so far.
func (e *Engine) Errors() int { return e.errors }

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lNum reads a number field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// callNumFunc calls a Lua function with int args and returns a number result.
func (e *Engine) callNumFunc(name string, args ...int) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.errors++
		e.log.Warn("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	return float64(n), ok
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
