package system

import (
	"time"

	"github.com/cipherstorm/director/internal/component"
	"github.com/cipherstorm/director/internal/core/ecs"
	coresys "github.com/cipherstorm/director/internal/core/system"
	"github.com/cipherstorm/director/internal/world"
)

// MotionSystem moves entering enemies toward their formation slot and marks
// them Arrived on reaching it. Phase 2 (Update).
type MotionSystem struct {
	world *world.State
}

func NewMotionSystem(ws *world.State) *MotionSystem {
	return &MotionSystem{world: ws}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	s.world.Transforms.Each(func(_ ecs.EntityID, t *component.Transform) {
		if t.Arrived {
			return
		}
		to := t.Target.Sub(t.Pos)
		dist := to.Len()
		move := t.Speed * step
		if dist <= move || dist == 0 {
			t.Pos = t.Target
			t.Arrived = true
			return
		}
		t.Pos = t.Pos.Add(to.Scale(move / dist))
	})
}
