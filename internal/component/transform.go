package component

import "github.com/cipherstorm/director/internal/geom"

// Transform positions an entity and moves it toward Target at Speed
// (units per second). Arrived is set once it reaches Target.
type Transform struct {
	Pos     geom.Vec2
	Target  geom.Vec2
	Speed   float64
	Arrived bool
}
