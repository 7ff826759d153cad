package component

// Enemy holds the combat data of one spawned enemy.
type Enemy struct {
	Kind      string
	HP        int
	MaxHP     int
	Radius    float64
	Score     int
	Wave      int
	Milestone string // "", "miniboss" or "boss"
	Style     uint8  // projectile style id
}

// HPRatio is the remaining health fraction.
func (e *Enemy) HPRatio() float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return float64(e.HP) / float64(e.MaxHP)
}
