package component

import "time"

// Shooter fires a volley every Interval once its entity has arrived.
// Rotation advances by Spin radians per second and feeds spiral and cross
// patterns.
type Shooter struct {
	Interval   time.Duration
	Timer      time.Duration // until the next volley
	Complexity int           // pattern tier 1-4
	Rotation   float64
	Spin       float64
	Volleys    int
}
