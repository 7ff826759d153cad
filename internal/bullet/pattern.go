package bullet

import (
	"math"
	"math/rand"

	"github.com/cipherstorm/director/internal/geom"
)

// Shot is one projectile a pattern asks for. Offset is added to the
// pattern origin to get the spawn position.
type Shot struct {
	Dir    geom.Vec2
	Speed  float64
	Offset geom.Vec2
}

// RadialShots spaces count shots evenly by 2π/count starting at angleOffset.
func RadialShots(count int, speed, angleOffset float64) []Shot {
	if count <= 0 {
		return nil
	}
	shots := make([]Shot, count)
	step := 2 * math.Pi / float64(count)
	for i := range shots {
		shots[i] = Shot{Dir: geom.FromAngle(angleOffset + step*float64(i)), Speed: speed}
	}
	return shots
}

// SpiralShots fires one shot per arm. The caller advances rotation every
// tick, which turns repeated volleys into rotating arms.
func SpiralShots(arms int, speed, rotation float64) []Shot {
	return RadialShots(arms, speed, rotation)
}

// bearing returns the unit vector from origin to target, or geom.Down when
// the two points coincide.
func bearing(origin, target geom.Vec2) geom.Vec2 {
	if d, ok := target.Sub(origin).Normalize(); ok {
		return d
	}
	return geom.Down
}

// AimedShots spreads count shots across spreadDeg centred on the bearing to
// target. A single shot flies exactly along the bearing.
func AimedShots(origin, target geom.Vec2, count int, spreadDeg, speed float64) []Shot {
	if count <= 0 {
		return nil
	}
	dir := bearing(origin, target)
	if count == 1 || spreadDeg == 0 {
		shots := make([]Shot, count)
		for i := range shots {
			shots[i] = Shot{Dir: dir, Speed: speed}
		}
		return shots
	}
	spread := geom.Deg(spreadDeg)
	start := dir.Angle() - spread/2
	step := spread / float64(count-1)
	shots := make([]Shot, count)
	for i := range shots {
		shots[i] = Shot{Dir: geom.FromAngle(start + step*float64(i)), Speed: speed}
	}
	return shots
}

// WaveShots fans count shots around baseAngle; shot i deviates by
// amplitudeDeg·sin(phase + i·2π/count). Advancing phase between volleys
// makes the fan sway.
func WaveShots(count int, speed, baseAngle, amplitudeDeg, phase float64) []Shot {
	if count <= 0 {
		return nil
	}
	amp := geom.Deg(amplitudeDeg)
	step := 2 * math.Pi / float64(count)
	shots := make([]Shot, count)
	for i := range shots {
		a := baseAngle + amp*math.Sin(phase+step*float64(i))
		shots[i] = Shot{Dir: geom.FromAngle(a), Speed: speed}
	}
	return shots
}

// BurstShots is an aimed shotgun: each shot takes a uniform random angle
// within spreadDeg of the bearing and a uniform random speed in
// [minSpeed, maxSpeed].
func BurstShots(rng *rand.Rand, origin, target geom.Vec2, count int, spreadDeg, minSpeed, maxSpeed float64) []Shot {
	if count <= 0 {
		return nil
	}
	if maxSpeed < minSpeed {
		minSpeed, maxSpeed = maxSpeed, minSpeed
	}
	base := bearing(origin, target).Angle()
	spread := geom.Deg(spreadDeg)
	shots := make([]Shot, count)
	for i := range shots {
		a := base + (rng.Float64()-0.5)*spread
		s := minSpeed + rng.Float64()*(maxSpeed-minSpeed)
		shots[i] = Shot{Dir: geom.FromAngle(a), Speed: s}
	}
	return shots
}

// RingShots places count shots on a circle of radius around the origin, each
// moving outward.
func RingShots(count int, radius, speed, angleOffset float64) []Shot {
	shots := RadialShots(count, speed, angleOffset)
	for i := range shots {
		shots[i].Offset = shots[i].Dir.Scale(radius)
	}
	return shots
}

// CrossShots fires four shots at rotation + k·π/2.
func CrossShots(speed, rotation float64) []Shot {
	return RadialShots(4, speed, rotation)
}

// ScatterShots fires count shots in uniform random directions with uniform
// random speeds in [minSpeed, maxSpeed].
func ScatterShots(rng *rand.Rand, count int, minSpeed, maxSpeed float64) []Shot {
	if count <= 0 {
		return nil
	}
	if maxSpeed < minSpeed {
		minSpeed, maxSpeed = maxSpeed, minSpeed
	}
	shots := make([]Shot, count)
	for i := range shots {
		shots[i] = Shot{
			Dir:   geom.FromAngle(rng.Float64() * 2 * math.Pi),
			Speed: minSpeed + rng.Float64()*(maxSpeed-minSpeed),
		}
	}
	return shots
}
