package bullet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cipherstorm/director/internal/geom"
)

const eps = 1e-9

func angleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}

func TestRadialEvenSpacing(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 12, 36} {
		shots := RadialShots(n, 100, 0.3)
		if len(shots) != n {
			t.Fatalf("n=%d: got %d shots", n, len(shots))
		}
		if math.Abs(shots[0].Dir.Angle()-0.3) > eps {
			t.Errorf("n=%d: first angle %v, want 0.3", n, shots[0].Dir.Angle())
		}
		if n == 1 {
			continue
		}
		want := 2 * math.Pi / float64(n)
		for i := 1; i < n; i++ {
			got := angleDiff(shots[i-1].Dir.Angle(), shots[i].Dir.Angle())
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("n=%d: gap %d = %v, want %v", n, i, got, want)
			}
		}
	}
}

func TestAimedSingleShotFollowsBearing(t *testing.T) {
	origin := geom.V(100, 100)
	target := geom.V(400, 500)
	shots := AimedShots(origin, target, 1, 0, 250)
	if len(shots) != 1 {
		t.Fatalf("got %d shots", len(shots))
	}
	want, _ := target.Sub(origin).Normalize()
	if math.Abs(shots[0].Dir.X-want.X) > eps || math.Abs(shots[0].Dir.Y-want.Y) > eps {
		t.Errorf("dir = %+v, want %+v", shots[0].Dir, want)
	}
	if shots[0].Speed != 250 {
		t.Errorf("speed = %v", shots[0].Speed)
	}
}

func TestAimedSpreadIsCentred(t *testing.T) {
	origin := geom.V(0, 0)
	target := geom.V(0, 10)
	shots := AimedShots(origin, target, 5, 60, 100)
	mid := shots[2].Dir
	if math.Abs(mid.X) > eps || math.Abs(mid.Y-1) > eps {
		t.Errorf("middle shot %+v not on bearing", mid)
	}
	span := angleDiff(shots[0].Dir.Angle(), shots[4].Dir.Angle())
	if math.Abs(span-geom.Deg(60)) > 1e-6 {
		t.Errorf("span = %v, want 60°", span)
	}
}

func TestAimedAtSelfFallsBackDown(t *testing.T) {
	p := geom.V(5, 5)
	shots := AimedShots(p, p, 1, 0, 10)
	if shots[0].Dir != geom.Down {
		t.Errorf("dir = %+v, want Down", shots[0].Dir)
	}
}

func TestRingOffsetsLieOnCircle(t *testing.T) {
	shots := RingShots(8, 30, 50, 0)
	for i, s := range shots {
		if math.Abs(s.Offset.Len()-30) > 1e-6 {
			t.Errorf("shot %d offset length %v", i, s.Offset.Len())
		}
		if s.Offset.Dot(s.Dir) <= 0 {
			t.Errorf("shot %d not moving outward", i)
		}
	}
}

func TestCrossIsFourRightAngles(t *testing.T) {
	shots := CrossShots(80, math.Pi/8)
	if len(shots) != 4 {
		t.Fatalf("got %d shots", len(shots))
	}
	for i := 1; i < 4; i++ {
		if math.Abs(shots[i-1].Dir.Dot(shots[i].Dir)) > 1e-9 {
			t.Errorf("shots %d,%d not perpendicular", i-1, i)
		}
	}
}

func TestWaveStaysWithinAmplitude(t *testing.T) {
	base := math.Pi / 2
	for _, s := range WaveShots(9, 100, base, 20, 0.7) {
		if d := math.Abs(s.Dir.Angle() - base); d > geom.Deg(20)+eps {
			t.Errorf("deviation %v exceeds amplitude", d)
		}
	}
}

func TestRandomPatternsRespectRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, s := range ScatterShots(rng, 50, 120, 80) {
		if s.Speed < 80 || s.Speed > 120 {
			t.Errorf("scatter speed %v out of range", s.Speed)
		}
		if math.Abs(s.Dir.Len()-1) > 1e-9 {
			t.Errorf("scatter dir not unit: %v", s.Dir.Len())
		}
	}
	origin, target := geom.V(0, 0), geom.V(100, 0)
	for _, s := range BurstShots(rng, origin, target, 50, 30, 100, 200) {
		if math.Abs(s.Dir.Angle()) > geom.Deg(15)+eps {
			t.Errorf("burst angle %v outside spread", s.Dir.Angle())
		}
		if s.Speed < 100 || s.Speed > 200 {
			t.Errorf("burst speed %v out of range", s.Speed)
		}
	}
}

func TestNonPositiveCountsProduceNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if RadialShots(0, 1, 0) != nil || AimedShots(geom.V(0, 0), geom.V(1, 1), -1, 0, 1) != nil ||
		WaveShots(0, 1, 0, 1, 0) != nil || ScatterShots(rng, 0, 1, 2) != nil ||
		BurstShots(rng, geom.V(0, 0), geom.V(1, 1), 0, 1, 1, 2) != nil {
		t.Error("expected nil shots for non-positive count")
	}
}
