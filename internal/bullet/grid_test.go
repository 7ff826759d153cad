package bullet

import (
	"math/rand"
	"testing"

	"github.com/cipherstorm/director/internal/core/ecs"
	"github.com/cipherstorm/director/internal/geom"
)

// firstHitLinear is the reference: scan every target in order.
func firstHitLinear(targets []Target, p geom.Vec2, f Faction, r float64) int {
	for i, t := range targets {
		reach := t.Radius + r
		if f.Opposes(t.Faction) && p.DistSq(t.Pos) <= reach*reach {
			return i
		}
	}
	return -1
}

func TestGridMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := newTargetGrid()
	const r = 4.0

	for round := 0; round < 20; round++ {
		targets := make([]Target, 1+rng.Intn(60))
		for i := range targets {
			targets[i] = Target{
				ID:      ecs.NewEntityID(uint32(i+1), 1),
				Pos:     geom.V(rng.Float64()*800-50, rng.Float64()*600-50),
				Radius:  5 + rng.Float64()*90, // some larger than minCell
				Faction: Faction(rng.Intn(2)),
			}
		}
		g.rebuild(targets, r)

		for q := 0; q < 500; q++ {
			p := geom.V(rng.Float64()*900-100, rng.Float64()*700-100)
			f := Faction(rng.Intn(2))
			hit := -1
			g.nearby(p, func(i int) {
				if hit >= 0 && i > hit {
					return
				}
				t := targets[i]
				reach := t.Radius + r
				if f.Opposes(t.Faction) && p.DistSq(t.Pos) <= reach*reach {
					hit = i
				}
			})
			if want := firstHitLinear(targets, p, f, r); hit != want {
				t.Fatalf("round %d point %v: grid hit %d, linear hit %d", round, p, hit, want)
			}
		}
	}
}

func TestGridRebuildDropsStaleTargets(t *testing.T) {
	g := newTargetGrid()
	g.rebuild([]Target{{Pos: geom.V(10, 10), Radius: 5}}, 1)
	g.rebuild([]Target{{Pos: geom.V(500, 500), Radius: 5}}, 1)

	var seen []int
	g.nearby(geom.V(10, 10), func(i int) { seen = append(seen, i) })
	if len(seen) != 0 {
		t.Fatalf("stale target still indexed: %v", seen)
	}
	g.nearby(geom.V(500, 500), func(i int) { seen = append(seen, i) })
	if len(seen) != 1 || seen[0] != 0 {
		t.Fatalf("seen = %v", seen)
	}
}
