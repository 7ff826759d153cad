package bullet

import "testing"

func TestPoolGrowsUpToHardMax(t *testing.T) {
	p := NewPool(4, 3, 10)
	if p.Size() != 4 {
		t.Fatalf("initial size = %d", p.Size())
	}
	claimed := 0
	for i := 0; i < 50; i++ {
		if _, ok := p.Claim(); ok {
			claimed++
		}
		if p.Size() > p.HardMax() {
			t.Fatalf("size %d exceeds hard max %d", p.Size(), p.HardMax())
		}
		if p.Active() > p.Size() {
			t.Fatalf("active %d exceeds size %d", p.Active(), p.Size())
		}
	}
	if claimed != 10 || p.Active() != 10 || p.Size() != 10 {
		t.Errorf("claimed=%d active=%d size=%d, want 10/10/10", claimed, p.Active(), p.Size())
	}
}

func TestPoolRecyclesReleasedSlots(t *testing.T) {
	p := NewPool(2, 1, 2)
	a, _ := p.Claim()
	b, _ := p.Claim()
	if a.Slot == b.Slot {
		t.Fatal("two claims share a slot")
	}
	if _, ok := p.Claim(); ok {
		t.Fatal("claim beyond hard max succeeded")
	}
	if !p.Release(a.Slot) {
		t.Fatal("release failed")
	}
	if p.Release(a.Slot) {
		t.Error("double release reported success")
	}
	c, ok := p.Claim()
	if !ok || c.Slot != 0 {
		t.Errorf("expected slot 0 to be recycled, got %v %v", c, ok)
	}
}

func TestSweepReleasesWithoutSkipping(t *testing.T) {
	p := NewPool(8, 1, 8)
	for i := 0; i < 8; i++ {
		pr, _ := p.Claim()
		pr.Speed = float64(i)
	}
	visited := 0
	p.Sweep(func(pr *Projectile) bool {
		visited++
		return int(pr.Speed)%2 == 0
	})
	if visited != 8 {
		t.Errorf("visited %d, want 8", visited)
	}
	if p.Active() != 4 {
		t.Errorf("active = %d, want 4", p.Active())
	}
	p.Sweep(func(pr *Projectile) bool {
		if int(pr.Speed)%2 != 0 {
			t.Errorf("odd projectile %v survived", pr.Speed)
		}
		return true
	})
}

func TestReleaseAll(t *testing.T) {
	p := NewPool(0, 4, 16)
	for i := 0; i < 9; i++ {
		p.Claim()
	}
	if n := p.ReleaseAll(); n != 9 {
		t.Errorf("ReleaseAll = %d, want 9", n)
	}
	if p.Active() != 0 {
		t.Errorf("active = %d after ReleaseAll", p.Active())
	}
	p.Sweep(func(pr *Projectile) bool {
		t.Errorf("slot %d still active", pr.Slot)
		return true
	})
	// Every slot is free again: claiming Size() more must not grow the pool.
	size := p.Size()
	for i := 0; i < size; i++ {
		if _, ok := p.Claim(); !ok {
			t.Fatalf("claim %d failed after ReleaseAll", i)
		}
	}
	if p.Size() != size {
		t.Errorf("pool grew to %d reusing released slots", p.Size())
	}
}
