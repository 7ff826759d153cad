// Package sched runs deferred callbacks against a simulation clock that only
// moves when Advance is called. It replaces "wait N seconds, then do X"
// suspensions with a deadline list processed at the top of a tick.
package sched

import (
	"sort"
	"time"
)

type entry struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// Scheduler is single-goroutine only.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	pending []entry
}

func New() *Scheduler {
	return &Scheduler{pending: make([]entry, 0, 16)}
}

// After schedules fn to run once the clock has advanced by delay. A delay
// <= 0 runs on the next Advance.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	e := entry{at: s.now + delay, seq: s.seq, fn: fn}
	i := sort.Search(len(s.pending), func(i int) bool {
		p := s.pending[i]
		return p.at > e.at || (p.at == e.at && p.seq > e.seq)
	})
	s.pending = append(s.pending, entry{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = e
}

// Advance moves the clock forward by dt and runs every due callback in
// deadline order. Callbacks scheduled from inside a callback with a zero
// delay run in the same Advance.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.now += dt
	ran := 0
	for len(s.pending) > 0 && s.pending[0].at <= s.now {
		e := s.pending[0]
		s.pending[0] = entry{}
		s.pending = s.pending[1:]
		e.fn()
		ran++
	}
	return ran
}

// Clear drops every pending callback without running it.
func (s *Scheduler) Clear() {
	clear(s.pending)
	s.pending = s.pending[:0]
}

// Len returns the number of pending callbacks.
func (s *Scheduler) Len() int { return len(s.pending) }
