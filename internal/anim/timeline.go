package anim

import (
	"sort"
	"time"
)

type scheduled struct {
	at  time.Duration
	seq int
	fn  func()
}

// Timeline holds delayed callbacks keyed to an owner's elapsed clock.
// Callbacks fire from Advance in due order; nothing runs on another goroutine.
type Timeline struct {
	now     time.Duration
	seq     int
	pending []scheduled
}

// After schedules fn to run once the timeline reaches now+delay.
func (tl *Timeline) After(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	tl.seq++
	tl.pending = append(tl.pending, scheduled{at: tl.now + delay, seq: tl.seq, fn: fn})
	sort.SliceStable(tl.pending, func(i, j int) bool {
		if tl.pending[i].at == tl.pending[j].at {
			return tl.pending[i].seq < tl.pending[j].seq
		}
		return tl.pending[i].at < tl.pending[j].at
	})
}

// Advance moves the clock to now and runs every due callback. Callbacks may
// schedule more work; anything that becomes due during this call also runs.
func (tl *Timeline) Advance(now time.Duration) int {
	if now > tl.now {
		tl.now = now
	}

	fired := 0
	for len(tl.pending) > 0 && tl.pending[0].at <= tl.now {
		next := tl.pending[0]
		tl.pending = tl.pending[1:]
		next.fn()
		fired++
	}
	return fired
}

// Now returns the last time passed to Advance.
func (tl *Timeline) Now() time.Duration { return tl.now }

// Len reports how many callbacks are waiting.
func (tl *Timeline) Len() int { return len(tl.pending) }

// Clear drops every pending callback.
func (tl *Timeline) Clear() { tl.pending = nil }
