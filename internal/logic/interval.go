package logic

import "math/rand"

// DefaultIntervalMax is the exclusive upper bound of a VI random interval.
const DefaultIntervalMax Millis = 15000

// DefaultLimitedHold is how long an elapsed VI interval waits for a press
// before it is redrawn.
const DefaultLimitedHold Millis = 15000

// IntervalState is the variable interval bookkeeping carried by a lever.
type IntervalState struct {
	Start               Millis
	Random              Millis
	ActivePressOccurred bool
}

// Window returns the unrewarded part of the interval.
func (iv IntervalState) Window() Window {
	return NewWindow(iv.Start, iv.Random)
}

// IntervalScheduler re-arms a lever's random interval, independent of presses.
type IntervalScheduler struct {
	rng  *rand.Rand
	max  Millis
	hold Millis // 0 = wait for a press indefinitely
}

// NewIntervalScheduler creates a scheduler drawing intervals in [0, max).
// hold is how long a reward stays available after the interval elapses
// before the interval times out and is redrawn.
func NewIntervalScheduler(rng *rand.Rand, max, hold Millis) *IntervalScheduler {
	return &IntervalScheduler{rng: rng, max: max, hold: hold}
}

// ResetInterval starts a new interval on l at now.
func (sch *IntervalScheduler) ResetInterval(l *Lever, now Millis) {
	l.Interval.Start = now
	l.Interval.Random = 0
	if sch.max > 0 {
		l.Interval.Random = Millis(sch.rng.Int63n(int64(sch.max)))
	}
	l.Interval.ActivePressOccurred = false
}

// Tick re-arms the interval after a rewarded press or once the limited hold
// has run out. It reports whether a new interval was drawn.
func (sch *IntervalScheduler) Tick(l *Lever, now Millis) bool {
	if l.Interval.ActivePressOccurred {
		sch.ResetInterval(l, now)
		return true
	}
	if sch.hold > 0 && now > l.Interval.Window().End+sch.hold {
		sch.ResetInterval(l, now)
		return true
	}
	return false
}
