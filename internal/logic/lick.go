package logic

// LickSpout is the capacitive lick circuit. A touch reads HIGH.
type LickSpout struct {
	Device
	TouchTime   Millis
	ReleaseTime Millis

	debounce Debouncer
}

// NewLickSpout creates a lick spout on pin.
func NewLickSpout(pin int) *LickSpout {
	return &LickSpout{
		Device:   Device{Pin: pin},
		debounce: NewDebouncer(LickDebounce, true),
	}
}

// Sample runs a raw level through the spout's debounce filter and stamps
// touch and release times on the resulting transitions.
func (l *LickSpout) Sample(raw bool, now Millis) (Transition, bool) {
	tr, ok := l.debounce.Update(raw, now)
	if !ok {
		return 0, false
	}
	if tr == TransitionPressed {
		l.TouchTime = now
	} else {
		l.ReleaseTime = now
	}
	return tr, true
}

// Touching reports whether the animal is currently on the spout.
func (l *LickSpout) Touching() bool {
	return l.debounce.InContact()
}
