package logic

// Transition is a debounced change of an input's stable level.
type Transition int

const (
	TransitionPressed  Transition = iota + 1 // level moved to the contact level
	TransitionReleased                       // level moved away from the contact level
)

func (t Transition) String() string {
	switch t {
	case TransitionPressed:
		return "PRESSED"
	case TransitionReleased:
		return "RELEASED"
	}
	return "NONE"
}

// Default debounce delays per input class.
const (
	LeverDebounce Millis = 100
	LickDebounce  Millis = 25
)

// Debouncer turns a noisy raw level into a stable one.
// The stable level only changes once the raw level has held
// for longer than the delay since its last change.
type Debouncer struct {
	delay   Millis
	contact bool // raw level that means "touched"

	rawPrevious bool
	stable      bool
	lastChange  Millis
}

// NewDebouncer creates a filter that starts at the idle (non-contact) level.
func NewDebouncer(delay Millis, contact bool) Debouncer {
	return Debouncer{
		delay:       delay,
		contact:     contact,
		rawPrevious: !contact,
		stable:      !contact,
	}
}

// Update feeds one raw sample and returns a transition when the stable level changes.
func (d *Debouncer) Update(raw bool, now Millis) (Transition, bool) {
	if raw != d.rawPrevious {
		d.lastChange = now
	}
	d.rawPrevious = raw

	if now-d.lastChange > d.delay && raw != d.stable {
		d.stable = raw
		if raw == d.contact {
			return TransitionPressed, true
		}
		return TransitionReleased, true
	}
	return 0, false
}

// Stable returns the current debounced raw level.
func (d *Debouncer) Stable() bool {
	return d.stable
}

// InContact reports whether the stable level is the contact level.
func (d *Debouncer) InContact() bool {
	return d.stable == d.contact
}

// Delay returns the configured settle time.
func (d *Debouncer) Delay() Millis {
	return d.delay
}
