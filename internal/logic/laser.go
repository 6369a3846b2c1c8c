package logic

import "fmt"

// LaserMode selects how stimulation periods are started.
type LaserMode int

const (
	// LaserCycle free-runs alternating stimulation and rest periods.
	LaserCycle LaserMode = iota
	// LaserActivePress stimulates only in windows armed by rewards.
	LaserActivePress
)

func (m LaserMode) String() string {
	if m == LaserActivePress {
		return "ACTIVE_PRESS"
	}
	return "CYCLE"
}

// ParseLaserMode accepts "CYCLE" or "ACTIVE_PRESS".
func ParseLaserMode(s string) (LaserMode, error) {
	switch s {
	case "CYCLE", "cycle":
		return LaserCycle, nil
	case "ACTIVE_PRESS", "active_press", "active-press":
		return LaserActivePress, nil
	}
	return 0, fmt.Errorf("unknown laser mode %q", s)
}

// LaserState is whether the laser is inside a stimulation period.
type LaserState int

const (
	LaserInactive LaserState = iota
	LaserActive
)

// LaserAction is the instantaneous on/off phase of the square wave.
type LaserAction int

const (
	ActionOff LaserAction = iota
	ActionOn
)

// Laser is the cycling optogenetic stimulator. Inside a stimulation period it
// produces a square wave at FrequencyHz by toggling Action every half cycle.
type Laser struct {
	Device
	Duration    Millis
	FrequencyHz int
	Mode        LaserMode
	State       LaserState
	Action      LaserAction
	Window      Window
	HalfCycle   Window
	CycleUp     bool
	Logged      bool

	stimulated Window
}

// NewLaser creates a laser on pin with the default 30 s, 20 Hz stimulation.
func NewLaser(pin int) *Laser {
	return &Laser{
		Device:      Device{Pin: pin},
		Duration:    30000,
		FrequencyHz: 20,
		Logged:      true,
	}
}

// SetDurationSeconds sets the stimulation period length in whole seconds.
func (l *Laser) SetDurationSeconds(sec int) {
	l.Duration = Millis(sec) * 1000
}

// StartPeriod begins a Duration-long stimulation period at now.
func (l *Laser) StartPeriod(now Millis) {
	l.Window = NewWindow(now, l.Duration)
}

// HalfCycleLength is the time the output spends in each phase of the wave.
func (l *Laser) HalfCycleLength() Millis {
	if l.FrequencyHz <= 0 {
		return 0
	}
	return Millis(500 / l.FrequencyHz)
}

// Output is the pin level for the current state.
func (l *Laser) Output() bool {
	return l.State == LaserActive && l.Action == ActionOn
}

// Drive advances the laser by one poll. It does nothing unless the session
// is running. A disarmed laser opens no new period but finishes the one in
// flight. The returned window is non-nil exactly once per stimulation period,
// on the first poll after it ends.
func (l *Laser) Drive(now Millis, running bool) (bool, *Window) {
	if !running {
		return false, l.Stop(now)
	}

	if l.Armed {
		switch l.Mode {
		case LaserCycle:
			if l.Window.IsZero() || now >= l.Window.End {
				l.StartPeriod(now)
				l.CycleUp = !l.CycleUp
			}
		case LaserActivePress:
			l.CycleUp = true
		}
	}

	var done *Window
	if l.Window.ContainsOpen(now) && l.CycleUp {
		l.State = LaserActive
		l.Logged = false
		l.stimulated = l.Window
		if l.FrequencyHz == 1 {
			l.Action = ActionOn
		} else if now > l.HalfCycle.End {
			l.HalfCycle = NewWindow(now, l.HalfCycleLength())
			l.toggle()
		}
	} else {
		l.State = LaserInactive
		l.Action = ActionOff
		if !l.Logged {
			w := l.stimulated
			done = &w
			l.Logged = true
		}
	}
	return l.Output(), done
}

// Off forces the laser into its resting state.
func (l *Laser) Off() {
	l.State = LaserInactive
	l.Action = ActionOff
}

// Stop turns the laser off. If a stimulation period was still unlogged it is
// returned, cut short at now.
func (l *Laser) Stop(now Millis) *Window {
	l.Off()
	if l.Logged {
		return nil
	}
	l.Logged = true
	w := l.stimulated
	if now < w.End {
		w.End = now
	}
	return &w
}

func (l *Laser) toggle() {
	if l.Action == ActionOn {
		l.Action = ActionOff
	} else {
		l.Action = ActionOn
	}
}
