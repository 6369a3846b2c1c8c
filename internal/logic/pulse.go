package logic

import (
	"fmt"
	"strings"
)

// PulseTrigger selects which event starts a pulse.
type PulseTrigger int

const (
	TriggerOnPress  PulseTrigger = iota // every active press
	TriggerOnReward                     // every reward, after the trace interval
)

func (t PulseTrigger) String() string {
	if t == TriggerOnReward {
		return "ON-REWARD"
	}
	return "ON-PRESS"
}

// ParsePulseTrigger accepts "ON-PRESS" or "ON-REWARD".
func ParsePulseTrigger(s string) (PulseTrigger, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "_", "-")) {
	case "ON-PRESS":
		return TriggerOnPress, nil
	case "ON-REWARD":
		return TriggerOnReward, nil
	}
	return 0, fmt.Errorf("unknown pulse trigger %q", s)
}

// PulseLaser is the simple stimulator: a single continuous pulse of
// OnDuration per trigger, followed by an OffDuration refractory period.
type PulseLaser struct {
	Device
	OnDuration  Millis
	OffDuration Millis
	Trigger     PulseTrigger
	Window      Window
	Logged      bool
}

// NewPulseLaser creates a pulse laser on pin with a 2 s pulse and 3 s rest.
func NewPulseLaser(pin int) *PulseLaser {
	return &PulseLaser{
		Device:      Device{Pin: pin},
		OnDuration:  2000,
		OffDuration: 3000,
		Logged:      true,
	}
}

// Fire schedules a pulse starting at start unless the previous pulse or its
// rest period has not finished yet.
func (p *PulseLaser) Fire(start Millis) bool {
	if !p.Window.IsZero() && start <= p.Window.End+p.OffDuration {
		return false
	}
	p.Window = NewWindow(start, p.OnDuration)
	p.Logged = false
	return true
}

// Drive returns the pin level for now. The returned window is non-nil
// exactly once per pulse, on the first poll after it ends.
func (p *PulseLaser) Drive(now Millis) (bool, *Window) {
	if p.Window.IsZero() {
		return false, nil
	}
	on := p.Window.Contains(now)
	if !p.Logged && p.Window.Expired(now) {
		p.Logged = true
		w := p.Window
		return on, &w
	}
	return on, nil
}

// Stop cuts the current pulse short at now. The pulse is returned if it had
// not been logged yet.
func (p *PulseLaser) Stop(now Millis) *Window {
	if p.Window.IsZero() || p.Logged {
		return nil
	}
	if now < p.Window.End {
		p.Window.End = now
	}
	p.Logged = true
	w := p.Window
	return &w
}
