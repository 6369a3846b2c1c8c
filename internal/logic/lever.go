package logic

// Lever is a response lever. Presses are classified one at a time; the
// classification of the last press is kept until the lever is released so
// that it can be written to the press record.
type Lever struct {
	Device
	Orientation Orientation
	PressType   PressType
	PressTime   Millis
	ReleaseTime Millis

	// Interval is only used by the variable interval paradigm.
	Interval IntervalState

	debounce Debouncer
}

// NewLever creates a lever on pin. Lever inputs are pulled up, so a press
// reads LOW.
func NewLever(pin int, o Orientation) *Lever {
	return &Lever{
		Device:      Device{Pin: pin},
		Orientation: o,
		debounce:    NewDebouncer(LeverDebounce, false),
	}
}

// Sample runs a raw level through the lever's debounce filter and stamps
// press and release times on the resulting transitions.
func (l *Lever) Sample(raw bool, now Millis) (Transition, bool) {
	tr, ok := l.debounce.Update(raw, now)
	if !ok {
		return 0, false
	}
	if tr == TransitionPressed {
		l.PressTime = now
	} else {
		l.ReleaseTime = now
	}
	return tr, true
}

// Pressed reports whether the lever is currently held down.
func (l *Lever) Pressed() bool {
	return l.debounce.InContact()
}

// classifyRatioPress applies the FR/PR rules to a press on the active lever.
// It returns any records produced by a reward triggered by this press.
func (s *Session) classifyRatioPress(l *Lever, now Millis) []Record {
	block, ok := s.rewardBlock()
	if !ok {
		l.PressType = PressInactive
		return nil
	}
	if (!block.IsZero() && block.Contains(now)) || s.inTimeout(now) {
		l.PressType = PressTimeout
		return nil
	}

	l.PressType = PressActive
	// The ratio may shrink mid-session below the presses already counted.
	if s.PressCount+1 < s.ratio.Ratio() {
		s.PressCount++
		return nil
	}

	s.PressCount = 0
	recs := s.DeliverReward(now)
	if s.running {
		s.TimeoutWindow = NewWindow(s.rewardEnd(), s.cfg.TimeoutLength)
	}
	return recs
}

// classifyIntervalPress applies the VI rules: only the first press after the
// lever's random interval has elapsed is rewarded.
func (s *Session) classifyIntervalPress(l *Lever, now Millis) []Record {
	block, ok := s.rewardBlock()
	if !ok {
		l.PressType = PressInactive
		return nil
	}
	if !block.IsZero() && block.Contains(now) {
		l.PressType = PressTimeout
		return nil
	}
	if l.Interval.ActivePressOccurred || !l.Interval.Window().Expired(now) {
		l.PressType = PressTimeout
		return nil
	}

	l.PressType = PressActive
	l.Interval.ActivePressOccurred = true
	return s.DeliverReward(now)
}

// rewardBlock returns the window during which presses on the active lever
// are disqualified by an in-flight reward. ok is false when no reward device
// is armed, which makes every press INACTIVE.
func (s *Session) rewardBlock() (Window, bool) {
	switch {
	case s.Cue.Armed && s.Pump.Armed:
		return Window{Start: s.Cue.Window.Start, End: s.Pump.Window.End}, true
	case s.Cue.Armed:
		return s.Cue.Window, true
	case s.laserArmed():
		return Window{}, true
	}
	return Window{}, false
}

// rewardEnd is where the post-reward timeout starts: the cue offset, or the
// end of the stimulation when the laser is the only reward device.
func (s *Session) rewardEnd() Millis {
	if s.Cue.Armed {
		return s.Cue.Window.End
	}
	if s.Pulse != nil {
		return s.Pulse.Window.End
	}
	return s.Laser.Window.End
}

func (s *Session) inTimeout(now Millis) bool {
	return !s.TimeoutWindow.IsZero() && s.TimeoutWindow.Contains(now)
}
