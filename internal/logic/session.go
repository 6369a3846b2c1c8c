package logic

import (
	"errors"
	"math/rand"
)

var (
	// ErrPumpWithoutCue is returned when the pump is armed but the cue is not;
	// the infusion window is placed relative to the cue offset.
	ErrPumpWithoutCue = errors.New("pump armed without an armed cue")
	// ErrBadRatio is returned for a fixed ratio below 1.
	ErrBadRatio = errors.New("fixed ratio must be at least 1")
	// ErrBadFrequency is returned for a laser frequency below 1 Hz.
	ErrBadFrequency = errors.New("laser frequency must be at least 1 Hz")
	// ErrSessionRunning is returned for changes only allowed between sessions.
	ErrSessionRunning = errors.New("session is running")
)

// DefaultPins is the BCM wiring of the reference chamber.
var DefaultPins = Pins{
	RHLever: 17,
	LHLever: 27,
	Cue:     23,
	Pump:    24,
	Laser:   25,
	Lick:    22,
}

// Config holds the per-session parameters.
type Config struct {
	Paradigm      Paradigm
	Ratio         int    // FR only
	TraceInterval Millis // cue offset to infusion onset
	TimeoutLength Millis // post-reward timeout, starting at cue offset
	ActiveLever   Orientation
	PulseLaser    bool // use the simple pulse stimulator instead of the cycling one
	PulseTrigger  PulseTrigger
	IntervalMax   Millis // VI only
	LimitedHold   Millis // VI only; 0 disables interval timeout
	Pins          Pins
}

// DefaultConfig returns an FR1 session on the right lever.
func DefaultConfig() Config {
	return Config{
		Paradigm:      ParadigmFR,
		Ratio:         1,
		TimeoutLength: 20000,
		ActiveLever:   OrientationRH,
		IntervalMax:   DefaultIntervalMax,
		LimitedHold:   DefaultLimitedHold,
		Pins:          DefaultPins,
	}
}

// Session owns every device of the chamber and the counters of the current
// session. It is not safe for concurrent use: one poll loop drives it.
type Session struct {
	RH    *Lever
	LH    *Lever
	Cue   *Cue
	Pump  *Pump
	Laser *Laser      // nil when Config.PulseLaser is set
	Pulse *PulseLaser // nil unless Config.PulseLaser is set
	Lick  *LickSpout

	// Frames receives imaging frame pulses from another goroutine.
	Frames FrameSync

	PressCount    int
	Rewards       int
	TimeoutWindow Window

	cfg           Config
	ratio         RatioSchedule
	intervals     *IntervalScheduler
	running       bool
	offset        Millis
	offsetSet     bool
	collectFrames bool
	lastPing      Millis
	counts        RecordCounts
	out           Outputs
}

// NewSession creates a session with every device disarmed.
// rng supplies the VI random intervals; nil uses a fixed seed.
func NewSession(cfg Config, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if cfg.IntervalMax == 0 {
		cfg.IntervalMax = DefaultIntervalMax
	}
	s := &Session{
		RH:        NewLever(cfg.Pins.RHLever, OrientationRH),
		LH:        NewLever(cfg.Pins.LHLever, OrientationLH),
		Cue:       NewCue(cfg.Pins.Cue),
		Pump:      NewPump(cfg.Pins.Pump),
		Lick:      NewLickSpout(cfg.Pins.Lick),
		cfg:       cfg,
		ratio:     NewRatioSchedule(cfg.Paradigm, cfg.Ratio),
		intervals: NewIntervalScheduler(rng, cfg.IntervalMax, cfg.LimitedHold),
	}
	if cfg.PulseLaser {
		s.Pulse = NewPulseLaser(cfg.Pins.Laser)
		s.Pulse.Trigger = cfg.PulseTrigger
	} else {
		s.Laser = NewLaser(cfg.Pins.Laser)
	}
	return s
}

// Config returns the session parameters.
func (s *Session) Config() Config {
	return s.cfg
}

// Running reports whether a session has been started and not yet ended.
func (s *Session) Running() bool {
	return s.running
}

// ActiveLever returns the lever whose presses can earn rewards.
func (s *Session) ActiveLever() *Lever {
	if s.cfg.ActiveLever == OrientationLH {
		return s.LH
	}
	return s.RH
}

// InactiveLever returns the control lever.
func (s *Session) InactiveLever() *Lever {
	if s.cfg.ActiveLever == OrientationLH {
		return s.RH
	}
	return s.LH
}

// Ratio returns the presses required for the next reward.
func (s *Session) Ratio() int {
	return s.ratio.Ratio()
}

// Device returns the shared record of the device named by id.
func (s *Session) Device(id DeviceID) *Device {
	switch id {
	case DeviceRHLever:
		return &s.RH.Device
	case DeviceLHLever:
		return &s.LH.Device
	case DeviceCue:
		return &s.Cue.Device
	case DevicePump:
		return &s.Pump.Device
	case DeviceLaser:
		if s.Pulse != nil {
			return &s.Pulse.Device
		}
		return &s.Laser.Device
	case DeviceLick:
		return &s.Lick.Device
	}
	return nil
}

// Arm arms a device. While running, a change that would break Validate is
// refused and undone.
func (s *Session) Arm(id DeviceID) error {
	return s.setArmed(id, true)
}

// Disarm disarms a device, with the same check as Arm.
func (s *Session) Disarm(id DeviceID) error {
	return s.setArmed(id, false)
}

func (s *Session) setArmed(id DeviceID, armed bool) error {
	d := s.Device(id)
	if d == nil {
		return errors.New("unknown device")
	}
	prev := d.Armed
	if armed {
		Arm(d)
	} else {
		Disarm(d)
	}
	if s.running {
		if err := s.Validate(); err != nil {
			d.Armed = prev
			return err
		}
	}
	return nil
}

// Validate checks the preconditions for starting a session.
func (s *Session) Validate() error {
	if s.cfg.Paradigm == ParadigmFR && s.cfg.Ratio < 1 {
		return ErrBadRatio
	}
	if s.Pump.Armed && !s.Cue.Armed {
		return ErrPumpWithoutCue
	}
	if s.Laser != nil && s.Laser.Armed && s.Laser.FrequencyHz < 1 {
		return ErrBadFrequency
	}
	return nil
}

// SetRatio changes the fixed ratio. It applies from the next reward.
func (s *Session) SetRatio(n int) error {
	if n < 1 {
		return ErrBadRatio
	}
	s.cfg.Ratio = n
	s.ratio.fixed = n
	return nil
}

// SetCueDuration changes the tone length. It is fixed for the length of a
// session.
func (s *Session) SetCueDuration(d Millis) error {
	if s.running {
		return ErrSessionRunning
	}
	s.Cue.Duration = d
	return nil
}

// SetParadigm changes the reinforcement schedule between sessions.
func (s *Session) SetParadigm(p Paradigm) error {
	if s.running {
		return ErrSessionRunning
	}
	s.cfg.Paradigm = p
	s.ratio = NewRatioSchedule(p, s.cfg.Ratio)
	return nil
}

// SetActiveLever swaps which lever is rewarded, between sessions.
func (s *Session) SetActiveLever(o Orientation) error {
	if s.running {
		return ErrSessionRunning
	}
	s.cfg.ActiveLever = o
	return nil
}

// SetTraceInterval sets the delay between cue offset and infusion onset.
func (s *Session) SetTraceInterval(d Millis) {
	s.cfg.TraceInterval = d
}

// SetTimeoutLength sets the post-reward timeout.
func (s *Session) SetTimeoutLength(d Millis) {
	s.cfg.TimeoutLength = d
}

// SetCollectFrames turns frame timestamp records on or off.
func (s *Session) SetCollectFrames(on bool) {
	s.collectFrames = on
}

// Start begins a session at now: now becomes the origin of every logged
// timestamp and all counters are reset.
func (s *Session) Start(now Millis) error {
	if s.running {
		return ErrSessionRunning
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.running = true
	s.offset = now
	s.offsetSet = true
	s.Frames.SetOrigin(now)
	s.PressCount = 0
	s.Rewards = 0
	s.TimeoutWindow = Window{}
	s.ratio = NewRatioSchedule(s.cfg.Paradigm, s.cfg.Ratio)
	s.counts = RecordCounts{}
	s.lastPing = now
	if s.cfg.Paradigm == ParadigmVI {
		s.intervals.ResetInterval(s.ActiveLever(), now)
	}
	return nil
}

// End stops the session and disarms every device. A stimulation still in
// progress is cut short and logged with now as its end.
func (s *Session) End(now Millis) []Record {
	var recs []Record
	s.running = false
	for _, id := range AllDevices {
		Disarm(s.Device(id))
	}

	var stopped *Window
	if s.Laser != nil {
		stopped = s.Laser.Stop(now)
	} else {
		stopped = s.Pulse.Stop(now)
	}
	if stopped != nil {
		recs = append(recs, windowRecord(RecordStim, DeviceLaser.String(), s.relativeWindow(*stopped)))
	}
	s.out.Laser = false
	s.count(recs)
	return recs
}

// Relative converts a clock reading to session time. Before the first
// session start it returns t unchanged.
func (s *Session) Relative(t Millis) Millis {
	if !s.offsetSet {
		return t
	}
	return t - s.offset
}

func (s *Session) relativeWindow(w Window) Window {
	return Window{Start: s.Relative(w.Start), End: s.Relative(w.End)}
}

func (s *Session) laserArmed() bool {
	if s.Pulse != nil {
		return s.Pulse.Armed
	}
	return s.Laser.Armed
}

// Tick runs one poll: outputs are advanced against their windows, inputs are
// debounced and classified, and the laser is stepped. It returns the records
// produced during this poll in emission order.
func (s *Session) Tick(in Inputs, now Millis) []Record {
	var recs []Record

	s.out.Cue = s.Cue.Drive(now)
	s.out.Pump = s.Pump.Drive(now)

	if s.running && s.cfg.Paradigm == ParadigmVI && s.ActiveLever().Armed {
		s.intervals.Tick(s.ActiveLever(), now)
	}

	recs = append(recs, s.sampleLever(s.RH, in.RHLever, now)...)
	recs = append(recs, s.sampleLever(s.LH, in.LHLever, now)...)
	if rec, ok := s.sampleLick(in.Lick, now); ok {
		recs = append(recs, rec)
	}

	if rec, ok := s.driveLaser(now); ok {
		recs = append(recs, rec)
	}

	if at, ok := s.Frames.Take(); ok && s.collectFrames {
		recs = append(recs, Record{Kind: RecordFrame, Start: at})
	}

	s.count(recs)
	return recs
}

func (s *Session) sampleLever(l *Lever, raw bool, now Millis) []Record {
	if !l.Armed {
		return nil
	}
	tr, ok := l.Sample(raw, now)
	if !ok {
		return nil
	}

	if tr == TransitionReleased {
		s.countPress(l.PressType)
		return []Record{pressRecord(l, s.Relative(l.PressTime), s.Relative(l.ReleaseTime))}
	}

	if l != s.ActiveLever() {
		l.PressType = PressInactive
		return nil
	}

	var recs []Record
	if s.cfg.Paradigm == ParadigmVI {
		recs = s.classifyIntervalPress(l, now)
	} else {
		recs = s.classifyRatioPress(l, now)
	}
	if l.PressType == PressActive && s.Pulse != nil && s.Pulse.Armed && s.Pulse.Trigger == TriggerOnPress {
		s.Pulse.Fire(now)
	}
	return recs
}

func (s *Session) sampleLick(raw bool, now Millis) (Record, bool) {
	if !s.Lick.Armed {
		return Record{}, false
	}
	tr, ok := s.Lick.Sample(raw, now)
	if !ok || tr != TransitionReleased {
		return Record{}, false
	}
	return Record{
		Kind:   RecordLick,
		Source: DeviceLick.String(),
		Event:  string(RecordLick),
		Start:  s.Relative(s.Lick.TouchTime),
		End:    s.Relative(s.Lick.ReleaseTime),
	}, true
}

func (s *Session) driveLaser(now Millis) (Record, bool) {
	var done *Window
	if s.Pulse != nil {
		s.out.Laser, done = s.Pulse.Drive(now)
	} else {
		s.out.Laser, done = s.Laser.Drive(now, s.running)
	}
	if done == nil {
		return Record{}, false
	}
	return windowRecord(RecordStim, DeviceLaser.String(), s.relativeWindow(*done)), true
}

// Outputs returns the levels computed by the last Tick.
func (s *Session) Outputs() Outputs {
	return s.out
}

// CheckPing returns a ping record if interval has elapsed since the last one.
// An interval <= 0 disables pings.
func (s *Session) CheckPing(now, interval Millis) (Record, bool) {
	if interval <= 0 || now-s.lastPing < interval {
		return Record{}, false
	}
	s.lastPing = now
	return Record{Kind: RecordPing}, true
}

func (s *Session) countPress(p PressType) {
	switch p {
	case PressActive:
		s.counts.ActivePresses++
	case PressInactive:
		s.counts.InactivePresses++
	case PressTimeout:
		s.counts.TimeoutPresses++
	}
}

func (s *Session) count(recs []Record) {
	for _, r := range recs {
		switch r.Kind {
		case RecordLick:
			s.counts.Licks++
		case RecordInfusion:
			s.counts.Infusions++
		case RecordStim:
			s.counts.Stims++
		case RecordFrame:
			s.counts.Frames++
		}
	}
}

// Counts returns the record counts since the last session start.
func (s *Session) Counts() RecordCounts {
	return s.counts
}

// State returns a value snapshot for status consumers.
func (s *Session) State() SessionState {
	devices := make([]DeviceState, 0, len(AllDevices))
	for _, id := range AllDevices {
		d := s.Device(id)
		devices = append(devices, DeviceState{ID: id, Pin: d.Pin, Armed: d.Armed, On: s.deviceOn(id)})
	}
	return SessionState{
		Paradigm:   s.cfg.Paradigm,
		Running:    s.running,
		PressCount: s.PressCount,
		Ratio:      s.ratio.Ratio(),
		Rewards:    s.Rewards,
		Counts:     s.counts,
		Devices:    devices,
	}
}

func (s *Session) deviceOn(id DeviceID) bool {
	switch id {
	case DeviceRHLever:
		return s.RH.Pressed()
	case DeviceLHLever:
		return s.LH.Pressed()
	case DeviceCue:
		return s.out.Cue
	case DevicePump:
		return s.out.Pump
	case DeviceLaser:
		return s.out.Laser
	case DeviceLick:
		return s.Lick.Touching()
	}
	return false
}
