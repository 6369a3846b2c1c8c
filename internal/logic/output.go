package logic

// Cue is the tone generator announcing a reward.
type Cue struct {
	Device
	FrequencyHz int
	Duration    Millis
	Window      Window
	Running     bool
}

// NewCue creates a cue on pin with the default 8 kHz, 1.6 s tone.
func NewCue(pin int) *Cue {
	return &Cue{
		Device:      Device{Pin: pin},
		FrequencyHz: 8000,
		Duration:    1600,
	}
}

// Schedule sets the tone window to start at now.
func (c *Cue) Schedule(now Millis) {
	c.Window = NewWindow(now, c.Duration)
}

// Drive updates Running for now and returns the level the cue pin should
// have. A scheduled window plays out even if the cue is disarmed meanwhile.
func (c *Cue) Drive(now Millis) bool {
	c.Running = !c.Window.IsZero() && c.Window.Contains(now)
	return c.Running
}

// Pump is the syringe pump delivering an infusion after the trace interval.
type Pump struct {
	Device
	InfusionDuration Millis
	InfusionAmount   float64 // microliters
	MotorRPM         float64
	Window           Window
	Running          bool
}

// NewPump creates a pump on pin with the default 2 s infusion.
func NewPump(pin int) *Pump {
	return &Pump{
		Device:           Device{Pin: pin},
		InfusionDuration: 2000,
	}
}

// Schedule places the infusion trace after the cue offset.
func (p *Pump) Schedule(cueEnd, trace Millis) {
	p.Window = NewWindow(cueEnd+trace, p.InfusionDuration)
}

// Drive updates Running for now and returns the level the pump pin should have.
func (p *Pump) Drive(now Millis) bool {
	p.Running = !p.Window.IsZero() && p.Window.Contains(now)
	return p.Running
}
