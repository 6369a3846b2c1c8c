// Package gpio provides the chamber's pin I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"time"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// Pins reads the chamber inputs and drives its outputs.
type Pins interface {
	// Read returns the raw electrical levels of the input pins (true = HIGH).
	Read() (logic.Inputs, error)

	// Write drives the output pins to the given levels.
	Write(out logic.Outputs) error

	// SetTrigger drives the imaging trigger pin.
	SetTrigger(high bool) error

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering) for the lines not owned by a session device.
const (
	PinTrigger = 5 // imaging start/stop pulse
	PinFrame   = 6 // imaging frame clock, rising edge per frame
)

// TriggerPulse is how long the trigger pin is held high at session start and end.
const TriggerPulse = 50 * time.Millisecond

// Layout is the full pin assignment of a chamber.
type Layout struct {
	logic.Pins
	Trigger int
	Frame   int // < 0 disables frame capture
}

// DefaultLayout returns the wiring of the reference chamber.
func DefaultLayout() Layout {
	return Layout{Pins: logic.DefaultPins, Trigger: PinTrigger, Frame: PinFrame}
}

// PulseTrigger raises the trigger pin for d and lowers it again.
// sleep is injected so tests do not block.
func PulseTrigger(p Pins, d time.Duration, sleep func(time.Duration)) error {
	if err := p.SetTrigger(true); err != nil {
		return fmt.Errorf("raise trigger: %w", err)
	}
	sleep(d)
	if err := p.SetTrigger(false); err != nil {
		return fmt.Errorf("lower trigger: %w", err)
	}
	return nil
}
