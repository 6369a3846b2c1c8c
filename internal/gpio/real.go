//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// RealPins drives the chamber from actual hardware using the Linux GPIO
// character device.
type RealPins struct {
	chip    *gpiocdev.Chip
	rh      *gpiocdev.Line
	lh      *gpiocdev.Line
	lick    *gpiocdev.Line
	cue     *gpiocdev.Line
	pump    *gpiocdev.Line
	laser   *gpiocdev.Line
	trigger *gpiocdev.Line
	frame   *gpiocdev.Line
}

// NewRealPins requests every line of layout on gpiochip0. Levers are pulled
// up (a press reads LOW), the lick circuit is pulled down (a touch reads
// HIGH) and outputs start low. onFrame is called from the edge event
// goroutine on every rising edge of the frame clock; it may be nil.
func NewRealPins(layout Layout, onFrame func()) (*RealPins, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	r := &RealPins{chip: chip}

	inputs := []struct {
		name string
		pin  int
		bias gpiocdev.LineReqOption
		dst  **gpiocdev.Line
	}{
		{"RH lever", layout.RHLever, gpiocdev.WithPullUp, &r.rh},
		{"LH lever", layout.LHLever, gpiocdev.WithPullUp, &r.lh},
		{"lick", layout.Lick, gpiocdev.WithPullDown, &r.lick},
	}
	for _, in := range inputs {
		line, err := chip.RequestLine(in.pin, gpiocdev.AsInput, in.bias)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", in.name, in.pin, err)
		}
		*in.dst = line
	}

	outputs := []struct {
		name string
		pin  int
		dst  **gpiocdev.Line
	}{
		{"cue", layout.Cue, &r.cue},
		{"pump", layout.Pump, &r.pump},
		{"laser", layout.Laser, &r.laser},
		{"trigger", layout.Trigger, &r.trigger},
	}
	for _, out := range outputs {
		line, err := chip.RequestLine(out.pin, gpiocdev.AsOutput(0))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", out.name, out.pin, err)
		}
		*out.dst = line
	}

	if layout.Frame >= 0 && onFrame != nil {
		line, err := chip.RequestLine(layout.Frame,
			gpiocdev.AsInput,
			gpiocdev.WithPullDown,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { onFrame() }))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request frame pin %d: %w", layout.Frame, err)
		}
		r.frame = line
	}

	return r, nil
}

// Read returns the raw levels of the lever and lick inputs.
func (r *RealPins) Read() (logic.Inputs, error) {
	rh, err := r.rh.Value()
	if err != nil {
		return logic.Inputs{}, fmt.Errorf("read RH lever pin: %w", err)
	}
	lh, err := r.lh.Value()
	if err != nil {
		return logic.Inputs{}, fmt.Errorf("read LH lever pin: %w", err)
	}
	lick, err := r.lick.Value()
	if err != nil {
		return logic.Inputs{}, fmt.Errorf("read lick pin: %w", err)
	}
	return logic.Inputs{RHLever: rh == 1, LHLever: lh == 1, Lick: lick == 1}, nil
}

// Write drives the cue, pump and laser pins.
func (r *RealPins) Write(out logic.Outputs) error {
	if err := r.cue.SetValue(level(out.Cue)); err != nil {
		return fmt.Errorf("write cue pin: %w", err)
	}
	if err := r.pump.SetValue(level(out.Pump)); err != nil {
		return fmt.Errorf("write pump pin: %w", err)
	}
	if err := r.laser.SetValue(level(out.Laser)); err != nil {
		return fmt.Errorf("write laser pin: %w", err)
	}
	return nil
}

// SetTrigger drives the imaging trigger pin.
func (r *RealPins) SetTrigger(high bool) error {
	if err := r.trigger.SetValue(level(high)); err != nil {
		return fmt.Errorf("write trigger pin: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
// Every line is returned to input with pull-down (matching Pi boot defaults)
// before closing so no output is left driving a device.
func (r *RealPins) Close() error {
	var errs []error

	lines := []struct {
		name string
		line *gpiocdev.Line
	}{
		{"RH lever", r.rh},
		{"LH lever", r.lh},
		{"lick", r.lick},
		{"cue", r.cue},
		{"pump", r.pump},
		{"laser", r.laser},
		{"trigger", r.trigger},
		{"frame", r.frame},
	}
	for _, l := range lines {
		if l.line == nil {
			continue
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
