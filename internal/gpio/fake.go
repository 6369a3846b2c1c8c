package gpio

import (
	"errors"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// FakePins is a test double that returns scripted input levels and records
// every write.
type FakePins struct {
	// Samples contains scripted raw input levels to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.Inputs

	// index tracks current position in Samples
	index int

	// Writes records every output write in order.
	Writes []logic.Outputs

	// Triggers records every trigger level set in order.
	Triggers []bool

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// WriteError, if set, will be returned by Write() and SetTrigger()
	WriteError error
}

// NewFakePins creates a FakePins with the given samples.
func NewFakePins(samples []logic.Inputs) *FakePins {
	return &FakePins{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakePins) Read() (logic.Inputs, error) {
	if f.ReadError != nil {
		return logic.Inputs{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.Inputs{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Write records the output levels.
func (f *FakePins) Write(out logic.Outputs) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, out)
	return nil
}

// SetTrigger records the trigger level.
func (f *FakePins) SetTrigger(high bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Triggers = append(f.Triggers, high)
	return nil
}

// Last returns the most recent output write.
func (f *FakePins) Last() logic.Outputs {
	if len(f.Writes) == 0 {
		return logic.Outputs{}
	}
	return f.Writes[len(f.Writes)-1]
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the pins to the beginning of samples and clears recordings.
func (f *FakePins) Reset() {
	f.index = 0
	f.Writes = nil
	f.Triggers = nil
	f.Closed = false
}
