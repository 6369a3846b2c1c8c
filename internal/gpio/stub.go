//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(layout Layout, onFrame func()) (*RealPins, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealPins) Read() (logic.Inputs, error) {
	return logic.Inputs{}, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (r *RealPins) Write(out logic.Outputs) error {
	return errors.New("gpio: not supported")
}

// SetTrigger is not implemented on non-Linux platforms.
func (r *RealPins) SetTrigger(high bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}
