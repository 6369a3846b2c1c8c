package logic

// Device is the record every chamber device embeds: its pin and whether it
// takes part in the current session. Only Armed is ever changed after
// construction.
type Device struct {
	Pin   int
	Armed bool
}

// Arm makes the device eligible for the session's timing logic.
func Arm(d *Device) {
	d.Armed = true
}

// Disarm removes the device from future timing decisions.
// Windows already scheduled on the device still run to completion.
func Disarm(d *Device) {
	d.Armed = false
}

// IsArmed reports whether the device is armed.
func (d *Device) IsArmed() bool {
	return d.Armed
}
