// Package logic contains the pure timing and reward logic of the chamber.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected as a Millis value from the caller's monotonic clock.
package logic

import (
	"fmt"
	"strings"
)

// Millis is a timestamp or duration in milliseconds on the session clock.
type Millis int64

// PressType classifies a single lever press.
type PressType int

const (
	PressNoCondition PressType = iota
	PressActive
	PressInactive
	PressTimeout
)

func (p PressType) String() string {
	switch p {
	case PressActive:
		return "ACTIVE"
	case PressInactive:
		return "INACTIVE"
	case PressTimeout:
		return "TIMEOUT"
	default:
		return "NO_CONDITION"
	}
}

// Orientation is the side of the chamber a lever is mounted on.
type Orientation int

const (
	OrientationRH Orientation = iota
	OrientationLH
)

func (o Orientation) String() string {
	if o == OrientationLH {
		return "LH"
	}
	return "RH"
}

// ParseOrientation accepts "RH" or "LH" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(s) {
	case "RH":
		return OrientationRH, nil
	case "LH":
		return OrientationLH, nil
	}
	return 0, fmt.Errorf("unknown lever orientation %q", s)
}

// Paradigm is the reinforcement schedule of a session.
type Paradigm int

const (
	ParadigmFR Paradigm = iota // fixed ratio
	ParadigmPR                 // progressive ratio
	ParadigmVI                 // variable interval
)

func (p Paradigm) String() string {
	switch p {
	case ParadigmPR:
		return "PR"
	case ParadigmVI:
		return "VI"
	default:
		return "FR"
	}
}

// ParseParadigm accepts "FR", "PR" or "VI" (case-insensitive).
func ParseParadigm(s string) (Paradigm, error) {
	switch strings.ToUpper(s) {
	case "FR":
		return ParadigmFR, nil
	case "PR":
		return ParadigmPR, nil
	case "VI":
		return ParadigmVI, nil
	}
	return 0, fmt.Errorf("unknown paradigm %q", s)
}

// DeviceID names one of the chamber's devices.
type DeviceID int

const (
	DeviceRHLever DeviceID = iota
	DeviceLHLever
	DeviceCue
	DevicePump
	DeviceLaser
	DeviceLick
)

// AllDevices lists every device in status display order.
var AllDevices = []DeviceID{DeviceRHLever, DeviceLHLever, DeviceCue, DevicePump, DeviceLaser, DeviceLick}

func (d DeviceID) String() string {
	switch d {
	case DeviceRHLever:
		return "RH_LEVER"
	case DeviceLHLever:
		return "LH_LEVER"
	case DeviceCue:
		return "CUE"
	case DevicePump:
		return "PUMP"
	case DeviceLaser:
		return "LASER"
	case DeviceLick:
		return "LICK_CIRCUIT"
	}
	return "UNKNOWN"
}

// ParseDeviceID accepts the log spelling of a device name, plus "LICK".
func ParseDeviceID(s string) (DeviceID, error) {
	s = strings.ToUpper(s)
	if s == "LICK" {
		return DeviceLick, nil
	}
	for _, d := range AllDevices {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown device %q", s)
}

// Pins maps each device to its BCM pin number.
type Pins struct {
	RHLever int
	LHLever int
	Cue     int
	Pump    int
	Laser   int
	Lick    int
}

// Outputs are the logical levels the output devices should be driven to.
type Outputs struct {
	Cue   bool
	Pump  bool
	Laser bool
}

// Inputs are raw electrical levels sampled from the input pins (true = HIGH).
type Inputs struct {
	RHLever bool
	LHLever bool
	Lick    bool
}

// IdleInputs returns the levels seen when nothing is touched:
// levers are pulled up, the lick circuit is pulled down.
func IdleInputs() Inputs {
	return Inputs{RHLever: true, LHLever: true, Lick: false}
}

// RecordCounts tracks how many of each record were emitted since session start.
type RecordCounts struct {
	ActivePresses   int
	InactivePresses int
	TimeoutPresses  int
	Licks           int
	Infusions       int
	Stims           int
	Frames          int
}

// DeviceState is a point-in-time view of a single device.
type DeviceState struct {
	ID    DeviceID
	Pin   int
	Armed bool
	On    bool
}

// SessionState is a value snapshot of the session for status consumers.
type SessionState struct {
	Paradigm   Paradigm
	Running    bool
	PressCount int
	Ratio      int
	Rewards    int
	Counts     RecordCounts
	Devices    []DeviceState
}
