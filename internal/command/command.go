// Package command parses host command lines and applies them to a session.
// Commands arrive one per line from stdin or the MQTT commands topic:
//
//	START
//	END
//	ARM <device>
//	DISARM <device>
//	SET <param> <value>
//	FRAMES ON|OFF
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/operant-chamber/internal/logic"
)

var (
	ErrEmpty           = errors.New("empty command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrUnknownParam    = errors.New("unknown parameter")
	ErrNoSuchLaser     = errors.New("parameter does not apply to the configured laser")
	// ErrLifecycle is returned by Apply for START and END, which the caller
	// must handle itself.
	ErrLifecycle = errors.New("lifecycle command")
)

// Kind is the verb of a command.
type Kind int

const (
	KindStart Kind = iota
	KindEnd
	KindArm
	KindDisarm
	KindSet
	KindFrames
)

var kindNames = map[string]Kind{
	"START":  KindStart,
	"END":    KindEnd,
	"ARM":    KindArm,
	"DISARM": KindDisarm,
	"SET":    KindSet,
	"FRAMES": KindFrames,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "UNKNOWN"
}

// Param is a settable session parameter.
type Param string

const (
	ParamParadigm       Param = "PARADIGM"
	ParamRatio          Param = "RATIO"
	ParamActiveLever    Param = "ACTIVE_LEVER"
	ParamCueDuration    Param = "CUE_DURATION"    // ms
	ParamCueFrequency   Param = "CUE_FREQUENCY"   // Hz
	ParamTrace          Param = "TRACE"           // ms
	ParamInfusion       Param = "INFUSION"        // ms
	ParamTimeout        Param = "TIMEOUT"         // ms
	ParamLaserDuration  Param = "LASER_DURATION"  // s
	ParamLaserFrequency Param = "LASER_FREQUENCY" // Hz
	ParamLaserMode      Param = "LASER_MODE"
	ParamPulseOn        Param = "PULSE_ON"  // ms
	ParamPulseOff       Param = "PULSE_OFF" // ms
)

var params = map[Param]bool{
	ParamParadigm: true, ParamRatio: true, ParamActiveLever: true,
	ParamCueDuration: true, ParamCueFrequency: true, ParamTrace: true,
	ParamInfusion: true, ParamTimeout: true, ParamLaserDuration: true,
	ParamLaserFrequency: true, ParamLaserMode: true, ParamPulseOn: true,
	ParamPulseOff: true,
}

// Command is one parsed command line.
type Command struct {
	Kind   Kind
	Device logic.DeviceID // ARM, DISARM
	Param  Param          // SET
	Value  string         // SET
	On     bool           // FRAMES
}

// Parse parses a single command line. Verbs, devices and parameters are
// case-insensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmpty
	}
	kind, ok := kindNames[strings.ToUpper(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
	}
	c := Command{Kind: kind}
	args := fields[1:]

	switch kind {
	case KindStart, KindEnd:
		return c, nil

	case KindArm, KindDisarm:
		if len(args) < 1 {
			return Command{}, fmt.Errorf("%s: %w: device", kind, ErrMissingArgument)
		}
		d, err := logic.ParseDeviceID(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", kind, err)
		}
		c.Device = d

	case KindSet:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("SET: %w: param and value", ErrMissingArgument)
		}
		p := Param(strings.ToUpper(args[0]))
		if !params[p] {
			return Command{}, fmt.Errorf("SET: %w %q", ErrUnknownParam, args[0])
		}
		c.Param = p
		c.Value = args[1]

	case KindFrames:
		if len(args) < 1 {
			return Command{}, fmt.Errorf("FRAMES: %w: ON or OFF", ErrMissingArgument)
		}
		switch strings.ToUpper(args[0]) {
		case "ON":
			c.On = true
		case "OFF":
		default:
			return Command{}, fmt.Errorf("FRAMES: expected ON or OFF, got %q", args[0])
		}
	}
	return c, nil
}

// Apply performs c on s. START and END return ErrLifecycle: they carry side
// effects (trigger pulse, archive, publishing) owned by the caller.
func Apply(s *logic.Session, c Command) error {
	switch c.Kind {
	case KindStart, KindEnd:
		return ErrLifecycle
	case KindArm:
		if err := s.Arm(c.Device); err != nil {
			return fmt.Errorf("arm %s: %w", c.Device, err)
		}
	case KindDisarm:
		if err := s.Disarm(c.Device); err != nil {
			return fmt.Errorf("disarm %s: %w", c.Device, err)
		}
	case KindSet:
		if err := set(s, c.Param, c.Value); err != nil {
			return fmt.Errorf("set %s: %w", c.Param, err)
		}
	case KindFrames:
		s.SetCollectFrames(c.On)
	default:
		return ErrUnknownCommand
	}
	return nil
}

func set(s *logic.Session, p Param, value string) error {
	switch p {
	case ParamParadigm:
		paradigm, err := logic.ParseParadigm(value)
		if err != nil {
			return err
		}
		return s.SetParadigm(paradigm)
	case ParamActiveLever:
		o, err := logic.ParseOrientation(value)
		if err != nil {
			return err
		}
		return s.SetActiveLever(o)
	case ParamLaserMode:
		if s.Laser == nil {
			return ErrNoSuchLaser
		}
		m, err := logic.ParseLaserMode(strings.ToUpper(value))
		if err != nil {
			return err
		}
		s.Laser.Mode = m
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %q: %w", value, err)
	}
	if n < 0 {
		return fmt.Errorf("negative value %d", n)
	}
	ms := logic.Millis(n)

	switch p {
	case ParamRatio:
		return s.SetRatio(n)
	case ParamCueDuration:
		return s.SetCueDuration(ms)
	case ParamCueFrequency:
		s.Cue.FrequencyHz = n
	case ParamTrace:
		s.SetTraceInterval(ms)
	case ParamInfusion:
		s.Pump.InfusionDuration = ms
	case ParamTimeout:
		s.SetTimeoutLength(ms)
	case ParamLaserDuration:
		if s.Laser == nil {
			return ErrNoSuchLaser
		}
		s.Laser.SetDurationSeconds(n)
	case ParamLaserFrequency:
		if s.Laser == nil {
			return ErrNoSuchLaser
		}
		if n < 1 {
			return logic.ErrBadFrequency
		}
		s.Laser.FrequencyHz = n
	case ParamPulseOn:
		if s.Pulse == nil {
			return ErrNoSuchLaser
		}
		s.Pulse.OnDuration = ms
	case ParamPulseOff:
		if s.Pulse == nil {
			return ErrNoSuchLaser
		}
		s.Pulse.OffDuration = ms
	default:
		return ErrUnknownParam
	}
	return nil
}
