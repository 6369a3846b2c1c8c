package logic

import "testing"

func TestPulseRefractory(t *testing.T) {
	p := NewPulseLaser(1)
	if !p.Fire(1000) {
		t.Fatal("first pulse should fire")
	}
	if p.Window != (Window{Start: 1000, End: 3000}) {
		t.Fatalf("unexpected window %+v", p.Window)
	}
	for _, at := range []Millis{2000, 5000, 6000} {
		if p.Fire(at) {
			t.Errorf("pulse at %d should be refused during the rest period", at)
		}
	}
	if !p.Fire(6001) {
		t.Error("pulse after the rest period should fire")
	}
}

func TestPulseDriveLogsOnce(t *testing.T) {
	p := NewPulseLaser(1)
	if on, w := p.Drive(500); on || w != nil {
		t.Fatal("idle pulse laser must be off")
	}
	p.Fire(1000)

	if on, w := p.Drive(1000); !on || w != nil {
		t.Errorf("expected on at pulse start, got %v %v", on, w)
	}
	if on, w := p.Drive(3000); !on || w != nil {
		t.Errorf("expected on at pulse end, got %v %v", on, w)
	}
	on, w := p.Drive(3001)
	if on || w == nil {
		t.Fatalf("expected off and logged after pulse, got %v %v", on, w)
	}
	if *w != (Window{Start: 1000, End: 3000}) {
		t.Errorf("unexpected logged window %+v", *w)
	}
	if _, w := p.Drive(3002); w != nil {
		t.Error("pulse logged twice")
	}
}

func newPulseSession(t *testing.T, trigger PulseTrigger, trace Millis) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PulseLaser = true
	cfg.PulseTrigger = trigger
	cfg.TraceInterval = trace
	s := NewSession(cfg, nil)
	if s.Laser != nil {
		t.Fatal("pulse session must not carry the cycling laser")
	}
	for _, id := range []DeviceID{DeviceRHLever, DeviceCue, DeviceLaser} {
		if err := s.Arm(id); err != nil {
			t.Fatalf("arm %s: %v", id, err)
		}
	}
	if err := s.Start(0); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPulseOnPress(t *testing.T) {
	s := newPulseSession(t, TriggerOnPress, 0)

	pressAndRelease(s, OrientationRH, 1000)
	if s.Pulse.Window != (Window{Start: 1101, End: 3101}) {
		t.Fatalf("unexpected pulse window %+v", s.Pulse.Window)
	}
	s.Tick(IdleInputs(), 2000)
	if !s.Outputs().Laser {
		t.Error("expected laser on during pulse")
	}
	recs := s.Tick(IdleInputs(), 3102)
	if len(recs) != 1 || recs[0].String() != "LASER,STIM,1101,3101" {
		t.Errorf("unexpected records %v", recs)
	}
	if s.Outputs().Laser {
		t.Error("expected laser off after pulse")
	}
}

func TestPulseOnRewardAfterTrace(t *testing.T) {
	s := newPulseSession(t, TriggerOnReward, 500)

	pressAndRelease(s, OrientationRH, 1000)
	if s.Pulse.Window != (Window{Start: 1601, End: 3601}) {
		t.Errorf("unexpected pulse window %+v", s.Pulse.Window)
	}
}

func TestPulseCutShortByEnd(t *testing.T) {
	s := newPulseSession(t, TriggerOnPress, 0)
	pressAndRelease(s, OrientationRH, 1000)

	recs := s.End(2000)
	if len(recs) != 1 || recs[0].String() != "LASER,STIM,1101,2000" {
		t.Errorf("unexpected records %v", recs)
	}
	if s.Outputs().Laser {
		t.Error("laser must be off after End")
	}
}

func TestParsePulseTrigger(t *testing.T) {
	for in, want := range map[string]PulseTrigger{
		"ON-PRESS":  TriggerOnPress,
		"on_reward": TriggerOnReward,
	} {
		got, err := ParsePulseTrigger(in)
		if err != nil || got != want {
			t.Errorf("%q: got %v %v", in, got, err)
		}
	}
	if _, err := ParsePulseTrigger("sometimes"); err == nil {
		t.Error("expected error")
	}
}
