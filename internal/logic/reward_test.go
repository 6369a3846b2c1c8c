package logic

import "testing"

func TestDeliverRewardChainsCueTraceInfusion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceInterval = 500
	s := NewSession(cfg, nil)
	s.Cue.Duration = 1600
	s.Pump.InfusionDuration = 2000
	s.Arm(DeviceCue)
	s.Arm(DevicePump)

	recs := s.DeliverReward(1000)

	if s.Cue.Window != (Window{Start: 1000, End: 2600}) {
		t.Errorf("cue window: got %+v, want {1000 2600}", s.Cue.Window)
	}
	if s.Pump.Window != (Window{Start: 3100, End: 5100}) {
		t.Errorf("pump window: got %+v, want {3100 5100}", s.Pump.Window)
	}
	if len(recs) != 1 || recs[0].String() != "PUMP,INFUSION,3100,5100" {
		t.Errorf("unexpected records %v", recs)
	}
	if s.Rewards != 1 {
		t.Errorf("expected 1 reward, got %d", s.Rewards)
	}
}

func TestDeliverRewardSkipsUnarmed(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)

	recs := s.DeliverReward(1000)
	if len(recs) != 0 {
		t.Errorf("expected no records, got %v", recs)
	}
	if !s.Cue.Window.IsZero() || !s.Pump.Window.IsZero() || !s.Laser.Window.IsZero() {
		t.Error("unarmed devices must not be scheduled")
	}
}

func TestDeliverRewardArmsLaser(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)
	s.Laser.Duration = 5000
	s.Arm(DeviceLaser)

	s.DeliverReward(1000)
	if s.Laser.Window != (Window{Start: 1000, End: 6000}) {
		t.Errorf("laser window: got %+v", s.Laser.Window)
	}
	if s.Laser.State != LaserActive {
		t.Error("laser should be ACTIVE after reward")
	}
}

func TestCueAndPumpDrive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceInterval = 500
	s := NewSession(cfg, nil)
	s.Arm(DeviceCue)
	s.Arm(DevicePump)
	s.DeliverReward(1000) // cue 1000-2600, pump 3100-5100

	tests := []struct {
		now  Millis
		cue  bool
		pump bool
	}{
		{999, false, false},
		{1000, true, false},
		{2600, true, false},
		{2601, false, false},
		{3100, false, true},
		{5100, false, true},
		{5101, false, false},
	}
	for _, tt := range tests {
		s.Tick(IdleInputs(), tt.now)
		out := s.Outputs()
		if out.Cue != tt.cue || out.Pump != tt.pump {
			t.Errorf("t=%d: got cue=%v pump=%v, want cue=%v pump=%v", tt.now, out.Cue, out.Pump, tt.cue, tt.pump)
		}
		if s.Cue.Running != tt.cue || s.Pump.Running != tt.pump {
			t.Errorf("t=%d: Running flags out of step with outputs", tt.now)
		}
	}
}

func TestInFlightWindowSurvivesDisarm(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)
	s.Arm(DeviceCue)
	s.DeliverReward(1000)
	s.Disarm(DeviceCue)

	s.Tick(IdleInputs(), 1500)
	if !s.Outputs().Cue {
		t.Error("cue window already armed should play out after disarm")
	}
	s.DeliverReward(3000)
	if s.Cue.Window.Start != 1000 {
		t.Error("disarmed cue must not be re-armed")
	}
}

func TestDriveIsIdempotent(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)
	s.Arm(DeviceCue)
	s.DeliverReward(1000)

	s.Tick(IdleInputs(), 1200)
	first := s.Outputs()
	s.Tick(IdleInputs(), 1200)
	if s.Outputs() != first {
		t.Error("repeated drive at the same time changed outputs")
	}
}
