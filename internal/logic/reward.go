package logic

// DeliverReward arms the reward windows for a qualifying press at now, in
// causal order: cue, then infusion after the trace interval, then laser.
// Devices that are not armed are skipped. Windows are never rolled back.
func (s *Session) DeliverReward(now Millis) []Record {
	var recs []Record

	if s.Cue.Armed {
		s.Cue.Schedule(now)
	}
	// An armed pump needs the cue offset to place the infusion. Validate and
	// Arm refuse that combination while running, so it is skipped here.
	if s.Pump.Armed && s.Cue.Armed {
		s.Pump.Schedule(s.Cue.Window.End, s.cfg.TraceInterval)
		recs = append(recs, windowRecord(RecordInfusion, DevicePump.String(), s.relativeWindow(s.Pump.Window)))
	}
	if s.Laser != nil && s.Laser.Armed {
		s.Laser.StartPeriod(now)
		s.Laser.State = LaserActive
	}
	if s.Pulse != nil && s.Pulse.Armed && s.Pulse.Trigger == TriggerOnReward {
		s.Pulse.Fire(now + s.cfg.TraceInterval)
	}

	s.Rewards++
	s.ratio.Advance()
	return recs
}
