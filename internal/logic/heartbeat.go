package logic

// HeartbeatData is the periodic liveness summary published by the loop.
type HeartbeatData struct {
	Timestamp Millis
	Uptime    Millis
	Counts    RecordCounts
}

// Heartbeat decides when the next liveness summary is due.
type Heartbeat struct {
	start Millis
	last  Millis
}

// NewHeartbeat creates a heartbeat whose uptime is measured from start.
func NewHeartbeat(start Millis) *Heartbeat {
	return &Heartbeat{start: start, last: start}
}

// Check returns heartbeat data if interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed, or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now, interval Millis, counts RecordCounts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now-h.last < interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now - h.start,
		Counts:    counts,
	}
}
