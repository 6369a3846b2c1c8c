package logic

import "testing"

func TestHeartbeatDisabledWithZeroInterval(t *testing.T) {
	h := NewHeartbeat(0)
	if hb := h.Check(1000000, 0, RecordCounts{}); hb != nil {
		t.Error("expected nil heartbeat with zero interval")
	}
	if hb := h.Check(1000000, -1, RecordCounts{}); hb != nil {
		t.Error("expected nil heartbeat with negative interval")
	}
}

func TestHeartbeatBeforeInterval(t *testing.T) {
	h := NewHeartbeat(1000)
	if hb := h.Check(60999, 60000, RecordCounts{}); hb != nil {
		t.Error("expected nil heartbeat before interval elapsed")
	}
}

func TestHeartbeatAtInterval(t *testing.T) {
	h := NewHeartbeat(1000)
	hb := h.Check(61000, 60000, RecordCounts{})
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Timestamp != 61000 {
		t.Errorf("expected timestamp 61000, got %d", hb.Timestamp)
	}
	if hb.Uptime != 60000 {
		t.Errorf("expected uptime 60000, got %d", hb.Uptime)
	}
}

func TestHeartbeatUpdatesLastTime(t *testing.T) {
	h := NewHeartbeat(0)
	if h.Check(60000, 60000, RecordCounts{}) == nil {
		t.Fatal("expected first heartbeat")
	}
	if h.Check(90000, 60000, RecordCounts{}) != nil {
		t.Error("expected no heartbeat 30s after the last one")
	}
	hb := h.Check(120000, 60000, RecordCounts{})
	if hb == nil {
		t.Fatal("expected second heartbeat")
	}
	if hb.Uptime != 120000 {
		t.Errorf("uptime should be measured from start, got %d", hb.Uptime)
	}
}

func TestHeartbeatCarriesSessionCounts(t *testing.T) {
	s := newFRSession(t, 1)
	pressAndRelease(s, OrientationRH, 1000)
	pressAndRelease(s, OrientationLH, 3000)

	h := NewHeartbeat(0)
	hb := h.Check(60000, 60000, s.Counts())
	if hb == nil {
		t.Fatal("expected heartbeat")
	}
	if hb.Counts.ActivePresses != 1 || hb.Counts.InactivePresses != 1 {
		t.Errorf("unexpected counts %+v", hb.Counts)
	}
}
