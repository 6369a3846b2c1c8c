package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/operant-chamber/internal/logic"
)

func runningState() logic.SessionState {
	s := logic.NewSession(logic.DefaultConfig(), nil)
	s.Arm(logic.DeviceRHLever)
	s.Arm(logic.DeviceCue)
	s.Start(0)
	return s.State()
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Chamber: "box1", PollMs: 1, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Chamber != "box1" || snap.Config.HTTPAddr != ":8080" {
		t.Errorf("unexpected config %+v", snap.Config)
	}
	if snap.Session.Running {
		t.Error("expected no running session initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(runningState())
	tr.SetSessionID("abc")
	tr.SetLastRecord("RH_LEVER,ACTIVE_PRESS,1101,1301")

	snap := tr.Snapshot()
	if !snap.Session.Running {
		t.Error("expected running session")
	}
	if len(snap.Session.Devices) != len(logic.AllDevices) {
		t.Errorf("expected %d devices, got %d", len(logic.AllDevices), len(snap.Session.Devices))
	}
	if snap.SessionID != "abc" || snap.LastRecord != "RH_LEVER,ACTIVE_PRESS,1101,1301" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(runningState())

	snap1 := tr.Snapshot()
	tr.Update(logic.SessionState{})

	if !snap1.Session.Running {
		t.Error("snapshot should be a copy; session was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state := runningState()
	state.Counts = logic.RecordCounts{ActivePresses: 5, TimeoutPresses: 2, Licks: 40}
	state.Rewards = 5
	snap := Snapshot{
		Session:       state,
		SessionID:     "abc",
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Chamber: "box1", PollMs: 1, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"},
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := parsed.Status
	if s.Chamber != "box1" || !s.Running || s.SessionID != "abc" {
		t.Errorf("unexpected header fields %+v", s)
	}
	if s.Paradigm != "FR" || s.Ratio != 1 || s.Rewards != 5 {
		t.Errorf("unexpected session fields %+v", s)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("expected uptime 900, got %d", s.UptimeSeconds)
	}
	if s.StartTime != "2026-01-01T00:00:00Z" || s.Timestamp != "2026-01-01T00:15:00Z" {
		t.Errorf("unexpected timestamps %s %s", s.StartTime, s.Timestamp)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("unexpected mqtt %+v", s.MQTT)
	}
	if s.Counts.ActivePresses != 5 || s.Counts.TimeoutPresses != 2 || s.Counts.Licks != 40 {
		t.Errorf("unexpected counts %+v", s.Counts)
	}
	if len(s.Devices) != 6 || s.Devices[0].Name != "RH_LEVER" || !s.Devices[0].Armed {
		t.Errorf("unexpected devices %+v", s.Devices)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON must not carry event fields")
	}
}

func TestFormatJSONIdle(t *testing.T) {
	snap := Snapshot{StartTime: time.Now(), Now: time.Now()}
	data := string(FormatJSON(snap))
	if strings.Contains(data, "session_id") {
		t.Error("idle status should omit session_id")
	}
	if !strings.Contains(data, `"running": false`) {
		t.Errorf("expected running false, got %s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(time.Minute), Config: Config{Chamber: "box1"}}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("event payload should be compact")
	}
	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected event fields %+v", parsed.Status)
	}

	data = FormatStatusEvent(snap, "HEARTBEAT", "")
	if strings.Contains(string(data), "reason") {
		t.Error("reason should be omitted when empty")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	state := runningState()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(state)
				tr.SetMQTTConnected(j%2 == 0)
				tr.SetLastRecord("200")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				FormatJSON(tr.Snapshot())
			}
		}()
	}
	wg.Wait()
}
