package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Chamber       string       `json:"chamber"`
	Running       bool         `json:"running"`
	SessionID     string       `json:"session_id,omitempty"`
	Paradigm      string       `json:"paradigm"`
	Ratio         int          `json:"ratio"`
	PressCount    int          `json:"press_count"`
	Rewards       int          `json:"rewards"`
	LastRecord    string       `json:"last_record,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"record_counts"`
	Devices       []DeviceJSON `json:"devices"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of record counts.
type CountsJSON struct {
	ActivePresses   int `json:"active_presses"`
	InactivePresses int `json:"inactive_presses"`
	TimeoutPresses  int `json:"timeout_presses"`
	Licks           int `json:"licks"`
	Infusions       int `json:"infusions"`
	Stims           int `json:"stims"`
	Frames          int `json:"frames"`
}

// DeviceJSON is the JSON representation of one device.
type DeviceJSON struct {
	Name  string `json:"name"`
	Pin   int    `json:"pin"`
	Armed bool   `json:"armed"`
	On    bool   `json:"on"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	PingMs      int64  `json:"ping_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	sess := snap.Session
	devices := make([]DeviceJSON, 0, len(sess.Devices))
	for _, d := range sess.Devices {
		devices = append(devices, DeviceJSON{Name: d.ID.String(), Pin: d.Pin, Armed: d.Armed, On: d.On})
	}

	return StatusInner{
		Chamber:       snap.Config.Chamber,
		Running:       sess.Running,
		SessionID:     snap.SessionID,
		Paradigm:      sess.Paradigm.String(),
		Ratio:         sess.Ratio,
		PressCount:    sess.PressCount,
		Rewards:       sess.Rewards,
		LastRecord:    snap.LastRecord,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ActivePresses:   sess.Counts.ActivePresses,
			InactivePresses: sess.Counts.InactivePresses,
			TimeoutPresses:  sess.Counts.TimeoutPresses,
			Licks:           sess.Counts.Licks,
			Infusions:       sess.Counts.Infusions,
			Stims:           sess.Counts.Stims,
			Frames:          sess.Counts.Frames,
		},
		Devices: devices,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			PingMs:      snap.Config.PingMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			DBPath:      snap.Config.DBPath,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint and the
// print-state command (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
