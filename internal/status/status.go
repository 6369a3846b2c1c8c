// Package status provides a thread-safe status tracker for the chamber daemon.
// It is written by the poll loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Chamber     string
	PollMs      int64
	HeartbeatMs int64
	PingMs      int64
	Broker      string
	HTTPAddr    string
	DBPath      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Session       logic.SessionState
	SessionID     string
	LastRecord    string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the session state. Called from the run loop on every tick.
// state must not be mutated afterwards; Session.State returns a fresh copy.
func (t *Tracker) Update(state logic.SessionState) {
	t.mu.Lock()
	t.snap.Session = state
	t.mu.Unlock()
}

// SetSessionID sets the archive ID of the running session ("" when idle).
func (t *Tracker) SetSessionID(id string) {
	t.mu.Lock()
	t.snap.SessionID = id
	t.mu.Unlock()
}

// SetLastRecord stores the most recent record line.
func (t *Tracker) SetLastRecord(line string) {
	t.mu.Lock()
	t.snap.LastRecord = line
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
