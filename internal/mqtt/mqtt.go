// Package mqtt provides MQTT publishing and command subscription with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// TopicPrefix is the root of every chamber topic.
const TopicPrefix = "operant"

// Topics are the per-chamber MQTT topics.
type Topics struct {
	Events   string // behavioral record lines
	System   string // JSON lifecycle events
	Commands string // host command lines, subscribed
}

// TopicsFor returns the topics of the named chamber.
func TopicsFor(chamber string) Topics {
	base := fmt.Sprintf("%s/%s", TopicPrefix, chamber)
	return Topics{
		Events:   base + "/events",
		System:   base + "/system",
		Commands: base + "/commands",
	}
}

// Publisher publishes records and lifecycle events to MQTT.
type Publisher interface {
	// Publish sends a behavioral record to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(rec logic.Record) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// Subscriber delivers command lines received from the host.
type Subscriber interface {
	// Subscribe registers handler for command lines. handler is called from
	// the client's goroutine and must not block.
	Subscribe(handler func(line string)) error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, session
// start, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SESSION_START", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	SessionID  string // set for session events
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// FormatPayload creates the payload for a behavioral record: the record's
// log line, byte for byte.
func FormatPayload(rec logic.Record) []byte {
	return []byte(rec.String())
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED, SESSION_END) that don't carry a
// full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	Session   string `json:"session,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Session:   event.SessionID,
		},
	}
	return json.Marshal(payload)
}
