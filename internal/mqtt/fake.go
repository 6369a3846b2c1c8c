package mqtt

import (
	"sync"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// FakePublisher records published records and events for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Records contains all behavioral records that were published.
	Records []logic.Record

	// Payloads contains the payloads that were published for records.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	handler func(string)
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the behavioral record.
func (f *FakePublisher) Publish(rec logic.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Records = append(f.Records, rec)
	f.Payloads = append(f.Payloads, FormatPayload(rec))
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Subscribe stores handler for Deliver.
func (f *FakePublisher) Subscribe(handler func(line string)) error {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return nil
}

// Deliver simulates a command line arriving on the commands topic.
// It reports false if nothing is subscribed.
func (f *FakePublisher) Deliver(line string) bool {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return false
	}
	h(line)
	return true
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Lines returns the published record payloads as strings.
func (f *FakePublisher) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Payloads))
	for i, p := range f.Payloads {
		out[i] = string(p)
	}
	return out
}

// EventNames returns the names of the published system events in order.
func (f *FakePublisher) EventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		out[i] = e.Event
	}
	return out
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Records = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
