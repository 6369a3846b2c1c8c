package logic

import "sync"

// FrameSync holds the latest imaging frame pulse. Signal is called from the
// edge-event goroutine; the poll loop drains it with Take. The flag and the
// timestamp are read and cleared together under the lock.
type FrameSync struct {
	mu        sync.Mutex
	received  bool
	at        Millis
	origin    Millis
	hasOrigin bool
}

// SetOrigin sets the session start that later pulses are stamped against.
func (f *FrameSync) SetOrigin(t Millis) {
	f.mu.Lock()
	f.origin = t
	f.hasOrigin = true
	f.mu.Unlock()
}

// Signal records a frame pulse at now, relative to the origin when one is set.
func (f *FrameSync) Signal(now Millis) {
	f.mu.Lock()
	f.received = true
	f.at = now
	if f.hasOrigin {
		f.at = now - f.origin
	}
	f.mu.Unlock()
}

// Take returns and clears the pending frame pulse, if any.
func (f *FrameSync) Take() (Millis, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.received {
		return 0, false
	}
	f.received = false
	return f.at, true
}
