package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that stores messages while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; caller must synchronize.
type ringBuffer struct {
	buf     []bufferedMsg
	head    int // next write position
	count   int
	dropped int // messages overwritten since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
	if r.count == len(r.buf) {
		r.dropped++
		return
	}
	r.count++
}

// drainAll returns the buffered messages oldest first, and how many were
// lost to overflow, then empties the buffer.
func (r *ringBuffer) drainAll() ([]bufferedMsg, int) {
	dropped := r.dropped
	r.dropped = 0
	if r.count == 0 {
		return nil, dropped
	}

	out := make([]bufferedMsg, 0, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	r.count = 0
	r.head = 0
	return out, dropped
}

func (r *ringBuffer) len() int {
	return r.count
}
