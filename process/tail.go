package process

import "sync"

// TruncatedMarker prefixes captured output whose head was dropped.
const TruncatedMarker = "...truncated\n"

// TailBuffer is an io.Writer that keeps only the last max bytes written.
// It is safe for concurrent use.
type TailBuffer struct {
	mu      sync.Mutex
	max     int
	buf     []byte
	dropped int64
}

// NewTailBuffer creates a buffer holding at most max bytes. A max of zero or
// less means unbounded.
func NewTailBuffer(max int) *TailBuffer {
	return &TailBuffer{max: max}
}

func (t *TailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if t.max <= 0 {
		t.buf = append(t.buf, p...)
		return n, nil
	}
	if n >= t.max {
		t.dropped += int64(len(t.buf) + n - t.max)
		t.buf = append(t.buf[:0], p[n-t.max:]...)
		return n, nil
	}
	if overflow := len(t.buf) + n - t.max; overflow > 0 {
		copy(t.buf, t.buf[overflow:])
		t.buf = t.buf[:len(t.buf)-overflow]
		t.dropped += int64(overflow)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

// Truncated reports whether any bytes were dropped.
func (t *TailBuffer) Truncated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped > 0
}

// Dropped returns how many leading bytes were discarded.
func (t *TailBuffer) Dropped() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Bytes returns a copy of the retained tail, prefixed with TruncatedMarker
// when output was dropped.
func (t *TailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dropped == 0 {
		return append([]byte(nil), t.buf...)
	}
	out := make([]byte, 0, len(TruncatedMarker)+len(t.buf))
	out = append(out, TruncatedMarker...)
	return append(out, t.buf...)
}
