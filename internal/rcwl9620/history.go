// internal/rcwl9620/history.go
package rcwl9620

// History is a fixed-capacity FIFO of measurements.
// Pushing into a full history evicts the oldest entry.
type History struct {
	buf   []Data
	head  int // index of the oldest entry
	count int
}

// NewHistory creates a history holding at most capacity entries.
// Capacities below one are raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Data, capacity)}
}

func (h *History) Capacity() int  { return len(h.buf) }
func (h *History) Available() int { return h.count }
func (h *History) Empty() bool    { return h.count == 0 }
func (h *History) Full() bool     { return h.count == len(h.buf) }

// Push appends d, dropping the oldest entry when full.
func (h *History) Push(d Data) {
	tail := (h.head + h.count) % len(h.buf)
	h.buf[tail] = d
	if h.count == len(h.buf) {
		h.head = (h.head + 1) % len(h.buf)
		return
	}
	h.count++
}

// Oldest returns the front entry. ok is false when the history is empty.
func (h *History) Oldest() (d Data, ok bool) {
	if h.count == 0 {
		return Data{}, false
	}
	return h.buf[h.head], true
}

// Discard removes the oldest entry, if any.
func (h *History) Discard() {
	if h.count == 0 {
		return
	}
	h.buf[h.head] = Data{}
	h.head = (h.head + 1) % len(h.buf)
	h.count--
}

// Flush removes all entries.
func (h *History) Flush() {
	for i := range h.buf {
		h.buf[i] = Data{}
	}
	h.head = 0
	h.count = 0
}
