package runlog

import (
	"sync"
)

// Sink receives published lines from the Hub's drain goroutine.
type Sink interface {
	Append(line string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(line string)

func (f SinkFunc) Append(line string) {
	if f != nil {
		f(line)
	}
}

// Hub is an ordered, bounded fan-out buffer between the pipeline goroutine
// and its line consumers. It satisfies runner.Observer.
type Hub struct {
	mu         sync.Mutex
	cond       *sync.Cond
	capacity   int
	buffer     []string
	dropped    uint64
	closed     bool
	delivering bool

	sinks []Sink
	done  chan struct{}
}

const defaultCapacity = 4096

// NewHub constructs a hub and starts its drain goroutine. Lines are
// delivered to the sinks in publish order.
func NewHub(capacity int, sinks ...Sink) *Hub {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	h := &Hub{
		capacity: capacity,
		sinks:    append([]Sink(nil), sinks...),
		done:     make(chan struct{}),
	}
	h.cond = sync.NewCond(&h.mu)
	go h.drain()
	return h
}

// Notify enqueues a line without blocking. When the buffer is full the oldest
// buffered line is discarded so the producer never waits on a consumer.
func (h *Hub) Notify(line string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
		h.dropped++
	}
	h.buffer = append(h.buffer, line)
	h.cond.Signal()
	h.mu.Unlock()
}

// Dropped reports how many lines were discarded due to a full buffer.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Flush blocks until every line published before the call has been delivered.
func (h *Hub) Flush() {
	h.mu.Lock()
	for (len(h.buffer) > 0 || h.delivering) && !h.closed {
		h.cond.Wait()
	}
	h.mu.Unlock()
}

// Close flushes remaining lines, stops the drain goroutine, and makes
// further Notify calls no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
	<-h.done
}

func (h *Hub) drain() {
	defer close(h.done)
	for {
		h.mu.Lock()
		for len(h.buffer) == 0 && !h.closed {
			h.cond.Wait()
		}
		if len(h.buffer) == 0 && h.closed {
			h.mu.Unlock()
			return
		}
		batch := h.buffer
		h.buffer = make([]string, 0, h.capacity)
		h.delivering = true
		h.mu.Unlock()

		for _, line := range batch {
			for _, sink := range h.sinks {
				sink.Append(line)
			}
		}

		h.mu.Lock()
		h.delivering = false
		h.cond.Broadcast()
		h.mu.Unlock()
	}
}
