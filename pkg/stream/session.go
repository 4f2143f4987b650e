package stream

import (
	"sync"
	"time"
)

// Status describes the lifecycle of a pipeline stage inside a NodeEvent.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusStreaming Status = "streaming"
	StatusError     Status = "error"
)

// NodeEvent is one unit of pipeline progress or streamed output. Events are
// delivered to the consumer in the exact order they were sent.
type NodeEvent struct {
	Stage     string                 `json:"stage"`
	Status    Status                 `json:"status"`
	Result    map[string]interface{} `json:"result,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewNodeEvent stamps an event with the current time.
func NewNodeEvent(stage string, status Status, result map[string]interface{}) *NodeEvent {
	return &NodeEvent{
		Stage:     stage,
		Status:    status,
		Result:    result,
		Timestamp: time.Now(),
	}
}

// sessionBuffer is large enough that a producer never blocks in practice;
// a full buffer drops the event rather than stalling the pipeline.
const sessionBuffer = 1024

// Session is a bounded-lifetime, multi-producer single-consumer event channel
// bridging one pipeline run and one stream consumer. A nil event on the
// channel is the termination sentinel; the channel is closed right after it.
type Session struct {
	ID string

	mu        sync.Mutex
	events    chan *NodeEvent
	active    bool
	sentCount int
}

func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		events: make(chan *NodeEvent, sessionBuffer),
		active: true,
	}
}

// Send enqueues an event for the consumer. It is a no-op once the session is
// closed and never blocks the producer: if the buffer is somehow full the
// event is dropped.
func (s *Session) Send(event *NodeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false
	}
	select {
	case s.events <- event:
		s.sentCount++
		return true
	default:
		return false
	}
}

// Close deactivates the session and enqueues the nil sentinel so a consumer
// blocked on the queue always observes termination. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.active = false

	select {
	case s.events <- nil:
	default:
		// Buffer full; closing the channel below still unblocks the consumer.
	}
	close(s.events)
}

// Events exposes the receive side of the queue. The consumer must treat a nil
// event or a closed channel as the end of the stream.
func (s *Session) Events() <-chan *NodeEvent {
	return s.events
}

// Active reports whether the producer side is still open.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SentCount returns how many events were accepted so far.
func (s *Session) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentCount
}
