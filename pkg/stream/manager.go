package stream

import (
	"fmt"
	"time"

	"ai-docchat-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// Sessions abandoned by both producer and consumer are evicted after this
	// TTL so a crashed request cannot leak its queue.
	sessionTTL      = 10 * time.Minute
	cleanupInterval = time.Minute
)

// EventSink receives a copy of every event published to a session. Used to
// mirror stage progress to observers outside the owning request (e.g. a
// websocket broadcast channel).
type EventSink interface {
	PublishStageEvent(sessionID string, event *NodeEvent)
}

// Manager owns the process-wide registry of live stream sessions. Producers
// deep in the pipeline only carry a session id, so they look the session up
// here instead of threading a reference through every call site.
type Manager struct {
	sessions *gocache.Cache
	logger   logger.ILogger
}

func NewManager(log logger.ILogger) *Manager {
	c := gocache.New(sessionTTL, cleanupInterval)
	c.OnEvicted(func(id string, value interface{}) {
		if sess, ok := value.(*Session); ok && sess.Active() {
			log.Warn("StreamManager", "Evicting session that was never closed", map[string]interface{}{"session_id": id})
			sess.Close()
		}
	})
	return &Manager{sessions: c, logger: log}
}

// Create registers a new session under the given id.
func (m *Manager) Create(id string) *Session {
	sess := NewSession(id)
	m.sessions.Set(id, sess, gocache.DefaultExpiration)
	m.logger.Info("StreamManager", "Session created", map[string]interface{}{"session_id": id, "active": m.sessions.ItemCount()})
	return sess
}

// Lookup returns the live session for an id, if any.
func (m *Manager) Lookup(id string) (*Session, bool) {
	value, found := m.sessions.Get(id)
	if !found {
		return nil, false
	}
	sess, ok := value.(*Session)
	return sess, ok
}

// Remove drops the session from the registry without closing it. Called by
// the consumer on stream teardown.
func (m *Manager) Remove(id string) {
	// Delete triggers OnEvicted, which closes the session if still active.
	m.sessions.Delete(id)
}

// Run executes a pipeline task in a supervised goroutine bound to the
// session. The returned channel is closed when the task has finished, whether
// it returned, failed, or panicked; the session is always closed afterwards so
// the consumer's drain loop terminates.
func (m *Manager) Run(sess *Session, task func() error) <-chan struct{} {
	done := make(chan struct{})

	// Pin the session while the task runs: the registry TTL is measured from
	// Set, so a run outlasting it would be evicted and cut off mid-stream. The
	// TTL is re-armed on completion as a leak backstop for sessions nobody
	// drains. Replace keeps a session already removed by its consumer out of
	// the registry.
	_ = m.sessions.Replace(sess.ID, sess, gocache.NoExpiration)

	go func() {
		defer close(done)
		defer func() {
			_ = m.sessions.Replace(sess.ID, sess, gocache.DefaultExpiration)
		}()
		defer sess.Close()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("StreamManager", "Pipeline task panicked", map[string]interface{}{"session_id": sess.ID, "panic": fmt.Sprintf("%v", r)})
				sess.Send(NewNodeEvent("ERROR", StatusError, map[string]interface{}{
					"error": fmt.Sprintf("internal pipeline failure: %v", r),
				}))
			}
		}()

		if err := task(); err != nil {
			m.logger.Error("StreamManager", "Pipeline task failed", map[string]interface{}{"session_id": sess.ID, "error": err.Error()})
			sess.Send(NewNodeEvent("ERROR", StatusError, map[string]interface{}{
				"error": err.Error(),
			}))
		}
	}()

	return done
}
