package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

var _ logger.ILogger = nopLogger{}

func TestManagerCreateLookupRemove(t *testing.T) {
	m := NewManager(nopLogger{})

	sess := m.Create("abc")
	require.NotNil(t, sess)

	found, ok := m.Lookup("abc")
	require.True(t, ok)
	assert.Same(t, sess, found)

	m.Remove("abc")
	_, ok = m.Lookup("abc")
	assert.False(t, ok)

	// Eviction closes a session that was never closed by its owner.
	assert.False(t, sess.Active())
}

func TestManagerLookupUnknown(t *testing.T) {
	m := NewManager(nopLogger{})
	_, ok := m.Lookup("nope")
	assert.False(t, ok)
}

func TestRunClosesSessionOnSuccess(t *testing.T) {
	m := NewManager(nopLogger{})
	sess := m.Create("run-ok")

	done := m.Run(sess, func() error {
		sess.Send(NewNodeEvent("A", StatusCompleted, nil))
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	assert.False(t, sess.Active())

	ev := <-sess.Events()
	require.NotNil(t, ev)
	assert.Equal(t, "A", ev.Stage)
	assert.Nil(t, <-sess.Events(), "sentinel must follow the last event")
}

func TestRunConvertsErrorToEvent(t *testing.T) {
	m := NewManager(nopLogger{})
	sess := m.Create("run-err")

	done := m.Run(sess, func() error {
		return errors.New("keyword stage exploded")
	})
	<-done

	ev := <-sess.Events()
	require.NotNil(t, ev)
	assert.Equal(t, StatusError, ev.Status)
	assert.Contains(t, ev.Result["error"], "keyword stage exploded")
}

func TestRunPinsSessionWhileTaskRuns(t *testing.T) {
	m := NewManager(nopLogger{})
	sess := m.Create("run-long")

	started := make(chan struct{})
	release := make(chan struct{})
	done := m.Run(sess, func() error {
		close(started)
		<-release
		return nil
	})
	<-started

	// While a task runs the registry entry carries no deadline, so a run
	// longer than the TTL cannot be evicted and cut off mid-stream.
	item, found := m.sessions.Items()["run-long"]
	require.True(t, found)
	assert.Zero(t, item.Expiration)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}

	// Completion re-arms the TTL so an undrained session still gets evicted.
	item, found = m.sessions.Items()["run-long"]
	require.True(t, found)
	assert.Greater(t, item.Expiration, time.Now().UnixNano())

	found2, ok := m.Lookup("run-long")
	require.True(t, ok)
	assert.Same(t, sess, found2)
}

func TestRunRecoversPanic(t *testing.T) {
	m := NewManager(nopLogger{})
	sess := m.Create("run-panic")

	done := m.Run(sess, func() error {
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicked task was not supervised")
	}

	ev := <-sess.Events()
	require.NotNil(t, ev)
	assert.Equal(t, StatusError, ev.Status)
	assert.Contains(t, ev.Result["error"], "boom")
	assert.False(t, sess.Active())
}
