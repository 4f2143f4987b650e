package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDeliversInOrder(t *testing.T) {
	sess := NewSession("s1")

	for _, stage := range []string{"A", "B", "C"} {
		require.True(t, sess.Send(NewNodeEvent(stage, StatusStarted, nil)))
	}
	sess.Close()

	var stages []string
	for ev := range sess.Events() {
		if ev == nil {
			break
		}
		stages = append(stages, ev.Stage)
	}
	assert.Equal(t, []string{"A", "B", "C"}, stages)
	assert.Equal(t, 3, sess.SentCount())
}

func TestSendAfterCloseIsNoop(t *testing.T) {
	sess := NewSession("s1")
	sess.Close()

	assert.False(t, sess.Send(NewNodeEvent("A", StatusStarted, nil)))
	assert.False(t, sess.Active())
	assert.Equal(t, 0, sess.SentCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	sess := NewSession("s1")
	sess.Close()
	assert.NotPanics(t, func() { sess.Close() })
}

func TestConsumerObservesSentinelWhileBlocked(t *testing.T) {
	sess := NewSession("s1")

	got := make(chan *NodeEvent, 1)
	go func() {
		ev := <-sess.Events()
		got <- ev
	}()

	// Give the consumer time to block on the empty queue.
	time.Sleep(20 * time.Millisecond)
	sess.Close()

	select {
	case ev := <-got:
		assert.Nil(t, ev, "blocked consumer should be released by the sentinel")
	case <-time.After(time.Second):
		t.Fatal("consumer was not released within one poll interval")
	}
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	sess := NewSession("s1")

	accepted := 0
	for i := 0; i < sessionBuffer+10; i++ {
		if sess.Send(NewNodeEvent("B", StatusStreaming, nil)) {
			accepted++
		}
	}
	assert.Equal(t, sessionBuffer, accepted)
	assert.Equal(t, sessionBuffer, sess.SentCount())

	// Close must still terminate the consumer even with a saturated buffer.
	sess.Close()
	count := 0
	for ev := range sess.Events() {
		if ev == nil {
			break
		}
		count++
	}
	assert.Equal(t, sessionBuffer, count)
}
