package handler

import (
	"testing"
	"time"

	"walletflow-service/internal/usecase/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTrySendAfterClose(t *testing.T) {
	c := &wsClient{userID: "u1", send: make(chan []byte, 1)}

	require.True(t, c.trySend([]byte("a")))
	c.closeSend()
	assert.False(t, c.trySend([]byte("b")))

	// Closing twice must not panic.
	c.closeSend()
}

func TestTrySendFullBufferDrops(t *testing.T) {
	c := &wsClient{userID: "u1", send: make(chan []byte, 1)}

	require.True(t, c.trySend([]byte("a")))
	assert.False(t, c.trySend([]byte("b")))
}

// A stage notification racing a device reconnect must never hit a closed
// channel: register swaps the client and closes the previous send channel
// while SendToUser may be mid-delivery.
func TestSendToUserDuringReconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	done := make(chan struct{})
	senderDone := make(chan struct{})

	go func() {
		defer close(senderDone)
		for {
			select {
			case <-done:
				return
			default:
				hub.SendToUser("u1", []byte(`{"type":"stage_changed"}`))
			}
		}
	}()

	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			next := &wsClient{userID: "u1", send: make(chan []byte, 1)}
			hub.register(next)
			hub.unregister(next)
		}
	}()

	select {
	case <-senderDone:
	case <-time.After(30 * time.Second):
		t.Fatal("reconnect churn never finished")
	}
}

func TestNotifyStageWithoutClientIsNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())

	hub.NotifyStage("nobody", workflow.StageEvent{
		Type: "stage_changed", FlowID: "FLW-1", Stage: "confirm",
	})
}

func TestRegisterReplacesPreviousClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := &wsClient{userID: "u1", send: make(chan []byte, 1)}
	second := &wsClient{userID: "u1", send: make(chan []byte, 1)}

	hub.register(first)
	hub.register(second)

	hub.SendToUser("u1", []byte("hello"))
	select {
	case msg := <-second.send:
		assert.Equal(t, []byte("hello"), msg)
	default:
		t.Fatal("replacement client did not receive the message")
	}
	assert.False(t, first.trySend([]byte("stale")), "replaced client must be closed")

	// Unregistering the stale client must not evict the replacement.
	hub.unregister(first)
	hub.SendToUser("u1", []byte("again"))
	select {
	case <-second.send:
	default:
		t.Fatal("replacement client was evicted by a stale unregister")
	}
}
