package app

import (
	"testing"
	"time"

	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func waitForFrames(t *testing.T, conn *fakeConn, want int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		frames := conn.Frames()
		if len(frames) >= want {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	frames := conn.Frames()
	assert.Len(t, frames, want)
	return frames
}

func TestHub_RegisterUnregisterEdges(t *testing.T) {
	logger.SetNewNop()
	hub := NewHub()

	phone := NewClient(1, "alice", newFakeConn(), 4)
	laptop := NewClient(1, "alice", newFakeConn(), 4)

	// First connection is the offline-to-online edge.
	assert.True(t, hub.Register(phone))
	assert.False(t, hub.Register(laptop))
	assert.True(t, hub.IsOnline(1))

	// Dropping one of two devices is not an edge.
	assert.False(t, hub.Unregister(phone))
	assert.True(t, hub.IsOnline(1))

	// Dropping the last one is.
	assert.True(t, hub.Unregister(laptop))
	assert.False(t, hub.IsOnline(1))

	// Unregistering an unknown connection reports no edge.
	assert.False(t, hub.Unregister(laptop))
}

func TestHub_DeliverFansOutToAllConnections(t *testing.T) {
	logger.SetNewNop()
	hub := NewHub()

	connA := newFakeConn()
	connB := newFakeConn()
	clientA := NewClient(1, "alice", connA, 4)
	clientB := NewClient(1, "alice", connB, 4)
	go clientA.WritePump()
	go clientB.WritePump()
	hub.Register(clientA)
	hub.Register(clientB)

	hub.Deliver(1, []byte(`{"type":"pong"}`))

	assert.Equal(t, `{"type":"pong"}`, string(waitForFrames(t, connA, 1)[0]))
	assert.Equal(t, `{"type":"pong"}`, string(waitForFrames(t, connB, 1)[0]))

	// Delivery to a user with no connections is a no-op.
	hub.Deliver(99, []byte(`x`))
}

func TestHub_DeliverClosesStuckConnection(t *testing.T) {
	logger.SetNewNop()
	hub := NewHub()

	conn := newFakeConn()
	// Buffer of one and no WritePump: the second enqueue fails.
	client := NewClient(1, "alice", conn, 1)
	hub.Register(client)

	hub.Deliver(1, []byte(`a`))
	hub.Deliver(1, []byte(`b`))

	assert.True(t, conn.Closed())
	// The hub keeps the entry until the read loop unregisters it, so the
	// offline edge still fires exactly once, there.
	assert.True(t, hub.IsOnline(1))
	assert.True(t, hub.Unregister(client))
}

func TestHub_OnlineUserIDs(t *testing.T) {
	logger.SetNewNop()
	hub := NewHub()

	hub.Register(NewClient(1, "alice", newFakeConn(), 4))
	hub.Register(NewClient(2, "bob", newFakeConn(), 4))

	ids := hub.OnlineUserIDs()
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestClient_SendAfterClose(t *testing.T) {
	logger.SetNewNop()
	client := NewClient(1, "alice", newFakeConn(), 4)
	client.Close()
	client.Close() // idempotent

	assert.ErrorIs(t, client.Send([]byte(`x`)), ErrClientClosed)
}
