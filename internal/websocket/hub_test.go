package websocket

import (
	"context"
	"testing"
	"time"

	"notable-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Debug(module, message string, details map[string]interface{}) {}
func (discardLogger) Info(module, message string, details map[string]interface{})  {}
func (discardLogger) Warn(module, message string, details map[string]interface{})  {}
func (discardLogger) Error(module, message string, details map[string]interface{}) {}
func (discardLogger) Sync() error                                                  { return nil }

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	dispatcher := events.NewDispatcher("hub_test")
	t.Cleanup(func() { _ = dispatcher.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(dispatcher, nil, discardLogger{})
	go hub.Run(ctx)
	return hub, cancel
}

func (h *Hub) registeredClients(userId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

func TestSendDeliversToEveryConnection(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	userId := uuid.New()
	phone := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	laptop := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- phone
	hub.register <- laptop

	// Registration is asynchronous: the channel rendezvous happens before Run
	// appends the client under the lock, so wait until both are visible.
	require.Eventually(t, func() bool {
		return hub.registeredClients(userId) == 2
	}, 2*time.Second, 10*time.Millisecond, "both connections should be registered")

	hub.sendLocal(userId, []byte("note changed"))

	assert.Equal(t, "note changed", string(<-phone.Send))
	assert.Equal(t, "note changed", string(<-laptop.Send))
}

func TestStalledConnectionIsDroppedWithoutCrashing(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	userId := uuid.New()
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.registeredClients(userId) == 1
	}, 2*time.Second, 10*time.Millisecond, "the connection should be registered")

	// Fill the buffer so the next send overflows.
	client.Send <- []byte("queued")

	hub.sendLocal(userId, []byte("overflow"))

	assert.Eventually(t, func() bool {
		return hub.registeredClients(userId) == 0
	}, 2*time.Second, 10*time.Millisecond, "the stalled client should be unregistered")

	// The queued message drains, then the channel is closed exactly once.
	msg, open := <-client.Send
	require.True(t, open)
	assert.Equal(t, "queued", string(msg))
	_, open = <-client.Send
	assert.False(t, open, "the hub closes Send when it unregisters the client")

	// readPump tears down through unregister as well; the second pass must
	// find nothing left to close.
	hub.unregister <- client
	hub.sendLocal(userId, []byte("after drop"))

	assert.Equal(t, 0, hub.registeredClients(userId))
}

func TestSendToUserWithoutConnectionsIsNoop(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	hub.sendLocal(uuid.New(), []byte("nobody listening"))
}
