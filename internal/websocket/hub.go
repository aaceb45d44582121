package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"notable-be/internal/pkg/logger"
	"notable-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub pushes note lifecycle events to the owner's connected devices. Events
// arrive on the in-process dispatcher; with Redis configured they are also
// relayed to sibling instances so a device connected elsewhere still hears
// about the change.
type Hub struct {
	// UserID -> connections (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	dispatcher *events.Dispatcher
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewHub(dispatcher *events.Dispatcher, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		dispatcher: dispatcher,
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	go h.consumeDispatcher(ctx)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

// consumeDispatcher forwards in-process note events to the owning user's
// connections and relays them to other instances.
func (h *Hub) consumeDispatcher(ctx context.Context) {
	eventCh, unsubscribe, err := h.dispatcher.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to event dispatcher", map[string]interface{}{"error": err.Error()})
		return
	}
	defer unsubscribe()

	for evt := range eventCh {
		userIdStr, _ := evt.Payload()["user_id"].(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			continue
		}

		data, err := json.Marshal(map[string]interface{}{
			"type": evt.EventType(),
			"data": evt.Payload(),
		})
		if err != nil {
			continue
		}

		// With Redis the cluster channel is the single delivery path; this
		// instance hears its own publish back and delivers it locally then.
		if h.rdb != nil {
			payload, _ := json.Marshal(map[string]interface{}{
				"target_user_id": userId.String(),
				"message":        json.RawMessage(data),
			})
			h.rdb.Publish(ctx, clusterChannel, payload)
		} else {
			h.sendLocal(userId, data)
		}
	}
}

func (h *Hub) sendLocal(userId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userId]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// The unregister handler owns the close; closing here too would
			// close the channel twice when the client is still registered.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userId})
			h.unregister <- client
		}
	}
}

// subscribeToRedis delivers events published by sibling instances to the
// connections this instance holds. Messages for users without a local
// connection are ignored.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Failed to parse cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}

		userId, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.sendLocal(userId, payload.Message)
	}
}
