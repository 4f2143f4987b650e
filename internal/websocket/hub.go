package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/stream"

	"github.com/redis/go-redis/v9"
)

// nodeStatusChannel is the Redis channel carrying pipeline stage events
// across instances.
const nodeStatusChannel = "pipeline_node_status"

// Hub fans pipeline stage events out to every connected observer socket.
// It implements stream.EventSink so the orchestrator can mirror each event
// it publishes to a session.
type Hub struct {
	// Registered observer connections.
	clients map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

// nodeStatusMessage is the wire shape of one stage event on the socket and
// on the Redis channel.
type nodeStatusMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Event     *stream.NodeEvent `json:"event"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Observer registered", map[string]interface{}{"observers": h.observerCount()})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Observer unregistered", map[string]interface{}{"observers": h.observerCount()})
		}
	}
}

// PublishStageEvent mirrors one pipeline event to the observers. With Redis
// configured the event goes through the shared channel so every instance,
// this one included, delivers it exactly once; without Redis it goes straight
// to the local observers. Implements stream.EventSink.
func (h *Hub) PublishStageEvent(sessionID string, event *stream.NodeEvent) {
	data, err := json.Marshal(nodeStatusMessage{
		Type:      "node_status",
		SessionID: sessionID,
		Event:     event,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize stage event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), nodeStatusChannel, data)
		return
	}
	h.broadcastLocal(data)
}

// answerReadyMessage tells observers a conversation has a finished answer
// waiting. Delivery is local to this instance; the durable NATS consumer
// already spreads the events across instances.
type answerReadyMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// NotifyAnswerReady pushes an answer-completed frame to the observers.
func (h *Hub) NotifyAnswerReady(payload map[string]interface{}) {
	data, err := json.Marshal(answerReadyMessage{
		Type:    "answer_completed",
		Payload: payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize answer notification", map[string]interface{}{"error": err.Error()})
		return
	}
	h.broadcastLocal(data)
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow observer; drop the frame rather than blocking the
			// pipeline. The ping/pong cycle will reap a dead socket.
			h.logger.Warn("Hub", "Observer send buffer full, dropping frame", nil)
		}
	}
}

func (h *Hub) observerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// subscribeToRedis relays stage events from the shared channel to the
// observers connected to this instance.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, nodeStatusChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload nodeStatusMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.Type != "node_status" {
			continue
		}
		h.broadcastLocal([]byte(msg.Payload))
	}
}
