package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"ai-butler-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "butler_events"

// Frame is the wire shape pushed to connected clients: streamed reply
// fragments, turn completions and bus events.
type Frame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
	SentAt    time.Time   `json:"sent_at"`
}

const (
	FrameChatFragment = "chat.fragment"
	FrameChatDone     = "chat.done"
	FrameEvent        = "event"
)

// Hub fans frames out to local websocket clients, keyed by session so a
// client only receives the stream of the conversation it watches. A
// client registered with an empty session id receives everything.
// Redis pub/sub relays frames across instances when configured.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceID stops the redis relay from re-delivering frames to
	// the instance that published them.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.New().String(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Fragment implements service.StreamDelivery.
func (h *Hub) Fragment(sessionID, text string) {
	h.push(sessionID, Frame{
		Type:      FrameChatFragment,
		SessionID: sessionID,
		Data:      text,
		SentAt:    time.Now(),
	})
}

// Done implements service.StreamDelivery.
func (h *Hub) Done(sessionID, full string) {
	h.push(sessionID, Frame{
		Type:      FrameChatDone,
		SessionID: sessionID,
		Data:      full,
		SentAt:    time.Now(),
	})
}

// Notify broadcasts a bus event to every connected client.
func (h *Hub) Notify(eventType string, payload map[string]interface{}) {
	h.push("", Frame{
		Type:   FrameEvent,
		Data:   map[string]interface{}{"event": eventType, "payload": payload},
		SentAt: time.Now(),
	})
}

// push delivers a frame locally and relays it through Redis. An empty
// sessionID targets every client.
func (h *Hub) push(sessionID string, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		target := sessionID
		if target == "" {
			target = "*"
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"target_session_id": target,
			"origin":            h.instanceID,
			"message":           json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sid, clients := range h.clients {
		// Match the target session, firehose clients (registered with
		// an empty session id), or a true broadcast.
		if sessionID != "" && sid != "" && sid != sessionID {
			continue
		}
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_id": sid})
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Origin          string          `json:"origin"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}

		target := payload.TargetSessionID
		if target == "*" {
			target = ""
		}
		h.deliverLocal(target, payload.Message)
	}
}
