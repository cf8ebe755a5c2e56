// Package realtime fans quiz lifecycle events out to connected SSE clients.
// Channels are user ids; a client subscribes to its own channel and receives
// completion and latest-profile events as they happen.
package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type SSEEvent string

const (
	SSEEventQuizCompleted        SSEEvent = "QuizCompleted"
	SSEEventLatestProfileChanged SSEEvent = "LatestProfileChanged"
)

// SSEMessage is the wire shape of one event. Data stays minimal: ids only,
// subscribers re-fetch state they care about.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

type SSEHub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
	}
}

func (hub *SSEHub) NewSSEClient(userID uuid.UUID) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:       id,
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, 16),
		done:     make(chan struct{}),
		Logger:   hub.log.With("client_id", id.String()),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.log.Debug("sse client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(client.Channels, channel)
	if clients, ok := hub.subscriptions[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// CloseClient detaches the client from every channel and closes its
// outbound stream. Removal and close happen under the write lock, so a
// concurrent Broadcast (read lock) can never send on the closed channel.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	if client == nil {
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	for channel := range client.Channels {
		if clients, ok := hub.subscriptions[channel]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(hub.subscriptions, channel)
			}
		}
	}
	client.Channels = make(map[string]bool)
	client.closeOnce.Do(func() {
		close(client.done)
		close(client.Outbound)
	})
}

// Broadcast delivers msg to every subscriber of its channel. Sends never
// block: a client whose buffer is full misses the message and is expected
// to reconcile on reconnect.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for client := range hub.subscriptions[msg.Channel] {
		select {
		case client.Outbound <- msg:
		default:
			hub.log.Warn("sse client buffer full, dropping event",
				"client_id", client.ID, "channel", msg.Channel, "event", msg.Event)
		}
	}
}
