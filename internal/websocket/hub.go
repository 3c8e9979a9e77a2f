package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/quests/internal/model"
)

// Quest lifecycle event types carried on the change feed.
const (
	QuestCreated = "quest_created"
	QuestUpdated = "quest_updated"
	QuestDeleted = "quest_deleted"
)

// Event is one change-feed notification. Quest is omitted for deletions.
type Event struct {
	Type  string       `json:"type"`
	ID    int64        `json:"id"`
	Quest *model.Quest `json:"quest,omitempty"`
	At    time.Time    `json:"at"`
}

// NewEvent builds an Event for a quest change.
func NewEvent(typ string, id int64, q *model.Quest) Event {
	return Event{Type: typ, ID: id, Quest: q, At: time.Now().UTC()}
}

// Hub maintains the set of feed subscribers and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("subscriber joined", "subscribers", h.ClientCount())
}

// Unregister removes a client and closes its send channel. Calling it twice
// is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish sends an event to every interested subscriber. Subscribers whose
// buffer is full miss the event rather than blocking the publisher.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(ev.ID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("subscriber buffer full, dropping event", "type", ev.Type, "id", ev.ID)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
