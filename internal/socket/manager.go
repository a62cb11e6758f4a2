package socket

import (
    "context"
    "sync"

    "github.com/google/uuid"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

type Hub struct {
    log          *logger.Logger
    mu           sync.RWMutex
    channels     map[string]map[uuid.UUID]*Client
    public       map[string]bool
    redisPubSub  *RedisPubSub
}

// NewHub builds a hub; clients may only subscribe themselves to publicChannels.
func NewHub(log *logger.Logger, publicChannels ...string) *Hub {
    public := make(map[string]bool, len(publicChannels))
    for _, ch := range publicChannels {
        public[ch] = true
    }
    return &Hub{
        log:      log.With("component", "Hub"),
        channels: make(map[string]map[uuid.UUID]*Client),
        public:   public,
    }
}

func (h *Hub) SetRedisPubSub(rp *RedisPubSub) {
    h.redisPubSub = rp
}

func (h *Hub) IsPublicChannel(channel string) bool {
    return h.public[channel]
}

func (h *Hub) Subscribe(client *Client, channels []string) {
    h.mu.Lock()
    defer h.mu.Unlock()

    for _, ch := range channels {
        if h.channels[ch] == nil {
            h.channels[ch] = make(map[uuid.UUID]*Client)
        }
        h.channels[ch][client.ID] = client
    }
    h.log.Debug("Client subscribed", "client", client.ID, "channels", channels)
}

func (h *Hub) Unsubscribe(client *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()

    for ch, clientsMap := range h.channels {
        if _, ok := clientsMap[client.ID]; ok {
            delete(clientsMap, client.ID)
            if len(clientsMap) == 0 {
                delete(h.channels, ch)
            }
        }
    }
    h.log.Debug("Client unsubscribed from all channels", "client", client.ID)
}

func (h *Hub) UnsubscribeFromChannel(client *Client, channel string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if clientsMap, ok := h.channels[channel]; ok {
        delete(clientsMap, client.ID)
        if len(clientsMap) == 0 {
            delete(h.channels, channel)
        }
    }
}

func (h *Hub) SubscriberCount(channel string) int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.channels[channel])
}

// localBroadcast never blocks; a client with a full buffer misses the message.
func (h *Hub) localBroadcast(msg Message) {
    h.mu.RLock()
    defer h.mu.RUnlock()

    for _, client := range h.channels[msg.Channel] {
        select {
        case client.Outbound <- msg:
        default:
            h.log.Warn("Dropping message to client; outbound buffer full", "client", client.ID, "channel", msg.Channel)
        }
    }
}

// BroadcastGlobal delivers to local subscribers and, when Redis is configured, to
// every other instance.
func (h *Hub) BroadcastGlobal(ctx context.Context, msg Message) error {
    h.localBroadcast(msg)

    if h.redisPubSub != nil {
        if err := h.redisPubSub.Publish(ctx, msg); err != nil {
            h.log.Warn("Failed to publish to Redis", "error", err)
            return err
        }
    }
    return nil
}
