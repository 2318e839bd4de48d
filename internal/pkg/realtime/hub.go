// Package realtime pushes dashboard events (balance changes, new
// completions) to store owners over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventBalanceChanged  EventType = "balance_changed"
	EventSurveyCompleted EventType = "survey_completed"
)

const customerEventsChannel = "qrs:customer_events"

var (
	wsConnectionsGauge   = expvar.NewInt("qrs_websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("qrs_websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("qrs_websocket_events_dropped_total")
)

// Event is the JSON frame sent to dashboard clients.
type Event struct {
	Type       EventType   `json:"type"`
	CustomerID uuid.UUID   `json:"customer_id"`
	Data       interface{} `json:"data,omitempty"`
}

type envelope struct {
	CustomerID       string          `json:"customer_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection is one dashboard socket. Send is drained by the socket writer.
type Connection struct {
	CustomerID uuid.UUID
	Send       chan []byte
}

// Hub tracks local connections per customer and, with Redis, fans events
// out to the other API instances.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	mu          sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	redis      *redis.Client
	pubsub     *redis.PubSub
	instanceID string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		redis:       redisClient,
		instanceID:  uuid.NewString(),
		ctx:         ctx,
		cancel:      cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, customerEventsChannel)
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.CustomerID] == nil {
				h.connections[conn.CustomerID] = make(map[*Connection]bool)
			}
			h.connections[conn.CustomerID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("customer_id", conn.CustomerID.String()).Msg("Dashboard connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.CustomerID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.CustomerID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("customer_id", conn.CustomerID.String()).Msg("Dashboard disconnected")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.SenderInstanceID == h.instanceID {
				continue
			}
			customerID, err := uuid.Parse(env.CustomerID)
			if err != nil {
				continue
			}
			h.sendLocal(customerID, env.Payload)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// Publish delivers event to every dashboard of the event's customer, on any instance.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal realtime event")
		return
	}

	h.sendLocal(event.CustomerID, data)

	if h.redis == nil {
		return
	}
	payload, err := json.Marshal(envelope{
		CustomerID:       event.CustomerID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	})
	if err != nil {
		return
	}
	if err := h.redis.Publish(h.ctx, customerEventsChannel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", customerEventsChannel).Msg("Redis publish failed")
	}
}

func (h *Hub) sendLocal(customerID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[customerID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("customer_id", customerID.String()).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns number of local connections for a customer.
func (h *Hub) ConnectionCount(customerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[customerID])
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
