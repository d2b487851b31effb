package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Emitter is the outbound half of the gateway: fan a single logical event
// out to one room or to every connection.
type Emitter interface {
	EmitToRoom(room, event string, payload interface{})
	EmitToAll(event string, payload interface{})
}

// Hub maintains the set of active connections, the presence registry and
// the room index. Connection lifecycle runs through the hub's event loop;
// presence and rooms carry their own locks so router handlers can touch
// them directly from connection read goroutines.
type Hub struct {
	presence *PresenceRegistry
	rooms    *RoomIndex

	mu      sync.RWMutex
	clients map[string]*Client // connID -> client

	register   chan *Client
	unregister chan *Client
	stopChan   chan struct{}

	router *Router
	bridge *Bridge
	logger *GatewayLogger

	isRunning int32
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		presence:   NewPresenceRegistry(),
		rooms:      NewRoomIndex(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		stopChan:   make(chan struct{}),
		logger:     NewGatewayLogger(),
	}
}

// SetRouter wires the inbound dispatcher. Must be called before Run.
func (h *Hub) SetRouter(r *Router) {
	h.router = r
}

// SetBridge attaches the optional cross-instance pub/sub bridge.
func (h *Hub) SetBridge(b *Bridge) {
	h.bridge = b
}

// Presence exposes the registry to the router and REST collaborators.
func (h *Hub) Presence() *PresenceRegistry {
	return h.presence
}

// Rooms exposes the room index to the router.
func (h *Hub) Rooms() *RoomIndex {
	return h.rooms
}

// Run starts the Hub
func (h *Hub) Run() {
	atomic.StoreInt32(&h.isRunning, 1)
	defer atomic.StoreInt32(&h.isRunning, 0)

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case <-h.stopChan:
			return
		}
	}
}

// Stop gracefully shuts down the Hub
func (h *Hub) Stop() {
	close(h.stopChan)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		h.rooms.LeaveAll(client)
		h.presence.RemoveByConnection(client.ID)
		client.closeSend()
		if client.conn != nil {
			client.conn.Close()
		}
	}
	h.clients = make(map[string]*Client)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.logger.Info("client connected", client.UserID(), client.ID)

	go client.writePump()
	go client.readPump()
}

// handleUnregister runs the disconnect cleanup: every room is left and any
// presence entry pointing at the departing connection is evicted. No
// activeUsers broadcast goes out here; only login refreshes the list.
func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	h.mu.Unlock()

	h.rooms.LeaveAll(client)
	removed := h.presence.RemoveByConnection(client.ID)
	client.closeSend()

	h.logger.Info("client disconnected", client.UserID(), client.ID,
		zap.Strings("presence_removed", removed))
}

func (h *Hub) dispatch(ctx context.Context, c *Client, raw []byte) error {
	if h.router == nil {
		return nil
	}
	return h.router.Dispatch(ctx, c, raw)
}

// EmitToRoom sends one event to every connection in a room. Emitting to an
// absent or empty room is a silent no-op: the normal case for an offline
// recipient, logged at debug only.
func (h *Hub) EmitToRoom(room, event string, payload interface{}) {
	frame, data, err := h.encode(event, payload)
	if err != nil {
		h.logger.Error("emit encode failed", "", "", err, zap.String("out_event", event))
		return
	}

	h.deliverToRoom(room, event, frame)

	if h.bridge != nil {
		h.bridge.Publish(context.Background(), room, event, data)
	}
}

// EmitToAll broadcasts one event to every connected client.
func (h *Hub) EmitToAll(event string, payload interface{}) {
	frame, data, err := h.encode(event, payload)
	if err != nil {
		h.logger.Error("emit encode failed", "", "", err, zap.String("out_event", event))
		return
	}

	h.deliverToAll(event, frame)

	if h.bridge != nil {
		h.bridge.Publish(context.Background(), bridgeRoomAll, event, data)
	}
}

func (h *Hub) encode(event string, payload interface{}) (frame, data []byte, err error) {
	data, err = json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	frame, err = json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, nil, err
	}
	return frame, data, nil
}

// deliverToRoom pushes an encoded frame to the local members of a room.
func (h *Hub) deliverToRoom(room, event string, frame []byte) {
	members := h.rooms.Members(room)
	if len(members) == 0 {
		h.logger.Debug("delivery noop",
			zap.String("room", room),
			zap.String("out_event", event))
		return
	}
	for _, c := range members {
		c.SendRaw(frame)
	}
}

func (h *Hub) deliverToAll(event string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.SendRaw(frame)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
