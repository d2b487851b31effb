package gateway

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	bridgeChannel = "wavechat:gateway"

	// bridgeRoomAll marks a frame for every connection, not one room.
	bridgeRoomAll = "*"
)

// bridgeFrame is one emit forwarded between instances over Redis pub/sub.
type bridgeFrame struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// Bridge republishes local emits to sibling instances and replays theirs
// into local rooms. Presence and room membership stay process-local; only
// delivery crosses instances. The hub works standalone without a bridge.
type Bridge struct {
	client *goredis.Client
	hub    *Hub
	id     string
	logger *zap.Logger
}

func NewBridge(client *goredis.Client, hub *Hub) *Bridge {
	return &Bridge{
		client: client,
		hub:    hub,
		id:     uuid.New().String(),
		logger: zap.L().With(zap.String("component", "gateway_bridge")),
	}
}

// Publish forwards one emit to the other instances. Failures are logged and
// dropped; local delivery already happened.
func (b *Bridge) Publish(ctx context.Context, room, event string, data []byte) {
	frame := bridgeFrame{Origin: b.id, Room: room, Event: event, Data: data}
	payload, err := json.Marshal(frame)
	if err != nil {
		b.logger.Error("bridge encode failed", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, bridgeChannel, payload).Err(); err != nil {
		b.logger.Warn("bridge publish failed", zap.String("out_event", event), zap.Error(err))
	}
}

// Run subscribes to the bridge channel and replays remote emits locally
// until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.replay([]byte(msg.Payload))
		}
	}
}

func (b *Bridge) replay(payload []byte) {
	var frame bridgeFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		b.logger.Warn("bridge frame malformed", zap.Error(err))
		return
	}
	if frame.Origin == b.id {
		return
	}

	encoded, err := json.Marshal(Envelope{Event: frame.Event, Data: frame.Data})
	if err != nil {
		b.logger.Error("bridge replay encode failed", zap.Error(err))
		return
	}

	if frame.Room == bridgeRoomAll {
		b.hub.deliverToAll(frame.Event, encoded)
		return
	}
	b.hub.deliverToRoom(frame.Room, frame.Event, encoded)
}
