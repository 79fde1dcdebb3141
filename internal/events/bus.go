package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Broadcaster delivers an encoded event to locally connected clients.
// The websocket hub implements it.
type Broadcaster interface {
	BroadcastToChannel(channelID string, payload []byte)
	BroadcastToAll(payload []byte)
}

// Bus fans events out to the local hub and, when configured, to Kafka so
// other instances can deliver to their own sockets.
type Bus struct {
	local    Broadcaster
	producer *Producer
	logger   *zap.SugaredLogger
}

func NewBus(local Broadcaster, producer *Producer, logger *zap.SugaredLogger) *Bus {
	return &Bus{local: local, producer: producer, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Errorw("encode event", "type", ev.Type, "err", err)
		return
	}

	if b.local != nil {
		if ev.ChannelID != "" {
			b.local.BroadcastToChannel(ev.ChannelID, payload)
		} else {
			b.local.BroadcastToAll(payload)
		}
	}

	if b.producer != nil {
		if err := b.producer.Publish(ctx, ev.ChannelID, payload); err != nil {
			b.logger.Warnw("kafka publish", "type", ev.Type, "err", err)
		}
	}
}

// DeliverLocal pushes an event received from another instance to local
// sockets only, without re-publishing to Kafka.
func (b *Bus) DeliverLocal(channelID string, payload []byte) {
	if b.local == nil {
		return
	}
	if channelID != "" {
		b.local.BroadcastToChannel(channelID, payload)
	} else {
		b.local.BroadcastToAll(payload)
	}
}
