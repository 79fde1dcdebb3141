package events

import (
	"context"
	"time"
)

// Event types pushed to connected clients. Every payload carries the full
// updated document; consumers replace by id, so delivery is last-write-wins
// by server timestamp.
const (
	MessageCreated  = "message.created"
	MessageUpdated  = "message.updated"
	MessageDeleted  = "message.deleted"
	ReactionUpdated = "reaction.updated"
	ChannelCreated  = "channel.created"
	ChannelUpdated  = "channel.updated"
	ChannelDeleted  = "channel.deleted"
	ProfileUpdated  = "profile.updated"
)

// Event is a change notification for one channel (or all clients when
// ChannelID is empty, e.g. profile changes).
type Event struct {
	Type      string      `json:"type"`
	ChannelID string      `json:"channel_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// Publisher is how services announce successful mutations. Publishing is
// best-effort: a failed notification never rolls back the write.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// NopPublisher discards events. Used when realtime delivery is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
