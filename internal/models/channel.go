package models

import (
	"sort"
	"strings"
	"time"
)

// ChannelKind is stored explicitly at creation time and never re-derived
// from the participant count.
type ChannelKind string

const (
	ChannelDirect ChannelKind = "direct"
	ChannelGroup  ChannelKind = "group"
)

// Channel is a named container of messages with a participant set.
// A direct channel has exactly two participants and is uniquely keyed by
// DirectKey, the canonical form of its unordered participant pair.
type Channel struct {
	ID           string            `bson:"_id" json:"id"`
	Name         string            `bson:"name" json:"name"`
	Kind         ChannelKind       `bson:"kind" json:"kind"`
	Participants []string          `bson:"participants" json:"participants"`
	Nicknames    map[string]string `bson:"nicknames" json:"nicknames"`
	IsPrivate    bool              `bson:"is_private" json:"is_private"`
	CreatorID    string            `bson:"creator_id" json:"creator_id"`
	DirectKey    string            `bson:"direct_key,omitempty" json:"-"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
}

// DirectKey builds the canonical unordered-pair key for a direct channel,
// so A→B and B→A resolve to the same document.
func DirectKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// HasParticipant reports whether userID is a member of the channel.
func (c *Channel) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
