package models

import "time"

// Message belongs to exactly one channel. Reactions map an emoji to the
// set of user IDs that applied it; set semantics make re-applying the same
// reaction a structural no-op.
type Message struct {
	ID         string              `bson:"_id" json:"id"`
	ChannelID  string              `bson:"channel_id" json:"channel_id"`
	SenderID   string              `bson:"sender_id" json:"sender_id"`
	SenderName string              `bson:"sender_name" json:"sender_name"`
	Content    string              `bson:"content" json:"content"`
	Edited     bool                `bson:"edited" json:"edited"`
	Reactions  map[string][]string `bson:"reactions" json:"reactions"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

// HasReaction reports whether userID already reacted with emoji.
func (m *Message) HasReaction(emoji, userID string) bool {
	for _, id := range m.Reactions[emoji] {
		if id == userID {
			return true
		}
	}
	return false
}
