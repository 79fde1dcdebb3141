package models

import "time"

// AdminInvite is a single-use, expiring token that elevates a registration
// to administrator when the registering email matches.
type AdminInvite struct {
	ID        string     `bson:"_id" json:"id"`
	Email     string     `bson:"email" json:"email"`
	Token     string     `bson:"token" json:"token"`
	Used      bool       `bson:"used" json:"used"`
	UsedAt    *time.Time `bson:"used_at,omitempty" json:"used_at,omitempty"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Expired reports whether the invite is past its expiry at time now.
func (i *AdminInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
