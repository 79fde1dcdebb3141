package models

import "time"

// Presence values stored on a user profile.
const (
	StatusOnline  = "online"
	StatusIdle    = "idle"
	StatusOffline = "offline"
)

// ValidStatus reports whether s is a known presence value.
func ValidStatus(s string) bool {
	return s == StatusOnline || s == StatusIdle || s == StatusOffline
}

// User represents a registered account. Channels and messages reference
// users by ID only; deleting or banning a user never cascades.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	Status       string    `bson:"status" json:"status"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Banned       bool      `bson:"banned" json:"banned"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// AuthTokens is the pair returned on login, register and refresh.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}
