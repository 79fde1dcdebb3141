package repository

import (
	"context"
	"errors"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, includeBanned bool) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	SetStatus(ctx context.Context, id, status string) error
	SetBanned(ctx context.Context, id string, banned bool) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

// ChannelRepository persists channels and their participant sets.
type ChannelRepository interface {
	Create(ctx context.Context, c *models.Channel) error
	FindByID(ctx context.Context, id string) (*models.Channel, error)
	FindByName(ctx context.Context, name string) (*models.Channel, error)
	FindDirect(ctx context.Context, directKey string) (*models.Channel, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Channel, error)
	Delete(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, channelID, userID string) error
	RemoveParticipant(ctx context.Context, channelID, userID string) error
	SetNickname(ctx context.Context, channelID, userID, nickname string) error
	ClearNickname(ctx context.Context, channelID, userID string) error
}

// MessageRepository persists messages and their reaction sets.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	ListByChannel(ctx context.Context, channelID string, limit int64, before time.Time) ([]*models.Message, error)
	UpdateContent(ctx context.Context, id, content string, now time.Time) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteByChannel(ctx context.Context, channelID string) error
	AddReaction(ctx context.Context, id, emoji, userID string) (*models.Message, error)
	RemoveReaction(ctx context.Context, id, emoji, userID string) (*models.Message, error)
}

// InviteRepository persists admin invites.
type InviteRepository interface {
	Create(ctx context.Context, inv *models.AdminInvite) error
	FindByToken(ctx context.Context, token string) (*models.AdminInvite, error)
	// Consume atomically marks an unused, unexpired invite as used and
	// returns it. ErrNotFound means the token is invalid, expired or
	// already used.
	Consume(ctx context.Context, token string, now time.Time) (*models.AdminInvite, error)
}
