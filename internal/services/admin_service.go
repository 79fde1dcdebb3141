package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/events"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/repository"
	"github.com/parlor-chat/parlor/internal/session"
	"github.com/parlor-chat/parlor/internal/utils"
)

const inviteTokenBytes = 32

// AdminService owns cross-channel moderation: bans, promotion and
// admin-invite generation.
type AdminService struct {
	users     repository.UserRepository
	invites   repository.InviteRepository
	sessions  session.Store
	pub       events.Publisher
	logger    *zap.SugaredLogger
	inviteTTL time.Duration
}

func NewAdminService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	sessions session.Store,
	pub events.Publisher,
	logger *zap.SugaredLogger,
	inviteTTL time.Duration,
) *AdminService {
	return &AdminService{
		users:     users,
		invites:   invites,
		sessions:  sessions,
		pub:       pub,
		logger:    logger,
		inviteTTL: inviteTTL,
	}
}

func (s *AdminService) requireAdmin(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find actor: %w", ErrInternal)
	}
	if !actor.IsAdmin || actor.Banned {
		return nil, ErrForbidden
	}
	return actor, nil
}

// ListAllUsers returns every account, banned included.
func (s *AdminService) ListAllUsers(ctx context.Context, actorID string) ([]*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", ErrInternal)
	}
	return users, nil
}

// BanUser removes the target from the visible roster and drops their
// session. Administrators and the acting admin cannot be banned.
func (s *AdminService) BanUser(ctx context.Context, actorID, targetID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if targetID == actor.ID {
		return ErrForbidden
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find target: %w", ErrInternal)
	}
	if target.IsAdmin {
		return ErrForbidden
	}
	if err := s.users.SetBanned(ctx, target.ID, true); err != nil {
		return fmt.Errorf("ban user: %w", ErrInternal)
	}
	_ = s.sessions.DeleteRefreshToken(ctx, target.ID)
	_ = s.sessions.ClearPresence(ctx, target.ID)
	s.logger.Infow("user banned", "target", target.ID, "by", actor.ID)
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: map[string]interface{}{"id": target.ID, "banned": true}})
	return nil
}

// UnbanUser restores a banned account.
func (s *AdminService) UnbanUser(ctx context.Context, actorID, targetID string) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.users.SetBanned(ctx, targetID, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("unban user: %w", ErrInternal)
	}
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: map[string]interface{}{"id": targetID, "banned": false}})
	return nil
}

// PromoteToAdmin grants the target the administrator role.
func (s *AdminService) PromoteToAdmin(ctx context.Context, actorID, targetID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.users.SetAdmin(ctx, targetID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("promote user: %w", ErrInternal)
	}
	s.logger.Infow("user promoted", "target", targetID, "by", actor.ID)
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: map[string]interface{}{"id": targetID, "is_admin": true}})
	return nil
}

// GenerateAdminInvite mints a single-use, expiring token bound to one
// email address.
func (s *AdminService) GenerateAdminInvite(ctx context.Context, actorID, email string) (*models.AdminInvite, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	token, err := utils.GenerateOpaqueToken(inviteTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", ErrInternal)
	}
	inv := &models.AdminInvite{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.inviteTTL),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("save invite: %w", ErrInternal)
	}
	return inv, nil
}
