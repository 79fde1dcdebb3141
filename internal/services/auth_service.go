package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/parlor-chat/parlor/internal/events"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/repository"
	"github.com/parlor-chat/parlor/internal/session"
	"github.com/parlor-chat/parlor/internal/utils"
)

const presenceTTL = 5 * time.Minute

// AuthService owns identity: registration, sessions, presence and the
// admin-invite consumption side.
type AuthService struct {
	users    repository.UserRepository
	invites  repository.InviteRepository
	sessions session.Store
	jwt      *utils.JWTManager
	pub      events.Publisher
	logger   *zap.SugaredLogger
}

func NewAuthService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	sessions session.Store,
	jwt *utils.JWTManager,
	pub events.Publisher,
	logger *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		invites:  invites,
		sessions: sessions,
		jwt:      jwt,
		pub:      pub,
		logger:   logger,
	}
}

// Register creates an account. An invite token, when present, must be
// unused, unexpired and bound to the registering email to grant the
// administrator role; any invite failure degrades to an ordinary account
// rather than rejecting the registration.
func (s *AuthService) Register(ctx context.Context, email, password, inviteToken string) (*models.User, *models.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidEmail(email) {
		return nil, nil, ErrInvalidEmail
	}
	if !utils.ValidPassword(password) {
		return nil, nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", ErrInternal)
	}

	username := utils.UsernameFromEmail(email)
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		username = username + "-" + uuid.NewString()[:4]
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Status:       models.StatusOnline,
		Avatar:       utils.AvatarURL(username),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, fmt.Errorf("create user: %w", ErrInternal)
	}

	// the invite is consumed only after the account exists, so a failed
	// insert never burns a single-use token
	if inviteToken != "" && s.consumeInvite(ctx, inviteToken, email) {
		if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
			s.logger.Errorw("grant admin from invite", "user", user.ID, "err", err)
		} else {
			user.IsAdmin = true
		}
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	_ = s.sessions.SetPresence(ctx, user.ID, models.StatusOnline, presenceTTL)
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: user})
	return user, tokens, nil
}

// consumeInvite fails closed: every path that is not a fully valid,
// email-matching token returns false.
func (s *AuthService) consumeInvite(ctx context.Context, token, email string) bool {
	inv, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		s.logger.Warnw("admin invite rejected", "reason", "unknown token")
		return false
	}
	if inv.Used || inv.Expired(time.Now().UTC()) {
		s.logger.Warnw("admin invite rejected", "reason", "used or expired", "email", inv.Email)
		return false
	}
	if !strings.EqualFold(inv.Email, email) {
		s.logger.Warnw("admin invite rejected", "reason", "email mismatch", "email", email)
		return false
	}
	if _, err := s.invites.Consume(ctx, token, time.Now().UTC()); err != nil {
		// lost the race to another consumer
		s.logger.Warnw("admin invite rejected", "reason", "already consumed")
		return false
	}
	return true
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", ErrInternal)
	}
	if user.Banned {
		return nil, nil, ErrAccountBanned
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	_ = s.sessions.SetPresence(ctx, user.ID, models.StatusOnline, presenceTTL)
	if err := s.users.SetStatus(ctx, user.ID, models.StatusOnline); err != nil {
		s.logger.Warnw("set status on login", "user", user.ID, "err", err)
	}
	return user, tokens, nil
}

// Refresh rotates the token pair; the previous refresh token is
// invalidated before the new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	claims, err := s.jwt.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	stored, err := s.sessions.GetRefreshToken(ctx, claims.UserID)
	if err != nil || stored != refreshToken {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	if err := s.sessions.DeleteRefreshToken(ctx, claims.UserID); err != nil {
		return nil, fmt.Errorf("invalidate refresh token: %w", ErrInternal)
	}
	return s.issueTokens(ctx, user)
}

// Logout drops the session and marks the actor offline.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", ErrInternal)
	}
	_ = s.sessions.ClearPresence(ctx, userID)
	if err := s.users.SetStatus(ctx, userID, models.StatusOffline); err != nil {
		s.logger.Warnw("set status on logout", "user", userID, "err", err)
	}
	return nil
}

// Me re-derives the current actor from a validated session token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", ErrInternal)
	}
	return user, nil
}

// ListUsers returns the roster. Banned accounts stay visible to
// administrators only.
func (s *AuthService) ListUsers(ctx context.Context, actorID string) ([]*models.User, error) {
	actor, err := s.Me(ctx, actorID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, actor.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", ErrInternal)
	}
	return users, nil
}

// UpdateStatus sets the actor's presence.
func (s *AuthService) UpdateStatus(ctx context.Context, userID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set status: %w", ErrInternal)
	}
	_ = s.sessions.SetPresence(ctx, userID, status, presenceTTL)
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: map[string]string{"id": userID, "status": status}})
	return nil
}

// UpdateProfile changes the display name and/or avatar.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, username, avatar string) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if username != "" {
		user.Username = username
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", ErrInternal)
	}
	s.pub.Publish(ctx, events.Event{Type: events.ProfileUpdated, Payload: user})
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	access, exp, err := s.jwt.GenerateAccessToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", ErrInternal)
	}
	refresh, _, err := s.jwt.GenerateRefreshToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", ErrInternal)
	}
	if err := s.sessions.SaveRefreshToken(ctx, user.ID, refresh, s.jwt.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", ErrInternal)
	}
	return &models.AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp.Unix(),
	}, nil
}
