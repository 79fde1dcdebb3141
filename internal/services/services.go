package services

import "errors"

// Failure taxonomy. Validation and authorization errors are decided
// locally before any remote write; store errors surface as ErrInternal
// with the local state untouched.
var (
	ErrUserExists          = errors.New("user with this email or username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountBanned       = errors.New("account is banned")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password too short")
	ErrInvalidStatus       = errors.New("invalid status value")

	ErrChannelExists    = errors.New("a channel with this name already exists")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotParticipant   = errors.New("user is not a channel participant")
	ErrDirectSelf       = errors.New("cannot open a direct channel with yourself")
	ErrDirectImmutable  = errors.New("direct channel membership cannot change")
	ErrCreatorRemoval   = errors.New("channel creator cannot be removed")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrEmptyContent     = errors.New("content must not be empty")
	ErrUnchangedContent = errors.New("content is unchanged")
	ErrInvalidReaction  = errors.New("invalid reaction emoji")

	ErrForbidden = errors.New("forbidden")
	ErrInternal  = errors.New("internal error")
)
