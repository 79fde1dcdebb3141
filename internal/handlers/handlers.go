package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/services"
)

// Handler binds the HTTP surface to the service layer.
type Handler struct {
	auth   *services.AuthService
	chat   *services.ChatService
	admin  *services.AdminService
	logger *zap.SugaredLogger
}

func New(auth *services.AuthService, chat *services.ChatService, admin *services.AdminService, logger *zap.SugaredLogger) *Handler {
	return &Handler{auth: auth, chat: chat, admin: admin, logger: logger}
}

// fail translates service sentinels to HTTP statuses. Anything outside
// the taxonomy is a 500 with a generic body.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrUnchangedContent),
		errors.Is(err, services.ErrInvalidReaction),
		errors.Is(err, services.ErrDirectSelf):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrChannelExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrAccountBanned),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrDirectImmutable),
		errors.Is(err, services.ErrCreatorRemoval):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrChannelNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.Errorw("request failed", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
