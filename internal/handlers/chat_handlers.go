package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/parlor-chat/parlor/internal/middleware"
)

type createChannelReq struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	IsPrivate    bool     `json:"is_private"`
}

func (h *Handler) CreateChannel(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req createChannelReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ch, err := h.chat.CreateChannel(c.Context(), claims.UserID, req.Name, req.Participants, req.IsPrivate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"channel": ch})
}

type directChannelReq struct {
	RecipientID string `json:"recipient_id"`
}

func (h *Handler) CreateDirectChannel(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req directChannelReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ch, err := h.chat.CreateOrGetDirectChannel(c.Context(), claims.UserID, req.RecipientID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"channel": ch})
}

func (h *Handler) ListChannels(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	chans, err := h.chat.ListChannels(c.Context(), claims.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"channels": chans})
}

func (h *Handler) DeleteChannel(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.chat.DeleteChannel(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func (h *Handler) GetMessages(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	limit := int64(c.QueryInt("limit"))
	var before time.Time
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid before timestamp"})
		}
		before = t
	}
	msgs, err := h.chat.GetMessages(c.Context(), claims.UserID, c.Params("id"), limit, before)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

type sendMessageReq struct {
	Content string `json:"content"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	msg, err := h.chat.SendMessage(c.Context(), claims.UserID, c.Params("id"), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

type editMessageReq struct {
	Content string `json:"content"`
}

func (h *Handler) EditMessage(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req editMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	msg, err := h.chat.EditMessage(c.Context(), claims.UserID, c.Params("id"), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

func (h *Handler) DeleteMessage(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.chat.DeleteMessage(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// reactionEmoji decodes the emoji path segment; browsers send it
// percent-encoded.
func reactionEmoji(c *fiber.Ctx) string {
	emoji, err := url.PathUnescape(c.Params("emoji"))
	if err != nil {
		return c.Params("emoji")
	}
	return emoji
}

func (h *Handler) AddReaction(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	msg, err := h.chat.AddReaction(c.Context(), claims.UserID, c.Params("id"), reactionEmoji(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

func (h *Handler) RemoveReaction(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	msg, err := h.chat.RemoveReaction(c.Context(), claims.UserID, c.Params("id"), reactionEmoji(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

type nicknameReq struct {
	Nickname string `json:"nickname"`
}

func (h *Handler) SetNickname(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req nicknameReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ch, err := h.chat.SetNickname(c.Context(), claims.UserID, c.Params("id"), c.Params("userID"), req.Nickname)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"channel": ch})
}

func (h *Handler) AddParticipant(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	ch, err := h.chat.AddParticipant(c.Context(), claims.UserID, c.Params("id"), c.Params("userID"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"channel": ch})
}

func (h *Handler) RemoveParticipant(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	ch, err := h.chat.RemoveParticipant(c.Context(), claims.UserID, c.Params("id"), c.Params("userID"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"channel": ch})
}
