package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parlor-chat/parlor/internal/middleware"
)

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"invite_token,omitempty"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	user, tokens, err := h.auth.Register(c.Context(), req.Email, req.Password, req.InviteToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": tokens})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	user, tokens, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "tokens": tokens})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tokens, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"tokens": tokens})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.auth.Logout(c.Context(), claims.UserID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	user, err := h.auth.Me(c.Context(), claims.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	users, err := h.auth.ListUsers(c.Context(), claims.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

type updateProfileReq struct {
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	user, err := h.auth.UpdateProfile(c.Context(), claims.UserID, req.Username, req.Avatar)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req updateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.auth.UpdateStatus(c.Context(), claims.UserID, req.Status); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": req.Status})
}
