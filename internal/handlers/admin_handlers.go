package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parlor-chat/parlor/internal/middleware"
)

func (h *Handler) AdminListUsers(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	users, err := h.admin.ListAllUsers(c.Context(), claims.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *Handler) BanUser(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.admin.BanUser(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "banned"})
}

func (h *Handler) UnbanUser(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.admin.UnbanUser(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "unbanned"})
}

func (h *Handler) PromoteUser(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.admin.PromoteToAdmin(c.Context(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "promoted"})
}

type createInviteReq struct {
	Email string `json:"email"`
}

func (h *Handler) CreateInvite(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	var req createInviteReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	inv, err := h.admin.GenerateAdminInvite(c.Context(), claims.UserID, req.Email)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"invite": inv})
}
