package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/parlor-chat/parlor/internal/handlers"
	"github.com/parlor-chat/parlor/internal/middleware"
	"github.com/parlor-chat/parlor/internal/utils"
	wsrv "github.com/parlor-chat/parlor/internal/ws"
)

// Setup registers the whole HTTP surface.
func Setup(app *fiber.App, h *handlers.Handler, jwt *utils.JWTManager, limiter *middleware.RateLimiter, wsServer *wsrv.Server) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	if limiter != nil {
		auth.Post("/register", limiter.ByIP(), h.Register)
		auth.Post("/login", limiter.ByIP(), h.Login)
	} else {
		auth.Post("/register", h.Register)
		auth.Post("/login", h.Login)
	}
	auth.Post("/refresh", h.Refresh)

	authed := api.Group("", middleware.JWTAuth(jwt))
	authed.Post("/auth/logout", h.Logout)

	authed.Get("/users/me", h.Me)
	authed.Patch("/users/me", h.UpdateProfile)
	authed.Put("/users/me/status", h.UpdateStatus)
	authed.Get("/users", h.ListUsers)

	authed.Post("/channels", h.CreateChannel)
	authed.Get("/channels", h.ListChannels)
	authed.Post("/channels/direct", h.CreateDirectChannel)
	authed.Delete("/channels/:id", h.DeleteChannel)
	authed.Get("/channels/:id/messages", h.GetMessages)
	authed.Post("/channels/:id/messages", h.SendMessage)
	authed.Put("/channels/:id/nicknames/:userID", h.SetNickname)
	authed.Post("/channels/:id/participants/:userID", h.AddParticipant)
	authed.Delete("/channels/:id/participants/:userID", h.RemoveParticipant)

	authed.Patch("/messages/:id", h.EditMessage)
	authed.Delete("/messages/:id", h.DeleteMessage)
	authed.Put("/messages/:id/reactions/:emoji", h.AddReaction)
	authed.Delete("/messages/:id/reactions/:emoji", h.RemoveReaction)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.Get("/users", h.AdminListUsers)
	admin.Post("/users/:id/ban", h.BanUser)
	admin.Delete("/users/:id/ban", h.UnbanUser)
	admin.Post("/users/:id/promote", h.PromoteUser)
	admin.Post("/invites", h.CreateInvite)

	// websocket endpoint; tokens arrive as a query parameter because
	// browsers cannot set headers on a ws upgrade
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsServer.Handle()))
}
