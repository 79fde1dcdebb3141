package ws

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/hub"
	"github.com/parlor-chat/parlor/internal/utils"
)

// AccessChecker decides whether a user may subscribe to a channel's
// events. The chat service implements it with the same rule the HTTP
// read path enforces.
type AccessChecker interface {
	CanAccessChannel(ctx context.Context, userID, channelID string) error
}

// Server upgrades authenticated clients onto the hub.
type Server struct {
	hub    *hub.Hub
	jwt    *utils.JWTManager
	access AccessChecker
	logger *zap.SugaredLogger
}

func NewServer(h *hub.Hub, jwt *utils.JWTManager, access AccessChecker, logger *zap.SugaredLogger) *Server {
	return &Server{hub: h, jwt: jwt, access: access, logger: logger}
}

// Handle returns the websocket connection handler. Clients authenticate
// with a token query parameter and then subscribe to channels over the
// socket itself.
func (s *Server) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			_ = conn.Close()
			return
		}
		claims, err := s.jwt.ParseAccess(token)
		if err != nil {
			_ = conn.Close()
			return
		}

		c := newConnection(conn, hub.NewClient(claims.UserID), s.hub, s.access, s.logger)
		s.hub.Register(c.client)
		go c.writePump()
		c.readPump()
	}
}
