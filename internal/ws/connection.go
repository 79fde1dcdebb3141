package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/hub"
)

const (
	readLimit    = 64 * 1024
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// clientCommand is the only inbound frame clients send: channel
// subscription management. Mutations go through the HTTP API.
type clientCommand struct {
	Action    string `json:"action"`
	ChannelID string `json:"channel_id"`
}

type connection struct {
	ws     *websocket.Conn
	client *hub.Client
	hub    *hub.Hub
	access AccessChecker
	logger *zap.SugaredLogger
}

func newConnection(ws *websocket.Conn, client *hub.Client, h *hub.Hub, access AccessChecker, logger *zap.SugaredLogger) *connection {
	return &connection{ws: ws, client: client, hub: h, access: access, logger: logger}
}

func (c *connection) readPump() {
	defer func() {
		c.hub.Unregister(c.client)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil || cmd.ChannelID == "" {
			continue
		}
		switch cmd.Action {
		case "subscribe":
			// same visibility rule as the HTTP read path; a socket
			// never receives a channel it could not GET
			if err := c.access.CanAccessChannel(context.Background(), c.client.UserID, cmd.ChannelID); err != nil {
				c.logger.Warnw("subscription refused", "user", c.client.UserID, "channel", cmd.ChannelID, "err", err)
				continue
			}
			c.hub.Subscribe(c.client, cmd.ChannelID)
		case "unsubscribe":
			c.hub.Unsubscribe(c.client, cmd.ChannelID)
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case payload, ok := <-c.client.Send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
