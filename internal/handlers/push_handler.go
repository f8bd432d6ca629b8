package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/middleware"
	pushws "github.com/diftofficial/systemAplikaciaGYM/internal/websocket"
	"github.com/diftofficial/systemAplikaciaGYM/pkg/utils"
)

// PushHandler upgrades authenticated clients to the refresh event socket.
type PushHandler struct {
	hub       *pushws.Hub
	jwtSecret string
}

func NewPushHandler(hub *pushws.Hub, jwtSecret string) *PushHandler {
	return &PushHandler{hub: hub, jwtSecret: jwtSecret}
}

func (h *PushHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals(middleware.LocalUserID, claims.UserID)
	c.Locals(middleware.LocalRole, claims.Role)
	return c.Next()
}

func (h *PushHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	client := pushws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

// Browsers cannot set headers on upgrade requests, so the token may also
// arrive as a query parameter.
func (h *PushHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		if bearer, ok := middleware.BearerToken(c.Get("Authorization")); ok {
			tokenString = bearer
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
