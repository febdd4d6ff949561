package controller

import (
	"ai-butler-be/internal/pkg/logger"
	internalWS "ai-butler-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// StreamController upgrades clients onto the websocket hub that carries
// chat fragments and backend events.
type StreamController struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewStreamController(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *StreamController {
	return &StreamController{hub: hub, jwtSecret: jwtSecret, logger: log}
}

func (c *StreamController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", c.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (c *StreamController) ServeWs(ctx *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token
	// arrives as a query param, with the Authorization header as fallback.
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(c.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("StreamController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	// Empty session_id subscribes the client to every session (firehose).
	sessionID := ctx.Query("session_id")

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("StreamController", "Starting websocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(c.hub, conn, sessionID)
			c.logger.Info("StreamController", "Websocket session ended", map[string]interface{}{"session_id": sessionID})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
