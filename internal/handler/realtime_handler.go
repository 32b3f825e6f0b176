package handler

import (
	"context"
	"strings"

	"messenger-be/internal/pkg/logger"
	internalWS "messenger-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RealtimeHandler struct {
	gateway *internalWS.Gateway
	logger  logger.ILogger
}

func NewRealtimeHandler(gateway *internalWS.Gateway, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		gateway: gateway,
		logger:  log,
	}
}

// ServeWs upgrades the request and hands the socket to a realtime session.
// Credentials are checked after the upgrade so refusals arrive as a 1008 close frame.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}

	// fasthttp reuses request buffers once this handler returns.
	tokenStr = strings.Clone(tokenStr)
	chatID := strings.Clone(c.Params("chat_id"))

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Debug("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"chat_id": chatID})
		h.gateway.Serve(context.Background(), conn, chatID, tokenStr)
	})(c)
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/:chat_id", h.ServeWs)
}
