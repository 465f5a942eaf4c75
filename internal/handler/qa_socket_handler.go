package handler

import (
	"ai-qa-be/internal/pkg/logger"
	internalWS "ai-qa-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// QASocketHandler upgrades /ws/qa and hands the connection to the hub.
type QASocketHandler struct {
	hub      *internalWS.Hub
	answerer internalWS.Answerer
	logger   logger.ILogger
}

func NewQASocketHandler(hub *internalWS.Hub, answerer internalWS.Answerer, log logger.ILogger) *QASocketHandler {
	return &QASocketHandler{
		hub:      hub,
		answerer: answerer,
		logger:   log,
	}
}

func (h *QASocketHandler) RegisterRoutes(app *fiber.App) {
	ws := app.Group("/ws")
	ws.Get("/qa", h.ServeWs)
}

// ServeWs upgrades the request. Plain HTTP requests get 426.
func (h *QASocketHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("QASocketHandler", "Starting WebSocket session", map[string]interface{}{
			"remote": conn.RemoteAddr().String(),
		})
		internalWS.ServeWs(h.hub, conn, h.answerer)
		h.logger.Info("QASocketHandler", "WebSocket session ended", nil)
	})(c)
}
