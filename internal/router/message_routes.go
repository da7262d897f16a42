package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptitsvieux/backend/internal/handler"
	"github.com/ptitsvieux/backend/internal/middleware"
	"github.com/ptitsvieux/backend/internal/ws"
)

// RegisterMessages registers the conversation routes and the realtime
// channel.  GET /ws checks the session cookie itself so that it can refuse
// before upgrading.
func RegisterMessages(e *echo.Echo, h *handler.MessageHandler, realtime *ws.Server, secret string) {
	e.GET("/ws", realtime.Handle)

	auth := middleware.SessionAuth(secret)
	e.POST("/messages", h.Send, auth)
	e.GET("/messages/:userId", h.Thread, auth)
	e.GET("/conversations", h.Conversations, auth)
}
