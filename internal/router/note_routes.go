package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptitsvieux/backend/internal/handler"
	"github.com/ptitsvieux/backend/internal/middleware"
)

// RegisterNotes registers the rating routes.
func RegisterNotes(e *echo.Echo, h *handler.NoteHandler, secret string) {
	e.GET("/users/:id/summary", h.Summary)
	e.GET("/users/:id/comments", h.Comments)

	auth := middleware.SessionAuth(secret)
	e.POST("/ratings", h.Rate, auth)
	e.GET("/ratings/me/:ratedUserId", h.Mine, auth)
}
