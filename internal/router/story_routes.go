package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptitsvieux/backend/internal/handler"
	"github.com/ptitsvieux/backend/internal/middleware"
)

// RegisterStories registers the public feed and story creation.
func RegisterStories(e *echo.Echo, h *handler.StoryHandler, secret string, cache *middleware.ResponseCache) {
	e.GET("/stories", h.List, cache.Cache(cacheStories))
	e.POST("/stories", h.Create, middleware.SessionAuth(secret), cache.Invalidate(cacheStories))
}
