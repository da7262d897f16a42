package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptitsvieux/backend/internal/handler"
	"github.com/ptitsvieux/backend/internal/middleware"
)

// RegisterAnnonces registers listing routes.  Reads are public and cached;
// writes require a session.
func RegisterAnnonces(e *echo.Echo, h *handler.AnnonceHandler, secret string, cache *middleware.ResponseCache) {
	cached := cache.Cache(cacheAnnonces)
	e.GET("/annonces", h.List, cached)
	e.GET("/annonces/:id", h.Get, cached)
	e.GET("/users/:id/annonces", h.ListByUser, cached)

	auth, invalidate := middleware.SessionAuth(secret), cache.Invalidate(cacheAnnonces)
	e.POST("/annonces", h.Create, auth, invalidate)
	e.PUT("/annonces/:id", h.Update, auth, invalidate)
	e.DELETE("/annonces/:id", h.Delete, auth, invalidate)
	e.PUT("/annonces/:id/validate", h.Validate, auth, invalidate)
}
