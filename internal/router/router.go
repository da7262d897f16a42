package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/ptitsvieux/backend/internal/handler"    // import the handlers that implement business logic
	"github.com/ptitsvieux/backend/internal/middleware" // import middleware for session authentication and role enforcement
	"github.com/ptitsvieux/backend/internal/model"
)

// Cache resource names.  Writes on a resource invalidate its cached reads.
const (
	cacheAnnonces = "annonces"
	cacheStories  = "stories"
)

// RegisterRoutes registers the probes every service exposes.
func RegisterRoutes(e *echo.Echo, ready *handler.Readiness) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
}

// RegisterAuth registers the credential, profile and admin routes.  The
// login limiter runs before the handler touches the store.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, roles middleware.RoleLookup,
	secret string, loginLimit echo.MiddlewareFunc, cache *middleware.ResponseCache) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login, loginLimit)
	e.POST("/logout", a.Logout)
	e.GET("/users/:id", u.Profile)

	auth := middleware.SessionAuth(secret)
	e.GET("/me", a.Me, auth)
	// The author name shown on stories comes from the profile.
	e.PUT("/me", a.UpdateMe, auth, cache.Invalidate(cacheStories))

	admin := e.Group("/admin",
		middleware.SessionAuth(secret),
		middleware.RequireRole(model.RoleAdmin),
		middleware.RequireStoredRole(roles, model.RoleAdmin))
	admin.GET("/allusers", u.ListAll)
	admin.DELETE("/deleteuser/:id", u.Delete, cache.Invalidate(cacheAnnonces, cacheStories))
}
