package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "errors"
    "net/http" // http package defines standard HTTP status codes
    "time"

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/ptitsvieux/backend/internal/apperr"
    "github.com/ptitsvieux/backend/internal/repository"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles according to the
// session token.  It assumes SessionAuth ran first.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !allowed[Role(c)] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.MsgForbidden})
            }
            return next(c)
        }
    }
}

// RoleLookup reads the stored role of a user.
type RoleLookup interface {
    RoleOf(ctx context.Context, id uint64) (string, error)
}

// RequireStoredRole re-reads the caller's role from the store on every
// request, so a demoted or deleted admin loses access before their token
// expires.  It is chained after RequireRole.
func RequireStoredRole(users RoleLookup, role string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            stored, err := users.RoleOf(ctx, UserID(c))
            if errors.Is(err, repository.ErrNotFound) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.MsgUnauthorized})
            }
            if err != nil {
                return echo.NewHTTPError(http.StatusInternalServerError, apperr.MsgInternal).SetInternal(err)
            }
            if stored != role {
                return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.MsgForbidden})
            }
            return next(c)
        }
    }
}
