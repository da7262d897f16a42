package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/ptitsvieux/backend/internal/apperr"
    "github.com/ptitsvieux/backend/internal/utils"
)

// Context keys set by SessionAuth.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
    CtxEmail  = "email"
)

// SessionAuth returns an Echo middleware that verifies the session cookie and
// injects the token's user id, role and email into the request context.
// Handlers behind it read them with UserID(c) and c.Get("role").  The token
// is checked for signature and expiry only; nothing is read from the store.
func SessionAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            sess, err := utils.SessionFromRequest(secret, c.Request())
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.MsgUnauthorized})
            }
            setSession(c, sess)
            return next(c)
        }
    }
}

// Identify records the session identity when the cookie verifies and lets
// every request through.  It runs ahead of the global limiter so per-user
// keys see the caller instead of "guest".
func Identify(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if sess, err := utils.SessionFromRequest(secret, c.Request()); err == nil {
                setSession(c, sess)
            }
            return next(c)
        }
    }
}

func setSession(c echo.Context, sess utils.Session) {
    c.Set(CtxUserID, sess.UserID)
    c.Set(CtxRole, sess.Role)
    c.Set(CtxEmail, sess.Email)
}
