package middleware

// identity.go holds the helpers that read the identity SessionAuth stored
// in the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id, or 0 outside SessionAuth.
func UserID(c echo.Context) uint64 {
    id, _ := c.Get(CtxUserID).(uint64)
    return id
}

// Role returns the role claim of the session, or "".
func Role(c echo.Context) string {
    role, _ := c.Get(CtxRole).(string)
    return role
}

// identity is the rate-limit key fragment for the caller: the decimal user
// id, or "guest" when the request is anonymous.
func identity(c echo.Context) string {
    if id := UserID(c); id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
