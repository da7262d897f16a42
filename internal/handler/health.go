package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "database/sql"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
    "github.com/redis/go-redis/v9"
)

// Health is a simple liveness endpoint used by load balancers.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Readiness reports whether the store (and Redis, when configured) answer.
type Readiness struct {
    DB    *sql.DB
    Redis *redis.Client
}

// Ready is GET /readyz.  It answers 503 with the failing dependency named.
func (r *Readiness) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    checks := echo.Map{"db": "ok"}
    status := http.StatusOK
    if err := r.DB.PingContext(ctx); err != nil {
        checks["db"] = "down"
        status = http.StatusServiceUnavailable
    }
    if r.Redis != nil {
        checks["redis"] = "ok"
        if err := r.Redis.Ping(ctx).Err(); err != nil {
            checks["redis"] = "down"
            status = http.StatusServiceUnavailable
        }
    }
    return c.JSON(status, checks)
}
