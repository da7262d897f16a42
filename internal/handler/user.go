package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/model"
    "github.com/ptitsvieux/backend/internal/repository"
    "github.com/ptitsvieux/backend/internal/validate"
)

// UserHandler serves public profiles and the admin user management.
type UserHandler struct {
    Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
    return &UserHandler{Users: u}
}

// Profile is GET /users/:id.
func (h *UserHandler) Profile(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"user": u.Profile()})
}

// ListAll is GET /admin/allusers.
func (h *UserHandler) ListAll(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.List(ctx)
    if err != nil {
        return fail(err)
    }
    out := make([]model.PublicUser, 0, len(users))
    for _, u := range users {
        out = append(out, u.Public())
    }
    return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Delete is DELETE /admin/deleteuser/:id.  An admin cannot remove their own
// account this way.
func (h *UserHandler) Delete(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    if id == middleware.UserID(c) {
        return fail(validate.Field("id", "you cannot delete your own account"))
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Users.Delete(ctx, id); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
