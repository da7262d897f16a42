package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/service"
)

// NoteHandler serves ratings.
type NoteHandler struct {
    Notes *service.NoteService
}

func NewNoteHandler(n *service.NoteService) *NoteHandler {
    return &NoteHandler{Notes: n}
}

type rateReq struct {
    RatedUserID uint64 `json:"ratedUserId"`
    Stars       int    `json:"stars"`
    Comment     string `json:"comment"`
}

// Rate is POST /ratings.  Rating the same user again replaces the earlier
// note.
func (h *NoteHandler) Rate(c echo.Context) error {
    var req rateReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    n, err := h.Notes.Rate(ctx, middleware.UserID(c), req.RatedUserID, req.Stars, req.Comment)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"note": n})
}

// Summary is GET /users/:id/summary.
func (h *NoteHandler) Summary(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    s, err := h.Notes.Summary(ctx, id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"summary": s})
}

// Comments is GET /users/:id/comments.
func (h *NoteHandler) Comments(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Notes.Comments(ctx, id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"comments": out})
}

// Mine is GET /ratings/me/:ratedUserId.  "note" is null when the caller
// has not rated that user.
func (h *NoteHandler) Mine(c echo.Context) error {
    id, err := pathID(c, "ratedUserId")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    n, err := h.Notes.Mine(ctx, middleware.UserID(c), id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"note": n})
}
