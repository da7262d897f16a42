package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/model"
    "github.com/ptitsvieux/backend/internal/repository"
    "github.com/ptitsvieux/backend/internal/validate"
)

// Feed page size bounds.
const (
    defaultStoryLimit = 50
    maxStoryLimit     = 100
)

type StoryHandler struct {
    Stories *repository.StoryRepo
}

func NewStoryHandler(s *repository.StoryRepo) *StoryHandler {
    return &StoryHandler{Stories: s}
}

type storyReq struct {
    Title   string `json:"title"`
    Content string `json:"content"`
}

// List is GET /stories?limit=n, newest first.
func (h *StoryHandler) List(c echo.Context) error {
    limit := defaultStoryLimit
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            return fail(validate.Field("limit", "must be a positive integer"))
        }
        limit = min(n, maxStoryLimit)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Stories.List(ctx, limit)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"stories": out})
}

// Create is POST /stories.
func (h *StoryHandler) Create(c echo.Context) error {
    var req storyReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    s := model.Story{
        UserID:  middleware.UserID(c),
        Title:   strings.TrimSpace(req.Title),
        Content: strings.TrimSpace(req.Content),
    }
    var v validate.Error
    v.Length("title", s.Title, validate.TitleMin, validate.TitleMax)
    v.Length("content", s.Content, validate.StoryMin, validate.StoryMax)
    if err := v.Err(); err != nil {
        return fail(err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Stories.Create(ctx, &s); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"story": s})
}
