package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/model"
    "github.com/ptitsvieux/backend/internal/repository"
    "github.com/ptitsvieux/backend/internal/service"
    "github.com/ptitsvieux/backend/internal/validate"
)

// AnnonceHandler serves listings.
type AnnonceHandler struct {
    Annonces   *repository.AnnonceRepo
    Users      *repository.UserRepo
    Validation *service.AnnonceService
}

func NewAnnonceHandler(a *repository.AnnonceRepo, u *repository.UserRepo, v *service.AnnonceService) *AnnonceHandler {
    return &AnnonceHandler{Annonces: a, Users: u, Validation: v}
}

type annonceReq struct {
    Title       *string  `json:"title"`
    Description *string  `json:"description"`
    Price       *float64 `json:"price"`
    Location    *string  `json:"location"`
    Photo       *string  `json:"photo"`
}

func trimmed(p *string) *string {
    if p == nil {
        return nil
    }
    s := strings.TrimSpace(*p)
    return &s
}

// patch normalizes req and checks the fields it carries.  On create every
// mandatory field must be present.
func (req annonceReq) patch(create bool) (model.AnnoncePatch, error) {
    p := model.AnnoncePatch{
        Title:       trimmed(req.Title),
        Description: trimmed(req.Description),
        Price:       req.Price,
        Location:    trimmed(req.Location),
        Photo:       trimmed(req.Photo),
    }
    var v validate.Error
    if p.Title != nil || create {
        v.Length("title", deref(p.Title), validate.TitleMin, validate.TitleMax)
    }
    if p.Description != nil || create {
        v.Length("description", deref(p.Description), validate.DescriptionMin, validate.DescriptionMax)
    }
    switch {
    case p.Price == nil && create:
        v.Add("price", "is required")
    case p.Price != nil && (*p.Price < 0 || *p.Price > validate.PriceMax):
        v.Add("price", "must be between 0 and 1000000")
    }
    if p.Location != nil {
        v.Length("location", *p.Location, 0, validate.LocationMax)
    }
    if p.Photo != nil {
        v.Length("photo", *p.Photo, 0, validate.PhotoMax)
    }
    return p, v.Err()
}

func deref(p *string) string {
    if p == nil {
        return ""
    }
    return *p
}

// List is GET /annonces, optionally filtered by ?search=.
func (h *AnnonceHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Annonces.Search(ctx, strings.TrimSpace(c.QueryParam("search")))
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"annonces": out})
}

// ListByUser is GET /users/:id/annonces.
func (h *AnnonceHandler) ListByUser(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Annonces.ListByUser(ctx, id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"annonces": out})
}

// Get is GET /annonces/:id.
func (h *AnnonceHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    a, err := h.Annonces.GetByID(ctx, id)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"annonce": a})
}

// Create is POST /annonces.  The annonce belongs to the caller and starts
// unvalidated.
func (h *AnnonceHandler) Create(c echo.Context) error {
    var req annonceReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    p, err := req.patch(true)
    if err != nil {
        return fail(err)
    }
    a := model.Annonce{
        UserID:      middleware.UserID(c),
        Title:       *p.Title,
        Description: *p.Description,
        Price:       *p.Price,
        Location:    deref(p.Location),
        Photo:       deref(p.Photo),
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Annonces.Create(ctx, &a); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"annonce": a})
}

// Update is PUT /annonces/:id, owner only.
func (h *AnnonceHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    var req annonceReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    p, err := req.patch(false)
    if err != nil {
        return fail(err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    a, err := h.Annonces.Update(ctx, id, middleware.UserID(c), p)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"annonce": a})
}

// Delete is DELETE /annonces/:id.  Owners delete their own annonces; an
// admin, confirmed against the stored role, may delete any.
func (h *AnnonceHandler) Delete(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    owner := middleware.UserID(c)
    if middleware.Role(c) == model.RoleAdmin {
        role, err := h.Users.RoleOf(ctx, owner)
        if err != nil {
            return fail(err)
        }
        if role == model.RoleAdmin {
            owner = 0
        }
    }
    if err := h.Annonces.Delete(ctx, id, owner); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "annonce deleted"})
}

// Validate is PUT /annonces/:id/validate.  Only the owner may validate, and
// only once; later calls report already_validated.
func (h *AnnonceHandler) Validate(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    res, err := h.Validation.Validate(ctx, id, middleware.UserID(c), 0)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, res)
}
