package handler

import (
    "errors"
    "log"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/apperr"
    "github.com/ptitsvieux/backend/internal/config"
    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/model"
    "github.com/ptitsvieux/backend/internal/queue"
    "github.com/ptitsvieux/backend/internal/repository"
    "github.com/ptitsvieux/backend/internal/service"
    "github.com/ptitsvieux/backend/internal/utils"
    "github.com/ptitsvieux/backend/internal/validate"
)

// AuthHandler bundles dependencies for the credential and session endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Events queue.Publisher

    // dummyHash is compared against when the email is unknown so both login
    // failures cost one bcrypt comparison.
    dummyHash string
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, ev queue.Publisher) *AuthHandler {
    h := &AuthHandler{Cfg: cfg, Users: u, Events: ev}
    hash, err := utils.HashPassword("not-a-real-password-Zq9!", cfg.BcryptCost)
    if err != nil {
        log.Printf("auth: dummy hash: %v", err)
    }
    h.dummyHash = hash
    return h
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Bio      string `json:"bio"`
    Ville    string `json:"ville"`
    Photo    string `json:"photo"`
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type profileReq struct {
    Name  *string `json:"name"`
    Bio   *string `json:"bio"`
    Ville *string `json:"ville"`
    Photo *string `json:"photo"`
}

type userResp struct {
    User model.PublicUser `json:"user"`
}

// profileErrors checks the editable profile fields of u.
func profileErrors(v *validate.Error, u model.User) {
    v.Length("name", u.Name, validate.NameMin, validate.NameMax)
    v.Length("bio", u.Bio, 0, validate.BioMax)
    v.Length("ville", u.Ville, 0, validate.VilleMax)
    v.Length("photo", u.Photo, 0, validate.PhotoMax)
}

// startSession issues a token for u and sets it as the session cookie.
func (h *AuthHandler) startSession(c echo.Context, u model.User) error {
    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.SessionTTL())
    if err != nil {
        return err
    }
    c.SetCookie(utils.SessionCookie(tok, h.Cfg.CookieSecure))
    return nil
}

// Register: create the user and open a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    u := model.User{
        Name:  strings.TrimSpace(req.Name),
        Email: strings.ToLower(strings.TrimSpace(req.Email)),
        Bio:   strings.TrimSpace(req.Bio),
        Ville: strings.TrimSpace(req.Ville),
        Photo: strings.TrimSpace(req.Photo),
        Role:  model.RoleUser,
    }
    var v validate.Error
    profileErrors(&v, u)
    v.Email("email", u.Email)
    v.Password("password", req.Password)
    if err := v.Err(); err != nil {
        return fail(err)
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return fail(err)
    }
    u.PasswordHash = hash

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Users.Create(ctx, &u); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            // Same answer as a bad login: whether an address is registered
            // is not disclosed.
            return errorMsg(http.StatusBadRequest, apperr.MsgInvalidCredentials)
        }
        return fail(err)
    }
    if err := h.startSession(c, u); err != nil {
        return fail(err)
    }
    service.Publish(ctx, h.Events, queue.NewEvent(queue.EventUserRegistered, u.ID))
    return c.JSON(http.StatusCreated, userResp{User: u.Public()})
}

// Login: verify the credentials and open a session.  Unknown email and
// wrong password get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" || req.Password == "" {
        return errorMsg(http.StatusBadRequest, "email/password required")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, email)
    if errors.Is(err, repository.ErrUserNotFound) {
        utils.VerifyPassword(h.dummyHash, req.Password)
        return errorMsg(http.StatusUnauthorized, apperr.MsgInvalidCredentials)
    }
    if err != nil {
        return fail(err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return errorMsg(http.StatusUnauthorized, apperr.MsgInvalidCredentials)
    }

    if utils.NeedsRehash(u.PasswordHash, h.Cfg.BcryptCost) {
        if hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost); err == nil {
            if err := h.Users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
                c.Logger().Warnf("rehash user %d: %v", u.ID, err)
            }
        }
    }

    if err := h.startSession(c, u); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, userResp{User: u.Public()})
}

// Logout clears the session cookie.  It needs no session and never fails.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(utils.ClearedSessionCookie(h.Cfg.CookieSecure))
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user, read fresh from the store.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, middleware.UserID(c))
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, userResp{User: u.Public()})
}

// UpdateMe edits the profile fields present in the body.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
    var req profileReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, middleware.UserID(c))
    if err != nil {
        return fail(err)
    }
    if req.Name != nil {
        u.Name = strings.TrimSpace(*req.Name)
    }
    if req.Bio != nil {
        u.Bio = strings.TrimSpace(*req.Bio)
    }
    if req.Ville != nil {
        u.Ville = strings.TrimSpace(*req.Ville)
    }
    if req.Photo != nil {
        u.Photo = strings.TrimSpace(*req.Photo)
    }
    var v validate.Error
    profileErrors(&v, u)
    if err := v.Err(); err != nil {
        return fail(err)
    }
    if err := h.Users.UpdateProfile(ctx, u); err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, userResp{User: u.Public()})
}
