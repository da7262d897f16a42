package handler_test

import (
    "bytes"
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "path/filepath"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "golang.org/x/crypto/bcrypt"

    "github.com/ptitsvieux/backend/internal/apperr"
    "github.com/ptitsvieux/backend/internal/config"
    "github.com/ptitsvieux/backend/internal/database"
    "github.com/ptitsvieux/backend/internal/handler"
    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/queue"
    "github.com/ptitsvieux/backend/internal/ratelimit"
    "github.com/ptitsvieux/backend/internal/repository"
    "github.com/ptitsvieux/backend/internal/router"
    "github.com/ptitsvieux/backend/internal/service"
    "github.com/ptitsvieux/backend/internal/utils"
    "github.com/ptitsvieux/backend/internal/ws"
)

const strongPassword = "Aa1!aaaaaaaa"

type app struct {
    t      *testing.T
    e      *echo.Echo
    db     *sql.DB
    errLog *bytes.Buffer
}

func newApp(t *testing.T) *app {
    t.Helper()
    cfg := config.Config{
        DBDriver:      database.SQLite,
        JWTSecret:     "handler-test-secret",
        SessionTTLMin: 15,
        BcryptCost:    bcrypt.MinCost,
        LoginLimit:    10,
        LoginWindow:   10 * time.Minute,
    }
    db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
    if err != nil {
        t.Fatalf("open db: %v", err)
    }
    t.Cleanup(func() { db.Close() })

    users := repository.NewUserRepo(db)
    annonces := repository.NewAnnonceRepo(db)
    msgs := service.NewMessageService(repository.NewMessageRepo(db), users, annonces, queue.Nop{})
    validation := service.NewAnnonceService(annonces, queue.Nop{})
    notes := service.NewNoteService(repository.NewNoteRepo(db, cfg.DBDriver), users, queue.Nop{})
    hub := ws.NewHub()
    ctx, cancel := context.WithCancel(context.Background())
    t.Cleanup(cancel)
    go hub.Run(ctx)

    var errLog bytes.Buffer
    e := echo.New()
    e.HTTPErrorHandler = handler.HTTPErrorHandler(apperr.NewLog(&errLog))
    e.IPExtractor = echo.ExtractIPDirect()

    loginCfg := config.LoginRateLimitConfig(cfg)
    loginLimit := middleware.RateLimit(loginCfg, ratelimit.New(nil, loginCfg.Limit, loginCfg.Window))
    cache := middleware.NewResponseCache(config.CacheConfig{}, nil)

    router.RegisterRoutes(e, &handler.Readiness{DB: db})
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, queue.Nop{}), handler.NewUserHandler(users),
        users, cfg.JWTSecret, loginLimit, cache)
    router.RegisterAnnonces(e, handler.NewAnnonceHandler(annonces, users, validation), cfg.JWTSecret, cache)
    router.RegisterStories(e, handler.NewStoryHandler(repository.NewStoryRepo(db)), cfg.JWTSecret, cache)
    router.RegisterMessages(e, handler.NewMessageHandler(msgs, hub),
        ws.NewServer(hub, msgs, validation, cfg.JWTSecret, nil, nil), cfg.JWTSecret)
    router.RegisterNotes(e, handler.NewNoteHandler(notes), cfg.JWTSecret)

    return &app{t: t, e: e, db: db, errLog: &errLog}
}

// call performs a request with an optional JSON body and session cookie.
func (a *app) call(method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
    a.t.Helper()
    var rd *bytes.Reader
    if body != nil {
        raw, err := json.Marshal(body)
        if err != nil {
            a.t.Fatal(err)
        }
        rd = bytes.NewReader(raw)
    } else {
        rd = bytes.NewReader(nil)
    }
    req := httptest.NewRequest(method, path, rd)
    req.RemoteAddr = "203.0.113.9:4000"
    if body != nil {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if session != nil {
        req.AddCookie(session)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}

func sessionOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
    t.Helper()
    for _, c := range rec.Result().Cookies() {
        if c.Name == utils.SessionCookieName {
            return c
        }
    }
    t.Fatalf("no session cookie in response (%d %s)", rec.Code, rec.Body.String())
    return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
    t.Helper()
    var v T
    if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
        t.Fatalf("decode %q: %v", rec.Body.String(), err)
    }
    return v
}

// payload decodes the value stored under key in a success body.  Every
// success response is an object keyed by resource name.
func payload[T any](t *testing.T, rec *httptest.ResponseRecorder, key string) T {
    t.Helper()
    fields := decode[map[string]json.RawMessage](t, rec)
    raw, ok := fields[key]
    if !ok {
        t.Fatalf("body %s has no %q key", rec.Body.String(), key)
    }
    var v T
    if err := json.Unmarshal(raw, &v); err != nil {
        t.Fatalf("decode %s: %v", key, err)
    }
    return v
}

type user struct {
    ID      uint64
    Session *http.Cookie
}

func (a *app) register(name string) user {
    a.t.Helper()
    rec := a.call(http.MethodPost, "/register", map[string]string{
        "name": name, "email": strings.ToLower(name) + "@example.com", "password": strongPassword, "bio": "Retraité",
    }, nil)
    if rec.Code != http.StatusCreated {
        a.t.Fatalf("register %s: %d %s", name, rec.Code, rec.Body.String())
    }
    body := decode[struct {
        User struct{ ID uint64 } `json:"user"`
    }](a.t, rec)
    return user{ID: body.User.ID, Session: sessionOf(a.t, rec)}
}

func (a *app) login(email, password string) *httptest.ResponseRecorder {
    return a.call(http.MethodPost, "/login", map[string]string{"email": email, "password": password}, nil)
}

func path(format string, ids ...uint64) string {
    for _, id := range ids {
        format = strings.Replace(format, "%d", strconv.FormatUint(id, 10), 1)
    }
    return format
}

func TestRegisterSetsSessionCookie(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodPost, "/register", map[string]string{
        "name": "Jeanne", "email": "  Jeanne@Example.com ", "password": strongPassword, "bio": "Couturière", "ville": "Lyon",
    }, nil)
    if rec.Code != http.StatusCreated {
        t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
    }
    if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
        t.Errorf("response leaks the password hash: %s", rec.Body.String())
    }
    c := sessionOf(t, rec)
    if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode || c.Path != "/" || c.MaxAge <= 0 || c.MaxAge > 15*60 {
        t.Errorf("cookie = %+v", c)
    }

    me := a.call(http.MethodGet, "/me", nil, c)
    if me.Code != http.StatusOK {
        t.Fatalf("me: %d", me.Code)
    }
    got := decode[struct {
        User struct {
            Email string `json:"email"`
            Role  string `json:"role"`
            Ville string `json:"ville"`
        } `json:"user"`
    }](t, me)
    if got.User.Email != "jeanne@example.com" || got.User.Role != "user" || got.User.Ville != "Lyon" {
        t.Errorf("me = %+v", got.User)
    }
}

func TestRegisterValidation(t *testing.T) {
    a := newApp(t)
    cases := map[string]struct {
        body  map[string]string
        field string
    }{
        "weak password":    {map[string]string{"name": "Paul", "email": "paul@example.com", "password": "aaaaaaaaaaaa"}, "password"},
        "short password":   {map[string]string{"name": "Paul", "email": "paul@example.com", "password": "Aa1!aaa"}, "password"},
        "bad email":        {map[string]string{"name": "Paul", "email": "paul-at-example", "password": strongPassword}, "email"},
        "short name":       {map[string]string{"name": "P", "email": "paul@example.com", "password": strongPassword}, "name"},
        "long bio":         {map[string]string{"name": "Paul", "email": "paul@example.com", "password": strongPassword, "bio": strings.Repeat("b", 501)}, "bio"},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            rec := a.call(http.MethodPost, "/register", tc.body, nil)
            if rec.Code != http.StatusBadRequest {
                t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
            }
            body := decode[struct {
                Error   string            `json:"error"`
                Details map[string]string `json:"details"`
            }](t, rec)
            if body.Details[tc.field] == "" {
                t.Errorf("details = %v, want %s", body.Details, tc.field)
            }
        })
    }
}

func TestDuplicateEmailIsNotDisclosed(t *testing.T) {
    a := newApp(t)
    a.register("Marie")
    rec := a.call(http.MethodPost, "/register", map[string]string{
        "name": "Marie Bis", "email": "MARIE@example.com", "password": strongPassword,
    }, nil)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("status %d", rec.Code)
    }
    if got := decode[map[string]any](t, rec)["error"]; got != apperr.MsgInvalidCredentials {
        t.Errorf("error = %v", got)
    }
}

func TestLogin(t *testing.T) {
    a := newApp(t)
    a.register("Louis")

    ok := a.login("LOUIS@example.com", strongPassword)
    if ok.Code != http.StatusOK {
        t.Fatalf("login: %d %s", ok.Code, ok.Body.String())
    }
    sessionOf(t, ok)

    unknown := a.login("nobody@example.com", strongPassword)
    wrong := a.login("louis@example.com", "Wrong-password-1")
    if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
        t.Fatalf("statuses %d %d", unknown.Code, wrong.Code)
    }
    if unknown.Body.String() != wrong.Body.String() {
        t.Errorf("bodies differ: %q vs %q", unknown.Body.String(), wrong.Body.String())
    }
}

func TestLoginRateLimit(t *testing.T) {
    a := newApp(t)
    for i := 0; i < 10; i++ {
        if rec := a.login("x@example.com", "whatever-123"); rec.Code != http.StatusUnauthorized {
            t.Fatalf("attempt %d: %d", i+1, rec.Code)
        }
    }
    rec := a.login("x@example.com", "whatever-123")
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("11th attempt: %d", rec.Code)
    }
    if rec.Header().Get("Retry-After") == "" {
        t.Error("missing Retry-After")
    }
    if got := decode[map[string]any](t, rec)["error"]; got != "too_many_requests" {
        t.Errorf("error = %v", got)
    }
}

func TestLogoutAndSessionChecks(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodPost, "/logout", nil, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("logout: %d", rec.Code)
    }
    if c := sessionOf(t, rec); c.MaxAge >= 0 || c.Value != "" {
        t.Errorf("cleared cookie = %+v", c)
    }

    if rec := a.call(http.MethodGet, "/me", nil, nil); rec.Code != http.StatusUnauthorized {
        t.Errorf("me without cookie: %d", rec.Code)
    }
    expired, _ := utils.NewSessionToken("handler-test-secret", 1, "user", "a@example.com", -time.Second)
    if rec := a.call(http.MethodGet, "/me", nil, utils.SessionCookie(expired, false)); rec.Code != http.StatusUnauthorized {
        t.Errorf("me with expired cookie: %d", rec.Code)
    }
}

func TestUpdateProfile(t *testing.T) {
    a := newApp(t)
    u := a.register("Odette")
    rec := a.call(http.MethodPut, "/me", map[string]string{"ville": "Nantes", "bio": "Jardinière"}, u.Session)
    if rec.Code != http.StatusOK {
        t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
    }
    profile := payload[map[string]any](t, a.call(http.MethodGet, path("/users/%d", u.ID), nil, nil), "user")
    if profile["ville"] != "Nantes" || profile["name"] != "Odette" {
        t.Errorf("profile = %v", profile)
    }
    if _, ok := profile["bio"]; ok {
        t.Errorf("public profile exposes bio: %v", profile)
    }
    if rec := a.call(http.MethodPut, "/me", map[string]string{"name": "O"}, u.Session); rec.Code != http.StatusBadRequest {
        t.Errorf("short name: %d", rec.Code)
    }
}

func TestAdminRoutes(t *testing.T) {
    a := newApp(t)
    boss := a.register("Boss")
    plain := a.register("Plain")

    if rec := a.call(http.MethodGet, "/admin/allusers", nil, plain.Session); rec.Code != http.StatusForbidden {
        t.Fatalf("non-admin: %d", rec.Code)
    }

    if _, err := a.db.Exec("UPDATE users SET role = 'admin' WHERE id = ?", boss.ID); err != nil {
        t.Fatal(err)
    }
    // The old token still says "user".
    if rec := a.call(http.MethodGet, "/admin/allusers", nil, boss.Session); rec.Code != http.StatusForbidden {
        t.Fatalf("stale claim: %d", rec.Code)
    }
    admin := sessionOf(t, a.login("boss@example.com", strongPassword))

    rec := a.call(http.MethodGet, "/admin/allusers", nil, admin)
    if rec.Code != http.StatusOK {
        t.Fatalf("allusers: %d", rec.Code)
    }
    if list := payload[[]map[string]any](t, rec, "users"); len(list) != 2 {
        t.Errorf("users = %v", list)
    }

    if rec := a.call(http.MethodDelete, path("/admin/deleteuser/%d", boss.ID), nil, admin); rec.Code != http.StatusBadRequest {
        t.Errorf("self delete: %d", rec.Code)
    }
    if rec := a.call(http.MethodDelete, path("/admin/deleteuser/%d", plain.ID), nil, admin); rec.Code != http.StatusOK {
        t.Errorf("delete: %d", rec.Code)
    }
    if rec := a.call(http.MethodDelete, path("/admin/deleteuser/%d", plain.ID), nil, admin); rec.Code != http.StatusNotFound {
        t.Errorf("delete twice: %d", rec.Code)
    }

    // Demoted while holding an admin token.
    a.db.Exec("UPDATE users SET role = 'user' WHERE id = ?", boss.ID)
    if rec := a.call(http.MethodGet, "/admin/allusers", nil, admin); rec.Code != http.StatusForbidden {
        t.Errorf("demoted admin: %d", rec.Code)
    }
}

func TestAnnonceLifecycle(t *testing.T) {
    a := newApp(t)
    owner := a.register("Owner")
    other := a.register("Other")

    body := map[string]any{"title": "Machine à coudre", "description": "Singer des années 60, fonctionne", "price": 120, "location": "Lille"}
    if rec := a.call(http.MethodPost, "/annonces", body, nil); rec.Code != http.StatusUnauthorized {
        t.Fatalf("anonymous create: %d", rec.Code)
    }
    rec := a.call(http.MethodPost, "/annonces", body, owner.Session)
    if rec.Code != http.StatusCreated {
        t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
    }
    created := payload[struct {
        ID       uint64 `json:"id"`
        IsValide bool   `json:"is_valide"`
    }](t, rec, "annonce")
    if created.IsValide {
        t.Error("new annonce is already validated")
    }

    if rec := a.call(http.MethodPost, "/annonces", map[string]any{"title": "ab", "description": "short"}, owner.Session); rec.Code != http.StatusBadRequest {
        t.Errorf("invalid create: %d", rec.Code)
    }

    list := payload[[]map[string]any](t, a.call(http.MethodGet, "/annonces?search=singer", nil, nil), "annonces")
    if len(list) != 1 {
        t.Errorf("search = %v", list)
    }
    if list := payload[[]map[string]any](t, a.call(http.MethodGet, "/annonces?search=100%25", nil, nil), "annonces"); len(list) != 0 {
        t.Errorf("wildcard search = %v", list)
    }

    if rec := a.call(http.MethodPut, path("/annonces/%d", created.ID), map[string]any{"price": 90}, other.Session); rec.Code != http.StatusNotFound {
        t.Errorf("update by other: %d", rec.Code)
    }
    if rec := a.call(http.MethodPut, path("/annonces/%d", created.ID), map[string]any{"price": 90}, owner.Session); rec.Code != http.StatusOK {
        t.Errorf("update: %d", rec.Code)
    }
    fetched := payload[map[string]any](t, a.call(http.MethodGet, path("/annonces/%d", created.ID), nil, nil), "annonce")
    if fetched["price"] != float64(90) {
        t.Errorf("fetched annonce = %v", fetched)
    }

    validate := path("/annonces/%d/validate", created.ID)
    if rec := a.call(http.MethodPut, validate, nil, other.Session); rec.Code != http.StatusNotFound {
        t.Errorf("validate by other: %d", rec.Code)
    }
    if rec := a.call(http.MethodPut, "/annonces/9999/validate", nil, owner.Session); rec.Code != http.StatusNotFound {
        t.Errorf("validate missing: %d", rec.Code)
    }
    type result struct {
        Annonce struct {
            IsValide bool `json:"is_valide"`
        } `json:"annonce"`
        AlreadyValidated bool `json:"already_validated"`
    }
    first := decode[result](t, a.call(http.MethodPut, validate, nil, owner.Session))
    second := decode[result](t, a.call(http.MethodPut, validate, nil, owner.Session))
    if !first.Annonce.IsValide || first.AlreadyValidated || !second.AlreadyValidated {
        t.Errorf("validate results %+v %+v", first, second)
    }

    mine := payload[[]map[string]any](t, a.call(http.MethodGet, path("/users/%d/annonces", owner.ID), nil, nil), "annonces")
    if len(mine) != 1 {
        t.Errorf("user annonces = %v", mine)
    }

    if rec := a.call(http.MethodDelete, path("/annonces/%d", created.ID), nil, other.Session); rec.Code != http.StatusNotFound {
        t.Errorf("delete by other: %d", rec.Code)
    }
    if rec := a.call(http.MethodDelete, path("/annonces/%d", created.ID), nil, owner.Session); rec.Code != http.StatusOK {
        t.Errorf("delete: %d", rec.Code)
    }
    if rec := a.call(http.MethodGet, path("/annonces/%d", created.ID), nil, nil); rec.Code != http.StatusNotFound {
        t.Errorf("get deleted: %d", rec.Code)
    }
}

func TestStories(t *testing.T) {
    a := newApp(t)
    u := a.register("Conteur")
    rec := a.call(http.MethodPost, "/stories", map[string]string{"title": "Souvenir", "content": "Le bal du 14 juillet 1962."}, u.Session)
    if rec.Code != http.StatusCreated {
        t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
    }
    if story := payload[map[string]any](t, rec, "story"); story["author_name"] != "Conteur" {
        t.Errorf("created story = %v", story)
    }
    if rec := a.call(http.MethodPost, "/stories", map[string]string{"title": "Souvenir", "content": "court"}, u.Session); rec.Code != http.StatusBadRequest {
        t.Errorf("short content: %d", rec.Code)
    }
    feed := payload[[]map[string]any](t, a.call(http.MethodGet, "/stories", nil, nil), "stories")
    if len(feed) != 1 || feed[0]["author_name"] != "Conteur" {
        t.Errorf("feed = %v", feed)
    }
    if rec := a.call(http.MethodGet, "/stories?limit=zero", nil, nil); rec.Code != http.StatusBadRequest {
        t.Errorf("bad limit: %d", rec.Code)
    }
}

func TestMessagesOverREST(t *testing.T) {
    a := newApp(t)
    alice, bob := a.register("Alice"), a.register("Bob")

    if convs := payload[[]any](t, a.call(http.MethodGet, "/conversations", nil, alice.Session), "conversations"); convs == nil || len(convs) != 0 {
        t.Errorf("conversations before any message = %v", convs)
    }
    rec := a.call(http.MethodPost, "/messages", map[string]any{"toUserId": bob.ID, "content": "Bonjour Bob !"}, alice.Session)
    if rec.Code != http.StatusCreated {
        t.Fatalf("send: %d %s", rec.Code, rec.Body.String())
    }
    a.call(http.MethodPost, "/messages", map[string]any{"toUserId": alice.ID, "content": "Bonjour Alice"}, bob.Session)

    if rec := a.call(http.MethodPost, "/messages", map[string]any{"toUserId": bob.ID, "content": "hey"}, alice.Session); rec.Code != http.StatusBadRequest {
        t.Errorf("short message: %d", rec.Code)
    }
    if rec := a.call(http.MethodPost, "/messages", map[string]any{"toUserId": 4242, "content": "Bonjour"}, alice.Session); rec.Code != http.StatusNotFound {
        t.Errorf("unknown recipient: %d", rec.Code)
    }

    thread := payload[[]map[string]any](t, a.call(http.MethodGet, path("/messages/%d", bob.ID), nil, alice.Session), "messages")
    if len(thread) != 2 || thread[0]["content"] != "Bonjour Bob !" {
        t.Errorf("thread = %v", thread)
    }
    convs := payload[[]map[string]any](t, a.call(http.MethodGet, "/conversations", nil, bob.Session), "conversations")
    if len(convs) != 1 || convs[0]["counterpart_name"] != "Alice" || convs[0]["last_message"] != "Bonjour Alice" {
        t.Errorf("conversations = %v", convs)
    }
}

func TestRatings(t *testing.T) {
    a := newApp(t)
    alice, bob := a.register("Alice"), a.register("Bob")

    rec := a.call(http.MethodGet, path("/ratings/me/%d", bob.ID), nil, alice.Session)
    if rec.Code != http.StatusOK {
        t.Fatalf("mine before rating: %d", rec.Code)
    }
    if note := payload[*map[string]any](t, rec, "note"); note != nil {
        t.Errorf("mine before rating = %v", *note)
    }
    summary := payload[map[string]float64](t, a.call(http.MethodGet, path("/users/%d/summary", bob.ID), nil, nil), "summary")
    if summary["average"] != 0 || summary["count"] != 0 {
        t.Errorf("empty summary = %v", summary)
    }

    if rec := a.call(http.MethodPost, "/ratings", map[string]any{"ratedUserId": bob.ID, "stars": 3, "comment": "Correct"}, alice.Session); rec.Code != http.StatusOK {
        t.Fatalf("rate: %d %s", rec.Code, rec.Body.String())
    }
    rated := payload[map[string]any](t,
        a.call(http.MethodPost, "/ratings", map[string]any{"ratedUserId": bob.ID, "stars": 5, "comment": "Parfait"}, alice.Session), "note")
    if rated["stars"] != float64(5) {
        t.Errorf("re-rating = %v", rated)
    }
    mine := payload[*map[string]any](t, a.call(http.MethodGet, path("/ratings/me/%d", bob.ID), nil, alice.Session), "note")
    if mine == nil || (*mine)["comment"] != "Parfait" {
        t.Errorf("mine after rating = %v", mine)
    }

    summary = payload[map[string]float64](t, a.call(http.MethodGet, path("/users/%d/summary", bob.ID), nil, nil), "summary")
    if summary["average"] != 5 || summary["count"] != 1 {
        t.Errorf("summary after re-rating = %v", summary)
    }
    comments := payload[[]map[string]any](t, a.call(http.MethodGet, path("/users/%d/comments", bob.ID), nil, nil), "comments")
    if len(comments) != 1 || comments[0]["comment"] != "Parfait" || comments[0]["author_name"] != "Alice" {
        t.Errorf("comments = %v", comments)
    }

    for name, body := range map[string]map[string]any{
        "self":      {"ratedUserId": alice.ID, "stars": 4},
        "zero star": {"ratedUserId": bob.ID, "stars": 0},
        "six stars": {"ratedUserId": bob.ID, "stars": 6},
    } {
        if rec := a.call(http.MethodPost, "/ratings", body, alice.Session); rec.Code != http.StatusBadRequest {
            t.Errorf("%s: %d", name, rec.Code)
        }
    }
    if rec := a.call(http.MethodPost, "/ratings", map[string]any{"ratedUserId": 777, "stars": 4}, alice.Session); rec.Code != http.StatusNotFound {
        t.Errorf("unknown user: %d", rec.Code)
    }
}

func TestErrorEnvelope(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodGet, "/nowhere", nil, nil)
    if rec.Code != http.StatusNotFound {
        t.Fatalf("status %d", rec.Code)
    }
    if _, ok := decode[map[string]any](t, rec)["error"]; !ok {
        t.Errorf("body = %s", rec.Body.String())
    }
    if rec := a.call(http.MethodGet, "/annonces/abc", nil, nil); rec.Code != http.StatusBadRequest {
        t.Errorf("non-numeric id: %d", rec.Code)
    }

    // A store failure is logged and never echoed.
    a.db.Close()
    rec = a.call(http.MethodGet, "/annonces", nil, nil)
    if rec.Code != http.StatusInternalServerError {
        t.Fatalf("closed db: %d", rec.Code)
    }
    if got := decode[map[string]any](t, rec)["error"]; got != apperr.MsgInternal {
        t.Errorf("error = %v", got)
    }
    if !strings.Contains(a.errLog.String(), "GET /annonces 500") {
        t.Errorf("error log = %q", a.errLog.String())
    }
    if rec := a.call(http.MethodGet, "/readyz", nil, nil); rec.Code != http.StatusServiceUnavailable {
        t.Errorf("readyz with closed db: %d", rec.Code)
    }
}
