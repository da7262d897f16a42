package utils

import (
    "errors"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

const secret = "unit-test-secret"

func TestSessionRoundTrip(t *testing.T) {
    tok, err := NewSessionToken(secret, 42, "admin", "a@example.com", 15*time.Minute)
    if err != nil {
        t.Fatal(err)
    }
    s, err := VerifySession(secret, tok.Token)
    if err != nil {
        t.Fatal(err)
    }
    if s.UserID != 42 || s.Role != "admin" || s.Email != "a@example.com" {
        t.Errorf("session = %+v", s)
    }

    r := httptest.NewRequest("GET", "/", nil)
    r.AddCookie(SessionCookie(tok, false))
    if s, err := SessionFromRequest(secret, r); err != nil || s.UserID != 42 {
        t.Errorf("from request = %+v, %v", s, err)
    }
}

func TestVerifySessionRejects(t *testing.T) {
    expired, _ := NewSessionToken(secret, 1, "user", "", -time.Minute)
    otherKey, _ := NewSessionToken("another-secret", 1, "user", "", time.Minute)
    zeroUser, _ := NewSessionToken(secret, 0, "user", "", time.Minute)

    none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
        RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
        RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
    }).SignedString([]byte(secret))

    cases := map[string]string{
        "empty":     "",
        "garbage":   "not.a.token",
        "expired":   expired.Token,
        "other key": otherKey.Token,
        "zero user": zeroUser.Token,
        "alg none":  none,
        "no expiry": noExp,
    }
    for name, raw := range cases {
        if _, err := VerifySession(secret, raw); !errors.Is(err, ErrInvalidSession) {
            t.Errorf("%s: err = %v", name, err)
        }
    }
    if _, err := SessionFromRequest(secret, httptest.NewRequest("GET", "/", nil)); !errors.Is(err, ErrInvalidSession) {
        t.Errorf("missing cookie: %v", err)
    }
}

func TestClearedSessionCookie(t *testing.T) {
    c := ClearedSessionCookie(true)
    if c.Name != SessionCookieName || c.MaxAge != -1 || !c.Secure || !c.HttpOnly {
        t.Errorf("cookie = %+v", c)
    }
}
