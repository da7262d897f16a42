package utils

import (
    "net/http"
    "time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// SessionCookie wraps a token in the HttpOnly, SameSite=Strict cookie the
// SPA and the realtime handshake present on every call.
func SessionCookie(tok SessionToken, secure bool) *http.Cookie {
    return &http.Cookie{
        Name:     SessionCookieName,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        MaxAge:   int(time.Until(tok.Exp).Seconds()),
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    }
}

// ClearedSessionCookie expires the session cookie on the client.
func ClearedSessionCookie(secure bool) *http.Cookie {
    return &http.Cookie{
        Name:     SessionCookieName,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    }
}

// SessionFromRequest verifies the session cookie of r.
func SessionFromRequest(secret string, r *http.Request) (Session, error) {
    c, err := r.Cookie(SessionCookieName)
    if err != nil {
        return Session{}, ErrInvalidSession
    }
    return VerifySession(secret, c.Value)
}
