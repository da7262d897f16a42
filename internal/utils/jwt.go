package utils // package utils provides helpers for session tokens, cookies and hashing

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidSession is returned for any token that is absent, malformed,
// signed with another key or algorithm, or expired.  Callers never need to
// tell these cases apart.
var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the identity carried by a session token.
type SessionClaims struct {
    Role  string `json:"role"`
    Email string `json:"email"`
    jwt.RegisteredClaims
}

// Session is a verified identity.
type Session struct {
    UserID uint64
    Role   string
    Email  string
}

// SessionToken is a signed token along with its expiry.
type SessionToken struct {
    Token string
    Exp   time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a user.  The subject
// claim carries the decimal user id.
func NewSessionToken(secret string, userID uint64, role, email string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := SessionClaims{
        Role:  role,
        Email: email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifySession checks the signature and expiry of raw and returns the
// identity it carries.  It never touches the store.
func VerifySession(secret, raw string) (Session, error) {
    if raw == "" {
        return Session{}, ErrInvalidSession
    }
    var claims SessionClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC, including "none".
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSession
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return Session{}, ErrInvalidSession
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 {
        return Session{}, ErrInvalidSession
    }
    return Session{UserID: uid, Role: claims.Role, Email: claims.Email}, nil
}
