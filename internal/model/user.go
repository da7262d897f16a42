package model

import "time"

// Roles stored in users.role.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents a row of the `users` table.  PasswordHash never leaves
// the process: it carries a `json:"-"` tag and handlers respond with
// PublicUser or Profile instead.
type User struct {
    ID           uint64    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    Bio          string    `json:"bio"`
    Ville        string    `json:"ville,omitempty"`
    Photo        string    `json:"photo,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is what the authenticated user sees about themselves.
type PublicUser struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    Bio       string    `json:"bio"`
    Ville     string    `json:"ville,omitempty"`
    Photo     string    `json:"photo,omitempty"`
    CreatedAt time.Time `json:"created_at"`
}

// Profile is the projection served by GET /users/:id.
type Profile struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
    Ville string `json:"ville,omitempty"`
    Photo string `json:"photo,omitempty"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
    return PublicUser{
        ID:        u.ID,
        Name:      u.Name,
        Email:     u.Email,
        Role:      u.Role,
        Bio:       u.Bio,
        Ville:     u.Ville,
        Photo:     u.Photo,
        CreatedAt: u.CreatedAt,
    }
}

// Profile returns the public-safe projection of u.
func (u User) Profile() Profile {
    return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Ville: u.Ville, Photo: u.Photo}
}
