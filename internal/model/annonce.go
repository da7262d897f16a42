package model

import "time"

// Annonce is a listing posted by a user.  IsValide flips from false to true
// once, by the owner, and never back.
type Annonce struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"user_id"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    Price       float64   `json:"price"`
    Location    string    `json:"location,omitempty"`
    Photo       string    `json:"photo,omitempty"`
    IsValide    bool      `json:"is_valide"`
    PublishedAt time.Time `json:"published_at"`
}

// AnnoncePatch carries the optional fields of an update; nil means keep.
type AnnoncePatch struct {
    Title       *string
    Description *string
    Price       *float64
    Location    *string
    Photo       *string
}
