package model

import "time"

// Note is the rating an author gave another user.  There is at most one
// per (AuthorID, RatedID).
type Note struct {
    ID        uint64    `json:"id"`
    AuthorID  uint64    `json:"author_id"`
    RatedID   uint64    `json:"rated_id"`
    Stars     int       `json:"stars"`
    Comment   string    `json:"comment"`
    CreatedAt time.Time `json:"created_at"`
}

// NoteSummary aggregates the notes of a rated user.
type NoteSummary struct {
    Average float64 `json:"average"`
    Count   int     `json:"count"`
}

// NoteComment is a note as listed on a profile.
type NoteComment struct {
    Stars      int       `json:"stars"`
    Comment    string    `json:"comment"`
    AuthorName string    `json:"author_name"`
    CreatedAt  time.Time `json:"created_at"`
}
