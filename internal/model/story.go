package model

import "time"

// Story is a short free-text post shown on the public feed.
type Story struct {
    ID         uint64    `json:"id"`
    UserID     uint64    `json:"user_id"`
    AuthorName string    `json:"author_name"`
    Title      string    `json:"title"`
    Content    string    `json:"content"`
    CreatedAt  time.Time `json:"created_at"`
}
