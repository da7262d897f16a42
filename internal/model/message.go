package model

import "time"

// Message is a direct message between two users.  It is never edited.
type Message struct {
    ID          uint64    `json:"id"`
    SenderID    uint64    `json:"sender_id"`
    RecipientID uint64    `json:"recipient_id"`
    AnnonceID   *uint64   `json:"annonce_id,omitempty"`
    Content     string    `json:"content"`
    CreatedAt   time.Time `json:"created_at"`
}

// Conversation is one counterpart of a user's message history, derived on
// every request from the messages table.
type Conversation struct {
    CounterpartID   uint64    `json:"counterpart_id"`
    CounterpartName string    `json:"counterpart_name"`
    LastMessage     string    `json:"last_message"`
    LastAt          time.Time `json:"last_at"`
}
