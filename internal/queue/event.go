// Package queue defines the activity events published over RabbitMQ and the
// consumer that records them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// ActivityQueueName is the durable queue every service publishes to.
const ActivityQueueName = "ptitsvieux.activity"

// Event types.
const (
    EventUserRegistered   = "user.registered"
    EventMessageSent      = "message.sent"
    EventAnnonceValidated = "annonce.validated"
    EventNoteRated        = "note.rated"
)

// ActivityEvent is published after a state change commits.  It carries
// identifiers only; consumers that need more read the store.
type ActivityEvent struct {
    ID         string `json:"id"`
    Type       string `json:"type"`
    ActorID    uint64 `json:"actor_id"`
    TargetID   uint64 `json:"target_id,omitempty"`
    AnnonceID  uint64 `json:"annonce_id,omitempty"`
    MessageID  uint64 `json:"message_id,omitempty"`
    Stars      int    `json:"stars,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(typ string, actorID uint64) ActivityEvent {
    return ActivityEvent{
        ID:         uuid.NewString(),
        Type:       typ,
        ActorID:    actorID,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
