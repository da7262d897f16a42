package service

import (
	"context"
	"strings"

	"github.com/ptitsvieux/backend/internal/model"
	"github.com/ptitsvieux/backend/internal/queue"
	"github.com/ptitsvieux/backend/internal/repository"
	"github.com/ptitsvieux/backend/internal/validate"
)

// MessageService records and reads direct messages.
type MessageService struct {
	Messages *repository.MessageRepo
	Users    *repository.UserRepo
	Annonces *repository.AnnonceRepo
	Events   queue.Publisher
}

func NewMessageService(m *repository.MessageRepo, u *repository.UserRepo, a *repository.AnnonceRepo, ev queue.Publisher) *MessageService {
	return &MessageService{Messages: m, Users: u, Annonces: a, Events: ev}
}

// SendInput is what a sender supplies; the sender id itself always comes
// from the verified session.
type SendInput struct {
	ToUserID  uint64
	Content   string
	AnnonceID *uint64
}

// Record validates in and stores it as a message from senderID.  Nothing is
// written when validation fails.
func (s *MessageService) Record(ctx context.Context, senderID uint64, in SendInput) (model.Message, error) {
	content := strings.TrimSpace(in.Content)
	var verr validate.Error
	verr.Length("content", content, validate.MessageMin, validate.MessageMax)
	verr.ID("toUserId", in.ToUserID)
	if in.AnnonceID != nil {
		verr.ID("annonceId", *in.AnnonceID)
	}
	if err := verr.Err(); err != nil {
		return model.Message{}, err
	}

	if _, err := s.Users.GetByID(ctx, in.ToUserID); err != nil {
		return model.Message{}, err
	}
	if in.AnnonceID != nil {
		if _, err := s.Annonces.GetByID(ctx, *in.AnnonceID); err != nil {
			return model.Message{}, err
		}
	}

	m := model.Message{
		SenderID:    senderID,
		RecipientID: in.ToUserID,
		AnnonceID:   in.AnnonceID,
		Content:     content,
	}
	if err := s.Messages.Create(ctx, &m); err != nil {
		return model.Message{}, err
	}

	ev := queue.NewEvent(queue.EventMessageSent, senderID)
	ev.TargetID = m.RecipientID
	ev.MessageID = m.ID
	if m.AnnonceID != nil {
		ev.AnnonceID = *m.AnnonceID
	}
	Publish(ctx, s.Events, ev)
	return m, nil
}

// Thread returns the messages between userID and counterpartID, oldest
// first.  An empty history is not an error.
func (s *MessageService) Thread(ctx context.Context, userID, counterpartID uint64) ([]model.Message, error) {
	if counterpartID == 0 {
		return nil, validate.Field("counterpartId", "must be a positive integer")
	}
	return s.Messages.Thread(ctx, userID, counterpartID)
}

// Conversations lists userID's counterparts, most recent first.
func (s *MessageService) Conversations(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	return s.Messages.Conversations(ctx, userID)
}

// Exchanged reports whether a and b share a thread.
func (s *MessageService) Exchanged(ctx context.Context, a, b uint64) (bool, error) {
	if a == 0 || b == 0 {
		return false, nil
	}
	return s.Messages.Exchanged(ctx, a, b)
}
