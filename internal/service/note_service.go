package service

import (
	"context"
	"strings"

	"github.com/ptitsvieux/backend/internal/model"
	"github.com/ptitsvieux/backend/internal/queue"
	"github.com/ptitsvieux/backend/internal/repository"
	"github.com/ptitsvieux/backend/internal/validate"
)

// NoteService implements one-rating-per-pair semantics on top of NoteRepo.
type NoteService struct {
	Notes  *repository.NoteRepo
	Users  *repository.UserRepo
	Events queue.Publisher
}

func NewNoteService(n *repository.NoteRepo, u *repository.UserRepo, ev queue.Publisher) *NoteService {
	return &NoteService{Notes: n, Users: u, Events: ev}
}

// Rate stores authorID's rating of ratedID, replacing any previous one.
func (s *NoteService) Rate(ctx context.Context, authorID, ratedID uint64, stars int, comment string) (model.Note, error) {
	comment = strings.TrimSpace(comment)
	var verr validate.Error
	verr.ID("rated_id", ratedID)
	if ratedID != 0 && ratedID == authorID {
		verr.Add("rated_id", "you cannot rate yourself")
	}
	verr.Stars("stars", stars)
	verr.Length("comment", comment, 0, validate.CommentMax)
	if err := verr.Err(); err != nil {
		return model.Note{}, err
	}
	if _, err := s.Users.GetByID(ctx, ratedID); err != nil {
		return model.Note{}, err
	}

	n, err := s.Notes.Upsert(ctx, model.Note{AuthorID: authorID, RatedID: ratedID, Stars: stars, Comment: comment})
	if err != nil {
		return model.Note{}, err
	}
	ev := queue.NewEvent(queue.EventNoteRated, authorID)
	ev.TargetID = ratedID
	ev.Stars = stars
	Publish(ctx, s.Events, ev)
	return n, nil
}

// Summary returns the average and count of ratedID's notes.
func (s *NoteService) Summary(ctx context.Context, ratedID uint64) (model.NoteSummary, error) {
	return s.Notes.Summary(ctx, ratedID)
}

// Comments lists ratedID's notes newest first.
func (s *NoteService) Comments(ctx context.Context, ratedID uint64) ([]model.NoteComment, error) {
	return s.Notes.Comments(ctx, ratedID)
}

// Mine returns the note authorID gave ratedID, or nil.
func (s *NoteService) Mine(ctx context.Context, authorID, ratedID uint64) (*model.Note, error) {
	return s.Notes.Get(ctx, authorID, ratedID)
}
