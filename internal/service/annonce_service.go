package service

import (
	"context"

	"github.com/ptitsvieux/backend/internal/model"
	"github.com/ptitsvieux/backend/internal/queue"
	"github.com/ptitsvieux/backend/internal/repository"
)

// AnnonceService owns the one-way validation transition of annonces.
type AnnonceService struct {
	Annonces *repository.AnnonceRepo
	Events   queue.Publisher
}

func NewAnnonceService(a *repository.AnnonceRepo, ev queue.Publisher) *AnnonceService {
	return &AnnonceService{Annonces: a, Events: ev}
}

// ValidationResult is the state of an annonce after a validate call.
type ValidationResult struct {
	Annonce          model.Annonce `json:"annonce"`
	AlreadyValidated bool          `json:"already_validated"`
}

// Validate marks annonceID as validated on behalf of userID.  Only the
// owner may do so; a missing annonce and someone else's annonce both yield
// repository.ErrAnnonceNotFound.  Validating twice is not an error: the
// second call reports AlreadyValidated.  counterpartID, when non-zero, is
// the user the owner was talking to and is recorded on the event.
func (s *AnnonceService) Validate(ctx context.Context, annonceID, userID, counterpartID uint64) (ValidationResult, error) {
	changed, err := s.Annonces.MarkValidated(ctx, annonceID, userID)
	if err != nil {
		return ValidationResult{}, err
	}
	a, err := s.Annonces.GetByID(ctx, annonceID)
	if err != nil {
		return ValidationResult{}, err
	}
	if a.UserID != userID {
		return ValidationResult{}, repository.ErrAnnonceNotFound
	}
	if changed {
		ev := queue.NewEvent(queue.EventAnnonceValidated, userID)
		ev.AnnonceID = a.ID
		ev.TargetID = counterpartID
		Publish(ctx, s.Events, ev)
	}
	return ValidationResult{Annonce: a, AlreadyValidated: !changed}, nil
}
