// Package apperr maps the errors of the store and validation layers onto
// the status codes and messages clients see.  Both the REST handlers and
// the realtime channel go through Classify so a failure reads the same on
// either transport.
package apperr

import (
	"errors"
	"net/http"

	"github.com/ptitsvieux/backend/internal/repository"
	"github.com/ptitsvieux/backend/internal/utils"
	"github.com/ptitsvieux/backend/internal/validate"
)

// Messages shared by every service.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgUnauthorized       = "unauthorized"
	MsgForbidden          = "forbidden"
	MsgValidation         = "validation failed"
	MsgInternal           = "internal error"
)

// Problem is the client-facing form of an error.
type Problem struct {
	Status  int
	Message string
	Details map[string]string
}

// Body returns the JSON envelope for p.
func (p Problem) Body() map[string]any {
	body := map[string]any{"error": p.Message}
	if len(p.Details) > 0 {
		body["details"] = p.Details
	}
	return body
}

// Classify turns err into a Problem.  Anything it does not recognize is an
// internal error whose text never reaches the client.
func Classify(err error) Problem {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		return Problem{Status: http.StatusBadRequest, Message: MsgValidation, Details: ve.Fields}
	case errors.Is(err, utils.ErrInvalidSession):
		return Problem{Status: http.StatusUnauthorized, Message: MsgUnauthorized}
	case errors.Is(err, repository.ErrUserNotFound):
		return Problem{Status: http.StatusNotFound, Message: "user not found"}
	case errors.Is(err, repository.ErrAnnonceNotFound):
		return Problem{Status: http.StatusNotFound, Message: "annonce not found"}
	case errors.Is(err, repository.ErrNotFound):
		return Problem{Status: http.StatusNotFound, Message: "not found"}
	}
	return Problem{Status: http.StatusInternalServerError, Message: MsgInternal}
}
