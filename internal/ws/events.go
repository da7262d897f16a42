package ws

import (
	"encoding/json"

	"github.com/ptitsvieux/backend/internal/model"
)

// Event names.  Inbound: send_message, validate_annonce.  Outbound:
// receive_message, annonce_validated, error.
const (
	EventSendMessage      = "send_message"
	EventReceiveMessage   = "receive_message"
	EventValidateAnnonce  = "validate_annonce"
	EventAnnonceValidated = "annonce_validated"
	EventError            = "error"
)

// Frame is the envelope of every websocket message in both directions.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type sendMessageData struct {
	ToUserID  uint64  `json:"toUserId"`
	Content   string  `json:"content"`
	AnnonceID *uint64 `json:"annonceId,omitempty"`
}

type validateAnnonceData struct {
	AnnonceID     uint64 `json:"annonceId"`
	CounterpartID uint64 `json:"counterpartId"`
}

type receiveMessageData struct {
	Message model.Message `json:"message"`
}

type annonceValidatedData struct {
	Annonce          model.Annonce `json:"annonce"`
	AlreadyValidated bool          `json:"alreadyValidated"`
}

type errorData struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
	Event   string            `json:"event,omitempty"`
}

// encode builds an outbound frame.  The data types above always marshal.
func encode(typ string, data any) []byte {
	raw, _ := json.Marshal(data)
	out, _ := json.Marshal(Frame{Type: typ, Data: raw})
	return out
}
