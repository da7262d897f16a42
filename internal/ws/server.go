package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ptitsvieux/backend/internal/apperr"
	"github.com/ptitsvieux/backend/internal/service"
	"github.com/ptitsvieux/backend/internal/utils"
)

const eventTimeout = 5 * time.Second

// Server performs the authenticated handshake and dispatches inbound
// events to the services.
type Server struct {
	Hub      *Hub
	Messages *service.MessageService
	Annonces *service.AnnonceService
	Secret   string
	Errors   *apperr.Log
	upgrader websocket.Upgrader

	// Cache, when set, is told about annonces changed over the channel.
	Cache interface {
		Bump(ctx context.Context, resources ...string)
	}
}

// NewServer accepts handshakes from the given origins.  "*" accepts any
// origin; a request without an Origin header is always accepted.
func NewServer(hub *Hub, msgs *service.MessageService, annonces *service.AnnonceService, secret string, origins []string, errs *apperr.Log) *Server {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &Server{
		Hub:      hub,
		Messages: msgs,
		Annonces: annonces,
		Secret:   secret,
		Errors:   errs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Handle is GET /ws.  The session cookie is checked before the upgrade; a
// bad or missing one gets a plain 401 and no websocket.
func (s *Server) Handle(c echo.Context) error {
	sess, err := utils.SessionFromRequest(s.Secret, c.Request())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.MsgUnauthorized})
	}
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already answered the client.
		c.Logger().Warnf("ws upgrade: %v", err)
		return nil
	}

	client := newClient(s.Hub, conn, sess.UserID)
	if !s.Hub.join(client) {
		conn.Close()
		return nil
	}
	log.Printf("ws: user %d connected", sess.UserID)
	go client.writePump()
	client.readPump(c.Request().Context(), s.dispatch)
	log.Printf("ws: user %d disconnected", sess.UserID)
	return nil
}

func (s *Server) dispatch(ctx context.Context, c *Client, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil || f.Type == "" {
		s.Hub.sendTo(c, encode(EventError, errorData{Error: "malformed frame"}))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	switch f.Type {
	case EventSendMessage:
		s.sendMessage(ctx, c, f.Data)
	case EventValidateAnnonce:
		s.validateAnnonce(ctx, c, f.Data)
	default:
		s.Hub.sendTo(c, encode(EventError, errorData{Error: "unknown event", Event: f.Type}))
	}
}

func (s *Server) sendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var in sendMessageData
	if err := json.Unmarshal(data, &in); err != nil {
		s.fail(c, EventSendMessage, apperr.Problem{Message: "malformed frame"})
		return
	}
	m, err := s.Messages.Record(ctx, c.userID, service.SendInput{
		ToUserID:  in.ToUserID,
		Content:   in.Content,
		AnnonceID: in.AnnonceID,
	})
	if err != nil {
		s.failErr(c, EventSendMessage, err)
		return
	}
	s.Hub.DeliverMessage(m)
}

func (s *Server) validateAnnonce(ctx context.Context, c *Client, data json.RawMessage) {
	var in validateAnnonceData
	if err := json.Unmarshal(data, &in); err != nil {
		s.fail(c, EventValidateAnnonce, apperr.Problem{Message: "malformed frame"})
		return
	}
	res, err := s.Annonces.Validate(ctx, in.AnnonceID, c.userID, in.CounterpartID)
	if err != nil {
		s.failErr(c, EventValidateAnnonce, err)
		return
	}
	if !res.AlreadyValidated && s.Cache != nil {
		s.Cache.Bump(ctx, "annonces")
	}
	out := annonceValidatedData{Annonce: res.Annonce, AlreadyValidated: res.AlreadyValidated}
	s.Hub.SendToUsers(encode(EventAnnonceValidated, out), s.validationAudience(ctx, c.userID, in.CounterpartID)...)
}

// validationAudience is the caller, plus the counterpart when the two share
// a thread.  The event never reaches a user the owner has not talked to.
func (s *Server) validationAudience(ctx context.Context, owner, counterpart uint64) []uint64 {
	if counterpart == 0 || counterpart == owner {
		return []uint64{owner}
	}
	ok, err := s.Messages.Exchanged(ctx, owner, counterpart)
	if err != nil {
		s.Errors.Record("-", "WS", EventValidateAnnonce, http.StatusInternalServerError, err)
		return []uint64{owner}
	}
	if !ok {
		return []uint64{owner}
	}
	return []uint64{owner, counterpart}
}

func (s *Server) failErr(c *Client, event string, err error) {
	p := apperr.Classify(err)
	if p.Status >= http.StatusInternalServerError {
		s.Errors.Record("-", "WS", event, p.Status, err)
	}
	s.fail(c, event, p)
}

// fail reports a problem to the originating channel only.
func (s *Server) fail(c *Client, event string, p apperr.Problem) {
	s.Hub.sendTo(c, encode(EventError, errorData{Error: p.Message, Details: p.Details, Event: event}))
}
