package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/middleware"
    "github.com/ptitsvieux/backend/internal/service"
    "github.com/ptitsvieux/backend/internal/ws"
)

// MessageHandler is the REST side of the conversation store.  Messages sent
// here are also pushed to the open channels of both parties.
type MessageHandler struct {
    Messages *service.MessageService
    Hub      *ws.Hub
}

func NewMessageHandler(m *service.MessageService, hub *ws.Hub) *MessageHandler {
    return &MessageHandler{Messages: m, Hub: hub}
}

type sendReq struct {
    ToUserID  uint64  `json:"toUserId"`
    Content   string  `json:"content"`
    AnnonceID *uint64 `json:"annonceId"`
}

// Send is POST /messages.
func (h *MessageHandler) Send(c echo.Context) error {
    var req sendReq
    if err := c.Bind(&req); err != nil {
        return invalidBody()
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    m, err := h.Messages.Record(ctx, middleware.UserID(c), service.SendInput{
        ToUserID:  req.ToUserID,
        Content:   req.Content,
        AnnonceID: req.AnnonceID,
    })
    if err != nil {
        return fail(err)
    }
    if h.Hub != nil {
        h.Hub.DeliverMessage(m)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": m})
}

// Thread is GET /messages/:userId: the exchange with one counterpart,
// oldest first.
func (h *MessageHandler) Thread(c echo.Context) error {
    other, err := pathID(c, "userId")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Messages.Thread(ctx, middleware.UserID(c), other)
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// Conversations is GET /conversations.
func (h *MessageHandler) Conversations(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    out, err := h.Messages.Conversations(ctx, middleware.UserID(c))
    if err != nil {
        return fail(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"conversations": out})
}
