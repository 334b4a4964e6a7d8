package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/api/metrics"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// MessageHandler serves message history, unread counts and summaries.
type MessageHandler struct {
	messages ports.MessageService
}

func NewMessageHandler(messages ports.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Between returns the conversation of two users in chronological order.
//
// @Summary      Conversation history
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        a    path      string  true  "First user id"
// @Param        b    path      string  true  "Second user id"
// @Success      200  {array}   domain.Message
// @Failure      400  {object}  errorResponse
// @Router       /messages/between/{a}/{b} [get]
func (h *MessageHandler) Between(c echo.Context) error {
	return h.conversation(c, c.Param("a"), c.Param("b"))
}

// Conversation is the query-string form of Between.
//
// @Summary      Conversation history (query form)
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        user1  query     string  true  "First user id"
// @Param        user2  query     string  true  "Second user id"
// @Success      200    {array}   domain.Message
// @Failure      400    {object}  errorResponse
// @Router       /messages/conversation [get]
func (h *MessageHandler) Conversation(c echo.Context) error {
	a, b := c.QueryParam("user1"), c.QueryParam("user2")
	if a == "" || b == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Both user IDs are required")
	}
	return h.conversation(c, a, b)
}

func (h *MessageHandler) conversation(c echo.Context, a, b string) error {
	if err := ensureSelf(c, a, b); err != nil {
		return err
	}
	msgs, err := h.messages.Conversation(c.Request().Context(), a, b)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// Unread returns senderId -> unread count for a recipient.
//
// @Summary      Unread counts by sender
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Recipient id"
// @Success      200     {object}  map[string]int64
// @Router       /messages/unread/{userId} [get]
func (h *MessageHandler) Unread(c echo.Context) error {
	userID := c.Param("userId")
	if err := ensureSelf(c, userID); err != nil {
		return err
	}
	counts, err := h.messages.UnreadCounts(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

// MarkRead flags every unread message from sender to recipient as read.
// Served on both PUT /messages/read and POST /messages/markRead.
//
// @Summary      Mark a conversation read
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markReadRequest  true  "Sender and recipient"
// @Success      200   {object}  markReadResponse
// @Failure      400   {object}  errorResponse
// @Router       /messages/read [put]
// @Router       /messages/markRead [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Only the reader may clear its own unread counter.
	if err := ensureSelf(c, req.Recipient); err != nil {
		return err
	}

	n, err := h.messages.MarkRead(c.Request().Context(), req.Sender, req.Recipient)
	if err != nil {
		return err
	}
	metrics.MessagesMarkedReadTotal.Add(float64(n))
	return c.JSON(http.StatusOK, markReadResponse{Message: "Messages marked as read", Modified: n})
}

// Summaries returns one row per counterpart, most recent conversation first.
//
// @Summary      Conversation summaries
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {array}   domain.ConversationSummary
// @Router       /messages/shopkeeper/{id} [get]
// @Router       /messages/summaries/{id} [get]
func (h *MessageHandler) Summaries(c echo.Context) error {
	userID := c.Param("id")
	if err := ensureSelf(c, userID); err != nil {
		return err
	}
	rows, err := h.messages.Summaries(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
