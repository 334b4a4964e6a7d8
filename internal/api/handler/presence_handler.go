package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/realtime"
)

// PresenceReader is the read side of the presence table.
type PresenceReader interface {
	Online() []realtime.Entry
	ShopkeeperOnline() bool
}

type PresenceHandler struct {
	presence PresenceReader
}

func NewPresenceHandler(presence PresenceReader) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// List returns the users currently connected to the realtime channel.
//
// @Summary      Online users
// @Tags         presence
// @Produce      json
// @Success      200  {object}  presenceResponse
// @Router       /presence [get]
func (h *PresenceHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, presenceResponse{
		ShopkeeperOnline: h.presence.ShopkeeperOnline(),
		Online:           h.presence.Online(),
	})
}
