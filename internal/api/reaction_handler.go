package api

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// ReactionHandler handles message reaction endpoints.
type ReactionHandler struct {
	service *service.ReactionService
}

// NewReactionHandler creates a ReactionHandler.
func NewReactionHandler(svc *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: svc}
}

type toggleReactionResponse struct {
	Emoji   string `json:"emoji"`
	Reacted bool   `json:"reacted"`
}

// ToggleReaction handles PUT /api/v1/messages/:id/reactions/:emoji.
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	msgID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	emoji, err := url.PathUnescape(c.Param("emoji"))
	if err != nil || emoji == "" {
		return Error(c, http.StatusBadRequest, "INVALID_EMOJI", "invalid emoji")
	}

	added, err := h.service.Toggle(c.Request().Context(), auth.GetUserID(c), msgID, emoji)
	if err != nil {
		return mapServiceError(c, err)
	}

	return successJSON(c, http.StatusOK, toggleReactionResponse{Emoji: emoji, Reacted: added})
}
