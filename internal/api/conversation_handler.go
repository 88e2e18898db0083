package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// ConversationHandler handles direct message conversation endpoints.
type ConversationHandler struct {
	service *service.ConversationService
}

// NewConversationHandler creates a ConversationHandler.
func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

type openConversationRequest struct {
	MemberID string `json:"member_id"`
}

// OpenConversation handles POST /api/v1/workspaces/:id/conversations.
func (h *ConversationHandler) OpenConversation(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}
	var req openConversationRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	memberID, err := strconv.ParseInt(req.MemberID, 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid member ID")
	}

	conv, err := h.service.CreateOrGet(c.Request().Context(), auth.GetUserID(c), wsID, memberID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, conv)
}

// GetConversation handles GET /api/v1/conversations/:id.
func (h *ConversationHandler) GetConversation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
	}

	conv, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, conv)
}
