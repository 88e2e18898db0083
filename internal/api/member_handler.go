package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// MemberHandler handles workspace member endpoints.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler creates a MemberHandler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// ListMembers handles GET /api/v1/workspaces/:id/members.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	members, err := h.service.List(c.Request().Context(), auth.GetUserID(c), wsID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, members)
}

// GetCurrentMember handles GET /api/v1/workspaces/:id/members/@me.
func (h *MemberHandler) GetCurrentMember(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	member, err := h.service.Current(c.Request().Context(), auth.GetUserID(c), wsID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, member)
}

// GetMember handles GET /api/v1/members/:id.
func (h *MemberHandler) GetMember(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid member ID")
	}

	member, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, member)
}
