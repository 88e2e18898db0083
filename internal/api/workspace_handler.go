package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// WorkspaceHandler handles workspace endpoints.
type WorkspaceHandler struct {
	service *service.WorkspaceService
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(svc *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: svc}
}

type workspaceNameRequest struct {
	Name string `json:"name"`
}

// CreateWorkspace handles POST /api/v1/workspaces.
func (h *WorkspaceHandler) CreateWorkspace(c echo.Context) error {
	var req workspaceNameRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ws, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, ws)
}

// ListMyWorkspaces handles GET /api/v1/workspaces.
func (h *WorkspaceHandler) ListMyWorkspaces(c echo.Context) error {
	workspaces, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, workspaces)
}

// GetWorkspace handles GET /api/v1/workspaces/:id.
func (h *WorkspaceHandler) GetWorkspace(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	ws, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ws)
}

// GetWorkspaceInfo handles GET /api/v1/workspaces/:id/info.
func (h *WorkspaceHandler) GetWorkspaceInfo(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	info, err := h.service.GetInfo(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, info)
}

// UpdateWorkspace handles PATCH /api/v1/workspaces/:id.
func (h *WorkspaceHandler) UpdateWorkspace(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}
	var req workspaceNameRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ws, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), id, req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ws)
}

// DeleteWorkspace handles DELETE /api/v1/workspaces/:id.
func (h *WorkspaceHandler) DeleteWorkspace(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// NewJoinCode handles POST /api/v1/workspaces/:id/join-code.
func (h *WorkspaceHandler) NewJoinCode(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	ws, err := h.service.NewJoinCode(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ws)
}

type joinRequest struct {
	JoinCode string `json:"join_code"`
}

// JoinWorkspace handles POST /api/v1/workspaces/:id/join.
func (h *WorkspaceHandler) JoinWorkspace(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ws, err := h.service.Join(c.Request().Context(), auth.GetUserID(c), id, req.JoinCode)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ws)
}
