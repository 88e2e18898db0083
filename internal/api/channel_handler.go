package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// ChannelHandler handles channel endpoints.
type ChannelHandler struct {
	service *service.ChannelService
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: svc}
}

type channelNameRequest struct {
	Name string `json:"name"`
}

// CreateChannel handles POST /api/v1/workspaces/:id/channels.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}
	var req channelNameRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ch, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), wsID, req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, ch)
}

// ListChannels handles GET /api/v1/workspaces/:id/channels.
func (h *ChannelHandler) ListChannels(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	channels, err := h.service.List(c.Request().Context(), auth.GetUserID(c), wsID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, channels)
}

// GetChannel handles GET /api/v1/channels/:id.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	ch, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ch)
}

// UpdateChannel handles PATCH /api/v1/channels/:id.
func (h *ChannelHandler) UpdateChannel(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	var req channelNameRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ch, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), id, req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, ch)
}

// DeleteChannel handles DELETE /api/v1/channels/:id.
func (h *ChannelHandler) DeleteChannel(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
