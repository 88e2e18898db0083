package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// GetMe handles GET /api/v1/users/@me.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.service.Current(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/@me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req service.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, user)
}
