package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	result, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	pair, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	h.service.Logout(c.Request().Context(), req.RefreshToken)

	return c.NoContent(http.StatusNoContent)
}

// StartOAuth handles GET /api/v1/auth/oauth/:provider.
func (h *AuthHandler) StartOAuth(c echo.Context) error {
	redirect, err := h.service.StartOAuth(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusFound, redirect)
}

// OAuthCallback handles GET /api/v1/auth/oauth/:provider/callback.
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	if reason := c.QueryParam("error"); reason != "" {
		return Error(c, http.StatusUnauthorized, "OAUTH_DENIED", reason)
	}

	result, err := h.service.CompleteOAuth(c.Request().Context(),
		c.Param("provider"), c.QueryParam("state"), c.QueryParam("code"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
