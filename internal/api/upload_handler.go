package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// UploadHandler hands out presigned upload URLs. Clients PUT the file to
// object storage directly and attach the returned storage ID to a message.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// CreateUpload handles POST /api/v1/workspaces/:id/uploads.
func (h *UploadHandler) CreateUpload(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	ticket, err := h.service.GenerateUploadURL(c.Request().Context(), auth.GetUserID(c), wsID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, ticket)
}
