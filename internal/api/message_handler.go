package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/service"
)

// MessageHandler handles message feed and mutation endpoints.
type MessageHandler struct {
	feed     *service.FeedService
	messages *service.MessageService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(feed *service.FeedService, messages *service.MessageService) *MessageHandler {
	return &MessageHandler{feed: feed, messages: messages}
}

// GetMessages handles GET /api/v1/workspaces/:id/messages.
// Query: channel_id, conversation_id, parent_message_id, cursor, limit.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}

	req := service.FeedRequest{WorkspaceID: wsID, Cursor: c.QueryParam("cursor")}
	if req.ChannelID, ok = optionalID(c.QueryParam("channel_id")); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	if req.ConversationID, ok = optionalID(c.QueryParam("conversation_id")); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
	}
	if req.ParentMessageID, ok = optionalID(c.QueryParam("parent_message_id")); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid parent message ID")
	}
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > service.MaxPageSize {
			return Error(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be 1-100")
		}
		req.NumItems = parsed
	}

	page, err := h.feed.Get(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, page)
}

// GetMessage handles GET /api/v1/messages/:id.
func (h *MessageHandler) GetMessage(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	msg, err := h.feed.GetByID(c.Request().Context(), auth.GetUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, msg)
}

type sendMessageRequest struct {
	Body            string  `json:"body"`
	Image           *string `json:"image"`
	ChannelID       string  `json:"channel_id"`
	ConversationID  string  `json:"conversation_id"`
	ParentMessageID string  `json:"parent_message_id"`
}

// SendMessage handles POST /api/v1/workspaces/:id/messages.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	wsID, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
	}
	var body sendMessageRequest
	if err := c.Bind(&body); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	req := service.CreateMessageRequest{WorkspaceID: wsID, Body: body.Body, Image: body.Image}
	if req.ChannelID, ok = optionalID(body.ChannelID); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	if req.ConversationID, ok = optionalID(body.ConversationID); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
	}
	if req.ParentMessageID, ok = optionalID(body.ParentMessageID); !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid parent message ID")
	}

	msg, err := h.messages.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, msg)
}

type editMessageRequest struct {
	Body string `json:"body"`
}

// EditMessage handles PATCH /api/v1/messages/:id.
func (h *MessageHandler) EditMessage(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	msg, err := h.messages.Update(c.Request().Context(), auth.GetUserID(c), id, req.Body)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/v1/messages/:id.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	if err := h.messages.Delete(c.Request().Context(), auth.GetUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
