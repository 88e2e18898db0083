package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
	"github.com/victorivanov/parley/internal/storage"
)

const maxBodyBytes = 64 << 10

// bodyRule accepts any JSON document; the rich-text format is the client's business.
var bodyRule = validation.By(func(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if !json.Valid([]byte(s)) {
		return errors.New("must be a JSON document")
	}
	return nil
})

// CreateMessageRequest posts into a channel, a conversation, or a thread.
type CreateMessageRequest struct {
	WorkspaceID     int64   `json:"workspace_id"`
	Body            string  `json:"body"`
	Image           *string `json:"image"`
	ChannelID       *int64  `json:"channel_id"`
	ConversationID  *int64  `json:"conversation_id"`
	ParentMessageID *int64  `json:"parent_message_id"`
}

func (r *CreateMessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WorkspaceID, validation.Required),
		validation.Field(&r.Body, validation.Required, validation.Length(1, maxBodyBytes), bodyRule),
		validation.Field(&r.Image, validation.By(func(any) error {
			if r.Image != nil && !storage.KeyInWorkspace(*r.Image, r.WorkspaceID) {
				return errors.New("unknown upload")
			}
			return nil
		})),
	)
}

// MessageService handles message mutations. Reads go through FeedService.
type MessageService struct {
	messages      database.MessageRepository
	channels      database.ChannelRepository
	conversations database.ConversationRepository
	guard         *MembershipGuard
	snowflake     *snowflake.Generator
	audience      messageAudience
	storage       FileStorage
}

func NewMessageService(
	messages database.MessageRepository,
	channels database.ChannelRepository,
	conversations database.ConversationRepository,
	members database.MemberRepository,
	guard *MembershipGuard,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	storage FileStorage,
) *MessageService {
	return &MessageService{
		messages:      messages,
		channels:      channels,
		conversations: conversations,
		guard:         guard,
		snowflake:     sf,
		audience:      messageAudience{conversations: conversations, members: members, gateway: gw},
		storage:       storage,
	}
}

// Create posts a message. A thread reply that names neither a channel nor a
// conversation joins its parent's conversation; a reply that does name one
// must name the parent's.
func (s *MessageService) Create(ctx context.Context, userID int64, req CreateMessageRequest) (*models.Message, error) {
	if err := Validation(req.Validate()); err != nil {
		return nil, err
	}
	member, err := s.guard.RequireMember(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}

	conversationID := req.ConversationID
	if req.ParentMessageID != nil {
		parent, err := s.messages.GetByID(ctx, *req.ParentMessageID)
		if err != nil {
			return nil, internalError("get parent message", err)
		}
		if parent == nil || parent.WorkspaceID != req.WorkspaceID {
			return nil, NotFound("NOT_FOUND", "parent message not found")
		}
		if req.ChannelID == nil && req.ConversationID == nil {
			conversationID = parent.ConversationID
		}
		if (req.ChannelID != nil && !sameID(req.ChannelID, parent.ChannelID)) ||
			(req.ConversationID != nil && !sameID(req.ConversationID, parent.ConversationID)) {
			return nil, BadRequest("PARENT_MISMATCH", "a reply must be posted where its parent message is")
		}
	}

	if req.ChannelID != nil {
		ch, err := s.channels.GetByID(ctx, *req.ChannelID)
		if err != nil {
			return nil, internalError("get channel", err)
		}
		if ch == nil || ch.WorkspaceID != req.WorkspaceID {
			return nil, NotFound("NOT_FOUND", "channel not found")
		}
	}
	if conversationID != nil {
		conv, ok, err := participantConversation(ctx, s.conversations, *conversationID, member)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, NotFound("NOT_FOUND", "conversation not found")
		}
		if !ok {
			return nil, notParticipant()
		}
	}
	if req.ChannelID == nil && conversationID == nil {
		return nil, BadRequest("MISSING_TARGET", "channel_id, conversation_id or parent_message_id is required")
	}

	msg := &models.Message{
		ID:              s.snowflake.Generate().Int64(),
		WorkspaceID:     req.WorkspaceID,
		MemberID:        member.ID,
		ChannelID:       req.ChannelID,
		ConversationID:  conversationID,
		ParentMessageID: req.ParentMessageID,
		Body:            req.Body,
		Image:           req.Image,
		CreatedAt:       time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, internalError("create message", err)
	}
	s.audience.dispatch(ctx, msg, gateway.EventMessageCreate, msg)
	return msg, nil
}

// Update replaces the body of the caller's own message.
func (s *MessageService) Update(ctx context.Context, userID, messageID int64, body string) (*models.Message, error) {
	err := validation.Validate(body, validation.Required, validation.Length(1, maxBodyBytes), bodyRule)
	if err != nil {
		return nil, Validation(validation.Errors{"body": err})
	}
	msg, err := s.authoredMessage(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg.Body = body
	msg.UpdatedAt = &now
	if err := s.messages.UpdateBody(ctx, msg); err != nil {
		return nil, internalError("update message", err)
	}
	s.audience.dispatch(ctx, msg, gateway.EventMessageUpdate, msg)
	return msg, nil
}

// Delete removes the caller's own message and its attached image. Replies
// and reactions stay.
func (s *MessageService) Delete(ctx context.Context, userID, messageID int64) error {
	msg, err := s.authoredMessage(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		return internalError("delete message", err)
	}
	if msg.Image != nil {
		if err := s.storage.Delete(ctx, *msg.Image); err != nil {
			slog.Warn("service: delete message image", "message_id", msg.ID, "key", *msg.Image, "error", err)
		}
	}
	s.audience.dispatch(ctx, msg, gateway.EventMessageDelete, gateway.MessageDeleteData{
		ID:              snowflake.ID(msg.ID),
		WorkspaceID:     snowflake.ID(msg.WorkspaceID),
		ChannelID:       snowflake.Ptr(msg.ChannelID),
		ConversationID:  snowflake.Ptr(msg.ConversationID),
		ParentMessageID: snowflake.Ptr(msg.ParentMessageID),
	})
	return nil
}

func (s *MessageService) authoredMessage(ctx context.Context, userID, messageID int64) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, internalError("get message", err)
	}
	if msg == nil {
		return nil, NotFound("NOT_FOUND", "message not found")
	}
	member, err := s.guard.RequireMember(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if msg.MemberID != member.ID {
		return nil, Forbidden("NOT_AUTHOR", "only the author can change this message")
	}
	return msg, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
