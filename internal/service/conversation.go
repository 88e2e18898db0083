package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

// ConversationService manages 1:1 direct message streams between members.
type ConversationService struct {
	conversations database.ConversationRepository
	members       database.MemberRepository
	guard         *MembershipGuard
	snowflake     *snowflake.Generator
	gateway       gateway.Dispatcher
}

func NewConversationService(
	conversations database.ConversationRepository,
	members database.MemberRepository,
	guard *MembershipGuard,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
) *ConversationService {
	return &ConversationService{conversations: conversations, members: members, guard: guard, snowflake: sf, gateway: gw}
}

// CreateOrGet returns the conversation between the caller and another
// member of the same workspace, creating it on first use.
func (s *ConversationService) CreateOrGet(ctx context.Context, userID, workspaceID, otherMemberID int64) (*models.Conversation, error) {
	self, err := s.guard.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	other, err := s.members.GetByID(ctx, otherMemberID)
	if err != nil {
		return nil, internalError("get member", err)
	}
	if other == nil || other.WorkspaceID != workspaceID {
		return nil, NotFound("NOT_FOUND", "member not found")
	}

	existing, err := s.conversations.GetByMembers(ctx, workspaceID, self.ID, other.ID)
	if err != nil {
		return nil, internalError("get conversation", err)
	}
	if existing != nil {
		return existing, nil
	}

	conv := &models.Conversation{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: workspaceID,
		MemberOneID: self.ID,
		MemberTwoID: other.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, internalError("create conversation", err)
		}
		// Lost a race with the other member opening the same conversation.
		existing, err = s.conversations.GetByMembers(ctx, workspaceID, self.ID, other.ID)
		if err != nil || existing == nil {
			return nil, internalError("get conversation", err)
		}
		return existing, nil
	}

	for _, uid := range uniqueIDs(self.UserID, other.UserID) {
		s.gateway.DispatchToUser(uid, gateway.EventConversationCreate, conv)
	}
	return conv, nil
}

// Get returns a conversation the caller takes part in, or nil.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID int64) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, internalError("get conversation", err)
	}
	if conv == nil {
		return nil, nil
	}
	self, err := s.guard.GetMember(ctx, conv.WorkspaceID, userID)
	if err != nil || self == nil || !conv.HasMember(self.ID) {
		return nil, err
	}
	return conv, nil
}

// participantConversation loads a conversation and reports whether member
// takes part in it. The conversation is nil when missing or when it belongs
// to another workspace.
func participantConversation(ctx context.Context, conversations database.ConversationRepository, conversationID int64, member *models.Member) (*models.Conversation, bool, error) {
	conv, err := conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, false, internalError("get conversation", err)
	}
	if conv == nil || conv.WorkspaceID != member.WorkspaceID {
		return nil, false, nil
	}
	return conv, conv.HasMember(member.ID), nil
}

func notParticipant() error {
	return Forbidden("NOT_PARTICIPANT", "you are not part of this conversation")
}

// messageAudience routes message and reaction events. Channel traffic goes
// to the whole workspace; conversation traffic only to its two participants.
type messageAudience struct {
	conversations database.ConversationRepository
	members       database.MemberRepository
	gateway       gateway.Dispatcher
}

func (a messageAudience) dispatch(ctx context.Context, msg *models.Message, event string, data any) {
	if msg.ConversationID == nil {
		a.gateway.DispatchToWorkspace(msg.WorkspaceID, event, data)
		return
	}

	conv, err := a.conversations.GetByID(ctx, *msg.ConversationID)
	if err != nil || conv == nil {
		slog.Warn("service: resolve conversation for dispatch", "conversation_id", *msg.ConversationID, "event", event, "error", err)
		return
	}
	var userIDs []int64
	for _, memberID := range uniqueIDs(conv.MemberOneID, conv.MemberTwoID) {
		m, err := a.members.GetByID(ctx, memberID)
		if err != nil {
			slog.Warn("service: resolve participant for dispatch", "member_id", memberID, "error", err)
			continue
		}
		if m != nil {
			userIDs = append(userIDs, m.UserID)
		}
	}
	for _, uid := range uniqueIDs(userIDs...) {
		a.gateway.DispatchToUser(uid, event, data)
	}
}

func uniqueIDs(ids ...int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
