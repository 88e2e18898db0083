package service

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

type ReactionService struct {
	messages      database.MessageRepository
	reactions     database.ReactionRepository
	conversations database.ConversationRepository
	guard         *MembershipGuard
	snowflake     *snowflake.Generator
	audience      messageAudience
}

func NewReactionService(
	messages database.MessageRepository,
	reactions database.ReactionRepository,
	conversations database.ConversationRepository,
	members database.MemberRepository,
	guard *MembershipGuard,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
) *ReactionService {
	return &ReactionService{
		messages:      messages,
		reactions:     reactions,
		conversations: conversations,
		guard:         guard,
		snowflake:     sf,
		audience:      messageAudience{conversations: conversations, members: members, gateway: gw},
	}
}

// Toggle adds the caller's emoji reaction to a message, or removes it if it
// is already there. It reports whether the reaction now exists. Messages in
// a conversation only take reactions from its participants.
func (s *ReactionService) Toggle(ctx context.Context, userID, messageID int64, emoji string) (bool, error) {
	emoji = strings.TrimSpace(emoji)
	if err := validation.Validate(emoji, validation.Required, validation.RuneLength(1, 32)); err != nil {
		return false, Validation(validation.Errors{"emoji": err})
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return false, internalError("get message", err)
	}
	if msg == nil {
		return false, NotFound("NOT_FOUND", "message not found")
	}
	member, err := s.guard.RequireMember(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return false, err
	}
	if msg.ConversationID != nil {
		_, ok, err := participantConversation(ctx, s.conversations, *msg.ConversationID, member)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, notParticipant()
		}
	}

	added, err := s.reactions.Toggle(ctx, &models.Reaction{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: msg.WorkspaceID,
		MessageID:   msg.ID,
		MemberID:    member.ID,
		Emoji:       emoji,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return false, internalError("toggle reaction", err)
	}

	event := gateway.EventReactionRemove
	if added {
		event = gateway.EventReactionAdd
	}
	s.audience.dispatch(ctx, msg, event, gateway.ReactionData{
		MessageID:   snowflake.ID(msg.ID),
		WorkspaceID: snowflake.ID(msg.WorkspaceID),
		MemberID:    snowflake.ID(member.ID),
		Emoji:       emoji,
	})
	return added, nil
}
