package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/metrics"
	"github.com/victorivanov/parley/internal/models"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// FeedRequest selects one message feed of a workspace: a channel, a
// conversation, or the replies to one message within either.
type FeedRequest struct {
	WorkspaceID     int64  `json:"workspace_id"`
	ChannelID       *int64 `json:"channel_id"`
	ConversationID  *int64 `json:"conversation_id"`
	ParentMessageID *int64 `json:"parent_message_id"`
	Cursor          string `json:"cursor"`
	NumItems        int    `json:"num_items"`
}

func (r *FeedRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WorkspaceID, validation.Required),
		validation.Field(&r.NumItems, validation.Min(0), validation.Max(MaxPageSize)),
	)
}

// FeedService assembles paginated, render-ready message feeds.
type FeedService struct {
	workspaces    database.WorkspaceRepository
	messages      database.MessageRepository
	conversations database.ConversationRepository
	members       database.MemberRepository
	users         database.UserRepository
	reactions     database.ReactionRepository
	guard         *MembershipGuard
	threads       *ThreadSummarizer
	storage       FileStorage
}

func NewFeedService(
	workspaces database.WorkspaceRepository,
	messages database.MessageRepository,
	conversations database.ConversationRepository,
	members database.MemberRepository,
	users database.UserRepository,
	reactions database.ReactionRepository,
	guard *MembershipGuard,
	threads *ThreadSummarizer,
	storage FileStorage,
) *FeedService {
	return &FeedService{
		workspaces:    workspaces,
		messages:      messages,
		conversations: conversations,
		members:       members,
		users:         users,
		reactions:     reactions,
		guard:         guard,
		threads:       threads,
		storage:       storage,
	}
}

// Get returns one page of a feed, newest first. A caller outside the
// workspace, or outside the conversation being read, gets an empty finished
// page. Rows that cannot be populated are left out and counted in Dropped.
func (s *FeedService) Get(ctx context.Context, userID int64, req FeedRequest) (*models.MessagePage, error) {
	if err := Validation(req.Validate()); err != nil {
		return nil, err
	}
	if req.NumItems == 0 {
		req.NumItems = DefaultPageSize
	}

	ws, err := s.workspaces.GetByID(ctx, req.WorkspaceID)
	if err != nil {
		return nil, internalError("get workspace", err)
	}
	if ws == nil {
		return nil, NotFound("NOT_FOUND", "workspace not found")
	}

	member, err := s.guard.GetMember(ctx, ws.ID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return emptyPage(), nil
	}

	conversationID, err := resolveConversation(ctx, s.messages, req.ChannelID, req.ConversationID, req.ParentMessageID)
	if err != nil {
		return nil, err
	}
	if conversationID != nil {
		_, ok, err := participantConversation(ctx, s.conversations, *conversationID, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			return emptyPage(), nil
		}
	}

	raw, err := s.messages.Paginate(ctx, database.MessageFilter{
		WorkspaceID:     ws.ID,
		ChannelID:       req.ChannelID,
		ConversationID:  conversationID,
		ParentMessageID: req.ParentMessageID,
	}, database.PageRequest{Cursor: req.Cursor, NumItems: req.NumItems})
	if errors.Is(err, database.ErrInvalidCursor) {
		return nil, BadRequest("INVALID_CURSOR", "invalid pagination cursor")
	}
	if err != nil {
		return nil, internalError("paginate messages", err)
	}

	page := s.populate(ctx, raw.Messages, req.ParentMessageID == nil)
	if err := ctx.Err(); err != nil {
		return nil, internalError("populate messages", err)
	}

	dropped := len(raw.Messages) - len(page)
	if dropped > 0 {
		metrics.FeedRowsDropped.Add(float64(dropped))
	}
	return &models.MessagePage{
		Page:           page,
		ContinueCursor: raw.ContinueCursor,
		IsDone:         raw.IsDone,
		Dropped:        dropped,
	}, nil
}

// GetByID returns one populated message, or nil when it cannot be
// populated. Thread summaries are not included.
func (s *FeedService) GetByID(ctx context.Context, userID, messageID int64) (*models.PopulatedMessage, error) {
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
	if msg.ConversationID != nil {
		_, ok, err := participantConversation(ctx, s.conversations, *msg.ConversationID, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notParticipant()
		}
	}

	page := s.populate(ctx, []models.Message{*msg}, false)
	if err := ctx.Err(); err != nil {
		return nil, internalError("populate messages", err)
	}
	if len(page) == 0 {
		return nil, nil
	}
	return &page[0], nil
}

// resolveConversation applies the thread-in-DM rule: a request naming only a
// parent message belongs to the parent's conversation.
func resolveConversation(ctx context.Context, messages database.MessageRepository, channelID, conversationID, parentID *int64) (*int64, error) {
	if channelID != nil || conversationID != nil || parentID == nil {
		return conversationID, nil
	}
	parent, err := messages.GetByID(ctx, *parentID)
	if err != nil {
		return nil, internalError("get parent message", err)
	}
	if parent == nil {
		return nil, NotFound("NOT_FOUND", "parent message not found")
	}
	return parent.ConversationID, nil
}

func emptyPage() *models.MessagePage {
	return &models.MessagePage{Page: []models.PopulatedMessage{}, IsDone: true}
}

// populate resolves every row concurrently, at most one goroutine per row,
// and keeps the input order. A row that fails or whose author is gone is
// omitted; the others still make the page.
func (s *FeedService) populate(ctx context.Context, rows []models.Message, withThreads bool) []models.PopulatedMessage {
	results := make([]*models.PopulatedMessage, len(rows))

	var g errgroup.Group
	g.SetLimit(max(len(rows), 1))
	for i := range rows {
		g.Go(func() error {
			pm, err := s.populateOne(ctx, rows[i], withThreads)
			if err != nil {
				slog.Warn("service: populate feed row", "message_id", rows[i].ID, "error", err)
				return nil
			}
			results[i] = pm
			return nil
		})
	}
	_ = g.Wait()

	page := make([]models.PopulatedMessage, 0, len(rows))
	for _, pm := range results {
		if pm != nil {
			page = append(page, *pm)
		}
	}
	return page
}

func (s *FeedService) populateOne(ctx context.Context, msg models.Message, withThread bool) (*models.PopulatedMessage, error) {
	member, err := s.members.GetByID(ctx, msg.MemberID)
	if err != nil {
		return nil, fmt.Errorf("get author member: %w", err)
	}
	if member == nil {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, member.UserID)
	if err != nil {
		return nil, fmt.Errorf("get author user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	pm := &models.PopulatedMessage{Message: msg, Member: *member, User: *user}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reactions, err := s.reactions.GetByMessage(gctx, msg.ID)
		if err != nil {
			return fmt.Errorf("get reactions: %w", err)
		}
		pm.Reactions = AggregateReactions(reactions)
		return nil
	})
	if withThread {
		g.Go(func() error {
			summary, err := s.threads.SummarizeThread(gctx, msg.ID)
			if err != nil {
				return fmt.Errorf("summarize thread: %w", err)
			}
			pm.ThreadCount = summary.Count
			pm.ThreadImage = summary.Image
			pm.ThreadTimestamp = summary.Timestamp
			return nil
		})
	}
	if msg.Image != nil {
		g.Go(func() error {
			url, err := s.storage.GetURL(gctx, *msg.Image)
			if err != nil {
				return fmt.Errorf("sign image url: %w", err)
			}
			pm.Image = &url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pm, nil
}
