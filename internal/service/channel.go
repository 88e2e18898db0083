package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeChannelName turns every run of whitespace into a dash and
// lowercases the result: "Team Updates" becomes "team-updates".
func NormalizeChannelName(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// ChannelService handles channel business logic. Writes are admin-only.
type ChannelService struct {
	channels  database.ChannelRepository
	guard     *MembershipGuard
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
}

func NewChannelService(channels database.ChannelRepository, guard *MembershipGuard, sf *snowflake.Generator, gw gateway.Dispatcher) *ChannelService {
	return &ChannelService{channels: channels, guard: guard, snowflake: sf, gateway: gw}
}

func validateChannelName(name string) error {
	return Validation(validation.Validate(name,
		validation.Required.Error("channel name is required"),
		validation.RuneLength(1, 80).Error("channel name must be 1-80 characters"),
	))
}

// List returns the workspace's channels, or nil if the caller is not a member.
func (s *ChannelService) List(ctx context.Context, userID, workspaceID int64) ([]models.Channel, error) {
	member, err := s.guard.GetMember(ctx, workspaceID, userID)
	if err != nil || member == nil {
		return nil, err
	}
	channels, err := s.channels.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("list channels", err)
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return channels, nil
}

// Get returns the channel, or nil if it does not exist or the caller is
// not a member of its workspace.
func (s *ChannelService) Get(ctx context.Context, userID, channelID int64) (*models.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, internalError("get channel", err)
	}
	if ch == nil {
		return nil, nil
	}
	member, err := s.guard.GetMember(ctx, ch.WorkspaceID, userID)
	if err != nil || member == nil {
		return nil, err
	}
	return ch, nil
}

func (s *ChannelService) Create(ctx context.Context, userID, workspaceID int64, name string) (*models.Channel, error) {
	if _, err := s.guard.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	name = NormalizeChannelName(name)
	if err := validateChannelName(name); err != nil {
		return nil, err
	}

	ch := &models.Channel{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedAt:   time.Now(),
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, internalError("create channel", err)
	}
	s.gateway.DispatchToWorkspace(workspaceID, gateway.EventChannelCreate, ch)
	return ch, nil
}

// Update renames a channel.
func (s *ChannelService) Update(ctx context.Context, userID, channelID int64, name string) (*models.Channel, error) {
	ch, err := s.adminChannel(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	name = NormalizeChannelName(name)
	if err := validateChannelName(name); err != nil {
		return nil, err
	}

	ch.Name = name
	if err := s.channels.Update(ctx, ch); err != nil {
		return nil, internalError("update channel", err)
	}
	s.gateway.DispatchToWorkspace(ch.WorkspaceID, gateway.EventChannelUpdate, ch)
	return ch, nil
}

func (s *ChannelService) Delete(ctx context.Context, userID, channelID int64) error {
	ch, err := s.adminChannel(ctx, userID, channelID)
	if err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, ch.ID); err != nil {
		return internalError("delete channel", err)
	}
	s.gateway.DispatchToWorkspace(ch.WorkspaceID, gateway.EventChannelDelete, gateway.ChannelDeleteData{
		ID:          snowflake.ID(ch.ID),
		WorkspaceID: snowflake.ID(ch.WorkspaceID),
	})
	return nil
}

func (s *ChannelService) adminChannel(ctx context.Context, userID, channelID int64) (*models.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, internalError("get channel", err)
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if _, err := s.guard.RequireAdmin(ctx, ch.WorkspaceID, userID); err != nil {
		return nil, err
	}
	return ch, nil
}
