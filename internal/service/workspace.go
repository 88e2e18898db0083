package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

const (
	joinCodeLength   = 6
	joinCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	generalChannel   = "general"
)

// WorkspaceService handles workspace lifecycle and membership by join code.
type WorkspaceService struct {
	workspaces database.WorkspaceRepository
	members    database.MemberRepository
	guard      *MembershipGuard
	snowflake  *snowflake.Generator
	gateway    gateway.Dispatcher
	newCode    func() (string, error)
}

func NewWorkspaceService(
	workspaces database.WorkspaceRepository,
	members database.MemberRepository,
	guard *MembershipGuard,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
) *WorkspaceService {
	return &WorkspaceService{
		workspaces: workspaces,
		members:    members,
		guard:      guard,
		snowflake:  sf,
		gateway:    gw,
		newCode:    generateJoinCode,
	}
}

func validateWorkspaceName(name string) error {
	return Validation(validation.Validate(name,
		validation.Required.Error("workspace name is required"),
		validation.RuneLength(1, 80).Error("workspace name must be 1-80 characters"),
	))
}

// Create makes a workspace with the caller as its only admin and a
// "general" channel, all in one transaction.
func (s *WorkspaceService) Create(ctx context.Context, userID int64, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if err := validateWorkspaceName(name); err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, internalError("generate join code", err)
	}

	now := time.Now()
	ws := &models.Workspace{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		OwnerID:   userID,
		JoinCode:  code,
		CreatedAt: now,
	}
	admin := &models.Member{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        models.RoleAdmin,
		CreatedAt:   now,
	}
	general := &models.Channel{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: ws.ID,
		Name:        generalChannel,
		CreatedAt:   now,
	}
	if err := s.workspaces.CreateWithOwner(ctx, ws, admin, general); err != nil {
		return nil, internalError("create workspace", err)
	}

	s.gateway.SubscribeToWorkspace(userID, ws.ID)
	s.gateway.DispatchToUser(userID, gateway.EventWorkspaceCreate, ws)
	return ws, nil
}

// List returns every workspace the caller is a member of.
func (s *WorkspaceService) List(ctx context.Context, userID int64) ([]models.Workspace, error) {
	workspaces, err := s.workspaces.GetByUserID(ctx, userID)
	if err != nil {
		return nil, internalError("list workspaces", err)
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	return workspaces, nil
}

// Get returns the workspace, or nil if the caller is not a member.
func (s *WorkspaceService) Get(ctx context.Context, userID, workspaceID int64) (*models.Workspace, error) {
	member, err := s.guard.GetMember(ctx, workspaceID, userID)
	if err != nil || member == nil {
		return nil, err
	}
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("get workspace", err)
	}
	return ws, nil
}

// GetInfo tells any signed-in user a workspace's name and whether they
// already belong to it, for the join screen.
func (s *WorkspaceService) GetInfo(ctx context.Context, userID, workspaceID int64) (*models.WorkspaceInfo, error) {
	member, err := s.guard.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("get workspace", err)
	}
	info := &models.WorkspaceInfo{IsMember: member != nil}
	if ws != nil {
		info.Name = &ws.Name
	}
	return info, nil
}

func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID int64, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if err := validateWorkspaceName(name); err != nil {
		return nil, err
	}
	ws, err := s.adminWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	ws.Name = name
	if err := s.workspaces.Update(ctx, ws); err != nil {
		return nil, internalError("update workspace", err)
	}
	s.gateway.DispatchToWorkspace(ws.ID, gateway.EventWorkspaceUpdate, ws)
	return ws, nil
}

// Delete removes all members and then the workspace. Channels, messages
// and reactions of the workspace stay behind as unreachable rows.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID int64) error {
	if _, err := s.guard.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return err
	}
	if err := s.workspaces.Delete(ctx, workspaceID); err != nil {
		return internalError("delete workspace", err)
	}
	s.gateway.DispatchToWorkspace(workspaceID, gateway.EventWorkspaceDelete,
		gateway.WorkspaceDeleteData{ID: snowflake.ID(workspaceID)})
	s.gateway.DropWorkspace(workspaceID)
	return nil
}

// NewJoinCode rotates the join code, invalidating the old one.
func (s *WorkspaceService) NewJoinCode(ctx context.Context, userID, workspaceID int64) (*models.Workspace, error) {
	ws, err := s.adminWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, internalError("generate join code", err)
	}
	ws.JoinCode = code
	if err := s.workspaces.Update(ctx, ws); err != nil {
		return nil, internalError("update join code", err)
	}
	s.gateway.DispatchToWorkspace(ws.ID, gateway.EventWorkspaceUpdate, ws)
	return ws, nil
}

// Join adds the caller as a plain member. Join codes are compared
// case-insensitively.
func (s *WorkspaceService) Join(ctx context.Context, userID, workspaceID int64, code string) (*models.Workspace, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("get workspace", err)
	}
	if ws == nil {
		return nil, NotFound("NOT_FOUND", "workspace not found")
	}
	if strings.ToLower(ws.JoinCode) != strings.ToLower(strings.TrimSpace(code)) {
		return nil, BadRequest("INVALID_JOIN_CODE", "invalid join code")
	}

	existing, err := s.guard.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Forbidden("ALREADY_MEMBER", "already a member of this workspace")
	}

	member := &models.Member{
		ID:          s.snowflake.Generate().Int64(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        models.RoleMember,
		CreatedAt:   time.Now(),
	}
	if err := s.members.Create(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, Forbidden("ALREADY_MEMBER", "already a member of this workspace")
		}
		return nil, internalError("create member", err)
	}

	s.gateway.SubscribeToWorkspace(userID, workspaceID)
	s.gateway.DispatchToWorkspace(workspaceID, gateway.EventMemberAdd, member)
	return ws, nil
}

func (s *WorkspaceService) adminWorkspace(ctx context.Context, userID, workspaceID int64) (*models.Workspace, error) {
	if _, err := s.guard.RequireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("get workspace", err)
	}
	if ws == nil {
		return nil, NotFound("NOT_FOUND", "workspace not found")
	}
	return ws, nil
}

func generateJoinCode() (string, error) {
	size := big.NewInt(int64(len(joinCodeAlphabet)))
	b := make([]byte, joinCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
