package service

import (
	"context"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
)

type MemberService struct {
	members database.MemberRepository
	users   database.UserRepository
	guard   *MembershipGuard
}

func NewMemberService(members database.MemberRepository, users database.UserRepository, guard *MembershipGuard) *MemberService {
	return &MemberService{members: members, users: users, guard: guard}
}

// Current returns the caller's own member row, or nil outside the workspace.
func (s *MemberService) Current(ctx context.Context, userID, workspaceID int64) (*models.Member, error) {
	return s.guard.GetMember(ctx, workspaceID, userID)
}

// List returns every member of the workspace with its user. Members whose
// user no longer exists are skipped. Non-members get nil.
func (s *MemberService) List(ctx context.Context, userID, workspaceID int64) ([]models.MemberWithUser, error) {
	self, err := s.guard.GetMember(ctx, workspaceID, userID)
	if err != nil || self == nil {
		return nil, err
	}

	members, err := s.members.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, internalError("list members", err)
	}
	result := make([]models.MemberWithUser, 0, len(members))
	for _, m := range members {
		user, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, internalError("get member user", err)
		}
		if user == nil {
			continue
		}
		result = append(result, models.MemberWithUser{Member: m, User: *user})
	}
	return result, nil
}

// Get returns one member with its user, or nil when the member does not
// exist, its user is gone, or the caller does not share its workspace.
func (s *MemberService) Get(ctx context.Context, userID, memberID int64) (*models.MemberWithUser, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, internalError("get member", err)
	}
	if m == nil {
		return nil, nil
	}
	self, err := s.guard.GetMember(ctx, m.WorkspaceID, userID)
	if err != nil || self == nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, m.UserID)
	if err != nil {
		return nil, internalError("get member user", err)
	}
	if user == nil {
		return nil, nil
	}
	return &models.MemberWithUser{Member: *m, User: *user}, nil
}
