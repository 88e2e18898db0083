package service

import (
	"context"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
)

// MembershipGuard answers whether a user belongs to a workspace, and with
// which role. Read paths treat a missing member as "nothing to see"; write
// paths go through RequireMember or RequireAdmin.
type MembershipGuard struct {
	members database.MemberRepository
}

func NewMembershipGuard(members database.MemberRepository) *MembershipGuard {
	return &MembershipGuard{members: members}
}

// GetMember returns the user's member row, or nil if there is none.
func (g *MembershipGuard) GetMember(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	member, err := g.members.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, internalError("get member", err)
	}
	return member, nil
}

func (g *MembershipGuard) RequireMember(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	member, err := g.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, Forbidden("NOT_MEMBER", "you are not a member of this workspace")
	}
	return member, nil
}

func (g *MembershipGuard) RequireAdmin(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	member, err := g.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, Forbidden("NOT_ADMIN", "only workspace admins can do this")
	}
	return member, nil
}
