package models

import "time"

type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

type Member struct {
	ID          int64      `json:"id,string"`
	WorkspaceID int64      `json:"workspace_id,string"`
	UserID      int64      `json:"user_id,string"`
	Role        MemberRole `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

type MemberWithUser struct {
	Member
	User User `json:"user"`
}
