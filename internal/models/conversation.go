package models

import "time"

// Conversation is a 1:1 direct message stream between two members of a workspace.
type Conversation struct {
	ID          int64     `json:"id,string"`
	WorkspaceID int64     `json:"workspace_id,string"`
	MemberOneID int64     `json:"member_one_id,string"`
	MemberTwoID int64     `json:"member_two_id,string"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Conversation) HasMember(memberID int64) bool {
	return c.MemberOneID == memberID || c.MemberTwoID == memberID
}
