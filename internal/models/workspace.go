package models

import "time"

type Workspace struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id,string"`
	JoinCode  string    `json:"join_code"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceInfo is what a non-member may learn about a workspace before joining.
type WorkspaceInfo struct {
	Name     *string `json:"name,omitempty"`
	IsMember bool    `json:"is_member"`
}
