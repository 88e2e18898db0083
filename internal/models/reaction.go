package models

import (
	"time"

	"github.com/victorivanov/parley/internal/snowflake"
)

type Reaction struct {
	ID          int64     `json:"id,string"`
	WorkspaceID int64     `json:"workspace_id,string"`
	MessageID   int64     `json:"message_id,string"`
	MemberID    int64     `json:"member_id,string"`
	Emoji       string    `json:"emoji"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReactionGroup is every reaction with the same emoji on one message.
type ReactionGroup struct {
	ID          int64          `json:"id,string"`
	WorkspaceID int64          `json:"workspace_id,string"`
	MessageID   int64          `json:"message_id,string"`
	Emoji       string         `json:"emoji"`
	CreatedAt   time.Time      `json:"created_at"`
	Count       int            `json:"count"`
	MemberIDs   []snowflake.ID `json:"member_ids"`
}
