package models

import "time"

type Message struct {
	ID              int64      `json:"id,string"`
	WorkspaceID     int64      `json:"workspace_id,string"`
	MemberID        int64      `json:"member_id,string"`
	ChannelID       *int64     `json:"channel_id,string,omitempty"`
	ConversationID  *int64     `json:"conversation_id,string,omitempty"`
	ParentMessageID *int64     `json:"parent_message_id,string,omitempty"`
	Body            string     `json:"body"`
	Image           *string    `json:"image,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ThreadSummary describes the replies hanging off a message.
type ThreadSummary struct {
	Count     int     `json:"count"`
	Image     *string `json:"image,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// PopulatedMessage is a message joined with everything a client needs to render it.
// Image shadows the storage key of the embedded Message with a signed URL.
type PopulatedMessage struct {
	Message
	Member          Member          `json:"member"`
	User            User            `json:"user"`
	Reactions       []ReactionGroup `json:"reactions"`
	Image           *string         `json:"image,omitempty"`
	ThreadCount     int             `json:"thread_count"`
	ThreadImage     *string         `json:"thread_image,omitempty"`
	ThreadTimestamp int64           `json:"thread_timestamp"`
}

// MessagePage is one page of a populated feed.
type MessagePage struct {
	Page           []PopulatedMessage `json:"page"`
	ContinueCursor string             `json:"continue_cursor"`
	IsDone         bool               `json:"is_done"`
	// Dropped counts rows removed because their author could not be resolved.
	Dropped int `json:"dropped"`
}
