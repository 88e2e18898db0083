package gateway

import (
	"encoding/json"

	"github.com/victorivanov/parley/internal/snowflake"
)

// Op codes for gateway payloads.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpResume         = 6
	OpReconnect      = 7
	OpInvalidSession = 9
	OpHello          = 10
	OpHeartbeatAck   = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady              = "READY"
	EventResumed            = "RESUMED"
	EventWorkspaceCreate    = "WORKSPACE_CREATE"
	EventWorkspaceUpdate    = "WORKSPACE_UPDATE"
	EventWorkspaceDelete    = "WORKSPACE_DELETE"
	EventMemberAdd          = "MEMBER_ADD"
	EventChannelCreate      = "CHANNEL_CREATE"
	EventChannelUpdate      = "CHANNEL_UPDATE"
	EventChannelDelete      = "CHANNEL_DELETE"
	EventConversationCreate = "CONVERSATION_CREATE"
	EventMessageCreate      = "MESSAGE_CREATE"
	EventMessageUpdate      = "MESSAGE_UPDATE"
	EventMessageDelete      = "MESSAGE_DELETE"
	EventReactionAdd        = "REACTION_ADD"
	EventReactionRemove     = "REACTION_REMOVE"
)

// GatewayPayload is the envelope for all gateway messages.
type GatewayPayload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

type IdentifyData struct {
	Token string `json:"token"`
}

// ResumeData asks for every workspace event after Sequence.
type ResumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"seq"`
}

type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type ReadyData struct {
	SessionID  string         `json:"session_id"`
	UserID     snowflake.ID   `json:"user_id"`
	Workspaces []snowflake.ID `json:"workspaces"`
}

// Event is a dispatch event ready to broadcast.
type Event struct {
	Name string
	Data any
}

type WorkspaceDeleteData struct {
	ID snowflake.ID `json:"id"`
}

type ChannelDeleteData struct {
	ID          snowflake.ID `json:"id"`
	WorkspaceID snowflake.ID `json:"workspace_id"`
}

type MessageDeleteData struct {
	ID              snowflake.ID  `json:"id"`
	WorkspaceID     snowflake.ID  `json:"workspace_id"`
	ChannelID       *snowflake.ID `json:"channel_id,omitempty"`
	ConversationID  *snowflake.ID `json:"conversation_id,omitempty"`
	ParentMessageID *snowflake.ID `json:"parent_message_id,omitempty"`
}

type ReactionData struct {
	MessageID   snowflake.ID `json:"message_id"`
	WorkspaceID snowflake.ID `json:"workspace_id"`
	MemberID    snowflake.ID `json:"member_id"`
	Emoji       string       `json:"emoji"`
}
