package database

import (
	"context"

	"github.com/victorivanov/parley/internal/models"
)

// Repositories return (nil, nil) when a single-row lookup matches nothing.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateWithAccount inserts a user and its first sign-in identity together.
	CreateWithAccount(ctx context.Context, user *models.User, account *models.AuthAccount) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *models.AuthAccount) error
	Get(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error)
}

type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace, its first member and its first
	// channel in one transaction.
	CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.Member, general *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Workspace, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Workspace, error)
	Update(ctx context.Context, ws *models.Workspace) error
	// Delete removes every member of the workspace and then the workspace,
	// in one transaction. Channels, messages and reactions are left in place.
	Delete(ctx context.Context, id int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID int64) (*models.Member, error)
	GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Member, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id int64) error
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	// GetByMembers finds the conversation between two members in either order.
	GetByMembers(ctx context.Context, workspaceID, memberA, memberB int64) (*models.Conversation, error)
}

// MessageFilter selects a feed. Nil pointers match rows where the column is NULL.
type MessageFilter struct {
	WorkspaceID     int64
	ChannelID       *int64
	ConversationID  *int64
	ParentMessageID *int64
}

// PageRequest asks for NumItems rows after an opaque cursor ("" starts from the newest).
type PageRequest struct {
	Cursor   string
	NumItems int
}

// MessagePage holds raw rows in descending creation order.
type MessagePage struct {
	Messages       []models.Message
	ContinueCursor string
	IsDone         bool
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	Paginate(ctx context.Context, filter MessageFilter, page PageRequest) (*MessagePage, error)
	// GetReplies returns a thread's replies in ascending creation order.
	GetReplies(ctx context.Context, parentID int64) ([]models.Message, error)
	UpdateBody(ctx context.Context, msg *models.Message) error
	Delete(ctx context.Context, id int64) error
}

type ReactionRepository interface {
	// Toggle deletes the (message, emoji, member) reaction if it exists and
	// inserts r otherwise. It reports whether r was inserted.
	Toggle(ctx context.Context, r *models.Reaction) (bool, error)
	GetByMessage(ctx context.Context, messageID int64) ([]models.Reaction, error)
}
