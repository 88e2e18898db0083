package service

import (
	"context"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
)

// ThreadSummarizer computes the reply count and last-reply preview shown
// under a top-level message.
type ThreadSummarizer struct {
	messages database.MessageRepository
	members  database.MemberRepository
	users    database.UserRepository
}

func NewThreadSummarizer(messages database.MessageRepository, members database.MemberRepository, users database.UserRepository) *ThreadSummarizer {
	return &ThreadSummarizer{messages: messages, members: members, users: users}
}

// SummarizeThread returns the zero summary when the message has no replies
// or when the author of its last reply can no longer be resolved.
func (t *ThreadSummarizer) SummarizeThread(ctx context.Context, parentID int64) (models.ThreadSummary, error) {
	var empty models.ThreadSummary

	replies, err := t.messages.GetReplies(ctx, parentID)
	if err != nil {
		return empty, err
	}
	if len(replies) == 0 {
		return empty, nil
	}
	last := replies[len(replies)-1]

	member, err := t.members.GetByID(ctx, last.MemberID)
	if err != nil {
		return empty, err
	}
	if member == nil {
		return empty, nil
	}
	user, err := t.users.GetByID(ctx, member.UserID)
	if err != nil {
		return empty, err
	}
	if user == nil {
		return empty, nil
	}

	return models.ThreadSummary{
		Count:     len(replies),
		Image:     user.Image,
		Timestamp: last.CreatedAt.UnixMilli(),
	}, nil
}
