package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

const messageColumns = `id, workspace_id, member_id, channel_id, conversation_id, parent_message_id,
		body, image, created_at, updated_at`

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (`+messageColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		msg.ID, msg.WorkspaceID, msg.MemberID, msg.ChannelID, msg.ConversationID, msg.ParentMessageID,
		msg.Body, msg.Image, msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	m := &models.Message{}
	err := scanMessage(r.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id,
	), m)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Paginate walks a feed newest-first using the row id as the keyset. It reads
// one extra row to learn whether another page exists.
func (r *messageRepo) Paginate(ctx context.Context, f MessageFilter, page PageRequest) (*MessagePage, error) {
	before, err := decodeCursor(page.Cursor)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE workspace_id = $1
		   AND channel_id IS NOT DISTINCT FROM $2
		   AND parent_message_id IS NOT DISTINCT FROM $3
		   AND conversation_id IS NOT DISTINCT FROM $4
		   AND ($5::BIGINT IS NULL OR id < $5)
		 ORDER BY id DESC
		 LIMIT $6`,
		f.WorkspaceID, f.ChannelID, f.ParentMessageID, f.ConversationID, before, page.NumItems+1,
	)
	if err != nil {
		return nil, err
	}
	messages, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}

	result := &MessagePage{IsDone: len(messages) <= page.NumItems}
	if !result.IsDone {
		messages = messages[:page.NumItems]
	}
	result.Messages = messages
	if len(messages) > 0 {
		result.ContinueCursor = encodeCursor(messages[len(messages)-1].ID)
	} else {
		result.ContinueCursor = page.Cursor
	}
	return result, nil
}

func (r *messageRepo) GetReplies(ctx context.Context, parentID int64) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages WHERE parent_message_id = $1
		 ORDER BY id`, parentID,
	)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *messageRepo) UpdateBody(ctx context.Context, msg *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET body = $2, updated_at = $3 WHERE id = $1`,
		msg.ID, msg.Body, msg.UpdatedAt,
	)
	return err
}

func (r *messageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func scanMessage(row pgx.Row, m *models.Message) error {
	return row.Scan(
		&m.ID, &m.WorkspaceID, &m.MemberID, &m.ChannelID, &m.ConversationID, &m.ParentMessageID,
		&m.Body, &m.Image, &m.CreatedAt, &m.UpdatedAt,
	)
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
