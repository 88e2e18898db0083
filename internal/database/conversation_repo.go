package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type conversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepo{pool: pool}
}

func (r *conversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (id, workspace_id, member_one_id, member_two_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		conv.ID, conv.WorkspaceID, conv.MemberOneID, conv.MemberTwoID, conv.CreatedAt,
	)
	return err
}

func (r *conversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	return r.getOne(ctx,
		`SELECT id, workspace_id, member_one_id, member_two_id, created_at
		 FROM conversations WHERE id = $1`, id)
}

func (r *conversationRepo) GetByMembers(ctx context.Context, workspaceID, memberA, memberB int64) (*models.Conversation, error) {
	return r.getOne(ctx,
		`SELECT id, workspace_id, member_one_id, member_two_id, created_at
		 FROM conversations
		 WHERE workspace_id = $1
		   AND ((member_one_id = $2 AND member_two_id = $3)
		     OR (member_one_id = $3 AND member_two_id = $2))
		 ORDER BY id
		 LIMIT 1`, workspaceID, memberA, memberB)
}

func (r *conversationRepo) getOne(ctx context.Context, query string, args ...any) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.WorkspaceID, &c.MemberOneID, &c.MemberTwoID, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
