package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type reactionRepo struct {
	pool *pgxpool.Pool
}

func NewReactionRepository(pool *pgxpool.Pool) ReactionRepository {
	return &reactionRepo{pool: pool}
}

func (r *reactionRepo) Toggle(ctx context.Context, reaction *models.Reaction) (bool, error) {
	var added bool
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM reactions WHERE message_id = $1 AND emoji = $2 AND member_id = $3`,
			reaction.MessageID, reaction.Emoji, reaction.MemberID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		tag, err = tx.Exec(ctx,
			`INSERT INTO reactions (id, workspace_id, message_id, member_id, emoji, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (message_id, emoji, member_id) DO NOTHING`,
			reaction.ID, reaction.WorkspaceID, reaction.MessageID, reaction.MemberID, reaction.Emoji, reaction.CreatedAt,
		)
		if err != nil {
			return err
		}
		added = tag.RowsAffected() > 0
		return nil
	})
	return added, err
}

func (r *reactionRepo) GetByMessage(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, message_id, member_id, emoji, created_at
		 FROM reactions
		 WHERE message_id = $1
		 ORDER BY id`,
		messageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []models.Reaction
	for rows.Next() {
		var re models.Reaction
		if err := rows.Scan(&re.ID, &re.WorkspaceID, &re.MessageID, &re.MemberID, &re.Emoji, &re.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, re)
	}
	return reactions, rows.Err()
}
