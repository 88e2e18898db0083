package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type channelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) Create(ctx context.Context, ch *models.Channel) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channels (id, workspace_id, name, created_at)
		 VALUES ($1, $2, $3, $4)`,
		ch.ID, ch.WorkspaceID, ch.Name, ch.CreatedAt,
	)
	return err
}

func (r *channelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	ch := &models.Channel{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, name, created_at
		 FROM channels WHERE id = $1`, id,
	).Scan(&ch.ID, &ch.WorkspaceID, &ch.Name, &ch.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *channelRepo) GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, name, created_at
		 FROM channels WHERE workspace_id = $1
		 ORDER BY id`, workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.WorkspaceID, &ch.Name, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *channelRepo) Update(ctx context.Context, ch *models.Channel) error {
	_, err := r.pool.Exec(ctx, `UPDATE channels SET name = $2 WHERE id = $1`, ch.ID, ch.Name)
	return err
}

func (r *channelRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}
