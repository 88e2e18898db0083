package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type workspaceRepo struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) WorkspaceRepository {
	return &workspaceRepo{pool: pool}
}

func (r *workspaceRepo) CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.Member, general *models.Channel) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workspaces (id, name, owner_id, join_code, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			ws.ID, ws.Name, ws.OwnerID, ws.JoinCode, ws.CreatedAt,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO members (id, workspace_id, user_id, role, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			owner.ID, owner.WorkspaceID, owner.UserID, owner.Role, owner.CreatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO channels (id, workspace_id, name, created_at)
			 VALUES ($1, $2, $3, $4)`,
			general.ID, general.WorkspaceID, general.Name, general.CreatedAt,
		)
		return err
	})
}

func (r *workspaceRepo) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	ws := &models.Workspace{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, join_code, created_at
		 FROM workspaces WHERE id = $1`, id,
	).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.JoinCode, &ws.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *workspaceRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Workspace, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT w.id, w.name, w.owner_id, w.join_code, w.created_at
		 FROM workspaces w
		 INNER JOIN members m ON m.workspace_id = w.id
		 WHERE m.user_id = $1
		 ORDER BY m.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.JoinCode, &ws.CreatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *workspaceRepo) Update(ctx context.Context, ws *models.Workspace) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE workspaces SET name = $2, join_code = $3 WHERE id = $1`,
		ws.ID, ws.Name, ws.JoinCode,
	)
	return err
}

func (r *workspaceRepo) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM members WHERE workspace_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
		return err
	})
}
