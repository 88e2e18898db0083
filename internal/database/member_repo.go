package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type memberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepo{pool: pool}
}

func (r *memberRepo) Create(ctx context.Context, m *models.Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (id, workspace_id, user_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt,
	)
	return err
}

func (r *memberRepo) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	return r.getOne(ctx,
		`SELECT id, workspace_id, user_id, role, created_at
		 FROM members WHERE id = $1`, id)
}

func (r *memberRepo) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	return r.getOne(ctx,
		`SELECT id, workspace_id, user_id, role, created_at
		 FROM members WHERE workspace_id = $1 AND user_id = $2`, workspaceID, userID)
}

func (r *memberRepo) GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, user_id, role, created_at
		 FROM members WHERE workspace_id = $1
		 ORDER BY id`, workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepo) getOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	m := &models.Member{}
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
