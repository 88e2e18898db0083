package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepo{pool: pool}
}

func (r *accountRepo) Create(ctx context.Context, a *models.AuthAccount) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_accounts (provider, provider_account_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		a.Provider, a.ProviderAccountID, a.UserID, a.CreatedAt,
	)
	return err
}

func (r *accountRepo) Get(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error) {
	a := &models.AuthAccount{}
	err := r.pool.QueryRow(ctx,
		`SELECT provider, provider_account_id, user_id, created_at
		 FROM auth_accounts WHERE provider = $1 AND provider_account_id = $2`,
		provider, providerAccountID,
	).Scan(&a.Provider, &a.ProviderAccountID, &a.UserID, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
