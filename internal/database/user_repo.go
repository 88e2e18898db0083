package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, image, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Image, user.PasswordHash, user.CreatedAt,
	)
	return err
}

func (r *userRepo) CreateWithAccount(ctx context.Context, user *models.User, account *models.AuthAccount) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, name, email, image, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			user.ID, user.Name, user.Email, user.Image, user.PasswordHash, user.CreatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO auth_accounts (provider, provider_account_id, user_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			account.Provider, account.ProviderAccountID, account.UserID, account.CreatedAt,
		)
		return err
	})
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, image, password_hash, created_at
		 FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, image, password_hash, created_at
		 FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, image = $4 WHERE id = $1`,
		user.ID, user.Name, user.Email, user.Image,
	)
	return err
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	return err
}

func (r *userRepo) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.PasswordHash, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
