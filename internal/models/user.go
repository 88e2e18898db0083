package models

import "time"

type User struct {
	ID           int64     `json:"id,string"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	Image        *string   `json:"image,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Auth providers a user can sign in with.
const (
	ProviderPassword = "password"
	ProviderGitHub   = "github"
	ProviderGoogle   = "google"
)

// AuthAccount links a user to an identity at a sign-in provider.
type AuthAccount struct {
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"provider_account_id"`
	UserID            int64     `json:"user_id,string"`
	CreatedAt         time.Time `json:"created_at"`
}
