package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/redis"
	"github.com/victorivanov/parley/internal/snowflake"
)

const oauthStateTTL = 10 * time.Minute

// AuthResult holds the tokens and user returned after registration or login.
type AuthResult struct {
	auth.TokenPair
	User models.User `json:"user"`
}

// AuthService handles registration, login, OAuth sign-in, token refresh and logout.
type AuthService struct {
	users     database.UserRepository
	accounts  database.AccountRepository
	tokens    *auth.TokenService
	redis     *redis.Client
	snowflake *snowflake.Generator
	providers map[string]auth.OAuthProvider
}

// NewAuthService creates an AuthService. providers is keyed by provider name
// and may be empty when OAuth is not configured.
func NewAuthService(
	users database.UserRepository,
	accounts database.AccountRepository,
	tokens *auth.TokenService,
	redis *redis.Client,
	sf *snowflake.Generator,
	providers map[string]auth.OAuthProvider,
) *AuthService {
	return &AuthService{
		users:     users,
		accounts:  accounts,
		tokens:    tokens,
		redis:     redis,
		snowflake: sf,
		providers: providers,
	}
}

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(6, 128)),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.RuneLength(1, 80)),
	)
}

// Register creates a password user and returns tokens.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := Validation(req.Validate()); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, internalError("get user by email", err)
	}
	if existing != nil {
		return nil, Conflict("EMAIL_TAKEN", "email is already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	name := localPart(req.Email)
	if req.Name != nil {
		name = *req.Name
	}
	now := time.Now()
	user := &models.User{
		ID:           s.snowflake.Generate().Int64(),
		Name:         name,
		Email:        &req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	account := &models.AuthAccount{
		Provider:          models.ProviderPassword,
		ProviderAccountID: req.Email,
		UserID:            user.ID,
		CreatedAt:         now,
	}
	if err := s.users.CreateWithAccount(ctx, user, account); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, Conflict("EMAIL_TAKEN", "email is already registered")
		}
		return nil, internalError("create user", err)
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a password user and returns tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, internalError("get user by email", err)
	}
	if user == nil {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				slog.Warn("service: rehash password", "user_id", user.ID, "error", err)
			}
		}
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and returns a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, BadRequest("MISSING_TOKEN", "refresh_token is required")
	}

	userID, err := s.redis.GetRefreshTokenUserID(ctx, refreshToken)
	if errors.Is(err, redis.ErrTokenNotFound) {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}
	if err != nil {
		return nil, internalError("get refresh token", err)
	}

	if err := s.redis.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, internalError("delete refresh token", err)
	}

	return s.newPair(ctx, userID)
}

// Logout deletes the given refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		_ = s.redis.DeleteRefreshToken(ctx, refreshToken)
	}
}

// StartOAuth returns the provider URL to send the browser to.
func (s *AuthService) StartOAuth(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", NotFound("UNKNOWN_PROVIDER", "unknown sign-in provider")
	}
	state := uuid.NewString()
	if err := s.redis.StoreOAuthState(ctx, state, provider, oauthStateTTL); err != nil {
		return "", internalError("store oauth state", err)
	}
	return p.AuthCodeURL(state), nil
}

// CompleteOAuth finishes an authorization code flow. The provider identity is
// linked to an existing user by account first and by email second; otherwise
// a new user is created.
func (s *AuthService) CompleteOAuth(ctx context.Context, provider, state, code string) (*AuthResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, NotFound("UNKNOWN_PROVIDER", "unknown sign-in provider")
	}

	bound, err := s.redis.ConsumeOAuthState(ctx, state)
	if errors.Is(err, redis.ErrStateNotFound) || (err == nil && bound != provider) {
		return nil, Unauthorized("INVALID_STATE", "sign-in request expired or was already used")
	}
	if err != nil {
		return nil, internalError("consume oauth state", err)
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, Unauthorized("OAUTH_FAILED", "could not verify identity with provider")
	}

	user, err := s.resolveOAuthUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) resolveOAuthUser(ctx context.Context, profile *auth.Profile) (*models.User, error) {
	account, err := s.accounts.Get(ctx, profile.Provider, profile.AccountID)
	if err != nil {
		return nil, internalError("get account", err)
	}
	if account != nil {
		user, err := s.users.GetByID(ctx, account.UserID)
		if err != nil {
			return nil, internalError("get user", err)
		}
		if user != nil {
			return user, nil
		}
	}

	now := time.Now()
	link := &models.AuthAccount{
		Provider:          profile.Provider,
		ProviderAccountID: profile.AccountID,
		CreatedAt:         now,
	}

	if profile.Email != nil {
		email := strings.ToLower(*profile.Email)
		profile.Email = &email
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, internalError("get user by email", err)
		}
		if user != nil {
			link.UserID = user.ID
			if err := s.accounts.Create(ctx, link); err != nil && !database.IsUniqueViolation(err) {
				return nil, internalError("link account", err)
			}
			return user, nil
		}
	}

	name := profile.Name
	if name == "" && profile.Email != nil {
		name = localPart(*profile.Email)
	}
	if name == "" {
		name = profile.Provider + " user"
	}
	user := &models.User{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		Email:     profile.Email,
		Image:     profile.Image,
		CreatedAt: now,
	}
	link.UserID = user.ID
	if err := s.users.CreateWithAccount(ctx, user, link); err != nil {
		return nil, internalError("create oauth user", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.newPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{TokenPair: *pair, User: *user}, nil
}

func (s *AuthService) newPair(ctx context.Context, userID int64) (*auth.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, internalError("generate access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, internalError("generate refresh token", err)
	}
	if err := s.redis.StoreRefreshToken(ctx, refreshToken, userID, s.tokens.RefreshExpiry()); err != nil {
		return nil, internalError("store refresh token", err)
	}
	return &auth.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessExpiry().Seconds()),
	}, nil
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
