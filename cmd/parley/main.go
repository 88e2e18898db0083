package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/victorivanov/parley/internal/api"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/config"
	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/models"
	redisclient "github.com/victorivanov/parley/internal/redis"
	"github.com/victorivanov/parley/internal/service"
	"github.com/victorivanov/parley/internal/snowflake"
	"github.com/victorivanov/parley/internal/storage"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("postgres", err)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		fatal("redis", err)
	}
	defer rdb.Close()

	objects, err := storage.NewMinIOClient(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
	if err != nil {
		fatal("minio", err)
	}

	sf, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		fatal("snowflake", err)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	providers := map[string]auth.OAuthProvider{}
	if cfg.GitHubClientID != "" {
		providers[models.ProviderGitHub] = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.OAuthRedirectURL(models.ProviderGitHub))
	}
	if cfg.GoogleClientID != "" {
		providers[models.ProviderGoogle] = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL(models.ProviderGoogle))
	}

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	accounts := database.NewAccountRepository(pool)
	workspaces := database.NewWorkspaceRepository(pool)
	members := database.NewMemberRepository(pool)
	channels := database.NewChannelRepository(pool)
	conversations := database.NewConversationRepository(pool)
	messages := database.NewMessageRepository(pool)
	reactions := database.NewReactionRepository(pool)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, workspaces)

	// --- Services ---

	guard := service.NewMembershipGuard(members)
	threads := service.NewThreadSummarizer(messages, members, users)

	authSvc := service.NewAuthService(users, accounts, tokenSvc, rdb, sf, providers)
	userSvc := service.NewUserService(users)
	workspaceSvc := service.NewWorkspaceService(workspaces, members, guard, sf, gwManager)
	channelSvc := service.NewChannelService(channels, guard, sf, gwManager)
	memberSvc := service.NewMemberService(members, users, guard)
	conversationSvc := service.NewConversationService(conversations, members, guard, sf, gwManager)
	feedSvc := service.NewFeedService(workspaces, messages, conversations, members, users, reactions, guard, threads, objects)
	messageSvc := service.NewMessageService(messages, channels, conversations, members, guard, sf, gwManager, objects)
	reactionSvc := service.NewReactionService(messages, reactions, conversations, members, guard, sf, gwManager)
	uploadSvc := service.NewUploadService(guard, objects)

	deps := &api.Dependencies{
		Auth:          api.NewAuthHandler(authSvc),
		Users:         api.NewUserHandler(userSvc),
		Workspaces:    api.NewWorkspaceHandler(workspaceSvc),
		Channels:      api.NewChannelHandler(channelSvc),
		Members:       api.NewMemberHandler(memberSvc),
		Conversations: api.NewConversationHandler(conversationSvc),
		Messages:      api.NewMessageHandler(feedSvc, messageSvc),
		Reactions:     api.NewReactionHandler(reactionSvc),
		Uploads:       api.NewUploadHandler(uploadSvc),
		Gateway:       gwManager,
		TokenService:  tokenSvc,
		Redis:         rdb,
		HealthChecks: map[string]func(context.Context) error{
			"postgres": pool.Ping,
			"redis":    rdb.Ping,
			"storage":  objects.Ping,
		},
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("256K"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("parley starting", "addr", cfg.ServerAddr, "oauth_providers", len(providers))
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
