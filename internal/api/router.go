package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/gateway"
	"github.com/victorivanov/parley/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Workspaces    *WorkspaceHandler
	Channels      *ChannelHandler
	Members       *MemberHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Reactions     *ReactionHandler
	Uploads       *UploadHandler
	Gateway       *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client

	// HealthChecks are run by /health, keyed by component name.
	HealthChecks map[string]func(context.Context) error
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(MetricsMiddleware())

	e.GET("/health", healthHandler(deps.HealthChecks))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket gateway; clients authenticate with IDENTIFY.
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Auth routes: no auth middleware, stricter rate limit
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)
	authGroup.GET("/oauth/:provider", deps.Auth.StartOAuth)
	authGroup.GET("/oauth/:provider/callback", deps.Auth.OAuthCallback)

	protected := v1.Group("", deps.TokenService.Middleware(),
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	protected.POST("/auth/logout", deps.Auth.Logout)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.PATCH("/users/@me", deps.Users.UpdateMe)

	// Workspaces
	protected.POST("/workspaces", deps.Workspaces.CreateWorkspace)
	protected.GET("/workspaces", deps.Workspaces.ListMyWorkspaces)
	protected.GET("/workspaces/:id", deps.Workspaces.GetWorkspace)
	protected.GET("/workspaces/:id/info", deps.Workspaces.GetWorkspaceInfo)
	protected.PATCH("/workspaces/:id", deps.Workspaces.UpdateWorkspace)
	protected.DELETE("/workspaces/:id", deps.Workspaces.DeleteWorkspace)
	protected.POST("/workspaces/:id/join", deps.Workspaces.JoinWorkspace)
	protected.POST("/workspaces/:id/join-code", deps.Workspaces.NewJoinCode)

	// Channels
	protected.POST("/workspaces/:id/channels", deps.Channels.CreateChannel)
	protected.GET("/workspaces/:id/channels", deps.Channels.ListChannels)
	protected.GET("/channels/:id", deps.Channels.GetChannel)
	protected.PATCH("/channels/:id", deps.Channels.UpdateChannel)
	protected.DELETE("/channels/:id", deps.Channels.DeleteChannel)

	// Members
	protected.GET("/workspaces/:id/members", deps.Members.ListMembers)
	protected.GET("/workspaces/:id/members/@me", deps.Members.GetCurrentMember)
	protected.GET("/members/:id", deps.Members.GetMember)

	// Conversations
	protected.POST("/workspaces/:id/conversations", deps.Conversations.OpenConversation)
	protected.GET("/conversations/:id", deps.Conversations.GetConversation)

	// Messages
	protected.GET("/workspaces/:id/messages", deps.Messages.GetMessages)
	protected.POST("/workspaces/:id/messages", deps.Messages.SendMessage)
	protected.GET("/messages/:id", deps.Messages.GetMessage)
	protected.PATCH("/messages/:id", deps.Messages.EditMessage)
	protected.DELETE("/messages/:id", deps.Messages.DeleteMessage)

	// Reactions
	protected.PUT("/messages/:id/reactions/:emoji", deps.Reactions.ToggleReaction)

	// Uploads
	protected.POST("/workspaces/:id/uploads", deps.Uploads.CreateUpload)
}
