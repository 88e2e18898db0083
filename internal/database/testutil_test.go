package database

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 100000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()
	ctx := context.Background()
	id := nextID()
	email := fmt.Sprintf("user_%d@example.com", id)
	user := &models.User{
		ID:        id,
		Name:      fmt.Sprintf("user %d", id),
		Email:     &email,
		CreatedAt: time.Now().Truncate(time.Microsecond),
	}
	if err := NewUserRepository(pool).Create(ctx, user); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID) })
	return user
}

// createTestWorkspace creates a workspace owned by owner together with its
// admin member and its general channel.
func createTestWorkspace(t *testing.T, pool *pgxpool.Pool, owner *models.User) (*models.Workspace, *models.Member, *models.Channel) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Microsecond)
	ws := &models.Workspace{ID: nextID(), Name: "Test", OwnerID: owner.ID, JoinCode: "abc123", CreatedAt: now}
	admin := &models.Member{ID: nextID(), WorkspaceID: ws.ID, UserID: owner.ID, Role: models.RoleAdmin, CreatedAt: now}
	general := &models.Channel{ID: nextID(), WorkspaceID: ws.ID, Name: "general", CreatedAt: now}
	if err := NewWorkspaceRepository(pool).CreateWithOwner(ctx, ws, admin, general); err != nil {
		t.Fatalf("creating test workspace: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM reactions WHERE workspace_id = $1`, ws.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM messages WHERE workspace_id = $1`, ws.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM conversations WHERE workspace_id = $1`, ws.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM channels WHERE workspace_id = $1`, ws.ID)
		_ = NewWorkspaceRepository(pool).Delete(ctx, ws.ID)
	})
	return ws, admin, general
}

func createTestMessage(t *testing.T, repo MessageRepository, member *models.Member, channelID, parentID *int64) *models.Message {
	t.Helper()
	msg := &models.Message{
		ID:              nextID(),
		WorkspaceID:     member.WorkspaceID,
		MemberID:        member.ID,
		ChannelID:       channelID,
		ParentMessageID: parentID,
		Body:            `{"ops":[{"insert":"hello\n"}]}`,
		CreatedAt:       time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("creating test message: %v", err)
	}
	return msg
}
