package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/parley/internal/auth"
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: parley-cli migrate [up|down]")
			fmt.Println()
			fmt.Println("Apply (up, the default) or roll back one step of (down) the")
			fmt.Println("migrations in the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		direction := "up"
		if len(os.Args) > 2 {
			direction = os.Args[2]
		}
		os.Exit(runMigrate(direction))
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: parley-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 2 users, a workspace, channels,")
			fmt.Println("a thread, a direct conversation and a reaction.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: parley-cli health")
			fmt.Println()
			fmt.Println("Check if the Parley server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("parley-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: parley-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo data (users, workspace, channels, messages)")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'parley-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate(direction string) int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	switch direction {
	case "up":
		fmt.Println("running migrations...")
		err = m.Up()
	case "down":
		fmt.Println("rolling back one migration...")
		err = m.Steps(-1)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown direction %q (want up or down)\n", direction)
		return 1
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		fmt.Println("no migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Printf("no new migrations (current version: %d)\n", v)
	default:
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

// quill renders plain text as the rich-text document clients store in message bodies.
func quill(text string) string {
	return fmt.Sprintf(`{"ops":[{"insert":%q}]}`, text+"\n")
}

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	// Hash passwords for demo users.
	fmt.Println("hashing passwords...")
	aliceHash, err := auth.HashPassword("password123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	bobHash, err := auth.HashPassword("password456")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}

	// Generate IDs.
	aliceID := sf.Generate().Int64()
	bobID := sf.Generate().Int64()
	wsID := sf.Generate().Int64()
	aliceMemberID := sf.Generate().Int64()
	bobMemberID := sf.Generate().Int64()
	generalID := sf.Generate().Int64()
	randomID := sf.Generate().Int64()
	convID := sf.Generate().Int64()
	welcomeID := sf.Generate().Int64()
	replyID := sf.Generate().Int64()
	randomMsgID := sf.Generate().Int64()
	dmID := sf.Generate().Int64()
	reactionID := sf.Generate().Int64()

	now := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	steps := []struct {
		label string
		sql   string
		args  []any
	}{
		{"users",
			`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1,$2,$3,$4,$5), ($6,$7,$8,$9,$10)
			 ON CONFLICT DO NOTHING`,
			[]any{aliceID, "Alice", "alice@example.com", aliceHash, now, bobID, "Bob", "bob@example.com", bobHash, now}},
		{"accounts",
			`INSERT INTO auth_accounts (provider, provider_account_id, user_id, created_at) VALUES ($1,$2,$3,$4), ($1,$5,$6,$4)
			 ON CONFLICT DO NOTHING`,
			[]any{models.ProviderPassword, "alice@example.com", aliceID, now, "bob@example.com", bobID}},
		{"workspace",
			`INSERT INTO workspaces (id, name, owner_id, join_code, created_at) VALUES ($1,$2,$3,$4,$5)`,
			[]any{wsID, "Demo Workspace", aliceID, "demo42", now}},
		{"members",
			`INSERT INTO members (id, workspace_id, user_id, role, created_at) VALUES ($1,$2,$3,$4,$5), ($6,$2,$7,$8,$5)`,
			[]any{aliceMemberID, wsID, aliceID, string(models.RoleAdmin), now, bobMemberID, bobID, string(models.RoleMember)}},
		{"channels",
			`INSERT INTO channels (id, workspace_id, name, created_at) VALUES ($1,$2,'general',$3), ($4,$2,'random',$3)`,
			[]any{generalID, wsID, now, randomID}},
		{"conversation",
			`INSERT INTO conversations (id, workspace_id, member_one_id, member_two_id, created_at) VALUES ($1,$2,$3,$4,$5)`,
			[]any{convID, wsID, aliceMemberID, bobMemberID, now}},
		{"messages",
			`INSERT INTO messages (id, workspace_id, member_id, channel_id, conversation_id, parent_message_id, body, created_at) VALUES
			 ($1,$2,$3,$4,NULL,NULL,$5,$6),
			 ($7,$2,$8,$4,NULL,$1,$9,$6),
			 ($10,$2,$3,$11,NULL,NULL,$12,$6),
			 ($13,$2,$8,NULL,$14,NULL,$15,$6)`,
			[]any{
				welcomeID, wsID, aliceMemberID, generalID, quill("Welcome to the Demo Workspace!"), now,
				replyID, bobMemberID, quill("Glad to be here!"),
				randomMsgID, randomID, quill("This is the random channel."),
				dmID, convID, quill("Hi Alice, quick question for you."),
			}},
		{"reaction",
			`INSERT INTO reactions (id, workspace_id, message_id, member_id, emoji, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			[]any{reactionID, wsID, welcomeID, bobMemberID, "🎉", now}},
	}

	for _, step := range steps {
		fmt.Printf("creating %s...\n", step.label)
		if err := exec(ctx, tx, step.sql, step.args...); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating %s: %v\n", step.label, err)
			return 1
		}
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing transaction: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  users:     alice@example.com (password: password123), bob@example.com (password: password456)\n")
	fmt.Printf("  workspace: Demo Workspace (admin: alice, join code: demo42)\n")
	fmt.Printf("  channels:  #general, #random\n")
	fmt.Printf("  messages:  a thread in #general, one in #random, one direct message\n")
	return 0
}

func exec(ctx context.Context, tx pgx.Tx, sql string, args ...any) error {
	_, err := tx.Exec(ctx, sql, args...)
	return err
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
