package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/http2sql/internal/infrastructure/config"
	"github.com/nerrad567/http2sql/internal/infrastructure/database"
	"github.com/nerrad567/http2sql/migrations"
)

// testPool creates a pool over a temporary SQLite database with the
// credential schema applied. The database is removed when the test completes.
func testPool(t *testing.T) *database.Pool {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	}
	pool := database.NewPool(database.NewOpener(cfg))
	t.Cleanup(func() { pool.Close() }) //nolint:errcheck // Test cleanup

	conn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquiring test connection: %v", err)
	}
	defer conn.Release()

	if err := migrations.Apply(context.Background(), conn, config.DriverSQLite); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return pool
}

// testService creates a Service over a fresh database.
func testService(t *testing.T) *Service {
	t.Helper()
	pool := testPool(t)
	return NewService(NewUserRepository(pool), NewAPIKeyRepository(pool), 720*time.Hour, nil)
}

// seedUser signs up a user with a valid password.
func seedUser(t *testing.T, svc *Service, email string) *User {
	t.Helper()
	user, err := svc.SignUp(context.Background(), email, testPassword)
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return user
}

const testPassword = "Correct-Horse-42"
