package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/http2sql/internal/infrastructure/database"
)

// ConnSource hands out database connections. *database.Pool implements it.
type ConnSource interface {
	Acquire(ctx context.Context) (*database.Conn, error)
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUUID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// SQLUserRepository implements UserRepository over the users table.
type SQLUserRepository struct {
	pool ConnSource
}

// NewUserRepository creates a user repository backed by pool.
func NewUserRepository(pool ConnSource) *SQLUserRepository {
	return &SQLUserRepository{pool: pool}
}

const userColumns = "uuid, email, password_hash, created_at"

// Create inserts a new user account. The UUID is generated if empty and
// CreatedAt is set to the current time.
func (r *SQLUserRepository) Create(ctx context.Context, user *User) error {
	if user.UUID == "" {
		user.UUID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC().Truncate(time.Second)

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	_, err = conn.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?)",
		user.UUID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: creating user: %w", ErrDatabase, err)
	}
	return nil
}

// GetByUUID retrieves a user by UUID.
func (r *SQLUserRepository) GetByUUID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE uuid = ?", id)
}

// GetByEmail retrieves a user by email address.
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *SQLUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	var u User
	err = conn.QueryRowContext(ctx, query, args...).Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %w", ErrDatabase, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
