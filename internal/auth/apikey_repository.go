package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// APIKeyRepository defines the interface for API key persistence.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKeyRecord) error
	GetByHash(ctx context.Context, keyHash string) (*APIKeyRecord, error)
	TouchLastUsed(ctx context.Context, keyHash string) error
}

// SQLAPIKeyRepository implements APIKeyRepository over the api_keys table.
type SQLAPIKeyRepository struct {
	pool ConnSource
}

// NewAPIKeyRepository creates an API key repository backed by pool.
func NewAPIKeyRepository(pool ConnSource) *SQLAPIKeyRepository {
	return &SQLAPIKeyRepository{pool: pool}
}

const apiKeyColumns = "uuid, user_uuid, api_key_hash, created_at, expires_at, last_used_at"

// Create stores a key digest. The UUID is generated if empty and CreatedAt
// defaults to the current time.
func (r *SQLAPIKeyRepository) Create(ctx context.Context, key *APIKeyRecord) error {
	if key.UUID == "" {
		key.UUID = uuid.NewString()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	_, err = conn.ExecContext(ctx,
		"INSERT INTO api_keys (uuid, user_uuid, api_key_hash, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		key.UUID, key.UserUUID, key.KeyHash, key.CreatedAt, nullTime(key.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("%w: creating api key: %w", ErrDatabase, err)
	}
	return nil
}

// GetByHash retrieves a key by its digest.
func (r *SQLAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*APIKeyRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	var (
		k                   APIKeyRecord
		expiresAt, lastUsed sql.NullTime
	)
	err = conn.QueryRowContext(ctx,
		"SELECT "+apiKeyColumns+" FROM api_keys WHERE api_key_hash = ?", keyHash,
	).Scan(&k.UUID, &k.UserUUID, &k.KeyHash, &k.CreatedAt, &expiresAt, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning api key: %w", ErrDatabase, err)
	}

	k.CreatedAt = k.CreatedAt.UTC()
	k.ExpiresAt = timePtr(expiresAt)
	k.LastUsedAt = timePtr(lastUsed)
	return &k, nil
}

// TouchLastUsed records that the key was just used.
func (r *SQLAPIKeyRepository) TouchLastUsed(ctx context.Context, keyHash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	_, err = conn.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at = ? WHERE api_key_hash = ?",
		time.Now().UTC().Truncate(time.Second), keyHash,
	)
	if err != nil {
		return fmt.Errorf("%w: updating last_used_at: %w", ErrDatabase, err)
	}
	return nil
}

// Helper functions.

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
