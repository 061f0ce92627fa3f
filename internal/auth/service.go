package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
)

// Service implements sign-up, sign-in and API key authentication.
//
// Thread Safety: all methods are safe for concurrent use.
type Service struct {
	users  UserRepository
	keys   APIKeyRepository
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
}

// NewService creates an auth service.
//
// Parameters:
//   - users: User account store
//   - keys: API key store
//   - ttl: Lifetime of keys issued at sign-in (0 issues keys without expiry)
//   - logger: Logger instance (may be nil)
func NewService(users UserRepository, keys APIKeyRepository, ttl time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		users:  users,
		keys:   keys,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// SignUp registers a new account and returns it as stored.
func (s *Service) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: Email cannot be empty", ErrInvalidInput)
	}
	pw, err := NewPassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := pw.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.Create(ctx, &User{Email: email, PasswordHash: hash}); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("user signed up", "user_uuid", user.UUID)
	return user, nil
}

// SignIn checks the credentials and issues a new API key.
func (s *Service) SignIn(ctx context.Context, email, password string) (*IssuedKey, error) {
	pw, err := NewPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	ok, err := pw.Verify(user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is malformed", "user_uuid", user.UUID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthorized)
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	record := &APIKeyRecord{
		UserUUID:  user.UUID,
		KeyHash:   key.Hash(),
		CreatedAt: now,
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl)
		record.ExpiresAt = &expires
	}
	if err := s.keys.Create(ctx, record); err != nil {
		return nil, err
	}

	stored, err := s.keys.GetByHash(ctx, record.KeyHash)
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("api key issued", "user_uuid", user.UUID, "key_uuid", stored.UUID)
	return &IssuedKey{
		UserUUID:  stored.UserUUID,
		APIKey:    key.Plaintext(),
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Authenticate resolves a presented API key to its stored record.
//
// A malformed key is ErrInvalidFormat. An unknown or expired key is
// ErrUnauthorized. On success the key's last_used_at is updated.
func (s *Service) Authenticate(ctx context.Context, presented string) (*APIKeyRecord, error) {
	key, err := NewAPIKey(presented)
	if err != nil {
		return nil, err
	}

	record, err := s.keys.GetByHash(ctx, key.Hash())
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: Invalid API key", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if record.Expired(s.now()) {
		return nil, fmt.Errorf("%w: API key has expired", ErrUnauthorized)
	}

	if err := s.keys.TouchLastUsed(ctx, record.KeyHash); err != nil {
		return nil, err
	}
	return record, nil
}

// UserMetadata returns the account a key belongs to.
func (s *Service) UserMetadata(ctx context.Context, userUUID string) (*User, error) {
	user, err := s.users.GetByUUID(ctx, userUUID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: User not found", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// storeError converts a missing row right after a write into a store failure.
func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: row not visible after insert", ErrDatabase)
	}
	return err
}
