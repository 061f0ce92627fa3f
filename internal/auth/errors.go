package auth

import "errors"

// Sentinel errors for the auth package.
//
// These are mapped onto HTTP status codes at the API boundary:
// ErrInvalidInput and ErrInvalidFormat are client errors, ErrUnauthorized
// rejects the credentials, ErrDatabase is a server error.
var (
	// ErrInvalidInput is returned when a request value violates policy.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFormat is returned for malformed API keys and stored hashes.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnauthorized is returned when credentials are wrong, unknown or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDatabase is returned when the credential store fails.
	ErrDatabase = errors.New("auth: database error")

	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("auth: not found")
)
