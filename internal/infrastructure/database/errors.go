package database

import "errors"

// Sentinel errors for pool operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnection is returned when a new handle cannot be established
	// (network failure, bad credentials, unreachable server).
	ErrConnection = errors.New("database: connection failed")

	// ErrPoolClosed is returned by Acquire after Close has been called.
	ErrPoolClosed = errors.New("database: pool is closed")

	// ErrUnsupportedDriver is returned when the configured driver is unknown.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")
)
