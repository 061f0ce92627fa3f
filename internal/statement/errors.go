package statement

import "errors"

// ErrInvalidInput is returned for empty or malformed table descriptions,
// rows and queries. It is always raised before any SQL is executed.
var ErrInvalidInput = errors.New("invalid input")
