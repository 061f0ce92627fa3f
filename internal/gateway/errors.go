package gateway

import "errors"

// ErrDatabase is returned when the backend fails to execute a statement or
// a connection cannot be established. The wrapped error carries the driver
// detail and must not be shown to clients.
var ErrDatabase = errors.New("gateway: database error")
