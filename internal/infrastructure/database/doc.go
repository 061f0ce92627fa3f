// Package database provides the relational executor for http2sql.
//
// This package manages:
//   - Building driver DSNs for MySQL (production) and SQLite (local runs and tests)
//   - Opening and verifying *sql.DB handles
//   - A time-boxed handle Pool that rebuilds the handle after a period of disuse
//
// Pool Semantics:
//
// The first Acquire establishes the handle. While the handle keeps being used
// within the staleness window (DefaultStaleAfter) every Acquire returns it.
// Once it has gone unused for longer than the window the next Acquire
// establishes a replacement. Concurrent callers that observe a stale handle
// share a single reconnect. A replaced handle is closed when its last
// borrowed Conn is released.
//
// Usage:
//
//	pool := database.NewPool(database.NewOpener(cfg.Database),
//	    database.WithStaleAfter(cfg.GetStaleAfter()),
//	    database.WithLogger(logger),
//	)
//	defer pool.Close()
//
//	conn, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Release()
//
//	rows, err := conn.QueryContext(ctx, "SELECT * FROM users")
//
// Security Considerations:
//   - Values are always bound as parameters, never interpolated
//   - The SQLite database directory is created with 0750 permissions
package database
