// Package migrations embeds the credential schema into the binary.
//
// The schema is the fixed users/api_keys layout backing sign-up, sign-in and
// API key authentication. Each supported driver has its own file named after
// the driver ("mysql.sql", "sqlite3.sql"). Every statement is idempotent, so
// Apply can run at every start.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed *.sql
var schemaFS embed.FS

// Execer executes a statement. *sql.DB and *database.Conn implement it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Statements returns the schema statements for driver in file order.
func Statements(driver string) ([]string, error) {
	data, err := schemaFS.ReadFile(driver + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for driver %q: %w", driver, err)
	}

	var stmts []string
	for _, part := range strings.Split(stripComments(string(data)), ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

// Apply executes the schema for driver one statement at a time.
// The MySQL driver rejects multi-statement strings unless multiStatements is
// enabled, which this module never does.
func Apply(ctx context.Context, db Execer, driver string) error {
	stmts, err := Statements(driver)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// stripComments removes "--" line comments.
func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
