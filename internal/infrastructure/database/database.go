package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/http2sql/internal/infrastructure/config"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the SQLite database directory.
	dirPermissions = 0750

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// sqliteBusyTimeout is the SQLite lock wait in seconds.
	sqliteBusyTimeout = 5

	// defaultConnectTimeout bounds the verification ping of a new handle.
	defaultConnectTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle sockets are kept open inside a handle.
	connMaxIdleTime = 30 * time.Minute
)

// DSN builds the driver connection string for the configured backend.
//
// MySQL DSNs always enable parseTime (DATE/DATETIME columns scan as time.Time)
// and pin the session location to UTC.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case config.DriverSQLite:
		// See: https://github.com/mattn/go-sqlite3#connection-string
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
			cfg.Path,
			sqliteBusyTimeout*msPerSecond,
		), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// Open establishes a new database handle and verifies it with a ping.
//
// The returned *sql.DB pools physical sockets internally; the Pool in this
// package decides when the handle itself is rebuilt.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite only supports one writer
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	timeout := defaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		timeout = time.Duration(cfg.ConnectTimeout) * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return sqlDB, nil
}

// NewOpener returns an Opener that calls Open with cfg.
func NewOpener(cfg config.DatabaseConfig) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, cfg)
	}
}
