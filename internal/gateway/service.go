package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/http2sql/internal/codec"
	"github.com/nerrad567/http2sql/internal/infrastructure/database"
	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
	"github.com/nerrad567/http2sql/internal/statement"
)

// ConnSource hands out database connections. *database.Pool implements it.
type ConnSource interface {
	Acquire(ctx context.Context) (*database.Conn, error)
}

// ExecResult reports the outcome of an execute-style statement.
type ExecResult struct {
	Intent       statement.Intent `json:"-"`
	RowsAffected int64            `json:"rows_affected"`
	LastInsertID int64            `json:"last_insert_id"`
}

// Service executes dynamic statements.
//
// Thread Safety: all methods are safe for concurrent use. Each call borrows
// its own connection for the duration of one statement.
type Service struct {
	pool     ConnSource
	scanner  *codec.RowScanner
	observer Observer
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates a gateway service.
//
// Parameters:
//   - pool: Source of database connections
//   - observer: Receives an event per executed statement (may be nil)
//   - logger: Logger instance (may be nil)
func NewService(pool ConnSource, observer Observer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		pool:     pool,
		scanner:  codec.NewRowScanner(logger),
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTable creates a table from its description.
func (s *Service) CreateTable(ctx context.Context, spec statement.TableSpec) error {
	query, err := statement.CreateTable(spec)
	if err != nil {
		return err
	}
	ev := Event{Kind: EventTableCreated, Table: spec.Name}
	_, err = s.exec(ctx, &ev, query)
	return err
}

// DropTable drops a table.
func (s *Service) DropTable(ctx context.Context, name string) error {
	query, err := statement.DropTable(name)
	if err != nil {
		return err
	}
	ev := Event{Kind: EventTableDropped, Table: name}
	_, err = s.exec(ctx, &ev, query)
	return err
}

// InsertRows inserts rows into table with a single statement and returns
// the number of rows inserted.
func (s *Service) InsertRows(ctx context.Context, table string, rows []codec.Row) (int64, error) {
	stmt, err := statement.BulkInsert(table, rows)
	if err != nil {
		return 0, err
	}
	ev := Event{Kind: EventRowsInserted, Table: table}
	res, err := s.exec(ctx, &ev, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Fetch runs a SELECT statement and returns its rows.
func (s *Service) Fetch(ctx context.Context, query string) ([]*codec.Row, error) {
	if err := statement.CheckFetch(query); err != nil {
		return nil, err
	}

	ev := Event{Kind: EventQueryFetched, Intent: statement.IntentSelect.String()}
	start := s.now()
	rows, err := s.fetch(ctx, query)
	ev.Duration = s.now().Sub(start)
	ev.Rows = int64(len(rows))
	s.finish(ctx, &ev, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) fetch(ctx context.Context, query string) ([]*codec.Row, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	out, err := s.scanner.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	return out, nil
}

// Execute runs any statement other than SELECT.
func (s *Service) Execute(ctx context.Context, query string) (ExecResult, error) {
	intent, err := statement.CheckExecute(query)
	if err != nil {
		return ExecResult{}, err
	}
	ev := Event{Kind: EventStatementExecuted, Intent: intent.String()}
	res, err := s.exec(ctx, &ev, query)
	if err != nil {
		return ExecResult{}, err
	}
	res.Intent = intent
	return res, nil
}

// exec acquires a connection, runs one statement and reports it.
func (s *Service) exec(ctx context.Context, ev *Event, query string, args ...any) (ExecResult, error) {
	start := s.now()
	res, err := s.execStatement(ctx, query, args...)
	ev.Duration = s.now().Sub(start)
	ev.Rows = res.RowsAffected
	s.finish(ctx, ev, err)
	return res, err
}

func (s *Service) execStatement(ctx context.Context, query string, args ...any) (ExecResult, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return ExecResult{}, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer conn.Release()

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return ExecResult{}, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	var res ExecResult
	// Drivers that cannot report either value leave it at zero.
	if n, err := result.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	if id, err := result.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	return res, nil
}

func (s *Service) finish(ctx context.Context, ev *Event, err error) {
	ev.At = s.now()
	ev.Err = err
	if err != nil {
		s.logger.Warn("statement failed",
			"kind", string(ev.Kind),
			"table", ev.Table,
			"error", err,
		)
	} else {
		s.logger.Debug("statement executed",
			"kind", string(ev.Kind),
			"table", ev.Table,
			"rows", ev.Rows,
			"duration", ev.Duration.String(),
		)
	}
	s.observer.Observe(ctx, *ev)
}
