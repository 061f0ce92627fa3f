package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
)

// DefaultStaleAfter is how long a cached handle may go unused before the
// pool discards it and establishes a new one.
const DefaultStaleAfter = 300 * time.Second

// connectKey is the singleflight key for handle establishment.
const connectKey = "connect"

// Opener establishes a new, verified database handle.
type Opener func(ctx context.Context) (*sql.DB, error)

// Option configures a Pool.
type Option func(*Pool)

// WithStaleAfter overrides the staleness window.
func WithStaleAfter(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.staleAfter = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// WithLogger sets the logger used to report reconnects.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// Pool owns a lazily created, time-boxed handle to the database.
//
// At most one handle is cached at a time. A handle that has gone unused for
// longer than the staleness window is replaced on the next Acquire; the old
// handle is closed once every Conn borrowed from it has been released.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The mutex is held only while inspecting or swapping the cached handle,
//     never while dialing or executing statements.
type Pool struct {
	open       Opener
	staleAfter time.Duration
	now        func() time.Time
	logger     *logging.Logger

	mu      sync.Mutex
	current atomic.Pointer[handle]
	nextID  uint64
	closed  bool

	group singleflight.Group

	connects   atomic.Int64
	reconnects atomic.Int64
}

// NewPool creates a pool that establishes handles with open.
// No connection is made until the first Acquire.
func NewPool(open Opener, opts ...Option) *Pool {
	p := &Pool{
		open:       open,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a borrowed connection to the database.
//
// The caller must call Release on the returned Conn when the statement has
// finished. Connection failures are returned wrapped in ErrConnection and are
// not retried.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	now := p.now()

	// Fast path: unguarded read of the cached handle.
	if h := p.current.Load(); h != nil && h.fresh(now, p.staleAfter) && h.retain() {
		h.touch(now)
		return &Conn{h: h}, nil
	}

	// Establishment is shared between concurrent callers and must not be
	// cancelled by whichever caller happened to start it.
	dialCtx := context.WithoutCancel(ctx)
	for {
		v, err, _ := p.group.Do(connectKey, func() (any, error) {
			return p.refresh(dialCtx)
		})
		if err != nil {
			return nil, err
		}

		h, _ := v.(*handle) //nolint:errcheck // refresh only returns *handle
		if h.retain() {
			h.touch(p.now())
			return &Conn{h: h}, nil
		}
		// Retired between refresh and retain; go round again.
	}
}

// refresh returns the cached handle if it is still fresh, otherwise
// establishes and installs a new one.
func (p *Pool) refresh(ctx context.Context) (*handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	old := p.current.Load()
	// Double-check: another caller may have rebuilt the handle after our
	// unguarded read.
	if old != nil && old.fresh(p.now(), p.staleAfter) {
		p.mu.Unlock()
		return old, nil
	}
	p.mu.Unlock()

	start := p.now()
	db, err := p.open(ctx)
	if err != nil {
		p.logger.Warn("database connection failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, ErrPoolClosed
	}
	p.nextID++
	h := newHandle(db, p.nextID, p.now())
	p.current.Store(h)
	p.mu.Unlock()

	p.connects.Add(1)
	if old != nil {
		p.reconnects.Add(1)
		old.retire()
		p.logger.Info("database handle rebuilt",
			"handle_id", h.id,
			"previous_handle_id", old.id,
			"idle_for", start.Sub(old.lastUsedAt()).String(),
			"reconnects", p.reconnects.Load(),
		)
	} else {
		p.logger.Info("database connection established", "handle_id", h.id)
	}

	return h, nil
}

// Close retires the cached handle and makes further Acquire calls fail with
// ErrPoolClosed. Borrowed connections stay usable until released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	h := p.current.Swap(nil)
	p.mu.Unlock()

	if h != nil {
		h.retire()
	}
	return nil
}

// HealthCheck verifies the database is reachable through the pool.
func (p *Pool) HealthCheck(ctx context.Context) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	defer conn.Release()

	var result int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	// Connects is the number of handles established, including the first.
	Connects int64 `json:"connects"`

	// Reconnects is the number of times a stale handle was replaced.
	Reconnects int64 `json:"reconnects"`

	// HandleID identifies the cached handle (0 if none is cached).
	HandleID uint64 `json:"handle_id"`

	// DB holds the database/sql statistics of the cached handle.
	DB sql.DBStats `json:"db"`
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	s := PoolStats{
		Connects:   p.connects.Load(),
		Reconnects: p.reconnects.Load(),
	}
	if h := p.current.Load(); h != nil {
		s.HandleID = h.id
		s.DB = h.db.Stats()
	}
	return s
}

// handle is one materialised *sql.DB plus its bookkeeping.
// It is reference counted so a retired handle is closed only after its last
// borrower releases it.
type handle struct {
	db        *sql.DB
	id        uint64
	createdAt time.Time

	lastUsed atomic.Int64 // unix nanoseconds
	refs     atomic.Int64
	retired  atomic.Bool
	once     sync.Once
}

func newHandle(db *sql.DB, id uint64, now time.Time) *handle {
	h := &handle{db: db, id: id, createdAt: now}
	h.lastUsed.Store(now.UnixNano())
	return h
}

func (h *handle) lastUsedAt() time.Time {
	return time.Unix(0, h.lastUsed.Load())
}

func (h *handle) fresh(now time.Time, window time.Duration) bool {
	return now.Sub(h.lastUsedAt()) < window
}

func (h *handle) touch(now time.Time) {
	h.lastUsed.Store(now.UnixNano())
}

// retain takes a reference. It fails if the handle has been retired.
func (h *handle) retain() bool {
	h.refs.Add(1)
	if h.retired.Load() {
		h.release()
		return false
	}
	return true
}

func (h *handle) release() {
	if h.refs.Add(-1) == 0 && h.retired.Load() {
		h.close()
	}
}

func (h *handle) retire() {
	h.retired.Store(true)
	if h.refs.Load() == 0 {
		h.close()
	}
}

func (h *handle) close() {
	h.once.Do(func() {
		h.db.Close() //nolint:errcheck // Retired handle; nothing to report to
	})
}

// Conn is a connection borrowed from a Pool for the duration of one statement.
type Conn struct {
	h        *handle
	released atomic.Bool
}

// ID identifies the underlying handle. Two Conns with the same ID share the
// same *sql.DB.
func (c *Conn) ID() uint64 {
	return c.h.id
}

// DB returns the underlying handle. It must not be closed by the caller.
func (c *Conn) DB() *sql.DB {
	return c.h.db
}

// ExecContext executes a statement that doesn't return rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.h.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a statement that returns rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.h.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a statement that returns at most one row.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.h.db.QueryRowContext(ctx, query, args...)
}

// Release returns the connection to the pool. Calling it more than once is a no-op.
func (c *Conn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.h.release()
	}
}
