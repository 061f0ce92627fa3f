package gateway

import (
	"context"
	"time"
)

// EventKind identifies the operation an Event reports.
type EventKind string

// Event kinds.
const (
	EventTableCreated      EventKind = "table_created"
	EventTableDropped      EventKind = "table_dropped"
	EventRowsInserted      EventKind = "rows_inserted"
	EventStatementExecuted EventKind = "statement_executed"
	EventQueryFetched      EventKind = "query_fetched"
)

// Mutates reports whether the event kind changes schema or data.
func (k EventKind) Mutates() bool {
	return k != EventQueryFetched
}

// Event describes one executed statement.
type Event struct {
	Kind EventKind `json:"kind"`

	// Table is set for table and row operations.
	Table string `json:"table,omitempty"`

	// Intent is the leading keyword of a free-form statement.
	Intent string `json:"intent,omitempty"`

	// Rows is the number of rows affected or returned.
	Rows int64 `json:"rows"`

	Duration time.Duration `json:"-"`
	At       time.Time     `json:"at"`

	// Err is the execution error, nil on success.
	Err error `json:"-"`
}

// Observer receives an Event after every executed statement.
// Implementations must not block the request for long and must not fail it.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// nopObserver discards events.
type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}
