package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// StatementMeasurement is the measurement statement telemetry is written to.
const StatementMeasurement = "statements"

// Statement outcomes recorded in the "outcome" tag.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// StatementMetric describes one executed statement.
type StatementMetric struct {
	Kind     string // event kind, e.g. "rows_inserted"
	Intent   string // leading SQL keyword, e.g. "insert"
	Failed   bool
	Duration time.Duration
	Rows     int64
	At       time.Time
}

// WriteStatementMetric records one executed statement.
//
// The write is non-blocking; points are batched and sent asynchronously.
// It is a no-op when the client is not connected.
func (c *Client) WriteStatementMetric(m StatementMetric) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(statementPoint(m))
}

// statementPoint builds the point for m. Tags stay low cardinality: table
// names are deliberately left out.
func statementPoint(m StatementMetric) *write.Point {
	outcome := OutcomeOK
	if m.Failed {
		outcome = OutcomeError
	}
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}

	tags := map[string]string{
		"kind":    m.Kind,
		"outcome": outcome,
	}
	if m.Intent != "" {
		tags["intent"] = m.Intent
	}

	return write.NewPoint(
		StatementMeasurement,
		tags,
		map[string]interface{}{
			"duration_ms": float64(m.Duration) / float64(time.Millisecond),
			"rows":        m.Rows,
		},
		at,
	)
}
