// Package influxdb writes statement telemetry to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes and health monitoring. Every statement the
// gateway executes becomes one point in the "statements" measurement,
// tagged by event kind and outcome, with duration_ms and rows fields.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteStatementMetric(influxdb.StatementMetric{
//	    Kind:     "rows_inserted",
//	    Duration: elapsed,
//	    Rows:     n,
//	})
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered to the
// callback set with SetOnError. Connection and health check errors are
// returned directly.
package influxdb
