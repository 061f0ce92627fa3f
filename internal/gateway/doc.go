// Package gateway executes dynamic table, row and free-form statements
// against the relational backend.
//
// The Service ties together the connection pool (database), statement
// construction (statement) and value shaping (codec). Every operation
// validates its input before a connection is acquired, so an invalid request
// never reaches the database.
//
// Each executed statement is reported to an Observer (see the telemetry
// package), which may publish change events or record timings.
package gateway
