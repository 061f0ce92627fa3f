// Package api implements the HTTP REST API for http2sql.
//
// This package provides:
//   - Table endpoints: create, drop, bulk row insert
//   - Free-form query endpoints: fetch (SELECT) and execute (everything else)
//   - Account endpoints: sign-up, sign-in (issues an API key) and user metadata
//   - Health and metrics endpoints
//   - Middleware stack (request ID, logging, recovery, CORS, body size, API key auth)
//
// All routes are mounted under /v1. Errors are returned as
// {"status", "code", "message"}; database details are logged, not returned.
// Account endpoints wrap their payload as {"data", "message"}.
//
// # Authentication
//
// The user metadata endpoint requires an "Authorization: Bearer <api key>"
// header. Keys are issued by POST /v1/auth/sign-in.
package api
