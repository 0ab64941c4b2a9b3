// Package pg owns the PostgreSQL plumbing shared by the service: pool
// construction with startup retries, goose schema migrations routed through
// slog, a readiness healthcheck, and SQLSTATE classifiers so storage code can
// translate driver errors into domain errors without importing pgconn
// everywhere.
package pg
