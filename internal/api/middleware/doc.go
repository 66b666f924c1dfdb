// Package middleware provides gin middleware for the HTTP API: CORS, per-IP
// and global rate limiting, and zap request logging.
package middleware
