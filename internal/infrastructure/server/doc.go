// Package server assembles the file browser HTTP server.
//
// This package wires all components together:
//   - Session manager over the host (or an injected) filesystem
//   - Viewer routing table with optional file overrides
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, trace IDs, logging, metrics, CORS, rate limiting)
//   - gzip response compression, skipped for WebSocket streams
//   - Prometheus metrics on /metrics
//
// Server Lifecycle:
//  1. Load configuration from environment
//  2. Initialize logger and metrics registry
//  3. Build viewer router and session manager
//  4. Setup HTTP routes and middleware
//  5. Serve until the context is cancelled, sweeping idle sessions
//  6. Graceful shutdown, then close every session
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
