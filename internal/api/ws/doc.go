// Package ws streams session snapshots to clients over WebSocket.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//   - resync: Follow the session's current top view
//
// Message Types (Server → Client):
//   - snapshot: Full view state with its projected entries
//   - pong: Reply to ping
//   - error: Unknown or malformed client message
//   - closed: The session was closed; the connection ends
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, metrics, log)
//	handler.Register(router)
package ws
