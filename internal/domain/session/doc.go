// Package session keeps the live browsing sessions of the HTTP API.
//
// A session is a browser.Navigator identified by a "sess_" ULID. Sessions live
// in memory only: they are closed when deleted, when idle for longer than the
// configured timeout, or when the server shuts down.
//
// Example Usage:
//
//	manager := session.NewManager(filesystem.NewLocal(),
//		session.WithLogger(log),
//		session.WithBrowserOptions(browser.WithSearchRoot("/")),
//	)
//	s, err := manager.Create(ctx, "/var")
//	snap := s.Engine().Snapshot()
//	manager.Delete(s.ID)
package session
