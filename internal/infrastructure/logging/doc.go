// Package logging builds the zap logger shared by the server and the CLI.
//
// The server logs JSON to stderr (console output with LOG_DEV). One-shot
// commands log warnings only, or everything with --verbose, so their
// stdout stays clean.
//
// Example Usage:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//	engine := browser.Open(fsys, dir, browser.WithLogger(logger.Component("browser")))
package logging
