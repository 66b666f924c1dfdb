// Package cli implements the filebrowser command line with cobra.
//
// Commands:
//   - serve: run the HTTP and WebSocket API
//   - ls [dir]: print a directory listing
//   - search [query]: search recursively below a root
//   - chmod <path> <capability>: toggle one permission bit
//
// The root command loads .env files with godotenv and then the environment
// configuration before any subcommand runs.
package cli
