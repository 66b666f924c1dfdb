// Package config loads application configuration from the environment.
//
// Sections are filled by envconfig after an optional .env file has been read
// with godotenv. The viewer table override file referenced by
// BROWSER_VIEWERS_FILE may be YAML or TOML.
package config
