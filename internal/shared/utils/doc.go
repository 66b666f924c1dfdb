// Package utils provides small pure helpers shared by the API and CLI.
//
// Utilities:
//   - FormatBytes: binary-unit size formatting for display
//   - ValidateName: single path component validation
//   - ValidateQuery: search query limits
//   - CopyName: default name for a duplicate
package utils
