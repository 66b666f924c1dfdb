// Package viewer routes entries to viewer kinds.
//
// Routing is data: a table from file extension to kind, matched case
// insensitively, with optional content sniffing for files the table does not
// cover. The viewers themselves live outside this module.
package viewer
