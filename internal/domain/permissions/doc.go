// Package permissions translates POSIX mode bits to and from the nine named
// owner/group/other capabilities. It performs no I/O.
package permissions
