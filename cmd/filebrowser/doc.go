// Command filebrowser browses and searches a local filesystem from the
// command line or serves the same operations over HTTP.
//
// Usage:
//
//	filebrowser ls /var --sort modified
//	filebrowser search report --root /home --timeout 10s
//	filebrowser chmod ./notes.txt groupWrite
//	filebrowser serve --port 8000
package main
